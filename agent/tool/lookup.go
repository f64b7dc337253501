package tool

import (
	"fmt"

	contractx "github.com/tanpawarit/mall-concierge/agent/contract"
)

type FindParkingInput struct {
	PlateNumber string `json:"plate_number"`
}

type FindParkingOutput struct {
	PlateNumber string `json:"plate_number"`
	ParkingSpot string `json:"parking_spot"`
}

// ParkingMiss is the data of a plate with no parking record.
type ParkingMiss struct {
	PlateNumber string `json:"plate_number"`
}

type GetShopInfoInput struct {
	ShopName string `json:"shop_name"`
}

// ShopMiss is the data of a shop query that matched nothing. A hit returns
// the full mall.Shop record as data.
type ShopMiss struct {
	ShopName string `json:"shop_name"`
}

func (r *Registry) findParking(args map[string]any) (contractx.ToolResult, error) {
	var in FindParkingInput
	if err := decodeArgs(ToolFindParking, args, &in, "plate_number"); err != nil {
		return contractx.ToolResult{}, err
	}

	spot, ok := r.directory.FindParking(in.PlateNumber)
	if !ok {
		return contractx.ToolResult{
			Tool:    ToolFindParking,
			Success: false,
			Message: fmt.Sprintf("No parking record found for plate %s. Please check the plate number.", in.PlateNumber),
			Data:    ParkingMiss{PlateNumber: in.PlateNumber},
		}, nil
	}

	return contractx.ToolResult{
		Tool:    ToolFindParking,
		Success: true,
		Message: fmt.Sprintf("Your car %s is parked at %s.", in.PlateNumber, spot),
		Data:    FindParkingOutput{PlateNumber: in.PlateNumber, ParkingSpot: spot},
	}, nil
}

func (r *Registry) getShopInfo(args map[string]any) (contractx.ToolResult, error) {
	var in GetShopInfoInput
	if err := decodeArgs(ToolGetShopInfo, args, &in, "shop_name"); err != nil {
		return contractx.ToolResult{}, err
	}

	shop, ok := r.directory.FindShop(in.ShopName)
	if !ok {
		return contractx.ToolResult{
			Tool:    ToolGetShopInfo,
			Success: false,
			Message: fmt.Sprintf("No shop named '%s' was found. The Customer Service Center or the mall map can help.", in.ShopName),
			Data:    ShopMiss{ShopName: in.ShopName},
		}, nil
	}

	return contractx.ToolResult{
		Tool:    ToolGetShopInfo,
		Success: true,
		Message: fmt.Sprintf("%s is located at %s. %s", shop.Name, shop.Location, shop.Description),
		Data:    shop,
	}, nil
}
