package tool

import (
	"github.com/cloudwego/eino/schema"
)

func infoFor(k Kind) *schema.ToolInfo {
	switch k {
	case KindFindParking:
		return &schema.ToolInfo{
			Name: ToolFindParking,
			Desc: "Find where a guest's car is parked. Call when the guest asks where their car is or gives a plate number. Dubai plate format, e.g. DXB-1234.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"plate_number": {Type: schema.String, Desc: "Plate number exactly as registered, e.g. 'DXB-1234' or 'AD-9999'", Required: true},
			}),
		}
	case KindGetShopInfo:
		return &schema.ToolInfo{
			Name: ToolGetShopInfo,
			Desc: "Get a shop's floor, location and description. Call when the guest asks where a brand or shop is. Partial names match.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"shop_name": {Type: schema.String, Desc: "Shop or brand name, e.g. 'Hermès', 'Apple Store', '% Arabica'", Required: true},
			}),
		}
	case KindAddPoints:
		return &schema.ToolInfo{
			Name: ToolAddPoints,
			Desc: "Award loyalty points to the guest for completing a check-in, winning a game or joining a mall activity. Points can later be redeemed for coupons.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"amount": {Type: schema.Integer, Desc: "Points to award, a positive integer", Required: true},
				"reason": {Type: schema.String, Desc: "Why the points are awarded, e.g. 'completed check-in', 'won trivia'", Required: true},
			}),
		}
	case KindRedeemCoupon:
		return &schema.ToolInfo{
			Name: ToolRedeemCoupon,
			Desc: "Redeem the guest's points for a coupon. Checks the balance, deducts the points and returns a unique coupon code.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"coupon_type": {Type: schema.String, Desc: "Coupon type, e.g. 'Coffee voucher', '10% shopping discount', 'Free parking'", Required: true},
				"points_cost": {Type: schema.Integer, Desc: "Points required for the coupon", Required: true},
			}),
		}
	default:
		return nil
	}
}

// Infos returns the declared schema of every tool, in a stable order.
func Infos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(kinds))
	for _, k := range kinds {
		infos = append(infos, infoFor(k))
	}
	return infos
}
