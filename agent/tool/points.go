package tool

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/mall-concierge/agent/contract"
)

type AddPointsInput struct {
	UserID string `json:"user_id"`
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

type AddPointsOutput struct {
	UserID      string `json:"user_id"`
	PointsAdded int    `json:"points_added"`
	TotalPoints int    `json:"total_points"`
	Reason      string `json:"reason"`
}

type RedeemCouponInput struct {
	UserID     string `json:"user_id"`
	CouponType string `json:"coupon_type"`
	PointsCost int    `json:"points_cost"`
}

// RedeemCouponOutput is the data of a successful redemption.
type RedeemCouponOutput struct {
	UserID          string `json:"user_id"`
	CouponType      string `json:"coupon_type"`
	CouponCode      string `json:"coupon_code"`
	PointsDeducted  int    `json:"points_deducted"`
	RemainingPoints int    `json:"remaining_points"`
}

// RedeemCouponShortfall is the data of a redemption refused for balance.
type RedeemCouponShortfall struct {
	UserID        string `json:"user_id"`
	CouponType    string `json:"coupon_type"`
	CurrentPoints int    `json:"current_points"`
	PointsNeeded  int    `json:"points_needed"`
}

func (r *Registry) addPoints(ctx context.Context, args map[string]any) (contractx.ToolResult, error) {
	var in AddPointsInput
	if err := decodeArgs(ToolAddPoints, args, &in, UserIDArg, "amount", "reason"); err != nil {
		return contractx.ToolResult{}, err
	}
	if strings.TrimSpace(in.UserID) == "" {
		return contractx.ToolResult{}, fmt.Errorf("%w: tool=%s empty user_id", contractx.ErrToolArguments, ToolAddPoints)
	}

	total, err := r.accounts.AddPoints(ctx, in.UserID, in.Amount)
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("add points: %w", err)
	}

	return contractx.ToolResult{
		Tool:    ToolAddPoints,
		Success: true,
		Message: fmt.Sprintf("Congratulations! You earned %d points for '%s'. Total points: %d", in.Amount, in.Reason, total),
		Data: AddPointsOutput{
			UserID:      in.UserID,
			PointsAdded: in.Amount,
			TotalPoints: total,
			Reason:      in.Reason,
		},
	}, nil
}

func (r *Registry) redeemCoupon(ctx context.Context, args map[string]any) (contractx.ToolResult, error) {
	var in RedeemCouponInput
	if err := decodeArgs(ToolRedeemCoupon, args, &in, UserIDArg, "coupon_type", "points_cost"); err != nil {
		return contractx.ToolResult{}, err
	}
	if strings.TrimSpace(in.UserID) == "" {
		return contractx.ToolResult{}, fmt.Errorf("%w: tool=%s empty user_id", contractx.ErrToolArguments, ToolRedeemCoupon)
	}

	res, err := r.accounts.Redeem(ctx, in.UserID, in.CouponType, in.PointsCost, r.newCode())
	if err != nil {
		return contractx.ToolResult{}, fmt.Errorf("redeem coupon: %w", err)
	}

	if !res.Redeemed {
		return contractx.ToolResult{
			Tool:    ToolRedeemCoupon,
			Success: false,
			Message: fmt.Sprintf("Not enough points. You have %d points and need %d to redeem %s.", res.Balance, in.PointsCost, in.CouponType),
			Data: RedeemCouponShortfall{
				UserID:        in.UserID,
				CouponType:    in.CouponType,
				CurrentPoints: res.Balance,
				PointsNeeded:  in.PointsCost,
			},
		}, nil
	}

	return contractx.ToolResult{
		Tool:    ToolRedeemCoupon,
		Success: true,
		Message: fmt.Sprintf("Redeemed! Your %s code is %s. Remaining points: %d", in.CouponType, res.Coupon.Code, res.Balance),
		Data: RedeemCouponOutput{
			UserID:          in.UserID,
			CouponType:      in.CouponType,
			CouponCode:      res.Coupon.Code,
			PointsDeducted:  in.PointsCost,
			RemainingPoints: res.Balance,
		},
	}, nil
}
