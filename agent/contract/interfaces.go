package contract

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/tanpawarit/mall-concierge/agent/account"
)

// ToolGateway declares the tool schemas and executes tool requests.
type ToolGateway interface {
	Infos() []*schema.ToolInfo
	Execute(ctx context.Context, req ToolRequest) (ToolResult, error)
}

// AccountStore is the part of the ledger that tools and surfaces need.
type AccountStore interface {
	Account(ctx context.Context, userID string) (account.Account, error)
	Points(ctx context.Context, userID string) (int, error)
	AddPoints(ctx context.Context, userID string, amount int) (int, error)
	Redeem(ctx context.Context, userID, couponType string, cost int, code string) (account.Redemption, error)
	Reset(ctx context.Context, userID string) error
}

var _ AccountStore = (*account.Ledger)(nil)
