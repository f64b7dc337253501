package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/tanpawarit/mall-concierge/agent/account"
	contractx "github.com/tanpawarit/mall-concierge/agent/contract"
	"github.com/tanpawarit/mall-concierge/agent/mall"
)

type Option func(*Registry)

// WithCodeGenerator replaces the coupon code source.
func WithCodeGenerator(fn func() string) Option {
	return func(r *Registry) {
		if fn != nil {
			r.newCode = fn
		}
	}
}

// Registry executes the four concierge tools against the mall directory and
// the account store.
type Registry struct {
	directory *mall.Directory
	accounts  contractx.AccountStore
	newCode   func() string
}

var _ contractx.ToolGateway = (*Registry)(nil)

func New(directory *mall.Directory, accounts contractx.AccountStore, opts ...Option) (*Registry, error) {
	if directory == nil {
		return nil, errors.New("mall directory is required")
	}
	if accounts == nil {
		return nil, errors.New("account store is required")
	}

	r := &Registry{
		directory: directory,
		accounts:  accounts,
		newCode:   account.NewCouponCode,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

func (r *Registry) Infos() []*schema.ToolInfo {
	return Infos()
}

// Execute runs one request. Not-found lookups and insufficient balances come
// back as Success=false results; errors mean the request itself was bad or
// the store failed.
func (r *Registry) Execute(ctx context.Context, req contractx.ToolRequest) (contractx.ToolResult, error) {
	switch ParseKind(req.Tool) {
	case KindFindParking:
		return r.findParking(req.Args)
	case KindGetShopInfo:
		return r.getShopInfo(req.Args)
	case KindAddPoints:
		return r.addPoints(ctx, req.Args)
	case KindRedeemCoupon:
		return r.redeemCoupon(ctx, req.Args)
	default:
		return contractx.ToolResult{}, fmt.Errorf("%w: %s", contractx.ErrUnknownTool, req.Tool)
	}
}

// decodeArgs checks required keys and converts the generic argument object
// into the tool's typed input.
func decodeArgs(tool string, args map[string]any, out any, required ...string) error {
	for _, key := range required {
		if v, ok := args[key]; !ok || v == nil {
			return fmt.Errorf("%w: tool=%s missing %s", contractx.ErrToolArguments, tool, key)
		}
	}

	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("%w: tool=%s: %v", contractx.ErrToolArguments, tool, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: tool=%s: %v", contractx.ErrToolArguments, tool, err)
	}
	return nil
}
