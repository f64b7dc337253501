// Package console is the line-oriented terminal surface.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/mall-concierge/agent/concierge"
	contractx "github.com/tanpawarit/mall-concierge/agent/contract"
)

type Chatter interface {
	Chat(ctx context.Context, req concierge.Request) (concierge.Reply, error)
}

// Console keeps one user's history in process for the lifetime of Run.
type Console struct {
	chat     Chatter
	accounts contractx.AccountStore
	userID   string
	in       io.Reader
	out      io.Writer
	history  []*schema.Message
}

func New(chat Chatter, accounts contractx.AccountStore, userID string, in io.Reader, out io.Writer) (*Console, error) {
	if chat == nil {
		return nil, errors.New("chatter is required")
	}
	if accounts == nil {
		return nil, errors.New("account store is required")
	}
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is empty", contractx.ErrValidation)
	}
	return &Console{
		chat:     chat,
		accounts: accounts,
		userID:   userID,
		in:       in,
		out:      out,
	}, nil
}

// Run reads until EOF, quit/exit, or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintf(c.out, "Dubai Mall Concierge. Commands: quit, reset, status. Chatting as %s.\n", c.userID)

	scanner := bufio.NewScanner(c.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(c.out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit":
			fmt.Fprintln(c.out, "Goodbye! Enjoy Dubai Mall.")
			return nil
		case "reset":
			c.reset(ctx)
		case "status":
			c.status(ctx)
		default:
			c.turn(ctx, line)
		}
	}
}

func (c *Console) turn(ctx context.Context, line string) {
	reply, err := c.chat.Chat(ctx, concierge.Request{
		UserID:  c.userID,
		Message: line,
		History: c.history,
	})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("user_id", c.userID).Msg("chat turn failed")
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}

	c.history = reply.History
	if !reply.Converged {
		fmt.Fprintf(c.out, "Concierge: (no final answer after %d rounds, please try rephrasing)\n", reply.Rounds)
		return
	}
	fmt.Fprintf(c.out, "Concierge: %s\n", reply.Text)
}

func (c *Console) reset(ctx context.Context) {
	if err := c.accounts.Reset(ctx, c.userID); err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	c.history = nil
	fmt.Fprintf(c.out, "Account %s and conversation have been reset.\n", c.userID)
}

func (c *Console) status(ctx context.Context) {
	acc, err := c.accounts.Account(ctx, c.userID)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(c.out, "Points: %d\n", acc.Points)
	if len(acc.Coupons) == 0 {
		fmt.Fprintln(c.out, "Coupons: none")
		return
	}
	fmt.Fprintln(c.out, "Coupons:")
	for _, coupon := range acc.Coupons {
		fmt.Fprintf(c.out, "  - %s: %s (%d points)\n", coupon.Type, coupon.Code, coupon.PointsCost)
	}
}
