// Package account is the in-memory loyalty ledger: point balances and issued
// coupons per user, flushed in full to a Snapshotter after every mutation.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrEmptyUserID   = errors.New("user id is empty")
	ErrInvalidAmount = errors.New("amount must be a positive integer")
)

type LedgerOption func(*Ledger)

func WithLogger(logger zerolog.Logger) LedgerOption {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// Ledger serializes all access with one mutex; each mutation rewrites the
// whole snapshot before the lock is released.
type Ledger struct {
	mu        sync.Mutex
	accounts  Snapshot
	snapshots Snapshotter
	logger    zerolog.Logger
}

// Redemption is the outcome of Ledger.Redeem. Balance is the remaining
// balance on success and the unchanged current balance otherwise.
type Redemption struct {
	Redeemed bool
	Coupon   Coupon
	Balance  int
}

// Open reads the snapshot once. A missing snapshot starts an empty ledger.
func Open(ctx context.Context, snapshots Snapshotter, opts ...LedgerOption) (*Ledger, error) {
	if snapshots == nil {
		return nil, errors.New("snapshotter is required")
	}

	l := &Ledger{
		snapshots: snapshots,
		logger:    log.Logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	snap, err := snapshots.Load(ctx)
	switch {
	case errors.Is(err, ErrSnapshotNotFound):
		l.logger.Info().Msg("no account snapshot found, starting empty")
		snap = Snapshot{}
	case err != nil:
		return nil, fmt.Errorf("load account snapshot: %w", err)
	default:
		l.logger.Info().Int("accounts", len(snap)).Msg("account snapshot loaded")
	}

	for id, acc := range snap {
		if acc.Coupons == nil {
			acc.Coupons = []Coupon{}
			snap[id] = acc
		}
	}
	l.accounts = snap
	return l, nil
}

// Account returns a copy of the user's account, creating it on first access.
func (l *Ledger) Account(ctx context.Context, userID string) (Account, error) {
	if err := checkUserID(userID); err != nil {
		return Account{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acc, created := l.getOrCreate(userID)
	if created {
		l.flush(ctx, "create")
	}
	return acc.clone(), nil
}

func (l *Ledger) Points(ctx context.Context, userID string) (int, error) {
	acc, err := l.Account(ctx, userID)
	if err != nil {
		return 0, err
	}
	return acc.Points, nil
}

func (l *Ledger) Coupons(ctx context.Context, userID string) ([]Coupon, error) {
	acc, err := l.Account(ctx, userID)
	if err != nil {
		return nil, err
	}
	return acc.Coupons, nil
}

// AddPoints credits amount and returns the new balance. There is no cap.
func (l *Ledger) AddPoints(ctx context.Context, userID string, amount int) (int, error) {
	if err := checkUserID(userID); err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acc, _ := l.getOrCreate(userID)
	acc.Points += amount
	l.accounts[userID] = acc
	l.flush(ctx, "add_points")
	return acc.Points, nil
}

// DeductPoints debits amount only when the balance covers it. It reports
// false and leaves the balance untouched otherwise.
func (l *Ledger) DeductPoints(ctx context.Context, userID string, amount int) (bool, error) {
	if err := checkUserID(userID); err != nil {
		return false, err
	}
	if amount <= 0 {
		return false, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acc, created := l.getOrCreate(userID)
	if acc.Points < amount {
		if created {
			l.flush(ctx, "create")
		}
		return false, nil
	}

	acc.Points -= amount
	l.accounts[userID] = acc
	l.flush(ctx, "deduct_points")
	return true, nil
}

func (l *Ledger) AddCoupon(ctx context.Context, userID string, coupon Coupon) error {
	if err := checkUserID(userID); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acc, _ := l.getOrCreate(userID)
	acc.Coupons = append(acc.Coupons, coupon)
	l.accounts[userID] = acc
	l.flush(ctx, "add_coupon")
	return nil
}

// Redeem checks the balance, deducts cost and appends the coupon as one
// step with a single flush.
func (l *Ledger) Redeem(ctx context.Context, userID, couponType string, cost int, code string) (Redemption, error) {
	if err := checkUserID(userID); err != nil {
		return Redemption{}, err
	}
	if cost <= 0 {
		return Redemption{}, fmt.Errorf("%w: got %d", ErrInvalidAmount, cost)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acc, created := l.getOrCreate(userID)
	if acc.Points < cost {
		if created {
			l.flush(ctx, "create")
		}
		return Redemption{Balance: acc.Points}, nil
	}

	coupon := Coupon{Type: couponType, Code: code, PointsCost: cost}
	acc.Points -= cost
	acc.Coupons = append(acc.Coupons, coupon)
	l.accounts[userID] = acc
	l.flush(ctx, "redeem")

	return Redemption{Redeemed: true, Coupon: coupon, Balance: acc.Points}, nil
}

// Reset forgets the account. The next access recreates it empty.
func (l *Ledger) Reset(ctx context.Context, userID string) error {
	if err := checkUserID(userID); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.accounts[userID]; !ok {
		return nil
	}
	delete(l.accounts, userID)
	l.flush(ctx, "reset")
	return nil
}

// Snapshot returns a deep copy of every account.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accounts.clone()
}

func (l *Ledger) getOrCreate(userID string) (Account, bool) {
	if acc, ok := l.accounts[userID]; ok {
		return acc, false
	}
	acc := Account{Points: 0, Coupons: []Coupon{}}
	l.accounts[userID] = acc
	return acc, true
}

// flush must be called with mu held. Failures are logged; the in-memory
// state stays authoritative for this process.
func (l *Ledger) flush(ctx context.Context, op string) {
	if err := l.snapshots.Save(ctx, l.accounts.clone()); err != nil {
		l.logger.Warn().Err(err).Str("op", op).Msg("account snapshot flush failed")
		return
	}
	l.logger.Debug().Str("op", op).Int("accounts", len(l.accounts)).Msg("account snapshot flushed")
}

func checkUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrEmptyUserID
	}
	return nil
}
