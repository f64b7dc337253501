package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type PostgresConfig struct {
	DSN string `envconfig:"DSN" split_words:"true" required:"true"`
}

type accountRow struct {
	bun.BaseModel `bun:"table:concierge_accounts"`

	UserID    string    `bun:"user_id,pk"`
	Points    int       `bun:"points,notnull"`
	Coupons   []Coupon  `bun:"coupons,type:jsonb,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// PostgresSnapshotter stores one row per account. Save replaces the table
// contents with the snapshot inside a single transaction.
type PostgresSnapshotter struct {
	db  *bun.DB
	now func() time.Time
}

func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresSnapshotter, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	p, err := NewPostgresSnapshotter(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

// NewPostgresSnapshotter creates the accounts table when missing.
func NewPostgresSnapshotter(ctx context.Context, db *bun.DB) (*PostgresSnapshotter, error) {
	if db == nil {
		return nil, errors.New("bun db is required")
	}
	if _, err := db.NewCreateTable().Model((*accountRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("create accounts table: %w", err)
	}
	return &PostgresSnapshotter{db: db, now: time.Now}, nil
}

func (p *PostgresSnapshotter) Close() error {
	return p.db.Close()
}

func (p *PostgresSnapshotter) Load(ctx context.Context) (Snapshot, error) {
	var rows []accountRow
	if err := p.db.NewSelect().Model(&rows).Order("user_id").Scan(ctx); err != nil {
		return nil, fmt.Errorf("select accounts: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrSnapshotNotFound
	}
	return rowsToSnapshot(rows), nil
}

func (p *PostgresSnapshotter) Save(ctx context.Context, snap Snapshot) error {
	rows := snapshotToRows(snap, p.now())

	return p.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		del := tx.NewDelete().Model((*accountRow)(nil))
		if len(rows) == 0 {
			del = del.Where("TRUE")
		} else {
			ids := make([]string, 0, len(rows))
			for _, r := range rows {
				ids = append(ids, r.UserID)
			}
			del = del.Where("user_id NOT IN (?)", bun.In(ids))
		}
		if _, err := del.Exec(ctx); err != nil {
			return fmt.Errorf("prune accounts: %w", err)
		}

		if len(rows) == 0 {
			return nil
		}
		_, err := tx.NewInsert().
			Model(&rows).
			On("CONFLICT (user_id) DO UPDATE").
			Set("points = EXCLUDED.points").
			Set("coupons = EXCLUDED.coupons").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("upsert accounts: %w", err)
		}
		return nil
	})
}

func snapshotToRows(snap Snapshot, now time.Time) []accountRow {
	rows := make([]accountRow, 0, len(snap))
	for id, acc := range snap {
		coupons := acc.Coupons
		if coupons == nil {
			coupons = []Coupon{}
		}
		rows = append(rows, accountRow{
			UserID:    id,
			Points:    acc.Points,
			Coupons:   coupons,
			UpdatedAt: now.UTC(),
		})
	}
	return rows
}

func rowsToSnapshot(rows []accountRow) Snapshot {
	snap := make(Snapshot, len(rows))
	for _, r := range rows {
		coupons := r.Coupons
		if coupons == nil {
			coupons = []Coupon{}
		}
		snap[r.UserID] = Account{Points: r.Points, Coupons: coupons}
	}
	return snap
}
