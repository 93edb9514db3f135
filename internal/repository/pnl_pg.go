package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arbdesk/arbgate/internal/model"
	"github.com/jmoiron/sqlx"
)

type PostgresPnlRepo struct {
	db *sqlx.DB
}

func NewPostgresPnlRepo(db *sqlx.DB) *PostgresPnlRepo {
	repo := &PostgresPnlRepo{db: db}
	_ = repo.ensureSchema(context.Background())
	return repo
}

func (r *PostgresPnlRepo) List(ctx context.Context, tenantID string, from, to *time.Time, limit int) ([]model.PnlRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	query := `SELECT id, symbol, realized, unrealized, funding, fees, bucket_date FROM pnl_buckets`
	clauses := []string{"tenant_id = $1"}
	args := []interface{}{tenantID}
	idx := 2

	if from != nil {
		clauses = append(clauses, fmt.Sprintf("bucket_date >= $%d", idx))
		args = append(args, *from)
		idx++
	}
	if to != nil {
		clauses = append(clauses, fmt.Sprintf("bucket_date <= $%d", idx))
		args = append(args, *to)
		idx++
	}
	query += " WHERE " + strings.Join(clauses, " AND ")
	query += fmt.Sprintf(" ORDER BY bucket_date DESC LIMIT $%d", idx)
	args = append(args, limit)

	rows := make([]model.PnlRow, 0, limit)
	err := r.db.SelectContext(ctx, &rows, query, args...)
	return rows, err
}

func (r *PostgresPnlRepo) ListInventory(ctx context.Context, tenantID string) ([]model.InventoryItem, error) {
	rows := []model.InventoryItem{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT inv.venue_id, v.name AS venue, inv.asset, inv.total, inv.available, inv.updated_at
		FROM inventory inv
		JOIN venues v ON v.id = inv.venue_id
		WHERE inv.tenant_id = $1
		ORDER BY v.name, inv.asset
	`, tenantID)
	return rows, err
}

func (r *PostgresPnlRepo) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS pnl_buckets (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			symbol TEXT NOT NULL,
			realized DOUBLE PRECISION NOT NULL DEFAULT 0,
			unrealized DOUBLE PRECISION NOT NULL DEFAULT 0,
			funding DOUBLE PRECISION NOT NULL DEFAULT 0,
			fees DOUBLE PRECISION NOT NULL DEFAULT 0,
			bucket_date DATE NOT NULL
		)
	`)
	if err != nil {
		return err
	}
	_, _ = r.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_pnl_tenant_date ON pnl_buckets(tenant_id, bucket_date DESC)`)
	_, _ = r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS inventory (
			tenant_id TEXT NOT NULL,
			venue_id TEXT NOT NULL,
			asset TEXT NOT NULL,
			total DOUBLE PRECISION NOT NULL DEFAULT 0,
			available DOUBLE PRECISION NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (tenant_id, venue_id, asset)
		)
	`)
	return nil
}
