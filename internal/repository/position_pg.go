package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/arbdesk/arbgate/internal/model"
	"github.com/jmoiron/sqlx"
)

// PostgresPositionRepo reads open basis positions. Lookups are tenant
// scoped at the query level, so a client-supplied id belonging to another
// tenant resolves to ErrNotFound.
type PostgresPositionRepo struct {
	db *sqlx.DB
}

func NewPostgresPositionRepo(db *sqlx.DB) *PostgresPositionRepo {
	repo := &PostgresPositionRepo{db: db}
	_ = repo.ensureSchema(context.Background())
	return repo
}

const positionSelectCols = `p.id, p.tenant_id, p.instrument_id, p.symbol, p.direction,
	p.spot_venue_id, spv.name AS spot_venue,
	p.perp_venue_id, pv.name AS perp_venue,
	p.spot_size, p.perp_size, p.entry_basis_bps, p.status, p.opened_at`

func (r *PostgresPositionRepo) Get(ctx context.Context, tenantID, positionID string) (*model.BasisPosition, error) {
	var p model.BasisPosition
	err := r.db.GetContext(ctx, &p, `
		SELECT `+positionSelectCols+`
		FROM basis_positions p
		JOIN venues spv ON spv.id = p.spot_venue_id
		JOIN venues pv ON pv.id = p.perp_venue_id
		WHERE p.tenant_id = $1 AND p.id = $2
		LIMIT 1
	`, tenantID, positionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PostgresPositionRepo) ListOpen(ctx context.Context, tenantID string) ([]model.BasisPosition, error) {
	rows := []model.BasisPosition{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+positionSelectCols+`
		FROM basis_positions p
		JOIN venues spv ON spv.id = p.spot_venue_id
		JOIN venues pv ON pv.id = p.perp_venue_id
		WHERE p.tenant_id = $1 AND p.status = $2
		ORDER BY p.opened_at DESC
	`, tenantID, model.PositionOpen)
	return rows, err
}

func (r *PostgresPositionRepo) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS basis_positions (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			instrument_id TEXT NOT NULL,
			symbol TEXT NOT NULL,
			direction TEXT NOT NULL,
			spot_venue_id TEXT NOT NULL,
			perp_venue_id TEXT NOT NULL,
			spot_size DOUBLE PRECISION NOT NULL,
			perp_size DOUBLE PRECISION NOT NULL,
			entry_basis_bps DOUBLE PRECISION NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'open',
			opened_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return err
	}
	_, _ = r.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_positions_tenant ON basis_positions(tenant_id, status)`)
	return nil
}
