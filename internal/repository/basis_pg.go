package repository

import (
	"context"

	"github.com/arbdesk/arbgate/internal/model"
	"github.com/jmoiron/sqlx"
)

// PostgresBasisRepo reads basis snapshots and funding rates. The funding
// enrichment is batched: one query over the instrument-id set returns the
// latest rate per instrument instead of an N+1 lookup per basis row.
type PostgresBasisRepo struct {
	db *sqlx.DB
}

func NewPostgresBasisRepo(db *sqlx.DB) *PostgresBasisRepo {
	repo := &PostgresBasisRepo{db: db}
	_ = repo.ensureSchema(context.Background())
	return repo
}

func (r *PostgresBasisRepo) ListBasis(ctx context.Context, tenantID string, minBasisBps float64, limit int) ([]model.BasisOpportunity, error) {
	rows := make([]model.BasisOpportunity, 0, limit)
	err := r.db.SelectContext(ctx, &rows, `
		SELECT b.id, b.instrument_id, i.symbol,
		       b.spot_venue_id, b.deriv_venue_id,
		       spv.name AS spot_venue, dv.name AS deriv_venue,
		       b.basis_bps, b.basis_z,
		       b.spot_bid, b.spot_ask, b.perp_bid, b.perp_ask, b.ts
		FROM basis_snapshots b
		JOIN instruments i ON i.id = b.instrument_id
		JOIN venues spv ON spv.id = b.spot_venue_id
		JOIN venues dv ON dv.id = b.deriv_venue_id
		WHERE b.tenant_id = $1 AND b.basis_bps >= $2
		ORDER BY b.basis_bps DESC
		LIMIT $3
	`, tenantID, minBasisBps, limit)
	return rows, err
}

// LatestRates returns the most recent funding rate per instrument id.
func (r *PostgresBasisRepo) LatestRates(ctx context.Context, tenantID string, instrumentIDs []string) (map[string]model.FundingRate, error) {
	out := make(map[string]model.FundingRate, len(instrumentIDs))
	if len(instrumentIDs) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`
		SELECT DISTINCT ON (instrument_id) instrument_id, rate, funding_time
		FROM funding_rates
		WHERE tenant_id = ? AND instrument_id IN (?)
		ORDER BY instrument_id, funding_time DESC
	`, tenantID, instrumentIDs)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	rates := []model.FundingRate{}
	if err := r.db.SelectContext(ctx, &rates, query, args...); err != nil {
		return nil, err
	}
	for _, fr := range rates {
		out[fr.InstrumentID] = fr
	}
	return out, nil
}

func (r *PostgresBasisRepo) History(ctx context.Context, tenantID, instrumentID string, limit int) ([]model.FundingRate, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows := []model.FundingRate{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT instrument_id, rate, funding_time
		FROM funding_rates
		WHERE tenant_id = $1 AND instrument_id = $2
		ORDER BY funding_time DESC
		LIMIT $3
	`, tenantID, instrumentID, limit)
	return rows, err
}

func (r *PostgresBasisRepo) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS basis_snapshots (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			instrument_id TEXT NOT NULL,
			spot_venue_id TEXT NOT NULL,
			deriv_venue_id TEXT NOT NULL,
			basis_bps DOUBLE PRECISION NOT NULL DEFAULT 0,
			basis_z DOUBLE PRECISION NOT NULL DEFAULT 0,
			spot_bid DOUBLE PRECISION, spot_ask DOUBLE PRECISION,
			perp_bid DOUBLE PRECISION, perp_ask DOUBLE PRECISION,
			ts TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return err
	}
	_, _ = r.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_basis_tenant_bps ON basis_snapshots(tenant_id, basis_bps DESC)`)
	_, _ = r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS funding_rates (
			id BIGSERIAL PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			instrument_id TEXT NOT NULL,
			rate DOUBLE PRECISION NOT NULL,
			funding_time TIMESTAMPTZ NOT NULL
		)
	`)
	_, _ = r.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_funding_tenant_inst ON funding_rates(tenant_id, instrument_id, funding_time DESC)`)
	return nil
}
