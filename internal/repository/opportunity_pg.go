package repository

import (
	"context"

	"github.com/arbdesk/arbgate/internal/model"
	"github.com/jmoiron/sqlx"
)

// PostgresOpportunityRepo reads the spread rows maintained by the upstream
// pricing pipeline. Every read is tenant-filtered; ordering is done by the
// store so ties keep whatever order the index returns.
type PostgresOpportunityRepo struct {
	db *sqlx.DB
}

func NewPostgresOpportunityRepo(db *sqlx.DB) *PostgresOpportunityRepo {
	repo := &PostgresOpportunityRepo{db: db}
	_ = repo.ensureSchema(context.Background())
	return repo
}

func (r *PostgresOpportunityRepo) ListSpreads(ctx context.Context, tenantID string, minEdgeBps float64, limit int) ([]model.ArbitrageOpportunity, error) {
	rows := make([]model.ArbitrageOpportunity, 0, limit)
	err := r.db.SelectContext(ctx, &rows, `
		SELECT s.id, s.instrument_id, i.symbol,
		       s.buy_venue_id, s.sell_venue_id,
		       bv.name AS buy_venue, sv.name AS sell_venue,
		       s.executable_spread_bps, s.net_edge_bps,
		       s.liquidity_score, s.latency_score, s.ts
		FROM spread_snapshots s
		JOIN instruments i ON i.id = s.instrument_id
		JOIN venues bv ON bv.id = s.buy_venue_id
		JOIN venues sv ON sv.id = s.sell_venue_id
		WHERE s.tenant_id = $1 AND s.net_edge_bps >= $2
		ORDER BY s.net_edge_bps DESC
		LIMIT $3
	`, tenantID, minEdgeBps, limit)
	return rows, err
}

func (r *PostgresOpportunityRepo) ListQuotes(ctx context.Context, tenantID, instrumentID, venueID string) ([]model.Quote, error) {
	query := `
		SELECT q.instrument_id, q.venue_id, v.name AS venue, i.symbol,
		       q.bid, q.ask, q.bid_size, q.ask_size, q.ts
		FROM quotes q
		JOIN instruments i ON i.id = q.instrument_id
		JOIN venues v ON v.id = q.venue_id
		WHERE q.tenant_id = $1 AND q.instrument_id = $2`
	args := []interface{}{tenantID, instrumentID}
	if venueID != "" {
		query += ` AND q.venue_id = $3`
		args = append(args, venueID)
	}
	query += ` ORDER BY q.ts DESC LIMIT 100`

	rows := []model.Quote{}
	err := r.db.SelectContext(ctx, &rows, query, args...)
	return rows, err
}

func (r *PostgresOpportunityRepo) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS spread_snapshots (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			instrument_id TEXT NOT NULL,
			buy_venue_id TEXT NOT NULL,
			sell_venue_id TEXT NOT NULL,
			executable_spread_bps DOUBLE PRECISION NOT NULL DEFAULT 0,
			net_edge_bps DOUBLE PRECISION NOT NULL DEFAULT 0,
			liquidity_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			latency_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			ts TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return err
	}
	_, _ = r.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_spreads_tenant_edge ON spread_snapshots(tenant_id, net_edge_bps DESC)`)
	_, _ = r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS quotes (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			instrument_id TEXT NOT NULL,
			venue_id TEXT NOT NULL,
			bid DOUBLE PRECISION, ask DOUBLE PRECISION,
			bid_size DOUBLE PRECISION, ask_size DOUBLE PRECISION,
			ts TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	_, _ = r.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_quotes_tenant_inst ON quotes(tenant_id, instrument_id, ts DESC)`)
	_, _ = r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS instruments (
			id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL
		)
	`)
	_, _ = r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS venues (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL
		)
	`)
	return nil
}
