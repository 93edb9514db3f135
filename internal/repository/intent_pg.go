package repository

import (
	"context"
	"encoding/json"

	"github.com/arbdesk/arbgate/internal/model"
	"github.com/jmoiron/sqlx"
)

// PostgresIntentRepo persists multi-leg trade intents. The unique
// constraint on (tenant_id, idempotency_key) does the serialization work:
// concurrent duplicates race at the insert and exactly one wins.
type PostgresIntentRepo struct {
	db *sqlx.DB
}

func NewPostgresIntentRepo(db *sqlx.DB) *PostgresIntentRepo {
	repo := &PostgresIntentRepo{db: db}
	_ = repo.ensureSchema(context.Background())
	return repo
}

// InsertIfAbsent inserts the intent unless one already exists for the same
// (tenant, idempotency key). It reports whether a row was created and, when
// it was not, the winner's intent id. Driver error codes are never
// inspected; absence is detected through ON CONFLICT DO NOTHING.
func (r *PostgresIntentRepo) InsertIfAbsent(ctx context.Context, intent *model.MultiLegIntent) (bool, string, error) {
	legsJSON, err := json.Marshal(intent.Legs)
	if err != nil {
		return false, "", err
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO trade_intents (intent_id, tenant_id, idempotency_key, legs, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tenant_id, idempotency_key) DO NOTHING
	`, intent.IntentID, intent.TenantID, intent.IdempotencyKey, legsJSON, intent.Status, intent.CreatedAt)
	if err != nil {
		return false, "", err
	}
	if rows, _ := result.RowsAffected(); rows > 0 {
		return true, intent.IntentID, nil
	}

	var existingID string
	err = r.db.QueryRowxContext(ctx, `
		SELECT intent_id FROM trade_intents
		WHERE tenant_id = $1 AND idempotency_key = $2
	`, intent.TenantID, intent.IdempotencyKey).Scan(&existingID)
	if err != nil {
		return false, "", err
	}
	return false, existingID, nil
}

func (r *PostgresIntentRepo) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS trade_intents (
			intent_id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			idempotency_key TEXT NOT NULL,
			legs JSONB NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			UNIQUE (tenant_id, idempotency_key)
		)
	`)
	if err != nil {
		return err
	}
	_, _ = r.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_intents_tenant ON trade_intents(tenant_id, created_at DESC)`)
	return nil
}
