package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/arbdesk/arbgate/internal/model"
	"github.com/jmoiron/sqlx"
)

// PostgresIdentityRepo resolves an authenticated user id to its tenant.
type PostgresIdentityRepo struct {
	db *sqlx.DB
}

func NewPostgresIdentityRepo(db *sqlx.DB) *PostgresIdentityRepo {
	repo := &PostgresIdentityRepo{db: db}
	_ = repo.ensureSchema(context.Background())
	return repo
}

func (r *PostgresIdentityRepo) Resolve(ctx context.Context, userID string) (*model.TenantContext, error) {
	var row struct {
		ID       string         `db:"id"`
		TenantID sql.NullString `db:"tenant_id"`
		Email    sql.NullString `db:"email"`
	}
	err := r.db.GetContext(ctx, &row, `SELECT id, tenant_id, email FROM users WHERE id = $1 LIMIT 1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !row.TenantID.Valid || row.TenantID.String == "" {
		return nil, ErrNotFound
	}
	return &model.TenantContext{
		UserID:   row.ID,
		TenantID: row.TenantID.String,
		Email:    row.Email.String,
	}, nil
}

func (r *PostgresIdentityRepo) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			tenant_id TEXT,
			email TEXT,
			created_at TIMESTAMPTZ DEFAULT now()
		)
	`)
	if err != nil {
		return err
	}
	_, _ = r.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_users_tenant ON users(tenant_id)`)
	return nil
}
