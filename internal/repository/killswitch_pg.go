package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/arbdesk/arbgate/internal/model"
	"github.com/jmoiron/sqlx"
)

// PostgresKillSwitchRepo reads the safety interlock flags. This core never
// writes them; an administrative surface does.
type PostgresKillSwitchRepo struct {
	db *sqlx.DB
}

func NewPostgresKillSwitchRepo(db *sqlx.DB) *PostgresKillSwitchRepo {
	repo := &PostgresKillSwitchRepo{db: db}
	_ = repo.ensureSchema(context.Background())
	return repo
}

// Get returns the switch for a scope ("global" or a tenant id). A missing
// row means the switch is inactive.
func (r *PostgresKillSwitchRepo) Get(ctx context.Context, scope string) (model.KillSwitchConfig, error) {
	var row struct {
		Active bool           `db:"active"`
		Reason sql.NullString `db:"reason"`
	}
	err := r.db.GetContext(ctx, &row, `SELECT active, reason FROM kill_switches WHERE scope = $1 LIMIT 1`, scope)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.KillSwitchConfig{}, nil
		}
		return model.KillSwitchConfig{}, err
	}
	return model.KillSwitchConfig{Active: row.Active, Reason: row.Reason.String}, nil
}

func (r *PostgresKillSwitchRepo) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kill_switches (
			scope TEXT PRIMARY KEY,
			active BOOLEAN NOT NULL DEFAULT false,
			reason TEXT,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}
