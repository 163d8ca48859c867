package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		plan_type TEXT NOT NULL DEFAULT '',
		service_type TEXT,
		start_date DATE,
		end_date DATE,
		amount NUMERIC(10,2) NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active',
		renewal_notice_sent BOOLEAN NOT NULL DEFAULT FALSE,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS schedules (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		date TIMESTAMPTZ NOT NULL,
		type TEXT NOT NULL DEFAULT 'general',
		message TEXT NOT NULL DEFAULT '',
		attachment_url TEXT,
		attachment_name TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		attempts INT NOT NULL DEFAULT 0,
		last_error TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_due ON schedules (status, date)`,
	`CREATE TABLE IF NOT EXISTS feedback_schedules (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		client_id TEXT REFERENCES clients(id) ON DELETE CASCADE,
		service_type TEXT,
		frequency_days INT NOT NULL DEFAULT 7,
		next_run_at TIMESTAMPTZ NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		questions JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_feedback_schedules_due ON feedback_schedules (active, next_run_at)`,
	`CREATE TABLE IF NOT EXISTS feedback_questions (
		id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		position INT NOT NULL DEFAULT 0,
		category TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS app_settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL DEFAULT ''
	)`,
}

// Migrate applies the schema. Statements are idempotent so it can run on every
// seeder invocation.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
