// internal/store/postgres/schema.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS organizations (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		contact_email TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id              TEXT PRIMARY KEY,
		title           TEXT NOT NULL,
		organization_id TEXT NOT NULL REFERENCES organizations(id)
	)`,
	`CREATE TABLE IF NOT EXISTS candidates (
		id           TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		email        TEXT NOT NULL DEFAULT '',
		about        TEXT NOT NULL DEFAULT '',
		phone        TEXT NOT NULL DEFAULT '',
		location     TEXT NOT NULL DEFAULT '',
		title        TEXT NOT NULL DEFAULT '',
		skills       TEXT[] NOT NULL DEFAULT '{}',
		languages    TEXT[] NOT NULL DEFAULT '{}',
		experiences  TEXT[] NOT NULL DEFAULT '{}',
		educations   TEXT[] NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS applications (
		id              TEXT PRIMARY KEY,
		job_id          TEXT NOT NULL,
		candidate_id    TEXT NOT NULL,
		organization_id TEXT NOT NULL,
		status          TEXT NOT NULL CHECK (status IN ('pending','in_review','accepted','rejected','approved')),
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL,
		reject_reason   TEXT,
		reject_date     TIMESTAMPTZ,
		accept_date     TEXT,
		accept_time     TEXT,
		accept_details  TEXT,
		accepted_at     TIMESTAMPTZ,
		approved_at     TIMESTAMPTZ,
		cover_letter    TEXT,
		resume_ref      TEXT,
		UNIQUE (candidate_id, job_id)
	)`,
	`CREATE INDEX IF NOT EXISTS applications_candidate_idx ON applications (candidate_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS applications_organization_idx ON applications (organization_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id                     TEXT PRIMARY KEY,
		recipient_kind         TEXT NOT NULL,
		recipient_id           TEXT NOT NULL,
		title                  TEXT NOT NULL,
		body                   TEXT NOT NULL,
		kind                   TEXT NOT NULL,
		related_application_id TEXT,
		created_at             TIMESTAMPTZ NOT NULL,
		read_at                TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS notifications_recipient_idx ON notifications (recipient_kind, recipient_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS badges (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		trigger_kind TEXT NOT NULL,
		threshold    INTEGER NOT NULL,
		active       BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS user_badges (
		user_id   TEXT NOT NULL,
		badge_id  TEXT NOT NULL REFERENCES badges(id),
		earned_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, badge_id)
	)`,
	`CREATE TABLE IF NOT EXISTS outbox (
		id             TEXT PRIMARY KEY,
		kind           TEXT NOT NULL,
		application_id TEXT NOT NULL,
		payload        JSONB NOT NULL DEFAULT '{}',
		status         TEXT NOT NULL DEFAULT 'pending',
		attempts       INTEGER NOT NULL DEFAULT 0,
		available_at   TIMESTAMPTZ NOT NULL,
		last_error     TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS outbox_due_idx ON outbox (status, available_at) WHERE status = 'pending'`,
}

// defaultBadges are seeded on migration; existing rows are left alone.
var defaultBadges = []struct {
	id, name, trigger string
	threshold         int
}{
	{"first-application", "First Application", "applicationCount", 1},
	{"five-applications", "Persistent Applicant", "applicationCount", 5},
	{"ten-applications", "Job Hunter", "applicationCount", 10},
	{"profile-half", "Getting Started", "profileCompletion", 50},
	{"profile-complete", "All Set", "profileCompletion", 100},
}

// Migrate creates the tables if missing and seeds the default badges.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}
	for _, b := range defaultBadges {
		if _, err := db.ExecContext(ctx, `
			INSERT INTO badges (id, name, trigger_kind, threshold, active)
			VALUES ($1, $2, $3, $4, TRUE)
			ON CONFLICT (id) DO NOTHING`,
			b.id, b.name, b.trigger, b.threshold,
		); err != nil {
			return fmt.Errorf("seed badge %s: %w", b.id, err)
		}
	}
	return nil
}
