package store

import (
	"context"
	"database/sql"
)

// Dates are YYYY-MM-DD text and clock times HH:MM:SS text so the schema is
// identical on Postgres and SQLite and sorts lexically.
const schema = `
CREATE TABLE IF NOT EXISTS subjects (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	name        TEXT NOT NULL,
	exam_date   TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_subjects_user ON subjects(user_id);

CREATE TABLE IF NOT EXISTS study_preferences (
	user_id              TEXT PRIMARY KEY,
	study_days_per_week  INTEGER NOT NULL DEFAULT 0,
	hours_per_day        DOUBLE PRECISION NOT NULL DEFAULT 0,
	start_time           TEXT NOT NULL,
	end_time             TEXT NOT NULL,
	updated_at           TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS exclusions (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	date        TEXT NOT NULL,
	reason      TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_exclusions_user ON exclusions(user_id);

CREATE TABLE IF NOT EXISTS study_sessions (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	subject_id    TEXT NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
	session_date  TEXT NOT NULL,
	start_time    TEXT NOT NULL,
	end_time      TEXT NOT NULL,
	completed     BOOLEAN NOT NULL DEFAULT FALSE,
	created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (user_id, subject_id, session_date, start_time, end_time)
);
CREATE INDEX IF NOT EXISTS idx_study_sessions_user_date ON study_sessions(user_id, session_date);
`

// Migrate creates missing tables and indexes.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
