package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
)

const schemaLockKey int64 = 2026101401

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS chat_sessions (
	id BIGSERIAL PRIMARY KEY,
	uuid TEXT NOT NULL UNIQUE,
	session_id TEXT NOT NULL UNIQUE,
	step TEXT NOT NULL,
	is_completed BOOLEAN NOT NULL DEFAULT FALSE,
	looking_for_insurance TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL DEFAULT '',
	salary TEXT NOT NULL DEFAULT '',
	depender_type TEXT NOT NULL DEFAULT '',
	full_name TEXT NOT NULL DEFAULT '',
	emirates_id_number TEXT NOT NULL DEFAULT '',
	dob TEXT NOT NULL DEFAULT '',
	expiry TEXT NOT NULL DEFAULT '',
	nationality TEXT NOT NULL DEFAULT '',
	occupation TEXT NOT NULL DEFAULT '',
	emirates_id_uploaded BOOLEAN NOT NULL DEFAULT FALSE,
	mobile TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS identity_records (
	id BIGSERIAL PRIMARY KEY,
	uuid TEXT NOT NULL UNIQUE,
	session_id TEXT NOT NULL UNIQUE REFERENCES chat_sessions(session_id) ON DELETE CASCADE,
	emirates_id TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL DEFAULT '',
	dob TEXT NOT NULL DEFAULT '',
	issuing_date TEXT NOT NULL DEFAULT '',
	expiry_date TEXT NOT NULL DEFAULT '',
	nationality TEXT NOT NULL DEFAULT '',
	gender TEXT NOT NULL DEFAULT '',
	sex TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	occupation TEXT NOT NULL DEFAULT '',
	employer TEXT NOT NULL DEFAULT '',
	issuing_place TEXT NOT NULL DEFAULT '',
	family_sponsor TEXT NOT NULL DEFAULT '',
	family_sponsor_name TEXT NOT NULL DEFAULT '',
	raw_response JSONB NOT NULL DEFAULT '{}'::jsonb,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS chat_messages (
	id BIGSERIAL PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES chat_sessions(session_id) ON DELETE CASCADE,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages(session_id, id);
CREATE INDEX IF NOT EXISTS idx_identity_records_status ON identity_records(status);
`

// EnsureSchema creates the tables if needed. Concurrent api and worker
// startups are serialized on an advisory lock.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockKey); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}
	if _, err := tx.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func notFoundIfNoRows(res sql.Result, kind error, operation string, key any) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if affected == 0 {
		return fmtNotFound(kind, operation, key)
	}
	return nil
}

func fmtNotFound(kind error, operation string, key any) error {
	return domain.WrapError(kind, operation, fmt.Errorf("no row for %v", key))
}
