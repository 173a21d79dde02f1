package store

import (
	"context"
	"database/sql"
	"fmt"

	"liveattendance/internal/attendance"
)

// Postgres keeps one row per (collection, name).
type Postgres struct{ DB *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{DB: db} }

func (r *Postgres) Migrate(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS attendance_log (
		collection TEXT        NOT NULL,
		name       TEXT        NOT NULL,
		tanggal    TEXT        NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (collection, name)
	)`)
	if err != nil {
		return fmt.Errorf("create attendance_log: %w", err)
	}
	return nil
}

// Write inserts the record or replaces the existing one for the same name.
func (r *Postgres) Write(ctx context.Context, collection, key string, rec attendance.Record) error {
	q := `
	INSERT INTO attendance_log (collection, name, tanggal)
	VALUES ($1, $2, $3)
	ON CONFLICT (collection, name)
	DO UPDATE SET
		tanggal = EXCLUDED.tanggal,
		updated_at = NOW()
	`
	if _, err := r.DB.ExecContext(ctx, q, collection, key, rec.Tanggal); err != nil {
		return fmt.Errorf("upsert attendance_log: %w", err)
	}
	return nil
}

func (r *Postgres) Delete(ctx context.Context, collection, key string) error {
	_, err := r.DB.ExecContext(ctx, `
		DELETE FROM attendance_log
		WHERE collection = $1 AND name = $2
	`, collection, key)
	if err != nil {
		return fmt.Errorf("delete attendance_log: %w", err)
	}
	return nil
}

// Get reads back one record; ok is false when nothing is stored.
func (r *Postgres) Get(ctx context.Context, collection, key string) (rec attendance.Record, ok bool, err error) {
	err = r.DB.QueryRowContext(ctx, `
		SELECT name, tanggal FROM attendance_log
		WHERE collection = $1 AND name = $2
	`, collection, key).Scan(&rec.Name, &rec.Tanggal)
	if err == sql.ErrNoRows {
		return attendance.Record{}, false, nil
	}
	if err != nil {
		return attendance.Record{}, false, err
	}
	return rec, true, nil
}

func (r *Postgres) Close() error { return r.DB.Close() }
