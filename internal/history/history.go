// Package history keeps a local SQLite log of workouts generated from the
// command line.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/claude/wodgen/internal/models"
)

// FileName is the database file created inside the history directory.
const FileName = "history.db"

// DB records generation runs in dir/history.db.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the history database at dir/history.db.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, FileName))
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS generations (
		id              TEXT PRIMARY KEY,
		created_at      TIMESTAMP NOT NULL,
		caller          TEXT NOT NULL,
		minutes         INTEGER NOT NULL,
		target          TEXT NOT NULL,
		equipment       TEXT NOT NULL,
		notes           TEXT,
		provider        TEXT NOT NULL,
		model           TEXT NOT NULL,
		outcome         TEXT NOT NULL,
		workout_id      TEXT,
		workout_title   TEXT,
		violation_codes TEXT NOT NULL,
		repaired_paths  TEXT NOT NULL,
		error_detail    TEXT,
		duration_ms     INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history table: %w", err)
	}

	return &DB{db: db}, nil
}

// RecordGeneration stores one run. Records with an existing id are replaced.
func (h *DB) RecordGeneration(ctx context.Context, rec models.GenerationRecord) error {
	codes, err := json.Marshal(nonNil(rec.ViolationCodes))
	if err != nil {
		return fmt.Errorf("encoding violation codes: %w", err)
	}
	paths, err := json.Marshal(nonNil(rec.RepairedPaths))
	if err != nil {
		return fmt.Errorf("encoding repaired paths: %w", err)
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err = h.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO generations (id, created_at, caller, minutes, target, equipment,
		 notes, provider, model, outcome, workout_id, workout_title, violation_codes,
		 repaired_paths, error_detail, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.CreatedAt.UTC(), rec.Caller, rec.Minutes, rec.Target, rec.Equipment,
		rec.Notes, rec.Provider, rec.Model, rec.Outcome, rec.WorkoutID, rec.WorkoutTitle,
		string(codes), string(paths), rec.ErrorDetail, rec.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("inserting history record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (h *DB) Recent(ctx context.Context, limit int) ([]models.GenerationRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, created_at, caller, minutes, target, equipment, notes, provider, model,
		 outcome, workout_id, workout_title, violation_codes, repaired_paths, error_detail, duration_ms
		 FROM generations
		 ORDER BY created_at DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var result []models.GenerationRecord
	for rows.Next() {
		var (
			r            models.GenerationRecord
			id           string
			codes, paths string
		)
		if err := rows.Scan(&id, &r.CreatedAt, &r.Caller, &r.Minutes, &r.Target, &r.Equipment,
			&r.Notes, &r.Provider, &r.Model, &r.Outcome, &r.WorkoutID, &r.WorkoutTitle,
			&codes, &paths, &r.ErrorDetail, &r.DurationMs); err != nil {
			return nil, fmt.Errorf("scanning history record: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing history id %q: %w", id, err)
		}
		if err := json.Unmarshal([]byte(codes), &r.ViolationCodes); err != nil {
			return nil, fmt.Errorf("decoding violation codes: %w", err)
		}
		if err := json.Unmarshal([]byte(paths), &r.RepairedPaths); err != nil {
			return nil, fmt.Errorf("decoding repaired paths: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// Close closes the history database.
func (h *DB) Close() error {
	return h.db.Close()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
