package storage

import (
	"context"
	"fmt"

	"github.com/claude/wodgen/internal/models"
)

// RecordGeneration inserts one pipeline run into generation_logs.
func (db *DB) RecordGeneration(ctx context.Context, rec models.GenerationRecord) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO generation_logs (id, created_at, caller, minutes, target, equipment, notes,
		 provider, model, outcome, workout_id, workout_title, violation_codes, repaired_paths,
		 error_detail, duration_ms)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		 ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.CreatedAt, rec.Caller, rec.Minutes, rec.Target, rec.Equipment, rec.Notes,
		rec.Provider, rec.Model, rec.Outcome, rec.WorkoutID, rec.WorkoutTitle,
		nonNil(rec.ViolationCodes), nonNil(rec.RepairedPaths), rec.ErrorDetail, rec.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("inserting generation log: %w", err)
	}
	return nil
}

// QueryGenerations returns the most recent generation records, newest first.
func (db *DB) QueryGenerations(ctx context.Context, limit int) ([]models.GenerationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, created_at, caller, minutes, target, equipment, notes, provider, model,
		 outcome, workout_id, workout_title, violation_codes, repaired_paths, error_detail, duration_ms
		 FROM generation_logs
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("querying generation logs: %w", err)
	}
	defer rows.Close()

	var result []models.GenerationRecord
	for rows.Next() {
		var r models.GenerationRecord
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Caller, &r.Minutes, &r.Target, &r.Equipment,
			&r.Notes, &r.Provider, &r.Model, &r.Outcome, &r.WorkoutID, &r.WorkoutTitle,
			&r.ViolationCodes, &r.RepairedPaths, &r.ErrorDetail, &r.DurationMs); err != nil {
			return nil, fmt.Errorf("scanning generation log: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// OutcomeCounts returns how many runs ended in each outcome since the
// given number of days ago.
func (db *DB) OutcomeCounts(ctx context.Context, days int) (map[string]int, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT outcome, COUNT(*)
		 FROM generation_logs
		 WHERE created_at >= now() - make_interval(days => $1)
		 GROUP BY outcome`,
		days)
	if err != nil {
		return nil, fmt.Errorf("querying outcome counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scanning outcome count: %w", err)
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
