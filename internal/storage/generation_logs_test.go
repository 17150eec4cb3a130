package storage

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

var insertColumns = []string{
	"id", "created_at", "caller", "minutes", "target", "equipment", "notes",
	"provider", "model", "outcome", "workout_id", "workout_title", "violation_codes",
	"repaired_paths", "error_detail", "duration_ms",
}

// TestMigrationMatchesColumns verifies the up migration creates every column
// RecordGeneration writes and QueryGenerations reads.
func TestMigrationMatchesColumns(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("..", "..", "migrations", "*_generation_logs.up.sql"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("finding migration: %v (%d matches)", err, len(matches))
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	sql := string(data)
	for _, col := range insertColumns {
		re := regexp.MustCompile(`(?m)^\s+` + col + `\s+`)
		if !re.MatchString(sql) {
			t.Errorf("migration has no column %q", col)
		}
	}
}

// TestMigrationHasDown verifies every up migration has a matching down file.
func TestMigrationHasDown(t *testing.T) {
	ups, err := filepath.Glob(filepath.Join("..", "..", "migrations", "*.up.sql"))
	if err != nil {
		t.Fatal(err)
	}
	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		if _, err := os.Stat(down); err != nil {
			t.Errorf("missing down migration for %s", filepath.Base(up))
		}
	}
}

// TestNonNil verifies nil slices become empty arrays for TEXT[] columns.
func TestNonNil(t *testing.T) {
	if got := nonNil(nil); got == nil || len(got) != 0 {
		t.Errorf("nonNil(nil) = %#v, want empty slice", got)
	}
	in := []string{"a"}
	if got := nonNil(in); len(got) != 1 || got[0] != "a" {
		t.Errorf("nonNil(%v) = %v", in, got)
	}
}
