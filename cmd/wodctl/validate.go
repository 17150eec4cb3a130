package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/claude/wodgen/internal/models"
	"github.com/claude/wodgen/internal/pipeline"
)

var validateFix bool

var validateCmd = &cobra.Command{
	Use:   "validate [file...]",
	Short: "Repair and validate workout JSON files",
	Long: `Runs the parse, repair and validate steps on existing documents without
calling a model. Files are checked concurrently; "-" reads stdin.

With --fix, files that pass are rewritten in canonical form.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateFix, "fix", false, "rewrite valid files with repaired durations")
}

type fileResult struct {
	path    string
	workout *models.Workout
	err     error
}

func runValidate(cmd *cobra.Command, args []string) error {
	checker := pipeline.New(nil, log)
	results := make([]fileResult, len(args))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, path := range args {
		g.Go(func() error {
			raw, err := readInput(path)
			if err != nil {
				results[i] = fileResult{path: path, err: err}
				return nil
			}
			w, err := checker.Process(string(raw))
			results[i] = fileResult{path: path, workout: w, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(out, "%s: FAIL\n", r.path)
			var se *pipeline.SchemaViolationError
			if errors.As(r.err, &se) {
				for _, v := range se.Violations {
					fmt.Fprintf(out, "  %s\n", v)
				}
			} else {
				fmt.Fprintf(out, "  %v\n", r.err)
			}
			continue
		}
		fmt.Fprintf(out, "%s: ok (%s, %d block(s))\n", r.path, r.workout.Title, len(r.workout.Blocks))
		if validateFix && r.path != "-" {
			if err := writeWorkout(r.path, r.workout); err != nil {
				return err
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed validation", failed, len(results))
	}
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func writeWorkout(path string, w *models.Workout) error {
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
