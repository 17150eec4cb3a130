package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/claude/wodgen/internal/generator"
	"github.com/claude/wodgen/internal/history"
	"github.com/claude/wodgen/internal/models"
	"github.com/claude/wodgen/internal/pipeline"
)

const cliCaller = "cli"

var genFlags struct {
	minutes   int
	target    string
	equipment string
	notes     string
	out       string
	noHistory bool
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one validated workout",
	Long: `Sends the request to the model, repairs duration shorthand in the answer,
validates it, and prints the workout as JSON.

Example:
  wodctl generate --minutes 30 --target "posterior chain" --equipment "barbell, box"`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.IntVarP(&genFlags.minutes, "minutes", "m", 0, fmt.Sprintf("session length in minutes (%d-%d)", generator.MinMinutes, generator.MaxMinutes))
	f.StringVarP(&genFlags.target, "target", "t", "", "training focus")
	f.StringVarP(&genFlags.equipment, "equipment", "e", "none", "available equipment")
	f.StringVarP(&genFlags.notes, "notes", "n", "", "extra constraints")
	f.StringVarP(&genFlags.out, "out", "o", "", "write the workout to this file instead of stdout")
	f.BoolVar(&genFlags.noHistory, "no-history", false, "do not record the run in the local history")
	_ = generateCmd.MarkFlagRequired("minutes")
	_ = generateCmd.MarkFlagRequired("target")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	ctx = pipeline.WithCaller(ctx, cliCaller)

	params := generator.Params{
		Minutes:   genFlags.minutes,
		Target:    genFlags.target,
		Equipment: genFlags.equipment,
	}
	if genFlags.notes != "" {
		params.Notes = &genFlags.notes
	}

	var hist *history.DB
	if !genFlags.noHistory {
		h, err := openHistory()
		if err != nil {
			log.Warn("history disabled", "error", err)
		} else {
			hist = h
			defer hist.Close()
		}
	}

	var (
		w   *models.Workout
		err error
	)
	if remote() {
		w, err = generateRemote(ctx, params, hist)
	} else {
		var rec pipeline.Recorder
		if hist != nil {
			rec = hist
		}
		p, perr := newPipeline(ctx, rec)
		if perr != nil {
			return perr
		}
		w, err = p.Run(ctx, params)
	}
	if err != nil {
		return describe(err)
	}

	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding workout: %w", err)
	}
	data = append(data, '\n')

	if genFlags.out != "" {
		if err := os.WriteFile(genFlags.out, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", genFlags.out, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %q to %s\n", w.Title, genFlags.out)
		return nil
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// generateRemote runs on the server and records the outcome locally, since
// no local pipeline is involved.
func generateRemote(ctx context.Context, params generator.Params, hist *history.DB) (*models.Workout, error) {
	c := newClient()
	start := time.Now()
	w, err := c.Run(ctx, params)

	if hist != nil {
		rec := models.GenerationRecord{
			ID:         uuid.New(),
			CreatedAt:  start.UTC(),
			Caller:     cliCaller,
			Minutes:    params.Minutes,
			Target:     params.Target,
			Equipment:  params.Equipment,
			Notes:      params.Notes,
			Provider:   "remote",
			Model:      c.BaseURL(),
			DurationMs: int(time.Since(start).Milliseconds()),
		}
		pipeline.FillOutcome(&rec, w, err)
		if herr := hist.RecordGeneration(context.WithoutCancel(ctx), rec); herr != nil {
			log.Warn("recording history failed", "error", herr)
		}
	}
	return w, err
}

// describe turns a pipeline error into a message for the terminal.
func describe(err error) error {
	var (
		ue *pipeline.UpstreamError
		me *pipeline.MalformedOutputError
		se *pipeline.SchemaViolationError
	)
	switch {
	case errors.Is(err, pipeline.ErrInvalidParams):
		return err
	case errors.As(err, &ue):
		return fmt.Errorf("upstream model error: %s", ue.Detail)
	case errors.As(err, &me):
		return errors.New("model did not return valid JSON (rerun with -v to log the raw text)")
	case errors.As(err, &se):
		return fmt.Errorf("model output failed validation\n%s", se.Violations.Error())
	default:
		return err
	}
}
