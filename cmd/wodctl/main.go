package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/claude/wodgen/internal/client"
	"github.com/claude/wodgen/internal/config"
	"github.com/claude/wodgen/internal/generator"
	"github.com/claude/wodgen/internal/history"
	"github.com/claude/wodgen/internal/pipeline"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	// Global flags
	configPath string
	serverURL  string
	apiKey     string
	historyDir string
	verbose    bool
	timeout    time.Duration

	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "wodctl",
	Short: "Generate and check structured workouts",
	Long: `wodctl asks a language model for a workout and only prints it once the
output has been repaired and validated against the workout schema.

Generation runs locally with the configured provider, or on a wodgen server
when --server is set.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		// stdout carries workouts and the MCP stdio protocol.
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (env vars and .env are read either way)")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "wodgen server URL for remote mode (e.g. https://wodgen.tail1234.ts.net)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", os.Getenv("WODGEN_AUTH_API_KEY"), "server API key (or set WODGEN_AUTH_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&historyDir, "history-dir", defaultHistoryDir(), "directory holding the local history database")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout for one generation")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func defaultHistoryDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wodctl"
	}
	return filepath.Join(home, ".wodctl")
}

func remote() bool { return serverURL != "" }

func newClient() *client.HTTPClient {
	return client.New(serverURL, apiKey)
}

// newPipeline builds a local pipeline from config, recording into rec when
// it is non-nil.
func newPipeline(ctx context.Context, rec pipeline.Recorder) (*pipeline.Pipeline, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	gen, err := generator.New(ctx, cfg.Generator)
	if err != nil {
		return nil, err
	}
	var opts []pipeline.Option
	if rec != nil {
		opts = append(opts, pipeline.WithRecorder(rec))
	}
	return pipeline.New(gen, log, opts...), nil
}

func openHistory() (*history.DB, error) {
	return history.Open(historyDir)
}
