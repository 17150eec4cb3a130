package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"

	"github.com/claude/wodgen/internal/config"
	"github.com/claude/wodgen/internal/generator"
	wodmcp "github.com/claude/wodgen/internal/mcp"
	"github.com/claude/wodgen/internal/pipeline"
	"github.com/claude/wodgen/internal/server"
	"github.com/claude/wodgen/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional, env vars are enough)")
	migrationsPath := flag.String("migrations", "migrations", "path to migrations directory")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("wodgen starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))

	ctx := context.Background()
	var opts []pipeline.Option
	var logs server.GenerationLog

	// Audit log (optional)
	if cfg.Database.Enabled() {
		if _, err := storage.RunMigrations(cfg.Database, *migrationsPath, log); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}

		if *migrateOnly {
			log.Info("migrate-only: exiting")
			return
		}

		db, err := storage.New(ctx, cfg.Database)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		log.Info("database connected")

		opts = append(opts, pipeline.WithRecorder(db))
		logs = db
	} else if *migrateOnly {
		log.Error("migrate-only requires a database section in the config")
		os.Exit(1)
	} else {
		log.Info("no database configured, generation audit log disabled")
	}

	// Generator and pipeline
	gen, err := generator.New(ctx, cfg.Generator)
	if err != nil {
		log.Error("failed to create generator", "error", err)
		os.Exit(1)
	}
	info := generator.Describe(gen)
	log.Info("generator ready", "provider", info.Provider, "model", info.Model)

	pipe := pipeline.New(gen, log, opts...)

	// Create server
	srv := server.New(pipe, logs, cfg.Auth.APIKey, log)
	srv.SetMCP(mcpserver.NewStreamableHTTPServer(wodmcp.New(pipe, Version, log)))

	// Start server — tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
