// Package main is the entrypoint for the reportgen CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kiranshivaraju/reportgen/internal/cmdexec"
	"github.com/kiranshivaraju/reportgen/internal/config"
)

func main() {
	// stdout carries only the created-file lines.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(os.Args[1:]); err != nil {
		slog.Error("report failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Debug("config loaded", "backend", cfg.Warehouse.Backend, "rasterizer", cfg.Render.Rasterizer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(cfg, cmdexec.ExecRunner{})
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
