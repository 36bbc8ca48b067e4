// Package main точка входа административного клиента системы контроля качества.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/qc-admin/internal/app/admin"
	"github.com/magabrotheeeer/qc-admin/internal/config"
)

func main() {
	cfg := config.MustLoad()

	level := slog.LevelInfo
	if cfg.Env == "local" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	logger.Debug("starting qc-admin", slog.String("env", cfg.Env), slog.String("api", cfg.APIBaseURL))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := admin.New(cfg, logger, os.Stdout)

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, admin.ErrUnauthorized) {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
