package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"smartdeals/internal/application"
	"smartdeals/internal/config"
	"smartdeals/internal/transport/tui"
	"smartdeals/pkg/contextx"
	"smartdeals/pkg/logx"
)

const logFileMode = 0o600

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run keeps the terminal free for the UI; logs go to LOG_FILE.
func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	logFile, err := os.OpenFile(cfg.App.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, logFileMode)
	if err != nil {
		return fmt.Errorf("os.OpenFile: %w", err)
	}
	defer logFile.Close()

	log := application.NewLogger(logFile, cfg.App.LogLevel, false).With(
		slog.String(logx.FieldAppName, cfg.App.Name),
	)
	slog.SetDefault(log)

	ctx = contextx.WithLogger(ctx, log)

	c, res, err := application.OpenConsole(ctx, cfg, nil)
	if err != nil {
		return fmt.Errorf("application.OpenConsole: %w", err)
	}
	defer res.Close(context.WithoutCancel(ctx))

	app := tui.NewApp(ctx, c)

	go func() {
		<-ctx.Done()
		app.Stop()
	}()

	if err := app.Run(); err != nil {
		return fmt.Errorf("app.Run: %w", err)
	}

	return nil
}
