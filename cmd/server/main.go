// Package main runs the lmsgate REST gateway.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/lmsgate/internal/config"
	"github.com/phrazzld/lmsgate/internal/platform/logger"
	"github.com/phrazzld/lmsgate/internal/platform/postgres"
)

func main() {
	migrate := flag.String("migrate", "",
		fmt.Sprintf("run a schema migration command %v and exit", postgres.MigrationCommands))
	configFile := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configFile, *migrate); err != nil {
		fmt.Fprintf(os.Stderr, "lmsgate: %v\n", err)
		os.Exit(1)
	}
}

// run loads configuration, connects to the database and either runs a
// migration command or serves until ctx is canceled.
func run(ctx context.Context, configFile, migrate string) error {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, sink, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	defer func() { _ = sink.Close() }()
	slog.SetDefault(log)

	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"metrics_port", cfg.Server.MetricsPort,
		"forbidden_status", cfg.Auth.ForbiddenStatus)

	db, err := setupAppDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database connection", "error", err)
		}
	}()

	if migrate != "" {
		return postgres.Migrate(ctx, db, migrate, log)
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}
