package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"swapiloader/internal/logger"
	"swapiloader/internal/people"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, reset, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	loadEnvFiles()

	log, err := logger.New(os.Getenv("LOG_LEVEL"), "")
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runCommand(ctx, *command, *name, os.Stdout, log); err != nil {
		log.Error("Migration command failed", zap.String("command", *command), zap.Error(err))
		stop()
		os.Exit(1)
	}
}

func runCommand(ctx context.Context, command, name string, out io.Writer, log *zap.Logger) error {
	if command == "create" {
		if name == "" {
			return fmt.Errorf("name is required for 'create' command")
		}
		goose.SetSequential(true)
		if err := goose.Create(nil, migrationsDir(), name, "sql"); err != nil {
			return fmt.Errorf("create migration: %w", err)
		}
		log.Info("Migration created", zap.String("name", name), zap.String("dir", migrationsDir()))
		return nil
	}

	switch command {
	case "up", "down", "reset", "status":
	default:
		return fmt.Errorf("unknown command: %s. Use: up, down, reset, status, create", command)
	}

	pool, err := pgxpool.New(ctx, databaseDSN())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	schema, err := people.NewSchema(pool)
	if err != nil {
		return err
	}
	defer schema.Close()

	switch command {
	case "up":
		results, err := schema.Up(ctx)
		if err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		log.Info("Migrations applied", zap.Int("applied", len(results)))
	case "down":
		if _, err := schema.Down(ctx); err != nil {
			return fmt.Errorf("roll back migration: %w", err)
		}
		log.Info("Migration rolled back")
	case "reset":
		if err := schema.Reset(ctx); err != nil {
			return err
		}
		log.Info("Schema reset")
	case "status":
		statuses, err := schema.Status(ctx)
		if err != nil {
			return fmt.Errorf("check migration status: %w", err)
		}
		printStatus(out, statuses)
	}
	return nil
}

func printStatus(out io.Writer, statuses []*goose.MigrationStatus) {
	for _, st := range statuses {
		applied := "pending"
		if st.State == goose.StateApplied {
			applied = st.AppliedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(out, "%05d  %-40s %s\n", st.Source.Version, st.Source.Path, applied)
	}
}
