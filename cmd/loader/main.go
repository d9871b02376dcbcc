package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"swapiloader/internal/cache"
	"swapiloader/internal/config"
	"swapiloader/internal/ingest"
	"swapiloader/internal/logger"
	"swapiloader/internal/metrics"
	"swapiloader/internal/people"
	"swapiloader/internal/platform/swapi"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "swapi-loader:", err)
		os.Exit(1)
	}
}

type loaderApp struct {
	cfg *config.Config
	log *zap.Logger
}

func newApp() *cli.App {
	a := &loaderApp{}
	return &cli.App{
		Name:  "swapi-loader",
		Usage: "Load the SWAPI people catalog into PostgreSQL",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Override LOG_LEVEL (debug, info, warn, error)",
			},
		},
		Before: a.setup,
		After:  a.teardown,
		Action: a.run,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Reset the people table and load the whole catalog",
				Action: a.run,
			},
			{
				Name:   "reset",
				Usage:  "Drop and recreate the people table",
				Action: a.reset,
			},
			{
				Name:   "count",
				Usage:  "Print the number of people in the catalog and in the store",
				Action: a.count,
			},
		},
	}
}

func (a *loaderApp) setup(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.cfg = cfg
	a.log = log
	return nil
}

func (a *loaderApp) teardown(c *cli.Context) error {
	if a.log != nil {
		_ = a.log.Sync()
	}
	return nil
}

func (a *loaderApp) run(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := openDB(ctx, a.cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer pool.Close()
	a.log.Info("Database connection OK", zap.String("dsn", redactDSN(a.cfg.DatabaseDSN)))

	// Leave refCache a nil interface when caching is off.
	var refCache ingest.ReferenceCache
	if a.cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, a.cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		refCache = cache.NewReferenceCache(rdb, a.cfg.CacheTTL)
		a.log.Info("Reference cache enabled", zap.Duration("ttl", a.cfg.CacheTTL))
	}

	client := swapi.NewClient(a.cfg.SwapiBaseURL, a.cfg.UserAgent, a.cfg.HTTPTimeout)
	svc := ingest.NewService(client, people.NewPostgresRepo(pool), refCache, ingest.Config{ChunkSize: a.cfg.ChunkSize}, a.log)

	run, runErr := svc.Run(ctx)

	if a.cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := metrics.Push(pushCtx, a.cfg.PushgatewayURL, run.ID, nil); err != nil {
			a.log.Warn("Metrics push failed", zap.Error(err))
		}
	}

	if runErr != nil {
		return fmt.Errorf("run %s: %w", run.ID, runErr)
	}
	fmt.Fprintf(c.App.Writer, "loaded %d of %d people (%d not found)\n", run.Committed, run.Total, run.NotFound)
	return nil
}

func (a *loaderApp) reset(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := openDB(ctx, a.cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := people.NewPostgresRepo(pool).ResetSchema(ctx); err != nil {
		return err
	}
	a.log.Info("People table reset")
	return nil
}

func (a *loaderApp) count(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := swapi.NewClient(a.cfg.SwapiBaseURL, a.cfg.UserAgent, a.cfg.HTTPTimeout)
	total, err := client.PeopleCount(ctx)
	if err != nil {
		return err
	}

	pool, err := openDB(ctx, a.cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	stored, err := people.NewPostgresRepo(pool).Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "catalog: %d\nstored: %d\n", total, stored)
	return nil
}

func openDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database (%s): %w", redactDSN(dsn), err)
	}
	return pool, nil
}

func openRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
