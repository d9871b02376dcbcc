package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"swapiloader/internal/people"
	"swapiloader/internal/platform/swapi"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

type Config struct {
	ChunkSize int
}

type Service struct {
	client  *swapi.Client
	repo    people.Repository
	fetcher *Fetcher
	loader  *Loader
	cfg     Config
	logger  *zap.Logger
}

// NewService wires the pipeline. refCache may be nil.
func NewService(client *swapi.Client, repo people.Repository, refCache ReferenceCache, cfg Config, logger *zap.Logger) *Service {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	transformer := NewTransformer(NewResolver(refCache, logger))
	return &Service{
		client:  client,
		repo:    repo,
		fetcher: NewFetcher(client, cfg.ChunkSize),
		loader:  NewLoader(repo, client, transformer, logger),
		cfg:     cfg,
		logger:  logger,
	}
}

// Run resets the store and loads the whole catalog. Chunks are loaded
// concurrently and independently: a failing chunk does not stop the others,
// and every chunk error is returned once all chunks have finished. The
// returned Run is never nil.
func (s *Service) Run(ctx context.Context) (run *Run, err error) {
	run = &Run{
		ID:        uuid.NewString(),
		Status:    StatusRunning,
		StartedAt: time.Now(),
		ChunkSize: s.cfg.ChunkSize,
	}
	logger := s.logger.With(zap.String("run_id", run.ID))

	defer func() {
		now := time.Now()
		run.FinishedAt = &now
		if err != nil {
			run.Status = StatusFailed
			run.Error = err.Error()
		} else {
			run.Status = StatusCompleted
		}
		runsTotal.WithLabelValues(run.Status).Inc()
		runDuration.Set(now.Sub(run.StartedAt).Seconds())

		logger.Info("Ingest run finished",
			zap.String("status", run.Status),
			zap.Int("total", run.Total),
			zap.Int("fetched", run.Fetched),
			zap.Int("not_found", run.NotFound),
			zap.Int("chunks", run.Chunks),
			zap.Int("chunks_failed", run.ChunksFailed),
			zap.Int("committed", run.Committed),
			zap.Duration("duration", now.Sub(run.StartedAt)),
		)
	}()

	total, err := s.client.PeopleCount(ctx)
	if err != nil {
		return run, err
	}
	run.Total = total
	logger.Info("Starting ingest run", zap.Int("total", total), zap.Int("chunk_size", s.cfg.ChunkSize))

	// Every loader opens its own session, so the reset has to be done first.
	if err := s.repo.ResetSchema(ctx); err != nil {
		return run, fmt.Errorf("reset schema: %w", err)
	}

	var committed, failed atomic.Int64
	tasks := pool.New().WithErrors()

	var fetchErr error
	for chunk, err := range Chunk(s.fetcher.FetchRange(ctx, total), s.cfg.ChunkSize) {
		if err != nil {
			fetchErr = err
			logger.Error("Catalog fetch failed, waiting for dispatched chunks", zap.Error(err))
			break
		}

		run.Chunks++
		for _, item := range chunk {
			if item.NotFound() {
				run.NotFound++
			} else {
				run.Fetched++
			}
		}

		tasks.Go(func() error {
			n, err := s.loader.Load(ctx, chunk)
			committed.Add(int64(n))
			if err != nil {
				failed.Add(1)
				chunksTotal.WithLabelValues("failed").Inc()
				logger.Error("Chunk load failed",
					zap.Int("chunk_first_id", chunk[0].ID),
					zap.Int("committed", n),
					zap.Error(err),
				)
				return err
			}
			chunksTotal.WithLabelValues("loaded").Inc()
			logger.Debug("Chunk loaded", zap.Int("chunk_first_id", chunk[0].ID), zap.Int("committed", n))
			return nil
		})
	}

	loadErr := tasks.Wait()
	run.Committed = int(committed.Load())
	run.ChunksFailed = int(failed.Load())

	return run, errors.Join(fetchErr, loadErr)
}
