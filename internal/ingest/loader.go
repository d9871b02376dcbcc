package ingest

import (
	"context"
	"fmt"

	"swapiloader/internal/people"
	"swapiloader/internal/platform/swapi"

	"go.uber.org/zap"
)

// Loader persists one chunk of items. Each Load call owns its own store
// session and HTTP session.
type Loader struct {
	repo        people.Repository
	client      *swapi.Client
	transformer *Transformer
	logger      *zap.Logger
}

func NewLoader(repo people.Repository, client *swapi.Client, transformer *Transformer, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		repo:        repo,
		client:      client,
		transformer: transformer,
		logger:      logger,
	}
}

// Load transforms and commits items in order, one commit per record. The
// first not-found item ends the chunk; items after it are skipped. It returns
// the number of records committed, also when it fails part way.
func (l *Loader) Load(ctx context.Context, chunk []Item) (int, error) {
	store, err := l.repo.OpenSession(ctx)
	if err != nil {
		return 0, fmt.Errorf("open store session: %w", err)
	}
	defer store.Close()

	sess := l.client.NewSession()
	defer sess.Close()

	committed := 0
	for i, item := range chunk {
		if item.NotFound() {
			l.logger.Debug("Person not found, skipping rest of chunk",
				zap.Int("person_id", item.ID),
				zap.Int("skipped", len(chunk)-i-1),
			)
			break
		}

		rec, err := l.transformer.Transform(ctx, sess, item)
		if err != nil {
			return committed, fmt.Errorf("transform person %d: %w", item.ID, err)
		}

		store.Add(rec)
		if err := store.Commit(ctx); err != nil {
			return committed, fmt.Errorf("commit person %d: %w", item.ID, err)
		}
		committed++
		peopleCommitted.Inc()
	}
	return committed, nil
}
