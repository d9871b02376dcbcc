package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"swapiloader/internal/cache"
	"swapiloader/internal/platform/swapi"

	conciter "github.com/sourcegraph/conc/iter"
	"go.uber.org/zap"
)

// ReferenceCache is satisfied by *cache.ReferenceCache.
type ReferenceCache interface {
	Get(ctx context.Context, url, field string) (string, error)
	Set(ctx context.Context, url, field, value string) error
}

// Resolver follows reference URLs and extracts one display field from each.
type Resolver struct {
	cache  ReferenceCache
	logger *zap.Logger
}

// NewResolver returns a resolver. refCache may be nil.
func NewResolver(refCache ReferenceCache, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{cache: refCache, logger: logger}
}

// Resolve fetches every url concurrently and joins the extracted values with
// ", " in input order. Empty urls are ignored; no urls resolve to "".
func (r *Resolver) Resolve(ctx context.Context, sess *swapi.Session, urls []string, field string) (string, error) {
	targets := make([]string, 0, len(urls))
	for _, u := range urls {
		if u != "" {
			targets = append(targets, u)
		}
	}
	if len(targets) == 0 {
		return "", nil
	}

	mapper := conciter.Mapper[string, string]{MaxGoroutines: len(targets)}
	values, err := mapper.MapErr(targets, func(u *string) (string, error) {
		return r.resolveOne(ctx, sess, *u, field)
	})
	if err != nil {
		return "", err
	}
	return strings.Join(values, ", "), nil
}

func (r *Resolver) resolveOne(ctx context.Context, sess *swapi.Session, url, field string) (string, error) {
	if r.cache != nil {
		v, err := r.cache.Get(ctx, url, field)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			r.logger.Warn("Reference cache get failed", zap.String("url", url), zap.Error(err))
		}
	}

	v, err := sess.GetField(ctx, url, field)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", url, err)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, url, field, v); err != nil {
			r.logger.Warn("Reference cache set failed", zap.String("url", url), zap.Error(err))
		}
	}
	return v, nil
}
