package ingest

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"swapiloader/internal/cache"
	"swapiloader/internal/platform/swapi"
	"swapiloader/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
	sets   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (c *fakeCache) Get(ctx context.Context, url, field string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return "", c.getErr
	}
	v, ok := c.values[cache.Key(url, field)]
	if !ok {
		return "", cache.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Set(ctx context.Context, url, field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[cache.Key(url, field)] = value
	c.sets++
	return nil
}

func newSession(t *testing.T, f *testutil.FakeCatalog) *swapi.Session {
	t.Helper()
	s := swapi.NewClient(f.BaseURL(), "test", 5*time.Second).NewSession()
	t.Cleanup(s.Close)
	return s
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFakeCatalog(t)
	f.AddResource("/planets/1/", map[string]any{"name": "Tatooine"})
	f.AddResource("/planets/2/", map[string]any{"name": "Alderaan"})
	f.AddResource("/films/1/", map[string]any{"title": "A New Hope"})
	sess := newSession(t, f)
	r := NewResolver(nil, nil)

	t.Run("joins values in url order", func(t *testing.T) {
		got, err := r.Resolve(ctx, sess, []string{f.URL("/planets/1/"), f.URL("/planets/2/")}, "name")
		require.NoError(t, err)
		assert.Equal(t, "Tatooine, Alderaan", got)

		got, err = r.Resolve(ctx, sess, []string{f.URL("/planets/2/"), f.URL("/planets/1/")}, "name")
		require.NoError(t, err)
		assert.Equal(t, "Alderaan, Tatooine", got)
	})

	t.Run("single url has no separator", func(t *testing.T) {
		got, err := r.Resolve(ctx, sess, []string{f.URL("/planets/1/")}, "name")
		require.NoError(t, err)
		assert.Equal(t, "Tatooine", got)
	})

	t.Run("extracts the requested field", func(t *testing.T) {
		got, err := r.Resolve(ctx, sess, []string{f.URL("/films/1/")}, "title")
		require.NoError(t, err)
		assert.Equal(t, "A New Hope", got)
	})

	t.Run("no urls resolve to empty string", func(t *testing.T) {
		got, err := r.Resolve(ctx, sess, nil, "name")
		require.NoError(t, err)
		assert.Equal(t, "", got)

		got, err = r.Resolve(ctx, sess, []string{""}, "name")
		require.NoError(t, err)
		assert.Equal(t, "", got)
	})

	t.Run("duplicates are kept", func(t *testing.T) {
		got, err := r.Resolve(ctx, sess, []string{f.URL("/planets/1/"), f.URL("/planets/1/")}, "name")
		require.NoError(t, err)
		assert.Equal(t, "Tatooine, Tatooine", got)
	})
}

func TestResolver_Failures(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFakeCatalog(t)
	f.AddResource("/planets/1/", map[string]any{"name": "Tatooine"})
	f.Fail("/planets/9/", http.StatusBadGateway)
	sess := newSession(t, f)
	r := NewResolver(nil, nil)

	t.Run("transport failure", func(t *testing.T) {
		_, err := r.Resolve(ctx, sess, []string{f.URL("/planets/1/"), f.URL("/planets/9/")}, "name")
		var statusErr *swapi.StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	})

	t.Run("missing reference", func(t *testing.T) {
		_, err := r.Resolve(ctx, sess, []string{f.URL("/planets/404/")}, "name")
		assert.ErrorIs(t, err, swapi.ErrNotFound)
	})

	t.Run("missing field", func(t *testing.T) {
		_, err := r.Resolve(ctx, sess, []string{f.URL("/planets/1/")}, "title")
		assert.ErrorIs(t, err, swapi.ErrMissingField)
	})
}

func TestResolver_Cache(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFakeCatalog(t)
	f.AddResource("/planets/1/", map[string]any{"name": "Tatooine"})
	sess := newSession(t, f)

	t.Run("miss populates and hit skips the catalog", func(t *testing.T) {
		c := newFakeCache()
		r := NewResolver(c, nil)

		got, err := r.Resolve(ctx, sess, []string{f.URL("/planets/1/")}, "name")
		require.NoError(t, err)
		assert.Equal(t, "Tatooine", got)
		assert.Equal(t, 1, c.sets)
		assert.Equal(t, 1, f.Hits("/planets/1/"))

		got, err = r.Resolve(ctx, sess, []string{f.URL("/planets/1/")}, "name")
		require.NoError(t, err)
		assert.Equal(t, "Tatooine", got)
		assert.Equal(t, 1, f.Hits("/planets/1/"))
	})

	t.Run("cache errors fall back to the catalog", func(t *testing.T) {
		c := newFakeCache()
		c.getErr = errors.New("connection refused")
		r := NewResolver(c, nil)
		before := f.Hits("/planets/1/")

		got, err := r.Resolve(ctx, sess, []string{f.URL("/planets/1/")}, "name")
		require.NoError(t, err)
		assert.Equal(t, "Tatooine", got)
		assert.Equal(t, before+1, f.Hits("/planets/1/"))
	})
}
