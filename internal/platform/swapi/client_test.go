package swapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/people/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/people/":
			_, _ = w.Write([]byte(`{"count": 82, "next": "http://x/people/?page=2", "results": []}`))
		case "/people/1/":
			_, _ = w.Write([]byte(`{
				"name": "Luke Skywalker", "height": "172", "mass": "77",
				"hair_color": "blond", "skin_color": "fair", "eye_color": "blue",
				"birth_year": "19BBY", "gender": "male",
				"homeworld": "http://x/planets/1/",
				"films": ["http://x/films/1/", "http://x/films/2/"],
				"species": [], "starships": ["http://x/starships/12/"], "vehicles": []
			}`))
		case "/people/17/":
			http.NotFound(w, r)
		case "/people/500/":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/planets/1/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name": "Tatooine", "diameter": 10465}`))
	})
	mux.HandleFunc("/broken/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name": `))
	})
	mux.HandleFunc("/agent/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name": "` + r.Header.Get("User-Agent") + `"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_PeopleCount(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL+"/", "test-agent", time.Second)

	count, err := c.PeopleCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 82, count)
}

func TestSession_GetPerson(t *testing.T) {
	srv := newTestServer(t)
	s := NewClient(srv.URL, "test-agent", time.Second).NewSession()
	defer s.Close()
	ctx := context.Background()

	t.Run("decodes person", func(t *testing.T) {
		p, err := s.GetPerson(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Luke Skywalker", p.Name)
		assert.Equal(t, "19BBY", p.BirthYear)
		assert.Equal(t, "http://x/planets/1/", p.Homeworld)
		assert.Equal(t, []string{"http://x/films/1/", "http://x/films/2/"}, p.Films)
		assert.Empty(t, p.Species)
	})

	t.Run("404 is ErrNotFound", func(t *testing.T) {
		before := testutil.ToFloat64(requestsTotal.WithLabelValues(kindPerson, "404"))

		_, err := s.GetPerson(ctx, 17)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, before+1, testutil.ToFloat64(requestsTotal.WithLabelValues(kindPerson, "404")))
	})

	t.Run("5xx is StatusError", func(t *testing.T) {
		_, err := s.GetPerson(ctx, 500)
		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestSession_GetField(t *testing.T) {
	srv := newTestServer(t)
	s := NewClient(srv.URL, "test-agent", time.Second).NewSession()
	defer s.Close()
	ctx := context.Background()

	name, err := s.GetField(ctx, srv.URL+"/planets/1/", "name")
	require.NoError(t, err)
	assert.Equal(t, "Tatooine", name)

	diameter, err := s.GetField(ctx, srv.URL+"/planets/1/", "diameter")
	require.NoError(t, err)
	assert.Equal(t, "10465", diameter)

	_, err = s.GetField(ctx, srv.URL+"/planets/1/", "title")
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = s.GetField(ctx, srv.URL+"/broken/", "name")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingField)

	agent, err := s.GetField(ctx, srv.URL+"/agent/", "name")
	require.NoError(t, err)
	assert.Equal(t, "test-agent", agent)
}

func TestSession_ContextCancelled(t *testing.T) {
	srv := newTestServer(t)
	s := NewClient(srv.URL, "", time.Second).NewSession()
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.GetPerson(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
