package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// PersonFixture describes one catalog person. Reference fields are paths on
// the fake catalog (e.g. "/planets/1/") and are served as absolute URLs.
type PersonFixture struct {
	Name      string
	BirthYear string
	Gender    string
	Homeworld string
	Films     []string
	Species   []string
	Starships []string
	Vehicles  []string
}

// FakeCatalog is an in-process stand-in for the SWAPI people catalog.
type FakeCatalog struct {
	Server *httptest.Server

	mu          sync.Mutex
	count       *int
	people      map[int]PersonFixture
	resources   map[string]map[string]any
	failures    map[string]int
	hits        map[string]int
	delay       time.Duration
	inflight    int
	maxInflight int
}

func NewFakeCatalog(t *testing.T) *FakeCatalog {
	t.Helper()
	f := &FakeCatalog{
		people:    make(map[int]PersonFixture),
		resources: make(map[string]map[string]any),
		failures:  make(map[string]int),
		hits:      make(map[string]int),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// BaseURL is the catalog root, equivalent to https://swapi.dev/api.
func (f *FakeCatalog) BaseURL() string {
	return f.Server.URL
}

func (f *FakeCatalog) URL(path string) string {
	return f.Server.URL + path
}

// SetCount overrides the count reported on /people/. By default it is the
// highest registered person id.
func (f *FakeCatalog) SetCount(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count = &n
}

func (f *FakeCatalog) AddPerson(id int, p PersonFixture) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.people[id] = p
}

func (f *FakeCatalog) AddResource(path string, body map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resources[path] = body
}

// Fail makes every request to path answer with status.
func (f *FakeCatalog) Fail(path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[path] = status
}

// SetDelay slows down every person request.
func (f *FakeCatalog) SetDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

func (f *FakeCatalog) Hits(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

// MaxInflight is the peak number of concurrent person requests.
func (f *FakeCatalog) MaxInflight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInflight
}

func (f *FakeCatalog) serve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	f.mu.Lock()
	f.hits[path]++
	status, failing := f.failures[path]
	f.mu.Unlock()

	if failing {
		w.WriteHeader(status)
		return
	}

	if path == "/people/" {
		f.writeCount(w)
		return
	}
	if id, ok := personID(path); ok {
		f.writePerson(w, r, id)
		return
	}

	f.mu.Lock()
	body, ok := f.resources[path]
	f.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, body)
}

func (f *FakeCatalog) writeCount(w http.ResponseWriter) {
	f.mu.Lock()
	count := 0
	if f.count != nil {
		count = *f.count
	} else {
		for id := range f.people {
			count = max(count, id)
		}
	}
	f.mu.Unlock()

	writeJSON(w, map[string]any{"count": count, "next": nil, "results": []any{}})
}

func (f *FakeCatalog) writePerson(w http.ResponseWriter, r *http.Request, id int) {
	f.mu.Lock()
	f.inflight++
	f.maxInflight = max(f.maxInflight, f.inflight)
	delay := f.delay
	p, ok := f.people[id]
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inflight--
		f.mu.Unlock()
	}()

	if delay > 0 {
		time.Sleep(delay)
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]any{"detail": "Not found"})
		return
	}

	writeJSON(w, map[string]any{
		"name":       p.Name,
		"height":     "172",
		"mass":       "77",
		"hair_color": "blond",
		"skin_color": "fair",
		"eye_color":  "blue",
		"birth_year": p.BirthYear,
		"gender":     p.Gender,
		"homeworld":  f.absolute(p.Homeworld),
		"films":      f.absoluteAll(p.Films),
		"species":    f.absoluteAll(p.Species),
		"starships":  f.absoluteAll(p.Starships),
		"vehicles":   f.absoluteAll(p.Vehicles),
		"url":        f.URL("/people/" + strconv.Itoa(id) + "/"),
	})
}

func (f *FakeCatalog) absolute(path string) any {
	if path == "" {
		return nil
	}
	return f.URL(path)
}

func (f *FakeCatalog) absoluteAll(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, f.URL(p))
	}
	return out
}

func personID(path string) (int, bool) {
	rest, ok := strings.CutPrefix(path, "/people/")
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimSuffix(rest, "/"))
	if err != nil {
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}
