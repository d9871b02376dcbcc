package ingest

import (
	"time"

	"swapiloader/internal/platform/swapi"
)

// DefaultChunkSize is used both for grouping ids to fetch and for grouping
// fetched items into load tasks.
const DefaultChunkSize = 10

const (
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// Item is one catalog slot. A nil Person marks an id the catalog no longer has.
type Item struct {
	ID     int
	Person *swapi.Person
}

func (i Item) NotFound() bool {
	return i.Person == nil
}

type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   *time.Time
	Status       string // RUNNING, COMPLETED, FAILED
	ChunkSize    int
	Total        int
	Fetched      int
	NotFound     int
	Chunks       int
	ChunksFailed int
	Committed    int
	Error        string
}
