package people

import (
	"context"
)

// Record is a fully resolved person. Reference fields hold display values,
// never URLs.
type Record struct {
	ID        int
	SourceID  int
	Name      string
	BirthYear string
	EyeColor  string
	Gender    string
	HairColor string
	Height    string
	Mass      string
	SkinColor string
	Homeworld string
	Films     string
	Species   string
	Starships string
	Vehicles  string
}

type Repository interface {
	// ResetSchema drops and recreates every table. It must complete before
	// any session is opened.
	ResetSchema(ctx context.Context) error
	OpenSession(ctx context.Context) (Session, error)
	Count(ctx context.Context) (int, error)
	List(ctx context.Context) ([]Record, error)
}

// Session is a unit of work owned by a single goroutine.
type Session interface {
	Add(rec *Record)
	// Commit persists every record added since the last commit.
	Commit(ctx context.Context) error
	// Close releases the session. Uncommitted records are discarded.
	Close()
}
