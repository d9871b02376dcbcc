package people

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"swapiloader/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Schema applies the embedded goose migrations to the pool's database.
type Schema struct {
	db       *sql.DB
	provider *goose.Provider
}

func NewSchema(pool *pgxpool.Pool) (*Schema, error) {
	migrations, err := fs.Sub(db.Migrations, "migrations")
	if err != nil {
		return nil, err
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return &Schema{db: sqlDB, provider: provider}, nil
}

func (s *Schema) Up(ctx context.Context) ([]*goose.MigrationResult, error) {
	return s.provider.Up(ctx)
}

func (s *Schema) Down(ctx context.Context) (*goose.MigrationResult, error) {
	return s.provider.Down(ctx)
}

// Reset rolls back every applied migration and applies them all again.
func (s *Schema) Reset(ctx context.Context) error {
	if _, err := s.provider.DownTo(ctx, 0); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	if _, err := s.provider.Up(ctx); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *Schema) Status(ctx context.Context) ([]*goose.MigrationStatus, error) {
	return s.provider.Status(ctx)
}

func (s *Schema) Close() error {
	return s.db.Close()
}
