package people

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) ResetSchema(ctx context.Context) error {
	schema, err := NewSchema(r.db)
	if err != nil {
		return err
	}
	defer schema.Close()

	return schema.Reset(ctx)
}

func (r *PostgresRepo) OpenSession(ctx context.Context) (Session, error) {
	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &postgresSession{conn: conn}, nil
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM swapi_people").Scan(&count)
	return count, err
}

func (r *PostgresRepo) List(ctx context.Context) ([]Record, error) {
	const query = `
		SELECT id, source_id, name, birth_year, eye_color, gender, hair_color, height, mass, skin_color,
			homeworld, films, species, starships, vehicles
		FROM swapi_people
		ORDER BY source_id ASC, id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var p Record
		if err := rows.Scan(
			&p.ID, &p.SourceID, &p.Name, &p.BirthYear, &p.EyeColor, &p.Gender, &p.HairColor, &p.Height, &p.Mass, &p.SkinColor,
			&p.Homeworld, &p.Films, &p.Species, &p.Starships, &p.Vehicles,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type postgresSession struct {
	conn    *pgxpool.Conn
	pending []*Record
}

func (s *postgresSession) Add(rec *Record) {
	s.pending = append(s.pending, rec)
}

func (s *postgresSession) Commit(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const insertSQL = `
		INSERT INTO swapi_people (source_id, name, birth_year, eye_color, gender, hair_color, height, mass, skin_color,
			homeworld, films, species, starships, vehicles)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`

	for _, p := range s.pending {
		err := tx.QueryRow(ctx, insertSQL,
			p.SourceID, p.Name, p.BirthYear, p.EyeColor, p.Gender, p.HairColor, p.Height, p.Mass, p.SkinColor,
			p.Homeworld, p.Films, p.Species, p.Starships, p.Vehicles,
		).Scan(&p.ID)
		if err != nil {
			return fmt.Errorf("insert person %d: %w", p.SourceID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.pending = nil
	return nil
}

func (s *postgresSession) Close() {
	s.pending = nil
	s.conn.Release()
}
