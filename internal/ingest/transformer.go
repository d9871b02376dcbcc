package ingest

import (
	"context"
	"fmt"

	"swapiloader/internal/people"
	"swapiloader/internal/platform/swapi"

	"github.com/sourcegraph/conc/pool"
)

type Transformer struct {
	resolver *Resolver
}

func NewTransformer(resolver *Resolver) *Transformer {
	return &Transformer{resolver: resolver}
}

// Transform resolves the five reference fields of item concurrently and
// builds the record once all of them are done.
func (t *Transformer) Transform(ctx context.Context, sess *swapi.Session, item Item) (*people.Record, error) {
	if item.NotFound() {
		return nil, fmt.Errorf("person %d: %w", item.ID, swapi.ErrNotFound)
	}
	p := item.Person

	rec := &people.Record{
		SourceID:  item.ID,
		Name:      p.Name,
		BirthYear: p.BirthYear,
		EyeColor:  p.EyeColor,
		Gender:    p.Gender,
		HairColor: p.HairColor,
		Height:    p.Height,
		Mass:      p.Mass,
		SkinColor: p.SkinColor,
	}

	g := pool.New().WithErrors().WithContext(ctx)
	resolve := func(dst *string, urls []string, field string) {
		g.Go(func(ctx context.Context) error {
			v, err := t.resolver.Resolve(ctx, sess, urls, field)
			if err != nil {
				return err
			}
			*dst = v
			return nil
		})
	}

	resolve(&rec.Homeworld, []string{p.Homeworld}, "name")
	resolve(&rec.Films, p.Films, "title")
	resolve(&rec.Species, p.Species, "name")
	resolve(&rec.Starships, p.Starships, "name")
	resolve(&rec.Vehicles, p.Vehicles, "name")

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rec, nil
}
