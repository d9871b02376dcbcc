package ingest

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync/atomic"

	"swapiloader/internal/platform/swapi"

	conciter "github.com/sourcegraph/conc/iter"
)

// ErrRangeConsumed is yielded when a FetchRange sequence is iterated twice.
var ErrRangeConsumed = errors.New("fetch range already consumed")

type Fetcher struct {
	client    *swapi.Client
	chunkSize int
}

func NewFetcher(client *swapi.Client, chunkSize int) *Fetcher {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Fetcher{client: client, chunkSize: chunkSize}
}

// Fetch returns a not-found Item when the catalog answers 404 for id.
func (f *Fetcher) Fetch(ctx context.Context, sess *swapi.Session, id int) (Item, error) {
	p, err := sess.GetPerson(ctx, id)
	if errors.Is(err, swapi.ErrNotFound) {
		peopleFetched.WithLabelValues("not_found").Inc()
		return Item{ID: id}, nil
	}
	if err != nil {
		return Item{}, fmt.Errorf("fetch person %d: %w", id, err)
	}
	peopleFetched.WithLabelValues("found").Inc()
	return Item{ID: id, Person: p}, nil
}

// FetchRange yields one Item per id in 1..total, in id order. Ids are fetched
// concurrently one group of chunkSize at a time; a group is only requested
// once the consumer has pulled every item of the previous one. The first
// fetch error is yielded and ends the sequence. The sequence can be consumed
// once.
func (f *Fetcher) FetchRange(ctx context.Context, total int) iter.Seq2[Item, error] {
	var started atomic.Bool
	return func(yield func(Item, error) bool) {
		if !started.CompareAndSwap(false, true) {
			yield(Item{}, ErrRangeConsumed)
			return
		}

		sess := f.client.NewSession()
		defer sess.Close()

		for first := 1; first <= total; first += f.chunkSize {
			last := min(first+f.chunkSize-1, total)
			ids := make([]int, 0, last-first+1)
			for id := first; id <= last; id++ {
				ids = append(ids, id)
			}

			mapper := conciter.Mapper[int, Item]{MaxGoroutines: len(ids)}
			items, err := mapper.MapErr(ids, func(id *int) (Item, error) {
				return f.Fetch(ctx, sess, *id)
			})
			if err != nil {
				yield(Item{}, err)
				return
			}

			for _, item := range items {
				if !yield(item, nil) {
					return
				}
			}
		}
	}
}
