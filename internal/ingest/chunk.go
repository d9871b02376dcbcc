package ingest

import "iter"

// Chunk regroups seq into slices of size items, emitting each group as soon
// as it is full. A trailing partial group is emitted at the end. An error
// from seq is passed through and ends the sequence; items buffered at that
// point are discarded.
func Chunk[T any](seq iter.Seq2[T, error], size int) iter.Seq2[[]T, error] {
	if size <= 0 {
		size = 1
	}
	return func(yield func([]T, error) bool) {
		buf := make([]T, 0, size)
		for v, err := range seq {
			if err != nil {
				yield(nil, err)
				return
			}
			buf = append(buf, v)
			if len(buf) == size {
				if !yield(buf, nil) {
					return
				}
				buf = make([]T, 0, size)
			}
		}
		if len(buf) > 0 {
			yield(buf, nil)
		}
	}
}
