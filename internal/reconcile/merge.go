// Package reconcile folds mutation responses into cached collections.
package reconcile

// Keyed is an entity with a stable identity
type Keyed interface {
	Key() string
}

// Merge returns a copy of collection with updated replacing the entry of the
// same key, or appended when no entry matches. The input is not modified.
func Merge[T Keyed](collection []T, updated T) []T {
	out := make([]T, len(collection), len(collection)+1)
	copy(out, collection)

	key := updated.Key()
	for i := range out {
		if out[i].Key() == key {
			out[i] = updated
			return out
		}
	}
	return append(out, updated)
}

// Find returns the entry with the given key
func Find[T Keyed](collection []T, key string) (T, bool) {
	for _, item := range collection {
		if item.Key() == key {
			return item, true
		}
	}
	var zero T
	return zero, false
}
