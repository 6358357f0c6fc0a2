package domain

// LookupState classifies a cache read result
type LookupState int

const (
	// LookupMissing means the cache holds nothing for the query.
	LookupMissing LookupState = iota

	// LookupStale means entity data exists but no freshness marker vouches
	// for it. The data is best-effort; a refresh is required.
	LookupStale

	// LookupFound means a freshness marker exists and the data is trusted.
	LookupFound
)

// Lookup is the tagged result of a cache read. Exactly one of three shapes:
// Found carries trusted data, Stale carries best-effort partial data, and
// Missing carries nothing. A stale or missing lookup is not an error; it is
// the signal that a ground-truth refresh is needed.
type Lookup[T any] struct {
	State LookupState
	Data  T // trusted for Found, best-effort for Stale, zero for Missing
}

// Found wraps data vouched for by a freshness marker.
func Found[T any](data T) Lookup[T] {
	return Lookup[T]{State: LookupFound, Data: data}
}

// Stale wraps data that exists locally without a freshness marker.
func Stale[T any](data T) Lookup[T] {
	return Lookup[T]{State: LookupStale, Data: data}
}

// Missing reports that the cache holds nothing for the query.
func Missing[T any]() Lookup[T] {
	return Lookup[T]{State: LookupMissing}
}

// Fresh reports whether the data is vouched for and needs no refresh
func (l Lookup[T]) Fresh() bool { return l.State == LookupFound }

// HasData reports whether the lookup carries any data at all
func (l Lookup[T]) HasData() bool { return l.State != LookupMissing }
