package domain

// Update is one delivery phase of a read. Reads deliver up to twice: once
// synchronously from the cache and once after the ground-truth refresh.
// Final marks the last delivery a caller will receive for the request.
type Update[T any] struct {
	Data    T
	Partial bool  // cached phase built from stale data; fresh phase follows
	Final   bool  // no further deliveries for this request
	Err     error // set on a failed final phase; Data keeps the best available copy
}

// DeliverFunc receives the phases of a read in order. It is never called
// again after an update with Final set.
type DeliverFunc[T any] func(Update[T])
