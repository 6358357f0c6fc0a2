package coordinator

import (
	"context"
	"log/slog"
	"sync"

	"github.com/descant/descant/internal/domain"
)

// Coordinator keeps result delivery coherent for request families where
// only the newest request matters, like a search box the user keeps
// typing into. Each Begin supersedes the family's previous request:
// the old context is cancelled, and once a newer request has delivered,
// stragglers from older ones are dropped. Cache writes are unaffected;
// they run detached from the delivery context.
type Coordinator struct {
	logger *slog.Logger

	mu       sync.Mutex
	families map[string]*family
}

type family struct {
	seq      uint64 // newest issued request
	returned uint64 // newest request that has delivered
	cancel   context.CancelFunc
}

// New creates a coordinator
func New(logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{logger: logger, families: make(map[string]*family)}
}

// Begin registers the newest request in a family, cancelling the one
// before it. The returned context governs delivery for this request;
// the ticket gates it.
func (c *Coordinator) Begin(ctx context.Context, familyName string) (context.Context, *Ticket) {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.families[familyName]
	if f == nil {
		f = &family{}
		c.families[familyName] = f
	}
	if f.cancel != nil {
		f.cancel()
	}
	f.seq++
	f.cancel = cancel
	return ctx, &Ticket{coord: c, family: f, name: familyName, seq: f.seq}
}

// Cancel aborts a family's current request without starting a new one
func (c *Coordinator) Cancel(familyName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f := c.families[familyName]; f != nil && f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

// Ticket identifies one request within its family.
type Ticket struct {
	coord  *Coordinator
	family *family
	name   string
	seq    uint64
}

// Deliver runs fn unless a newer request in the same family has already
// delivered. Deliveries within a family are serialized, so results can
// never interleave. Reports whether fn ran.
func (t *Ticket) Deliver(fn func()) bool {
	t.coord.mu.Lock()
	defer t.coord.mu.Unlock()
	if t.seq < t.family.returned {
		t.coord.logger.Debug("dropping superseded delivery",
			"family", t.name, "request", t.seq, "newest", t.family.returned)
		return false
	}
	t.family.returned = t.seq
	fn()
	return true
}

// Guard wraps a delivery callback so updates from superseded requests
// are dropped instead of reaching the caller out of order.
func Guard[T any](ticket *Ticket, deliver domain.DeliverFunc[T]) domain.DeliverFunc[T] {
	return func(u domain.Update[T]) {
		ticket.Deliver(func() { deliver(u) })
	}
}
