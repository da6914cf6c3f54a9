// Package bridge is the single gateway through which any goroutine asks the
// rendering surface to run a command. Scripts are only ever evaluated on the
// surface's owning thread.
package bridge

import (
	"sync"

	"weatherwall/log"
)

// Surface is the part of the rendering surface the bridge needs. Dispatch
// must be safe from any goroutine and run f on the owning thread in FIFO
// order; Eval is only called from inside a dispatched func.
type Surface interface {
	Dispatch(f func())
	Eval(js string)
}

// Submitter accepts commands for the surface.
type Submitter interface {
	Submit(cmd Command)
}

// PendingPolicy decides what happens to commands submitted while no surface
// is attached.
type PendingPolicy int

const (
	DropPending PendingPolicy = iota
	QueuePending
)

// DefaultMaxPending bounds the QueuePending buffer.
const DefaultMaxPending = 64

// ParsePolicy maps a config value to a policy; unknown values drop.
func ParsePolicy(s string) PendingPolicy {
	if s == "queue" {
		return QueuePending
	}
	return DropPending
}

type Option func(*Bridge)

func WithPolicy(p PendingPolicy) Option {
	return func(b *Bridge) { b.policy = p }
}

func WithMaxPending(n int) Option {
	return func(b *Bridge) { b.maxPending = n }
}

// Bridge serialises submissions into the attached surface. Delivery is
// at-most-once and the outcome of the script itself is not reported.
type Bridge struct {
	mu         sync.Mutex
	surface    Surface
	policy     PendingPolicy
	maxPending int
	pending    []string
	pendKinds  []string
}

func New(opts ...Option) *Bridge {
	b := &Bridge{maxPending: DefaultMaxPending}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Attach connects the surface. Queued commands are dispatched in order.
func (b *Bridge) Attach(s Surface) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.surface = s
	for i, js := range b.pending {
		b.dispatch(js)
		log.Command(b.pendKinds[i], true)
	}
	b.pending = nil
	b.pendKinds = nil
}

// Detach disconnects the surface; later submissions follow the policy.
func (b *Bridge) Detach() {
	b.mu.Lock()
	b.surface = nil
	b.mu.Unlock()
}

// Attached reports whether a surface is connected.
func (b *Bridge) Attached() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surface != nil
}

// Submit renders cmd and hands it to the surface's owning thread. It never
// blocks on the surface. Commands that fail to render are dropped.
func (b *Bridge) Submit(cmd Command) {
	js, err := cmd.Script()
	if err != nil {
		log.Warnf("bridge: dropping %s: %v", cmd.Kind(), err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surface != nil {
		b.dispatch(js)
		log.Command(cmd.Kind(), true)
		return
	}

	if b.policy == QueuePending && len(b.pending) < b.maxPending {
		b.pending = append(b.pending, js)
		b.pendKinds = append(b.pendKinds, cmd.Kind())
		return
	}
	log.Command(cmd.Kind(), false)
}

// dispatch must be called with mu held so that dispatch order matches
// submission order.
func (b *Bridge) dispatch(js string) {
	s := b.surface
	s.Dispatch(func() { s.Eval(js) })
}

// Pending returns the number of queued commands.
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
