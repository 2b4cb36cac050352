package history

import (
	"context"
	"sync"
	"time"

	"rafeyshell/internal/logging"

	"golang.org/x/sync/errgroup"
)

const saveTimeout = 30 * time.Second

// Persister saves snapshots in the background. Schedule never blocks and
// failures are logged to the store category only. When a save is already
// queued, the newer snapshot replaces it.
type Persister struct {
	backend Backend

	mu         sync.Mutex
	pending    []Entry
	hasPending bool
	closed     bool

	wake chan struct{}
	done chan struct{}
	g    errgroup.Group
}

// NewPersister starts the single save worker for backend.
func NewPersister(backend Backend) *Persister {
	p := &Persister{
		backend: backend,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	p.g.Go(p.run)
	return p
}

// Schedule queues a snapshot for saving. Calls after Close are dropped.
func (p *Persister) Schedule(entries []Entry) {
	snapshot := make([]Entry, len(entries))
	copy(snapshot, entries)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		logging.StoreDebug("Persister closed, dropping snapshot of %d entries", len(snapshot))
		return
	}
	p.pending = snapshot
	p.hasPending = true
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Close flushes any queued snapshot and stops the worker. It returns
// ctx.Err() if ctx ends first; the worker still finishes its current save.
func (p *Persister) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()
	close(p.done)

	waited := make(chan error, 1)
	go func() { waited <- p.g.Wait() }()

	select {
	case err := <-waited:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Persister) run() error {
	for {
		select {
		case <-p.wake:
			p.flush()
		case <-p.done:
			p.flush()
			return nil
		}
	}
}

func (p *Persister) flush() {
	p.mu.Lock()
	if !p.hasPending {
		p.mu.Unlock()
		return
	}
	entries := p.pending
	p.pending = nil
	p.hasPending = false
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	timer := logging.StartTimer(logging.CategoryStore, "Persister.save")
	if err := p.backend.Save(ctx, entries); err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to persist history (%d entries): %v", len(entries), err)
	} else {
		logging.StoreDebug("Persisted %d history entries", len(entries))
	}
	timer.StopWithThreshold(time.Second)
}
