package orders

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"delivery-agent/models"
)

// DefaultRefreshInterval matches the delivery dashboard's refresh cadence.
const DefaultRefreshInterval = 30 * time.Second

const refreshTimeout = 10 * time.Second

// ErrAlreadyRefreshing is returned by Start when the loop is running.
var ErrAlreadyRefreshing = errors.New("order refresh already active")

// Lister is the slice of the backend client the refresher needs.
type Lister interface {
	AssignedOrders(ctx context.Context) ([]models.Order, error)
}

// Refresher is the dashboard's pull loop: every tick it fetches the agent's
// assigned orders and merges them into the store under the remote-wins
// policy. A failed tick keeps the previous projections and never stops the
// loop.
type Refresher struct {
	api      Lister
	store    *Store
	interval time.Duration

	mu      sync.Mutex
	running bool
	done    chan struct{}
	lastErr error
}

// NewRefresher builds a refresher; interval <= 0 falls back to
// DefaultRefreshInterval.
func NewRefresher(api Lister, store *Store, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Refresher{api: api, store: store, interval: interval}
}

// Start launches the refresh loop.
func (r *Refresher) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return ErrAlreadyRefreshing
	}
	r.running = true
	r.done = make(chan struct{})
	go r.loop(r.done)
	return nil
}

// Stop halts the refresh loop. Idempotent.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	r.running = false
	close(r.done)
}

// RefreshNow performs one synchronous refresh, e.g. when the dashboard view
// opens.
func (r *Refresher) RefreshNow(ctx context.Context) error {
	list, err := r.api.AssignedOrders(ctx)
	r.mu.Lock()
	r.lastErr = err
	r.mu.Unlock()
	if err != nil {
		return err
	}
	r.store.SyncRemote(list)
	return nil
}

// LastError reports the most recent refresh failure, nil after a clean tick.
func (r *Refresher) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

func (r *Refresher) loop(done chan struct{}) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			if err := r.RefreshNow(ctx); err != nil {
				log.Printf("⚠️ order refresh failed, keeping previous projections: %v", err)
			}
			cancel()
		}
	}
}
