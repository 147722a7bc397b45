package notifications

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"delivery-agent/models"
)

// DefaultInterval is the bell's poll cadence.
const DefaultInterval = 30 * time.Second

const fetchTimeout = 10 * time.Second

// ErrAlreadyPolling is returned by Start when the tick loop is running.
var ErrAlreadyPolling = errors.New("notification polling already active")

// API is the slice of the backend client the poller needs. Tests inject a
// fake.
type API interface {
	RecentNotifications(ctx context.Context) (models.NotificationBatch, error)
	MarkNotificationRead(ctx context.Context, id uint) error
	MarkAllNotificationsRead(ctx context.Context) error
	ClearNotifications(ctx context.Context) error
}

// Poller keeps the local notification window in sync with the backend. Each
// tick replaces the window wholesale — the server response is authoritative
// for both the items and the unread count, so no incremental merge and no
// local recount can drift the badge. One failed tick never stops the next.
type Poller struct {
	api      API
	interval time.Duration

	mu       sync.Mutex
	batch    models.NotificationBatch
	lastSync time.Time
	lastErr  error
	running  bool
	done     chan struct{}
}

// NewPoller builds a poller; interval <= 0 falls back to DefaultInterval.
func NewPoller(api API, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{api: api, interval: interval}
}

// Start launches the tick loop. The first fetch happens on the first tick;
// callers wanting an immediate window call Fetch themselves.
func (p *Poller) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return ErrAlreadyPolling
	}
	p.running = true
	p.done = make(chan struct{})
	go p.loop(p.done)
	return nil
}

// Stop halts the tick loop. Idempotent.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.running = false
	close(p.done)
}

func (p *Poller) loop(done chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
			if _, err := p.Fetch(ctx); err != nil {
				// Keep the previous batch; polling continues unconditionally.
				log.Printf("⚠️ notification poll failed, keeping previous batch: %v", err)
			}
			cancel()
		}
	}
}

// Fetch pulls the recent window and replaces the local batch. On failure the
// previous batch stays in place and the error is returned. Also called
// on-demand, e.g. when the bell dropdown opens.
func (p *Poller) Fetch(ctx context.Context) (models.NotificationBatch, error) {
	batch, err := p.api.RecentNotifications(ctx)
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.lastErr = err
		return copyBatch(p.batch), err
	}
	p.batch = dedupe(batch)
	p.lastSync = time.Now()
	p.lastErr = nil
	return copyBatch(p.batch), nil
}

// Batch returns the current local window.
func (p *Poller) Batch() models.NotificationBatch {
	p.mu.Lock()
	defer p.mu.Unlock()
	return copyBatch(p.batch)
}

// UnreadCount returns the server-authoritative badge value, adjusted by any
// optimistic flips since the last sync.
func (p *Poller) UnreadCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.batch.UnreadCount
}

// MarkRead optimistically flips one notification to read and decrements the
// badge (clamped at zero), then confirms with the server. A failed
// confirmation is logged but not rolled back; the accepted staleness window
// closes on the next tick.
func (p *Poller) MarkRead(ctx context.Context, id uint) {
	p.mu.Lock()
	for i := range p.batch.Items {
		if p.batch.Items[i].ID != id {
			continue
		}
		if p.batch.Items[i].IsUnread {
			p.batch.Items[i].IsUnread = false
			if p.batch.UnreadCount > 0 {
				p.batch.UnreadCount--
			}
		}
		break
	}
	p.mu.Unlock()

	if err := p.api.MarkNotificationRead(ctx, id); err != nil {
		log.Printf("⚠️ mark-read confirmation failed for notification %d (local state kept): %v", id, err)
	}
}

// MarkAllRead flips every item to read and zeroes the badge locally, then
// confirms with the server under the same no-rollback policy.
func (p *Poller) MarkAllRead(ctx context.Context) {
	p.mu.Lock()
	for i := range p.batch.Items {
		p.batch.Items[i].IsUnread = false
	}
	p.batch.UnreadCount = 0
	p.mu.Unlock()

	if err := p.api.MarkAllNotificationsRead(ctx); err != nil {
		log.Printf("⚠️ mark-all-read confirmation failed (local state kept): %v", err)
	}
}

// ClearAll empties the window, but only after the server confirms: clearing
// is destructive and irreversible, so unlike the read flips it never runs
// optimistically.
func (p *Poller) ClearAll(ctx context.Context) error {
	if err := p.api.ClearNotifications(ctx); err != nil {
		return err
	}
	p.mu.Lock()
	p.batch = models.NotificationBatch{Items: []models.Notification{}}
	p.mu.Unlock()
	return nil
}

// LastSync reports when the window was last replaced and the last poll error,
// for the status endpoint.
func (p *Poller) LastSync() (time.Time, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSync, p.lastErr
}

// dedupe keeps the first occurrence per id. Identity is stable across polls,
// so a window that repeats an id is a server quirk, not two notifications.
// The server-reported unread count is kept as-is.
func dedupe(b models.NotificationBatch) models.NotificationBatch {
	seen := make(map[uint]bool, len(b.Items))
	items := b.Items[:0:0]
	for _, n := range b.Items {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		items = append(items, n)
	}
	b.Items = items
	return b
}

func copyBatch(b models.NotificationBatch) models.NotificationBatch {
	items := make([]models.Notification, len(b.Items))
	copy(items, b.Items)
	return models.NotificationBatch{Items: items, UnreadCount: b.UnreadCount}
}
