package tracking

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"delivery-agent/models"
)

// ErrAlreadyTracking is returned by Start when a watch is already active for
// this tracker. Only one watch per logical tracker may live at a time.
var ErrAlreadyTracking = errors.New("tracking already active for this agent")

// ErrTrackingUnavailable is returned when the position source reports no
// capability or permission.
var ErrTrackingUnavailable = errors.New("tracking unavailable: no usable position source")

// LocationSink receives forwarded position fixes. *client.Client satisfies
// it; tests inject a fake.
type LocationSink interface {
	ForwardLocation(ctx context.Context, loc models.Location) error
}

const forwardTimeout = 5 * time.Second

// sample buffer: a slow sink drops fixes rather than queueing them; the next
// fix supersedes whatever was lost.
const sampleBuffer = 8

// Status is a snapshot of the tracker for the status endpoint.
type Status struct {
	Active    bool             `json:"active"`
	LastFix   *models.Location `json:"last_fix,omitempty"`
	LastError string           `json:"last_error,omitempty"`
	Forwarded uint64           `json:"forwarded_samples"`
	Dropped   uint64           `json:"dropped_samples"`
}

// Tracker runs the device-location loop: it acquires a first fix, keeps a
// continuous watch on the sampler, and forwards every fix to the sink in
// capture order. Forward failures are logged and the sample dropped — never
// retried, never queued. Stopping the tracker releases the sensor watch; that
// teardown is owned by the caller (the agent session), not by any order
// reaching a terminal status.
type Tracker struct {
	sampler Sampler
	sink    LocationSink

	mu        sync.Mutex
	active    bool
	sub       Subscription
	done      chan struct{}
	samples   chan models.Location
	lastFix   *models.Location
	lastErr   *WatchError
	forwarded uint64
	dropped   uint64
}

// NewTracker wires a sampler to a sink. Nothing runs until Start.
func NewTracker(sampler Sampler, sink LocationSink) *Tracker {
	return &Tracker{sampler: sampler, sink: sink}
}

// Start begins the watch. It returns ErrAlreadyTracking when a watch is
// active and ErrTrackingUnavailable when the position source cannot serve.
// The first fix and the subscription are acquired in the background so the
// caller is never blocked on the 10s first-fix deadline.
func (t *Tracker) Start() error {
	if !t.sampler.Available() {
		return ErrTrackingUnavailable
	}

	t.mu.Lock()
	if t.active {
		t.mu.Unlock()
		return ErrAlreadyTracking
	}
	t.active = true
	t.done = make(chan struct{})
	t.samples = make(chan models.Location, sampleBuffer)
	done, samples := t.done, t.samples
	t.mu.Unlock()

	go t.forwardLoop(done, samples)
	go t.watchLoop(done)
	return nil
}

// Stop releases the sensor subscription and halts forwarding. Idempotent.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active {
		return
	}
	t.active = false
	close(t.done)
	if t.sub != nil {
		t.sub.Stop()
		t.sub = nil
	}
}

// Snapshot returns the current tracker state.
func (t *Tracker) Snapshot() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := Status{
		Active:    t.active,
		LastFix:   t.lastFix,
		Forwarded: t.forwarded,
		Dropped:   t.dropped,
	}
	if t.lastErr != nil {
		s.LastError = t.lastErr.Error()
	}
	return s
}

func (t *Tracker) watchLoop(done chan struct{}) {
	// First fix: fresh reading, 10s deadline. A failure is logged and the
	// watch still begins; the ongoing loop will deliver the first usable fix.
	if loc, err := t.sampler.Current(FirstFixOptions()); err != nil {
		log.Printf("⚠️ first position fix failed: %v", err)
		t.recordError(err)
	} else {
		t.onSample(loc)
	}

	select {
	case <-done:
		return
	default:
	}

	sub, err := t.sampler.Watch(OngoingWatchOptions(), t.onSample, t.onWatchError)
	if err != nil {
		log.Printf("⚠️ position watch failed to start: %v", err)
		t.recordError(err)
		return
	}

	t.mu.Lock()
	if !t.active {
		// Stopped while the watch was being established.
		t.mu.Unlock()
		sub.Stop()
		return
	}
	t.sub = sub
	t.mu.Unlock()
}

func (t *Tracker) forwardLoop(done chan struct{}, samples chan models.Location) {
	for {
		select {
		case <-done:
			return
		case loc := <-samples:
			ctx, cancel := context.WithTimeout(context.Background(), forwardTimeout)
			err := t.sink.ForwardLocation(ctx, loc)
			cancel()

			t.mu.Lock()
			if err != nil {
				// Fire-and-log: the fix is lost, the next one supersedes it.
				log.Printf("⚠️ location forward failed, sample dropped (captured %s): %v",
					loc.CapturedAt.Format(time.RFC3339), err)
				t.dropped++
			} else {
				t.forwarded++
			}
			t.mu.Unlock()
		}
	}
}

// onSample records the fix and hands it to the forwarding loop. A full buffer
// drops the fix so a slow sink can never stall the sensor callback.
func (t *Tracker) onSample(loc models.Location) {
	t.mu.Lock()
	t.lastFix = &loc
	t.lastErr = nil
	samples, active := t.samples, t.active
	t.mu.Unlock()
	if !active {
		return
	}
	select {
	case samples <- loc:
	default:
		t.mu.Lock()
		t.dropped++
		t.mu.Unlock()
		log.Printf("⚠️ location buffer full, sample dropped (captured %s)",
			loc.CapturedAt.Format(time.RFC3339))
	}
}

// onWatchError surfaces a failed fix without ending the watch.
func (t *Tracker) onWatchError(we *WatchError) {
	log.Printf("⚠️ %v", we)
	t.mu.Lock()
	t.lastErr = we
	t.mu.Unlock()
}

func (t *Tracker) recordError(err error) {
	we := &WatchError{}
	if !errors.As(err, &we) {
		we = &WatchError{Kind: PositionUnavailable, Err: err}
	}
	t.mu.Lock()
	t.lastErr = we
	t.mu.Unlock()
}
