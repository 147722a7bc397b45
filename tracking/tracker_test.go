package tracking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"delivery-agent/models"
)

// fakeSampler hands the emit callback back to the test so fixes can be
// driven manually.
type fakeSampler struct {
	mu          sync.Mutex
	available   bool
	current     models.Location
	currentErr  error
	onSample    func(models.Location)
	onError     func(*WatchError)
	sub         *fakeSubscription
	watchCalls  int
	currentOpts WatchOptions
	watchOpts   WatchOptions
}

func newFakeSampler() *fakeSampler {
	return &fakeSampler{available: true, current: fix(1)}
}

func (f *fakeSampler) Available() bool { return f.available }

func (f *fakeSampler) Current(opts WatchOptions) (models.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentOpts = opts
	return f.current, f.currentErr
}

func (f *fakeSampler) Watch(opts WatchOptions, onSample func(models.Location), onError func(*WatchError)) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watchCalls++
	f.watchOpts = opts
	f.onSample = onSample
	f.onError = onError
	f.sub = &fakeSubscription{id: "fake-watch"}
	return f.sub, nil
}

func (f *fakeSampler) emit(loc models.Location) {
	f.mu.Lock()
	cb := f.onSample
	f.mu.Unlock()
	if cb != nil {
		cb(loc)
	}
}

func (f *fakeSampler) emitError(we *WatchError) {
	f.mu.Lock()
	cb := f.onError
	f.mu.Unlock()
	if cb != nil {
		cb(we)
	}
}

func (f *fakeSampler) watchEstablished() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sub != nil
}

type fakeSubscription struct {
	id      string
	mu      sync.Mutex
	stopped bool
}

func (s *fakeSubscription) ID() string { return s.id }
func (s *fakeSubscription) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}
func (s *fakeSubscription) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// fakeSink records forwarded fixes in arrival order; errs are served one per
// call until exhausted.
type fakeSink struct {
	mu       sync.Mutex
	received []models.Location
	errs     []error
}

func (f *fakeSink) ForwardLocation(_ context.Context, loc models.Location) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return err
		}
	}
	f.received = append(f.received, loc)
	return nil
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.received)
}

func (f *fakeSink) at(i int) models.Location {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.received[i]
}

func fix(n int) models.Location {
	return models.Location{
		Latitude:   10.0 + float64(n)*0.001,
		Longitude:  20.0,
		CapturedAt: time.Unix(int64(1700000000+n), 0),
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestStartIsExclusivePerTracker(t *testing.T) {
	sampler := newFakeSampler()
	tr := NewTracker(sampler, &fakeSink{})

	if err := tr.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := tr.Start(); !errors.Is(err, ErrAlreadyTracking) {
		t.Fatalf("expected ErrAlreadyTracking, got %v", err)
	}
	tr.Stop()
	if err := tr.Start(); err != nil {
		t.Fatalf("restart after stop failed: %v", err)
	}
	tr.Stop()
}

func TestStartUnavailableSampler(t *testing.T) {
	sampler := newFakeSampler()
	sampler.available = false
	tr := NewTracker(sampler, &fakeSink{})
	if err := tr.Start(); !errors.Is(err, ErrTrackingUnavailable) {
		t.Fatalf("expected ErrTrackingUnavailable, got %v", err)
	}
}

func TestTrackerStopReleasesWatch(t *testing.T) {
	sampler := newFakeSampler()
	tr := NewTracker(sampler, &fakeSink{})

	if err := tr.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	waitFor(t, "watch subscription", sampler.watchEstablished)

	tr.Stop()
	if !sampler.sub.isStopped() {
		t.Fatal("stop did not release the sensor subscription")
	}
	if tr.Snapshot().Active {
		t.Fatal("tracker still reports active after stop")
	}
}

func TestWatchOptions(t *testing.T) {
	sampler := newFakeSampler()
	tr := NewTracker(sampler, &fakeSink{})
	if err := tr.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer tr.Stop()
	waitFor(t, "watch subscription", sampler.watchEstablished)

	sampler.mu.Lock()
	first, ongoing := sampler.currentOpts, sampler.watchOpts
	sampler.mu.Unlock()

	if !first.HighAccuracy || first.Timeout != 10*time.Second || first.MaxSampleAge != 0 {
		t.Fatalf("wrong first-fix options: %+v", first)
	}
	if !ongoing.HighAccuracy || ongoing.Timeout != 5*time.Second || ongoing.MaxSampleAge != 30*time.Second {
		t.Fatalf("wrong ongoing watch options: %+v", ongoing)
	}
}

func TestSamplesForwardedInCaptureOrder(t *testing.T) {
	sampler := newFakeSampler()
	sink := &fakeSink{}
	tr := NewTracker(sampler, sink)

	if err := tr.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer tr.Stop()
	waitFor(t, "watch subscription", sampler.watchEstablished)
	waitFor(t, "first fix forwarded", func() bool { return sink.count() >= 1 })

	sampler.emit(fix(2))
	sampler.emit(fix(3))
	sampler.emit(fix(4))
	waitFor(t, "all samples forwarded", func() bool { return sink.count() == 4 })

	for i := 1; i < 4; i++ {
		if !sink.at(i - 1).CapturedAt.Before(sink.at(i).CapturedAt) {
			t.Fatalf("samples out of capture order at %d", i)
		}
	}
}

func TestForwardFailureDropsSampleAndContinues(t *testing.T) {
	sampler := newFakeSampler()
	sink := &fakeSink{errs: []error{nil, errors.New("network down")}}
	tr := NewTracker(sampler, sink)

	if err := tr.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer tr.Stop()
	waitFor(t, "watch subscription", sampler.watchEstablished)
	waitFor(t, "first fix forwarded", func() bool { return sink.count() == 1 })

	sampler.emit(fix(2)) // this one hits the injected failure
	sampler.emit(fix(3))
	waitFor(t, "later sample forwarded", func() bool { return sink.count() == 2 })

	// The lost fix is dropped, never resent: fix 3 follows fix 1 directly.
	if sink.at(1).CapturedAt != fix(3).CapturedAt {
		t.Fatalf("expected fix 3 after the drop, got %v", sink.at(1).CapturedAt)
	}
	waitFor(t, "drop recorded", func() bool { return tr.Snapshot().Dropped == 1 })
}

func TestWatchErrorDoesNotStopWatch(t *testing.T) {
	sampler := newFakeSampler()
	sink := &fakeSink{}
	tr := NewTracker(sampler, sink)

	if err := tr.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer tr.Stop()
	waitFor(t, "watch subscription", sampler.watchEstablished)

	sampler.emitError(&WatchError{Kind: FixTimeout})
	if s := tr.Snapshot(); s.LastError == "" || !s.Active {
		t.Fatalf("watch error not surfaced or watch stopped: %+v", s)
	}

	// Fixes keep flowing after the error.
	sampler.emit(fix(5))
	waitFor(t, "fix after error", func() bool { return sink.count() >= 2 })
}

func TestSimSamplerEmitsAndStops(t *testing.T) {
	sim := &SimSampler{StartLat: 12.9, StartLng: 77.5, SpeedMPS: 8, Heading: 90, Interval: 5 * time.Millisecond}

	var mu sync.Mutex
	var got []models.Location
	sub, err := sim.Watch(OngoingWatchOptions(), func(loc models.Location) {
		mu.Lock()
		got = append(got, loc)
		mu.Unlock()
	}, nil)
	if err != nil {
		t.Fatalf("sim watch failed: %v", err)
	}

	waitFor(t, "sim fixes", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) >= 2
	})
	sub.Stop()
	sub.Stop() // idempotent

	mu.Lock()
	defer mu.Unlock()
	if got[1].Longitude <= got[0].Longitude {
		t.Fatalf("heading 90 should move east: %v then %v", got[0].Longitude, got[1].Longitude)
	}
	if got[0].Accuracy == nil {
		t.Fatal("sim fixes should carry accuracy")
	}
}
