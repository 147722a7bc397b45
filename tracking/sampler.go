package tracking

import (
	"fmt"
	"time"

	"delivery-agent/models"
)

// WatchOptions mirror the device position-stream configuration.
type WatchOptions struct {
	HighAccuracy bool
	Timeout      time.Duration // deadline for a single fix
	MaxSampleAge time.Duration // oldest acceptable cached fix; 0 forces a fresh one
}

// FirstFixOptions are used for the initial fix: fresh reading, generous
// deadline.
func FirstFixOptions() WatchOptions {
	return WatchOptions{HighAccuracy: true, Timeout: 10 * time.Second, MaxSampleAge: 0}
}

// OngoingWatchOptions are used for the continuous watch after the first fix.
func OngoingWatchOptions() WatchOptions {
	return WatchOptions{HighAccuracy: true, Timeout: 5 * time.Second, MaxSampleAge: 30 * time.Second}
}

// ErrorKind classifies position-source failures.
type ErrorKind int

const (
	PermissionDenied ErrorKind = iota + 1
	PositionUnavailable
	FixTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case PermissionDenied:
		return "permission_denied"
	case PositionUnavailable:
		return "position_unavailable"
	case FixTimeout:
		return "timeout"
	}
	return "unknown"
}

// WatchError is a single failed fix. It is delivered through the watch's
// error callback and never terminates the watch itself.
type WatchError struct {
	Kind ErrorKind
	Err  error
}

func (e *WatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("position fix failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("position fix failed (%s)", e.Kind)
}

func (e *WatchError) Unwrap() error { return e.Err }

// Subscription is a live watch on the position source. Stop releases the
// underlying sensor loop; failing to call it leaks the loop. Stop is
// idempotent.
type Subscription interface {
	ID() string
	Stop()
}

// Sampler is an injectable continuous position source. Current delivers one
// fix under the given options. Watch keeps delivering fixes and errors until
// the returned Subscription is stopped; a failed fix surfaces through onError
// and the watch continues.
type Sampler interface {
	// Available is the one-shot permission/capability probe.
	Available() bool
	Current(opts WatchOptions) (models.Location, error)
	Watch(opts WatchOptions, onSample func(models.Location), onError func(*WatchError)) (Subscription, error)
}
