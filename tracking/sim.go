package tracking

import (
	"math"
	"sync"
	"time"

	"delivery-agent/models"

	"github.com/google/uuid"
)

const metersPerDegreeLat = 111320.0

// SimSampler is a simulated position source for development and tests: it
// walks a fixed heading at partner speed, emitting a fix per interval. It
// lets the agent run end to end on machines without a GPS device.
type SimSampler struct {
	StartLat float64
	StartLng float64
	SpeedMPS float64       // walking/riding speed in meters per second
	Heading  float64       // degrees clockwise from north
	Interval time.Duration // time between emitted fixes
}

func (s *SimSampler) Available() bool { return true }

// Current returns the simulated position immediately; the simulator never
// misses a fix, so the first-fix timeout never triggers here.
func (s *SimSampler) Current(_ WatchOptions) (models.Location, error) {
	accuracy := 5.0
	return models.Location{
		Latitude:   s.StartLat,
		Longitude:  s.StartLng,
		Accuracy:   &accuracy,
		CapturedAt: time.Now(),
	}, nil
}

// Watch emits a fix per interval, each one advanced along the heading by
// SpeedMPS * interval meters from the last.
func (s *SimSampler) Watch(_ WatchOptions, onSample func(models.Location), _ func(*WatchError)) (Subscription, error) {
	interval := s.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	sub := &simSubscription{id: uuid.NewString(), done: make(chan struct{})}

	go func() {
		lat, lng := s.StartLat, s.StartLng
		step := s.SpeedMPS * interval.Seconds()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-sub.done:
				return
			case <-ticker.C:
				rad := s.Heading * math.Pi / 180
				lat += step * math.Cos(rad) / metersPerDegreeLat
				lng += step * math.Sin(rad) / (metersPerDegreeLat * math.Cos(lat*math.Pi/180))
				accuracy := 5.0
				onSample(models.Location{
					Latitude:   lat,
					Longitude:  lng,
					Accuracy:   &accuracy,
					CapturedAt: time.Now(),
				})
			}
		}
	}()

	return sub, nil
}

type simSubscription struct {
	id   string
	once sync.Once
	done chan struct{}
}

func (s *simSubscription) ID() string { return s.id }

func (s *simSubscription) Stop() {
	s.once.Do(func() { close(s.done) })
}
