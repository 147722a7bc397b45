package models

import "time"

// Location is a single normalized position fix. A Location is immutable once
// captured; each new sample supersedes the previous one rather than mutating
// it.
type Location struct {
	Latitude   float64   `json:"lat"`
	Longitude  float64   `json:"lng"`
	Accuracy   *float64  `json:"accuracy,omitempty"` // meters; absent when the sensor did not report one
	CapturedAt time.Time `json:"timestamp"`
}
