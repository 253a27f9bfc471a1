// Package model defines shared data structures.
package model

import "time"

// Config defines run settings for the interactive screen.
type Config struct {
	Source string
	RateHz int
	Noise  float64
	Record bool
}

// TraceFilter defines filters for listing stored traces.
type TraceFilter struct {
	Source string
	Since  *time.Time
	Last   int
}

// Trace describes a recorded run of accelerometer samples.
type Trace struct {
	ID        int64
	StartedAt time.Time
	EndedAt   time.Time
	Source    string
	Width     float64
	Height    float64
	Samples   int
	// Resets lists sample indexes where the live run returned to its
	// baseline (resize or recenter). Index 0 is implicit.
	Resets []int
}

// Duration returns the wall-clock length of the trace.
func (t Trace) Duration() time.Duration {
	if t.EndedAt.Before(t.StartedAt) {
		return 0
	}
	return t.EndedAt.Sub(t.StartedAt)
}
