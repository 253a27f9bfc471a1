// Package source produces accelerometer samples for the integrator.
package source

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/accball/internal/motion"
)

// Source kinds accepted by New.
const (
	KindTilt   = "tilt"
	KindWave   = "wave"
	KindReplay = "replay"
)

// Source yields raw accelerometer samples.
type Source interface {
	// Name identifies the source in the UI and in recorded traces.
	Name() string
	// Next returns the sample for the driving clock value ts, or false once
	// the source is exhausted.
	Next(ts int64) (motion.Sample, bool)
}

// Tilter is implemented by sources that can be steered interactively.
type Tilter interface {
	Nudge(dx, dy float64)
	Level()
	Gravity() (gx, gy float64)
}

// Kinds lists the live source kinds in display order.
func Kinds() []string {
	return []string{KindTilt, KindWave}
}

// New constructs a live source by kind.
func New(kind string, noise *Noise) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindTilt:
		return NewTilt(noise), nil
	case KindWave:
		return NewWave(noise), nil
	case KindReplay:
		return nil, fmt.Errorf("replay sources are built from a stored trace")
	default:
		return nil, fmt.Errorf("unknown source %q (available: %s)", kind, strings.Join(Kinds(), ", "))
	}
}
