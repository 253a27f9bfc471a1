package source

import "github.com/verte-zerg/accball/internal/motion"

const (
	// TiltStep is the gravity change per nudge in m/s².
	TiltStep = 0.5
	// MaxTilt bounds each gravity component in m/s².
	MaxTilt = 9.81
)

// Tilt simulates a handheld device tilted from the keyboard. Gravity is kept
// in screen space and converted to the raw sensor convention on output.
type Tilt struct {
	noise *Noise
	gx    float64
	gy    float64
}

// NewTilt returns a level Tilt source.
func NewTilt(noise *Noise) *Tilt {
	return &Tilt{noise: noise}
}

func (t *Tilt) Name() string { return KindTilt }

// Nudge changes the screen-space gravity by dx, dy steps.
func (t *Tilt) Nudge(dx, dy float64) {
	t.gx = clampTilt(t.gx + dx*TiltStep)
	t.gy = clampTilt(t.gy + dy*TiltStep)
}

// Level zeroes the gravity vector.
func (t *Tilt) Level() {
	t.gx = 0
	t.gy = 0
}

// Gravity returns the screen-space gravity.
func (t *Tilt) Gravity() (gx, gy float64) {
	return t.gx, t.gy
}

func (t *Tilt) Next(ts int64) (motion.Sample, bool) {
	// The sensor reports the horizontal axis mirrored.
	return motion.Sample{
		AX:             -t.gx + t.noise.Next(),
		AY:             t.gy + t.noise.Next(),
		TimestampNanos: ts,
	}, true
}

func clampTilt(v float64) float64 {
	if v > MaxTilt {
		return MaxTilt
	}
	if v < -MaxTilt {
		return -MaxTilt
	}
	return v
}
