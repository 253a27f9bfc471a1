package source

import (
	"math"

	"github.com/verte-zerg/accball/internal/motion"
)

// WaveAmplitude is the peak synthetic acceleration in m/s².
const WaveAmplitude = 2.0

// Wave generates smoothly changing acceleration.
type Wave struct {
	noise *Noise
}

// NewWave returns a Wave source.
func NewWave(noise *Noise) *Wave {
	return &Wave{noise: noise}
}

func (w *Wave) Name() string { return KindWave }

func (w *Wave) Next(ts int64) (motion.Sample, bool) {
	t := float64(ts) / 1e9
	return motion.Sample{
		AX:             WaveAmplitude*math.Sin(t) + w.noise.Next(),
		AY:             WaveAmplitude*math.Cos(t*0.7) + w.noise.Next(),
		TimestampNanos: ts,
	}, true
}
