package source

import (
	"math/rand"
	"time"
)

// Noise produces zero-mean jitter added to synthetic samples.
type Noise struct {
	rnd       *rand.Rand
	amplitude float64
}

// NewNoise returns a Noise seeded with the current time.
func NewNoise(amplitude float64) *Noise {
	return NewSeededNoise(amplitude, time.Now().UnixNano())
}

// NewSeededNoise returns a Noise with a fixed seed.
func NewSeededNoise(amplitude float64, seed int64) *Noise {
	return &Noise{rnd: rand.New(rand.NewSource(seed)), amplitude: amplitude}
}

// Next returns a value in [-amplitude, amplitude).
func (n *Noise) Next() float64 {
	if n == nil || n.amplitude <= 0 {
		return 0
	}
	return (n.rnd.Float64()*2 - 1) * n.amplitude
}
