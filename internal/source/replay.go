package source

import "github.com/verte-zerg/accball/internal/motion"

// Replay yields recorded samples in order and ignores the driving clock.
type Replay struct {
	samples []motion.Sample
	resets  map[int]bool
	pos     int
	rebase  bool
}

// NewReplay returns a Replay over samples. resets lists sample indexes that
// start a new baseline. The samples slice is not copied.
func NewReplay(samples []motion.Sample, resets []int) *Replay {
	r := &Replay{samples: samples, resets: make(map[int]bool, len(resets))}
	for _, seq := range resets {
		if seq > 0 {
			r.resets[seq] = true
		}
	}
	return r
}

func (r *Replay) Name() string { return KindReplay }

func (r *Replay) Next(int64) (motion.Sample, bool) {
	if r.pos >= len(r.samples) {
		return motion.Sample{}, false
	}
	s := r.samples[r.pos]
	r.rebase = r.resets[r.pos]
	r.pos++
	return s, true
}

// Rebaseline reports whether the sample last returned by Next was recorded
// right after the ball returned to its baseline.
func (r *Replay) Rebaseline() bool {
	return r.rebase
}

// Progress returns how many samples were replayed and the total.
func (r *Replay) Progress() (done, total int) {
	return r.pos, len(r.samples)
}
