// Package stats analyzes recorded traces and renders reports.
package stats

import (
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/accball/internal/motion"
)

const sparkChars = " .:-=+*#%@"

// Frame is the ball state captured at one redraw.
type Frame struct {
	X     float64
	Y     float64
	Speed float64
}

// Metrics summarizes a trace replayed through the integrator.
type Metrics struct {
	Samples   int
	Frames    int
	Duration  time.Duration
	Rebounds  int
	PeakSpeed float64
	MeanSpeed float64
	Distance  float64
	Final     motion.State
}

type frameSink struct {
	frames []Frame
}

func (s *frameSink) Draw(x, y, _ float64) {
	s.frames = append(s.frames, Frame{X: x, Y: y})
}

// Analyze replays samples from a freshly reset ball in vp and collects
// per-redraw frames. The ball returns to its baseline before each sample
// index listed in resets. Speeds are in viewport units per second.
func Analyze(samples []motion.Sample, resets []int, vp motion.Viewport) (Metrics, []Frame) {
	sink := &frameSink{}
	in := motion.NewIntegrator(sink)
	start := in.ViewportChanged(vp)

	resetAt := make(map[int]bool, len(resets))
	for _, seq := range resets {
		resetAt[seq] = true
	}
	prevX, prevY := start.X, start.Y
	m := Metrics{Samples: len(samples)}
	var speedSum float64
	for i, s := range samples {
		if i > 0 && resetAt[i] {
			st := in.ViewportChanged(vp)
			prevX, prevY = st.X, st.Y
		}
		if !in.OnSample(s) {
			continue
		}
		f := &sink.frames[len(sink.frames)-1]
		f.Speed = in.State().Speed()
		speedSum += f.Speed
		if f.Speed > m.PeakSpeed {
			m.PeakSpeed = f.Speed
		}
		m.Distance += math.Hypot(f.X-prevX, f.Y-prevY)
		prevX, prevY = f.X, f.Y
	}

	m.Frames = len(sink.frames)
	if m.Frames > 0 {
		m.MeanSpeed = speedSum / float64(m.Frames)
	}
	if len(samples) > 1 {
		if d := samples[len(samples)-1].TimestampNanos - samples[0].TimestampNanos; d > 0 {
			m.Duration = time.Duration(d)
		}
	}
	m.Rebounds = in.Rebounds()
	m.Final = in.State()
	return m, sink.frames
}

// SpeedSeries extracts frame speeds.
func SpeedSeries(frames []Frame) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = f.Speed
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Downsample averages values into at most width buckets.
func Downsample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		lo := i * len(values) / width
		hi := (i + 1) * len(values) / width
		var sum float64
		for _, v := range values[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
