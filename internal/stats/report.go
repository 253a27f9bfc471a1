package stats

import (
	"context"

	"github.com/verte-zerg/accball/internal/model"
	"github.com/verte-zerg/accball/internal/motion"
	"github.com/verte-zerg/accball/internal/store"
)

// Report contains precomputed data for trace rendering.
type Report struct {
	Trace    model.Trace
	Viewport motion.Viewport
	Metrics  Metrics
	Frames   []Frame
}

// DefaultViewport is the portrait phone surface used for traces without a
// usable recorded size.
var DefaultViewport = motion.Viewport{Width: 1080, Height: 2000}

// Usable reports whether the ball fits inside vp.
func Usable(vp motion.Viewport) bool {
	return vp.Width > 2*motion.Radius && vp.Height > 2*motion.Radius
}

// RecordedViewport returns the surface a trace was recorded on, or
// DefaultViewport when that size cannot hold the ball.
func RecordedViewport(trace model.Trace) motion.Viewport {
	vp := motion.Viewport{Width: trace.Width, Height: trace.Height}
	if !Usable(vp) {
		return DefaultViewport
	}
	return vp
}

// BuildReport loads a stored trace and replays it in vp. A zero vp replays
// it on its recorded surface.
func BuildReport(ctx context.Context, st *store.Store, id int64, vp motion.Viewport) (Report, error) {
	trace, err := st.GetTrace(ctx, id)
	if err != nil {
		return Report{}, err
	}
	if vp == (motion.Viewport{}) {
		vp = RecordedViewport(trace)
	}
	samples, err := st.LoadSamples(ctx, id)
	if err != nil {
		return Report{}, err
	}
	metrics, frames := Analyze(samples, trace.Resets, vp)
	return Report{
		Trace:    trace,
		Viewport: vp,
		Metrics:  metrics,
		Frames:   frames,
	}, nil
}
