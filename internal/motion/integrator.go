package motion

// RenderSink draws a disc of the given radius centered at (x, y) on a
// cleared surface.
type RenderSink interface {
	Draw(x, y, radius float64)
}

// Integrator owns a State and feeds redraws to a RenderSink. It is not safe
// for concurrent use; events must be delivered sequentially.
type Integrator struct {
	sink     RenderSink
	state    State
	viewport Viewport
	known    bool
	rebounds int
}

// NewIntegrator returns an Integrator that draws to sink. A nil sink is
// allowed for headless use.
func NewIntegrator(sink RenderSink) *Integrator {
	return &Integrator{sink: sink}
}

// ViewportChanged stores the new viewport and resets the state.
func (i *Integrator) ViewportChanged(vp Viewport) State {
	i.viewport = vp
	i.known = true
	i.state = Reset(vp)
	return i.state
}

// OnSample integrates one sample. It returns true when the sink was asked to
// redraw. Samples that arrive before any viewport is known are dropped.
func (i *Integrator) OnSample(s Sample) bool {
	if !i.known {
		return false
	}
	res := StepDetail(i.state, s, i.viewport)
	i.state = res.State
	i.rebounds += res.Edges.Count()
	if !res.Redraw {
		return false
	}
	if i.sink != nil {
		i.sink.Draw(i.state.X, i.state.Y, Radius)
	}
	return true
}

// State returns the current state.
func (i *Integrator) State() State {
	return i.state
}

// Viewport returns the current viewport and whether one has been set.
func (i *Integrator) Viewport() (Viewport, bool) {
	return i.viewport, i.known
}

// Rebounds returns the number of wall reflections since construction.
func (i *Integrator) Rebounds() int {
	return i.rebounds
}
