// Package motion integrates accelerometer samples into ball position updates.
package motion

import "math"

const (
	// Radius is the ball radius in viewport units.
	Radius = 150.0
	// Scale converts integrated displacement into viewport units.
	Scale = 1000.0
	// Damping divides the speed on every wall rebound.
	Damping = 1.5
)

const nanosPerSecond = 1e9

// Sample is one raw accelerometer reading.
type Sample struct {
	AX             float64
	AY             float64
	TimestampNanos int64
}

// Viewport is the drawable area in viewport units.
type Viewport struct {
	Width  float64
	Height float64
}

// State is the mutable simulation state of the ball.
// LastTimestampNanos == 0 means no sample has been seen since the last reset.
type State struct {
	X                  float64
	Y                  float64
	VX                 float64
	VY                 float64
	LastTimestampNanos int64
}

// Phase reports whether a state is still waiting for its baseline sample.
type Phase int

const (
	AwaitingBaseline Phase = iota
	Integrating
)

func (p Phase) String() string {
	switch p {
	case AwaitingBaseline:
		return "awaiting-baseline"
	case Integrating:
		return "integrating"
	default:
		return "unknown"
	}
}

// Phase returns the integration phase of the state.
func (s State) Phase() Phase {
	if s.LastTimestampNanos == 0 {
		return AwaitingBaseline
	}
	return Integrating
}

// Speed returns the velocity magnitude in viewport units per second.
func (s State) Speed() float64 {
	return math.Hypot(s.VX, s.VY) * Scale
}

// Edges is a bitmask of walls that reflected the ball during a step.
type Edges uint8

const (
	EdgeLeft Edges = 1 << iota
	EdgeRight
	EdgeTop
	EdgeBottom
)

// Count returns how many walls are set.
func (e Edges) Count() int {
	n := 0
	for e != 0 {
		n += int(e & 1)
		e >>= 1
	}
	return n
}

// Result is the outcome of a single integration step.
type Result struct {
	State  State
	Redraw bool
	Edges  Edges
}

// Reset centers the ball in the viewport with zero velocity and clears the
// timestamp baseline.
func Reset(vp Viewport) State {
	return State{
		X: vp.Width / 2,
		Y: vp.Height / 2,
	}
}

// Step advances the state by one sample and reports whether the ball should
// be redrawn.
func Step(st State, s Sample, vp Viewport) (State, bool) {
	res := StepDetail(st, s, vp)
	return res.State, res.Redraw
}

// StepDetail is Step with the set of walls that reflected the ball.
func StepDetail(st State, s Sample, vp Viewport) Result {
	if st.LastTimestampNanos == 0 {
		st.LastTimestampNanos = s.TimestampNanos
		return Result{State: st}
	}

	dt := float64(s.TimestampNanos-st.LastTimestampNanos) / nanosPerSecond
	if dt < 0 {
		dt = 0
	}
	st.LastTimestampNanos = s.TimestampNanos

	ax := -s.AX
	ay := s.AY

	dx := st.VX*dt + ax*dt*dt/2
	dy := st.VY*dt + ay*dt*dt/2
	st.X += dx * Scale
	st.Y += dy * Scale
	st.VX += ax * dt
	st.VY += ay * dt

	var edges Edges
	// Only reflect while still moving outward; an inward-moving ball past a
	// wall is left alone for this step.
	if st.X-Radius < 0 && st.VX < 0 {
		st.VX = -st.VX / Damping
		st.X = Radius
		edges |= EdgeLeft
	} else if st.X+Radius > vp.Width && st.VX > 0 {
		st.VX = -st.VX / Damping
		st.X = vp.Width - Radius
		edges |= EdgeRight
	}
	if st.Y-Radius < 0 && st.VY < 0 {
		st.VY = -st.VY / Damping
		st.Y = Radius
		edges |= EdgeTop
	} else if st.Y+Radius > vp.Height && st.VY > 0 {
		st.VY = -st.VY / Damping
		st.Y = vp.Height - Radius
		edges |= EdgeBottom
	}

	return Result{State: st, Redraw: true, Edges: edges}
}
