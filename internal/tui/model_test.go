package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/accball/internal/model"
	"github.com/verte-zerg/accball/internal/motion"
	"github.com/verte-zerg/accball/internal/source"
	"github.com/verte-zerg/accball/internal/store"
)

func sendTick(m *Model, at time.Duration) tea.Cmd {
	_, cmd := m.Update(tickMsg{gen: m.tickGen, at: m.clockStart.Add(at)})
	return cmd
}

func TestWindowSizeCentersBall(t *testing.T) {
	m := NewModel(model.Config{RateHz: 60}, source.NewTilt(nil), nil)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 25})

	vp, known := m.integrator.Viewport()
	if !known || vp.Width != 3200 || vp.Height != 1840 {
		t.Fatalf("unexpected viewport %+v (known=%v)", vp, known)
	}
	st := m.integrator.State()
	if st.X != 1600 || st.Y != 920 || st.Phase() != motion.AwaitingBaseline {
		t.Fatalf("expected centered ball awaiting baseline, got %+v", st)
	}
	if lines := strings.Count(m.View(), "\n") + 1; lines != 25 {
		t.Fatalf("expected view to fill 25 rows, got %d", lines)
	}
}

func TestTicksIntegrateAfterBaseline(t *testing.T) {
	tilt := source.NewTilt(nil)
	m := NewModel(model.Config{RateHz: 60}, tilt, nil)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 25})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})

	if cmd := sendTick(m, 10*time.Millisecond); cmd == nil {
		t.Fatalf("expected next tick to be scheduled")
	}
	if strings.ContainsAny(m.canvas.Render(), "░▒▓█") {
		t.Fatalf("baseline sample must not draw")
	}
	if m.integrator.State().Y != 920 {
		t.Fatalf("baseline sample must not move the ball")
	}

	sendTick(m, 110*time.Millisecond)
	st := m.integrator.State()
	if st.Y <= 920 || st.VY <= 0 {
		t.Fatalf("expected ball to fall after tilting down, got %+v", st)
	}
	if !strings.ContainsAny(m.canvas.Render(), "░▒▓█") {
		t.Fatalf("expected ball to be drawn")
	}
}

func TestTiltKeys(t *testing.T) {
	tilt := source.NewTilt(nil)
	m := NewModel(model.Config{RateHz: 60}, tilt, nil)
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if gx, gy := tilt.Gravity(); gx != 2*source.TiltStep || gy != -source.TiltStep {
		t.Fatalf("unexpected gravity %v,%v", gx, gy)
	}
	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	if gx, gy := tilt.Gravity(); gx != 0 || gy != 0 {
		t.Fatalf("expected level gravity, got %v,%v", gx, gy)
	}
}

func TestTiltKeysIgnoredForWave(t *testing.T) {
	m := NewModel(model.Config{RateHz: 60}, source.NewWave(nil), nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if cmd != nil {
		t.Fatalf("expected no command for disabled key")
	}
}

func TestPauseDropsStaleTicks(t *testing.T) {
	m := NewModel(model.Config{RateHz: 60}, source.NewTilt(nil), nil)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 25})
	sendTick(m, 10*time.Millisecond)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	if cmd := sendTick(m, 20*time.Millisecond); cmd != nil {
		t.Fatalf("paused model must not schedule ticks")
	}
	if !strings.Contains(m.renderFooter(), "paused") {
		t.Fatalf("footer should show paused")
	}

	staleGen := m.tickGen
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	if cmd == nil {
		t.Fatalf("resume must restart ticking")
	}
	if _, cmd := m.Update(tickMsg{gen: staleGen, at: m.clockStart}); cmd != nil {
		t.Fatalf("stale tick must be dropped")
	}
}

func TestRecenterResetsBaseline(t *testing.T) {
	tilt := source.NewTilt(nil)
	m := NewModel(model.Config{RateHz: 60}, tilt, nil)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 25})
	tilt.Nudge(3, 3)
	sendTick(m, 10*time.Millisecond)
	sendTick(m, 200*time.Millisecond)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	st := m.integrator.State()
	if st != (motion.State{X: 1600, Y: 920}) {
		t.Fatalf("expected reset state, got %+v", st)
	}
	if strings.ContainsAny(m.canvas.Render(), "░▒▓█") {
		t.Fatalf("recenter should clear the canvas")
	}
}

func TestReplayFinishes(t *testing.T) {
	samples := []motion.Sample{
		{TimestampNanos: 1_000_000_000},
		{AY: 1, TimestampNanos: 1_100_000_000},
	}
	m := NewModel(model.Config{RateHz: 60}, source.NewReplay(samples, nil), nil)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 25})

	sendTick(m, 10*time.Millisecond)
	sendTick(m, 20*time.Millisecond)
	if cmd := sendTick(m, 30*time.Millisecond); cmd != nil {
		t.Fatalf("finished replay must stop ticking")
	}
	if !m.finished || !strings.Contains(m.renderFooter(), "replay finished") {
		t.Fatalf("expected finished replay")
	}
	// Recorded timestamps drive the integration, not the wall clock.
	if m.integrator.State().LastTimestampNanos != 1_100_000_000 {
		t.Fatalf("unexpected state %+v", m.integrator.State())
	}
}

func TestQuitSavesRecording(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "accball.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	m := NewModel(model.Config{RateHz: 60, Record: true}, source.NewWave(nil), st)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 25})
	for i := 1; i <= 5; i++ {
		sendTick(m, time.Duration(i)*16*time.Millisecond)
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if m.SavedTraceID() == 0 {
		t.Fatalf("expected trace to be saved")
	}

	trace, err := st.GetTrace(context.Background(), m.SavedTraceID())
	if err != nil {
		t.Fatalf("get trace: %v", err)
	}
	if trace.Source != "wave" || trace.Samples != 5 || trace.Width != 3200 || trace.Height != 1840 {
		t.Fatalf("unexpected trace %+v", trace)
	}
}

func TestQuitWithoutRecordingSavesNothing(t *testing.T) {
	m := NewModel(model.Config{RateHz: 60}, source.NewWave(nil), nil)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 25})
	sendTick(m, 16*time.Millisecond)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if m.SavedTraceID() != 0 || len(m.recorded) != 0 {
		t.Fatalf("nothing should be recorded")
	}
}

func TestViewTooSmall(t *testing.T) {
	m := NewModel(model.Config{RateHz: 60}, source.NewWave(nil), nil)
	m.Update(tea.WindowSizeMsg{Width: 5, Height: 5})
	if !strings.Contains(m.View(), "terminal too small") {
		t.Fatalf("expected too-small notice, got %q", m.View())
	}
}

func TestRecordingKeepsResets(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "accball.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	m := NewModel(model.Config{RateHz: 60, Record: true}, source.NewWave(nil), st)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 25})
	sendTick(m, 16*time.Millisecond)
	sendTick(m, 32*time.Millisecond)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	sendTick(m, 48*time.Millisecond)
	m.Update(tea.WindowSizeMsg{Width: 90, Height: 30})
	sendTick(m, 64*time.Millisecond)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	trace, err := st.GetTrace(context.Background(), m.SavedTraceID())
	if err != nil {
		t.Fatalf("get trace: %v", err)
	}
	// Recenter and the first resize land on the same sample.
	if len(trace.Resets) != 2 || trace.Resets[0] != 2 || trace.Resets[1] != 3 {
		t.Fatalf("unexpected resets %v", trace.Resets)
	}
}

func TestReplayRecentersAtResets(t *testing.T) {
	samples := []motion.Sample{
		{TimestampNanos: 1_000_000_000},
		{AY: 5, TimestampNanos: 1_500_000_000},
		{AY: 5, TimestampNanos: 2_000_000_000},
	}
	m := NewModel(model.Config{RateHz: 60}, source.NewReplay(samples, []int{2}), nil)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 25})

	sendTick(m, 10*time.Millisecond)
	sendTick(m, 20*time.Millisecond)
	if m.integrator.State().Y == 920 {
		t.Fatalf("expected ball to move before the reset")
	}
	sendTick(m, 30*time.Millisecond)
	st := m.integrator.State()
	if st != (motion.State{X: 1600, Y: 920, LastTimestampNanos: 2_000_000_000}) {
		t.Fatalf("expected replay to return to baseline, got %+v", st)
	}
}
