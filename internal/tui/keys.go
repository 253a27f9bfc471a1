package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Level    key.Binding
	Recenter key.Binding
	Pause    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap(tiltable bool) keyMap {
	k := keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "tilt up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "tilt down")),
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "tilt left")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "tilt right")),
		Level:    key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "level")),
		Recenter: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "recenter")),
		Pause:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
	for _, b := range []*key.Binding{&k.Up, &k.Down, &k.Left, &k.Right, &k.Level} {
		b.SetEnabled(tiltable)
	}
	return k
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Level, k.Pause, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Level},
		{k.Recenter, k.Pause, k.Help, k.Quit},
	}
}
