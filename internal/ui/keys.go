package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the browser keybindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Enter    key.Binding
	Back     key.Binding
	Insights key.Binding
	Quit     key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k")),
		Down:     key.NewBinding(key.WithKeys("down", "j")),
		Top:      key.NewBinding(key.WithKeys("g", "home")),
		Bottom:   key.NewBinding(key.WithKeys("G", "end")),
		Enter:    key.NewBinding(key.WithKeys("enter", "l", "right")),
		Back:     key.NewBinding(key.WithKeys("backspace", "h", "left")),
		Insights: key.NewBinding(key.WithKeys("tab", "i")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c")),
	}
}
