package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Down       key.Binding
	Up         key.Binding
	NextCommit key.Binding
	PrevCommit key.Binding
	PageDown   key.Binding
	PageUp     key.Binding
	LineDown   key.Binding
	LineUp     key.Binding
	First      key.Binding
	Last       key.Binding
	Refresh    key.Binding
	Open       key.Binding
	Command    key.Binding
	Approve    key.Binding
	Yank       key.Binding
	Quit       key.Binding

	// command mode
	Accept    key.Binding
	Cancel    key.Binding
	ForceQuit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Down:       key.NewBinding(key.WithKeys("j", "down")),
		Up:         key.NewBinding(key.WithKeys("k", "up")),
		NextCommit: key.NewBinding(key.WithKeys("]")),
		PrevCommit: key.NewBinding(key.WithKeys("[")),
		PageDown:   key.NewBinding(key.WithKeys("pgdown")),
		PageUp:     key.NewBinding(key.WithKeys("pgup")),
		LineDown:   key.NewBinding(key.WithKeys("J")),
		LineUp:     key.NewBinding(key.WithKeys("K")),
		First:      key.NewBinding(key.WithKeys("g", "home")),
		Last:       key.NewBinding(key.WithKeys("G", "end")),
		Refresh:    key.NewBinding(key.WithKeys("r")),
		Open:       key.NewBinding(key.WithKeys("enter")),
		Command:    key.NewBinding(key.WithKeys(":")),
		Approve:    key.NewBinding(key.WithKeys("A")),
		Yank:       key.NewBinding(key.WithKeys("y")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c")),
		Accept:     key.NewBinding(key.WithKeys("enter")),
		Cancel:     key.NewBinding(key.WithKeys("esc")),
		ForceQuit:  key.NewBinding(key.WithKeys("ctrl+c")),
	}
}
