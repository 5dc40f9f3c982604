package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

var errNoProgram = errors.New("terminal not attached")

// programTerminal lets the process bridge be built before the program it
// releases.
type programTerminal struct {
	program *tea.Program
}

func (t *programTerminal) ReleaseTerminal() error {
	if t.program == nil {
		return errNoProgram
	}
	return t.program.ReleaseTerminal()
}

func (t *programTerminal) RestoreTerminal() error {
	if t.program == nil {
		return errNoProgram
	}
	return t.program.RestoreTerminal()
}
