package tui

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/thiagokokada/jj-inspect/internal/highlight"
	"github.com/thiagokokada/jj-inspect/internal/procbridge"
	"github.com/thiagokokada/jj-inspect/internal/render"
	"github.com/thiagokokada/jj-inspect/internal/session"
)

const (
	pageScroll = 10
	watchText  = "repository changed, press r to refresh"
)

// processRunner runs a child with the terminal released. *procbridge.Bridge
// implements it.
type processRunner interface {
	Run(p procbridge.Process) procbridge.Result
}

// fillMsg asks the model to load whatever the last frame showed as loading.
// It is sent after each frame so the loading boundary is drawn first.
type fillMsg struct{}

type watchMsg struct{}

type Options struct {
	Pager       string
	Highlighter *highlight.Highlighter
	Theme       ThemePreference
	// Copy writes to the system clipboard.
	Copy   func(string) error
	Events <-chan struct{}
}

type Model struct {
	sess   *session.Session
	runner processRunner
	pager  string
	hl     *highlight.Highlighter
	styles styles
	keys   keyMap
	input  textinput.Model
	copy   func(string) error
	events <-chan struct{}

	width  int
	height int
}

func NewModel(sess *session.Session, runner processRunner, opts Options) Model {
	in := textinput.New()
	in.Prompt = ":"
	in.CharLimit = 512
	return Model{
		sess:   sess,
		runner: runner,
		pager:  opts.Pager,
		hl:     opts.Highlighter,
		styles: newStyles(paletteFor(opts.Theme)),
		keys:   defaultKeyMap(),
		input:  in,
		copy:   opts.Copy,
		events: opts.Events,
		width:  80,
		height: 24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(fillCmd, m.waitForWatch())
}

func fillCmd() tea.Msg { return fillMsg{} }

func (m Model) waitForWatch() tea.Cmd {
	if m.events == nil {
		return nil
	}
	events := m.events
	return func() tea.Msg {
		if _, ok := <-events; !ok {
			return nil
		}
		return watchMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.syncViewHeight()
		return m, fillCmd
	case fillMsg:
		m.sess.Ensure()
		m.syncViewHeight()
		return m, nil
	case watchMsg:
		if m.sess.Snapshot().Banner.Level == session.BannerNone {
			m.sess.Notify(watchText)
			m.syncViewHeight()
		}
		return m, m.waitForWatch()
	case tea.KeyMsg:
		if m.sess.Mode() == session.ModeCommand {
			return m.updateCommand(msg)
		}
		return m.updateBrowsing(msg)
	}
	return m, nil
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.sess.ClearBanner()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.sess.Quit()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Refresh):
		m.sess.Refresh()
	case key.Matches(msg, m.keys.Down):
		m.sess.MoveFile(1)
	case key.Matches(msg, m.keys.Up):
		m.sess.MoveFile(-1)
	case key.Matches(msg, m.keys.NextCommit):
		m.sess.MoveCommit(1)
	case key.Matches(msg, m.keys.PrevCommit):
		m.sess.MoveCommit(-1)
	case key.Matches(msg, m.keys.PageDown):
		m.sess.Scroll(pageScroll)
	case key.Matches(msg, m.keys.PageUp):
		m.sess.Scroll(-pageScroll)
	case key.Matches(msg, m.keys.LineDown):
		m.sess.Scroll(1)
	case key.Matches(msg, m.keys.LineUp):
		m.sess.Scroll(-1)
	case key.Matches(msg, m.keys.First):
		m.sess.FirstFile()
	case key.Matches(msg, m.keys.Last):
		m.sess.LastFile()
	case key.Matches(msg, m.keys.Approve):
		m.sess.Approve()
	case key.Matches(msg, m.keys.Yank):
		m.yank()
	case key.Matches(msg, m.keys.Open):
		if req, ok := m.sess.OpenPager(); ok {
			m.runProcess(req)
		}
	case key.Matches(msg, m.keys.Command):
		m.sess.BeginCommand()
		if m.sess.Mode() == session.ModeCommand {
			m.input.Reset()
			m.syncViewHeight()
			return m, m.input.Focus()
		}
	}
	m.syncViewHeight()
	return m, fillCmd
}

func (m Model) updateCommand(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		m.input.Blur()
		m.sess.Quit()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Cancel):
		m.input.Reset()
		m.input.Blur()
		m.sess.CancelCommand()
		return m, fillCmd
	case key.Matches(msg, m.keys.Accept):
		line := m.input.Value()
		m.input.Reset()
		m.input.Blur()
		m.sess.ClearBanner()
		if req, ok := m.sess.SubmitCommand(line); ok {
			m.runProcess(req)
		}
		m.syncViewHeight()
		return m, fillCmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// runProcess blocks the event loop until the child exits, so no other
// message is handled while the terminal belongs to it.
func (m *Model) runProcess(req session.ProcessRequest) {
	var p procbridge.Process
	switch req.Kind {
	case session.ProcessPager:
		p = procbridge.Pager(m.pager, highlight.ColorizePatch(req.Text), req.Dir)
	default:
		p = procbridge.Shell(req.Command, req.Dir)
	}
	slog.Debug("running process", slog.String("kind", p.Kind.String()), slog.String("command", p.Command))
	res := m.runner.Run(p)
	m.sess.ProcessExited(req.Kind, res.ExitCode, res.Err)
}

func (m *Model) yank() {
	id, ok := m.sess.Yank()
	if !ok {
		return
	}
	if m.copy == nil {
		m.sess.Notify(id)
		return
	}
	if err := m.copy(id); err != nil {
		slog.Debug("clipboard write", slog.Any("error", err))
		m.sess.Notify("commit id: " + id)
		return
	}
	m.sess.Notify("copied " + id)
}

func (m *Model) syncViewHeight() {
	banner := m.sess.Snapshot().Banner.Level != session.BannerNone
	m.sess.SetViewHeight(render.BodyHeight(m.height, banner))
}
