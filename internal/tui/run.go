package tui

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/thiagokokada/jj-inspect/internal/diffcache"
	"github.com/thiagokokada/jj-inspect/internal/highlight"
	"github.com/thiagokokada/jj-inspect/internal/procbridge"
	"github.com/thiagokokada/jj-inspect/internal/queue"
	"github.com/thiagokokada/jj-inspect/internal/session"
	"github.com/thiagokokada/jj-inspect/internal/stack"
	"github.com/thiagokokada/jj-inspect/internal/vcs"
	"github.com/thiagokokada/jj-inspect/internal/watch"
)

// RunConfig describes the parameters that control a review session.
type RunConfig struct {
	RepoPath        string
	Queue           bool
	QueueDir        string
	Base            string
	Limit           int
	Backend         vcs.Kind
	ApproveCommand  string
	Pager           string
	ThemePreference ThemePreference
	Watch           bool
	SyntaxHighlight bool
	Verbose         bool
	LogFile         string
}

func Run(cfg RunConfig) error {
	if cfg.RepoPath == "" {
		cfg.RepoPath = "."
	}
	closeLog, err := setupLogging(cfg.LogFile, cfg.Verbose)
	if err != nil {
		return err
	}
	defer closeLog()

	backend, err := vcs.Open(cfg.RepoPath, cfg.Backend)
	if err != nil {
		return err
	}
	root := backend.RepoPath()
	slog.Info("opened repository", slog.String("backend", backend.Name()), slog.String("root", root))

	source := stack.Source{
		Mode:  stack.ModeStack,
		Base:  cfg.Base,
		Limit: cfg.Limit,
	}
	var approver session.Approver
	if cfg.Queue {
		dir := cfg.QueueDir
		if dir == "" {
			dir = queue.DefaultDir(root)
		}
		store := queue.New(dir, root, cfg.ApproveCommand)
		source = stack.Source{Mode: stack.ModeQueue, Queue: store, QueueDir: dir}
		approver = store
	}

	sess, err := session.New(session.Context{
		RepoRoot: root,
		Source:   source,
		Resolver: stack.NewResolver(backend, source),
		Cache:    diffcache.New(backend),
		Patches:  backend,
		Approver: approver,
	})
	if err != nil {
		return err
	}

	pref := cfg.ThemePreference
	if pref < ThemeAuto || pref > ThemeDark {
		pref = ThemeAuto
	}
	opts := Options{
		Pager:       procbridge.ResolvePager(cfg.Pager),
		Highlighter: highlight.New(cfg.SyntaxHighlight, paletteFor(pref).isDark()),
		Theme:       pref,
		Copy:        clipboard.WriteAll,
	}
	if clipboard.Unsupported {
		opts.Copy = nil
	}

	if cfg.Watch {
		w, err := watch.Start(watch.Paths(root, source.QueueDir), watch.DefaultDelay)
		if err != nil {
			slog.Warn("file watcher disabled", slog.Any("error", err))
		} else {
			defer w.Close()
			opts.Events = w.Events()
		}
	}

	term := &programTerminal{}
	m := NewModel(sess, procbridge.New(term), opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	term.program = p
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

// setupLogging keeps log output off the terminal the UI draws on.
func setupLogging(path string, verbose bool) (func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	var out io.Writer = io.Discard
	closeFn := func() {}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeFn = func() { f.Close() }
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
	return closeFn, nil
}
