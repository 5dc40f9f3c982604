// Package procbridge hands the terminal to a child process and takes it back.
package procbridge

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultPager is used when neither --pager nor $PAGER is set.
const DefaultPager = "less -R"

// Terminal is implemented by *tea.Program.
type Terminal interface {
	ReleaseTerminal() error
	RestoreTerminal() error
}

type Kind int

const (
	KindPager Kind = iota
	KindShell
)

func (k Kind) String() string {
	if k == KindShell {
		return "shell"
	}
	return "pager"
}

type Process struct {
	Kind    Kind
	Command string // run through sh -c
	Dir     string
	Stdin   io.Reader // nil inherits the terminal
	// Pause waits for enter after the child exits so its output stays
	// readable before the UI redraws.
	Pause bool
}

// Pager returns a pager process reading text on stdin.
func Pager(pager, text, dir string) Process {
	if strings.TrimSpace(pager) == "" {
		pager = DefaultPager
	}
	return Process{Kind: KindPager, Command: pager, Dir: dir, Stdin: strings.NewReader(text)}
}

// Shell returns a process running line in dir.
func Shell(line, dir string) Process {
	return Process{Kind: KindShell, Command: line, Dir: dir, Pause: true}
}

// ResolvePager picks the --pager flag, then $PAGER, then DefaultPager.
func ResolvePager(flagValue string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv("PAGER")); v != "" {
		return v
	}
	return DefaultPager
}

type Result struct {
	Kind     Kind
	ExitCode int // -1 when the child did not exit normally
	Err      error
}

type Bridge struct {
	term   Terminal
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func New(term Terminal) *Bridge {
	return &Bridge{term: term, stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
}

// NewWithStreams is like New with explicit standard streams.
func NewWithStreams(term Terminal, stdin io.Reader, stdout, stderr io.Writer) *Bridge {
	return &Bridge{term: term, stdin: stdin, stdout: stdout, stderr: stderr}
}

// Run releases the terminal, runs p to completion and restores the terminal
// on every path out, including a failed wait or a panic.
func (b *Bridge) Run(p Process) (res Result) {
	res = Result{Kind: p.Kind, ExitCode: -1}
	if err := b.term.ReleaseTerminal(); err != nil {
		res.Err = fmt.Errorf("release terminal: %w", err)
		return res
	}
	defer func() {
		if err := b.term.RestoreTerminal(); err != nil {
			res.Err = errors.Join(res.Err, fmt.Errorf("restore terminal: %w", err))
		}
	}()

	cmd := exec.Command("sh", "-c", p.Command)
	cmd.Dir = p.Dir
	cmd.Stdin = b.stdin
	if p.Stdin != nil {
		cmd.Stdin = p.Stdin
	}
	cmd.Stdout = b.stdout
	cmd.Stderr = b.stderr

	start := time.Now()
	err := cmd.Run()
	res.ExitCode, res.Err = exitStatus(err)
	slog.Debug("process exited",
		slog.String("kind", p.Kind.String()),
		slog.Int("exit", res.ExitCode),
		slog.Duration("elapsed", time.Since(start)),
		slog.Any("error", res.Err),
	)
	if p.Pause {
		fmt.Fprintf(b.stdout, "\n[exit %d] press enter to return", res.ExitCode)
		if _, err := bufio.NewReader(b.stdin).ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
			res.Err = errors.Join(res.Err, err)
		}
	}
	return res
}

// exitStatus separates a non-zero exit, which is reported but not an error,
// from a child that could not start or was killed.
func exitStatus(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		if code := ee.ExitCode(); code >= 0 {
			return code, nil
		}
	}
	return -1, err
}
