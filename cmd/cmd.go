package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/thiagokokada/jj-inspect/internal/buildinfo"
	"github.com/thiagokokada/jj-inspect/internal/queue"
	"github.com/thiagokokada/jj-inspect/internal/stack"
	"github.com/thiagokokada/jj-inspect/internal/tui"
	"github.com/thiagokokada/jj-inspect/internal/vcs"
)

// runUI is replaced in tests.
var runUI = tui.Run

func Run() error {
	return run(os.Args[1:], os.Stdout)
}

func run(args []string, stdout io.Writer) error {
	cfg, done, err := parse(args, stdout)
	if err != nil || done {
		return err
	}
	return runUI(cfg)
}

// parse returns done when the invocation was fully handled, as with
// --version or --help.
func parse(args []string, stdout io.Writer) (tui.RunConfig, bool, error) {
	fs := flag.NewFlagSet("jj-inspect", flag.ContinueOnError)
	repo := fs.String("repo", "", "repository path (default: current directory)")
	queueMode := fs.Bool("queue", false, "review the commit queue instead of the current stack")
	base := fs.String("base", "", "base revision of the stack (default: trunk of the repository)")
	limit := fs.Int("limit", stack.DefaultLimit, "maximum number of commits in stack mode (0 for no limit)")
	backend := fs.String("backend", string(vcs.KindAuto), "version control backend: auto, jj, or git")
	approveCmd := fs.String("approve-cmd", queue.DefaultApproveCommand, "command run to approve a queue entry; the commit id is appended")
	queueDir := fs.String("queue-dir", "", "queue directory (default: <repo>/.ai/internal/commit-queue)")
	pager := fs.String("pager", "", "pager for full diffs (default: $PAGER or less -R)")
	mode := fs.String("mode", tui.ThemeAuto.String(), "color mode: auto, light, or dark")
	noWatch := fs.Bool("nowatch", false, "disable change notices when the repository or queue changes")
	noSyntax := fs.Bool("nosyntax", false, "disable syntax highlighting in the diff pane")
	verbose := fs.Bool("verbose", false, "enable verbose logging")
	logFile := fs.String("log-file", "", "write logs to this file")
	showVersion := fs.Bool("version", false, "print version information and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return tui.RunConfig{}, true, nil
		}
		return tui.RunConfig{}, false, err
	}
	if *showVersion {
		fmt.Fprintln(stdout, buildinfo.VersionWithTags())
		return tui.RunConfig{}, true, nil
	}
	kind, err := vcs.ParseKind(*backend)
	if err != nil {
		return tui.RunConfig{}, false, err
	}
	if *limit < 0 {
		return tui.RunConfig{}, false, fmt.Errorf("invalid --limit %d", *limit)
	}
	repoPath := *repo
	if remaining := fs.Args(); repoPath == "" && len(remaining) > 0 {
		repoPath = remaining[len(remaining)-1]
	}
	if repoPath == "" {
		repoPath = "."
	}
	return tui.RunConfig{
		RepoPath:        repoPath,
		Queue:           *queueMode,
		QueueDir:        *queueDir,
		Base:            *base,
		Limit:           *limit,
		Backend:         kind,
		ApproveCommand:  *approveCmd,
		Pager:           *pager,
		ThemePreference: tui.ThemePreferenceFromString(*mode),
		Watch:           !*noWatch,
		SyntaxHighlight: !*noSyntax,
		Verbose:         *verbose,
		LogFile:         *logFile,
	}, false, nil
}
