package session

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/thiagokokada/jj-inspect/internal/diffcache"
	"github.com/thiagokokada/jj-inspect/internal/queue"
	"github.com/thiagokokada/jj-inspect/internal/stack"
	"github.com/thiagokokada/jj-inspect/internal/vcs"
)

type Mode int

const (
	ModeBrowsing Mode = iota
	ModeFullDiffPager
	ModeCommand
	ModeQuitting
)

func (m Mode) String() string {
	switch m {
	case ModeFullDiffPager:
		return "pager"
	case ModeCommand:
		return "command"
	case ModeQuitting:
		return "quitting"
	default:
		return "browsing"
	}
}

type Resolver interface {
	Resolve() (stack.Resolved, error)
}

type Approver interface {
	Approve(id string) (queue.Entry, error)
}

type PatchSource interface {
	PatchText(id, path string) (string, error)
}

// Context is built once at startup and carries everything the session
// talks to.
type Context struct {
	RepoRoot string
	Source   stack.Source
	Resolver Resolver
	Cache    *diffcache.Cache
	Patches  PatchSource
	Approver Approver // nil outside queue mode
}

type BannerLevel int

const (
	BannerNone BannerLevel = iota
	BannerInfo
	BannerError
)

type Banner struct {
	Level BannerLevel
	Text  string
}

type ProcessKind int

const (
	ProcessPager ProcessKind = iota
	ProcessShell
)

// ProcessRequest describes a child process the caller must run with the
// terminal released, reporting back through ProcessExited.
type ProcessRequest struct {
	Kind    ProcessKind
	Dir     string
	Text    string // pager input
	Command string // shell command line
}

type Session struct {
	ctx        Context
	stack      stack.Resolved
	startupErr error

	commit int
	file   int
	scroll int
	mode   Mode

	viewHeight int
	banner     Banner
}

// New resolves the initial stack. Only a missing backend binary is returned;
// any other resolution failure starts the session in an error display that a
// refresh can recover from.
func New(ctx Context) (*Session, error) {
	s := &Session{ctx: ctx, viewHeight: 1}
	res, err := ctx.Resolver.Resolve()
	if err != nil {
		if vcs.IsMissingBackend(err) {
			return nil, err
		}
		slog.Warn("stack resolution failed", slog.Any("error", err))
		s.startupErr = err
		s.stack = stack.Resolved{Mode: ctx.Source.Mode}
		return s, nil
	}
	s.stack = res
	return s, nil
}

func (s *Session) Mode() Mode { return s.mode }

func (s *Session) CommitIndex() int { return s.commit }

func (s *Session) FileIndex() int { return s.file }

func (s *Session) ScrollOffset() int { return s.scroll }

func (s *Session) Len() int { return len(s.stack.Items) }

func (s *Session) current() (stack.Item, bool) {
	if s.commit < 0 || s.commit >= len(s.stack.Items) {
		return stack.Item{}, false
	}
	return s.stack.Items[s.commit], true
}

// files returns the current commit's file list, filling the cache if needed.
func (s *Session) files() []vcs.FileChange {
	item, ok := s.current()
	if !ok || !item.Resolved() {
		return nil
	}
	return s.ctx.Cache.Files(item.Commit.ID).Changes
}

func (s *Session) selected() (vcs.FileChange, bool) {
	files := s.files()
	if s.file < 0 || s.file >= len(files) {
		return vcs.FileChange{}, false
	}
	return files[s.file], true
}

func (s *Session) diffRows() int {
	item, ok := s.current()
	if !ok {
		return 0
	}
	fc, ok := s.selected()
	if !ok {
		return 0
	}
	return s.ctx.Cache.Diff(item.Commit.ID, fc.Path).Rows()
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}

func (s *Session) clampScroll() {
	s.scroll = clamp(s.scroll, 0, s.diffRows()-s.viewHeight)
}

// cachedDiffRows is diffRows without fetching. ok is false while the
// selected diff is not cached yet.
func (s *Session) cachedDiffRows() (int, bool) {
	item, ok := s.current()
	if !ok || !item.Resolved() {
		return 0, true
	}
	files := s.ctx.Cache.PeekFiles(item.Commit.ID)
	if files.State == diffcache.StateMissing {
		return 0, false
	}
	if s.file < 0 || s.file >= len(files.Changes) {
		return 0, true
	}
	d := s.ctx.Cache.PeekDiff(item.Commit.ID, files.Changes[s.file].Path)
	if d.State == diffcache.StateMissing {
		return 0, false
	}
	return d.Rows(), true
}

// SetViewHeight records how many diff rows fit on screen. It never fetches,
// so a diff that is not cached yet stays on its loading boundary until
// Ensure runs.
func (s *Session) SetViewHeight(h int) {
	s.viewHeight = max(h, 1)
	if rows, ok := s.cachedDiffRows(); ok {
		s.scroll = clamp(s.scroll, 0, rows-s.viewHeight)
	}
}

func (s *Session) browsing() bool { return s.mode == ModeBrowsing }

func (s *Session) MoveFile(delta int) {
	if !s.browsing() {
		return
	}
	n := len(s.files())
	if n == 0 {
		return
	}
	next := clamp(s.file+delta, 0, n-1)
	if next != s.file {
		s.file = next
		s.scroll = 0
	}
}

func (s *Session) FirstFile() {
	if !s.browsing() {
		return
	}
	s.file = 0
	s.scroll = 0
}

func (s *Session) LastFile() {
	if !s.browsing() {
		return
	}
	s.file = max(len(s.files())-1, 0)
	s.scroll = 0
}

// MoveCommit steps through the stack. Any change of commit resets the file
// selection and scroll.
func (s *Session) MoveCommit(delta int) {
	if !s.browsing() {
		return
	}
	n := len(s.stack.Items)
	if n == 0 {
		return
	}
	s.setCommit(clamp(s.commit+delta, 0, n-1))
}

func (s *Session) setCommit(i int) {
	if i == s.commit {
		return
	}
	s.commit = i
	s.file = 0
	s.scroll = 0
}

func (s *Session) Scroll(delta int) {
	if !s.browsing() {
		return
	}
	s.scroll += delta
	s.clampScroll()
}

// Ensure fills the cache for whatever is currently on screen.
func (s *Session) Ensure() {
	if _, ok := s.selected(); ok {
		s.clampScroll()
	}
}

// Refresh re-resolves the stack and drops every cached file list and diff.
// Indices are kept where still valid. On failure the previous stack stays.
func (s *Session) Refresh() {
	if !s.browsing() {
		return
	}
	res, err := s.ctx.Resolver.Resolve()
	if err != nil {
		slog.Warn("refresh failed", slog.Any("error", err))
		if s.startupErr != nil {
			s.startupErr = err
		}
		s.Fail(fmt.Errorf("refresh: %w", err))
		return
	}
	s.stack = res
	s.startupErr = nil
	s.ctx.Cache.Reset()
	s.commit = clamp(s.commit, 0, len(res.Items)-1)
	if n := len(s.files()); s.file >= n {
		s.file = max(n-1, 0)
		s.scroll = 0
	}
	s.clampScroll()
	s.Notify(fmt.Sprintf("refreshed: %d commits", len(res.Items)))
}

// OpenPager prepares the full diff of the selected file, or of the whole
// commit when no file is selected.
func (s *Session) OpenPager() (ProcessRequest, bool) {
	if !s.browsing() {
		return ProcessRequest{}, false
	}
	item, ok := s.current()
	if !ok || !item.Resolved() {
		s.Notify("nothing to show")
		return ProcessRequest{}, false
	}
	path := ""
	if fc, ok := s.selected(); ok {
		path = fc.Path
	}
	text, err := s.ctx.Patches.PatchText(item.Commit.ID, path)
	if err != nil {
		s.Fail(err)
		return ProcessRequest{}, false
	}
	s.mode = ModeFullDiffPager
	return ProcessRequest{Kind: ProcessPager, Dir: s.ctx.RepoRoot, Text: text}, true
}

func (s *Session) BeginCommand() {
	if s.browsing() {
		s.mode = ModeCommand
	}
}

func (s *Session) CancelCommand() {
	if s.mode == ModeCommand {
		s.mode = ModeBrowsing
	}
}

// SubmitCommand accepts the entered line. The session stays in command mode
// until ProcessExited is reported.
func (s *Session) SubmitCommand(line string) (ProcessRequest, bool) {
	if s.mode != ModeCommand {
		return ProcessRequest{}, false
	}
	if line == "" {
		s.CancelCommand()
		return ProcessRequest{}, false
	}
	return ProcessRequest{Kind: ProcessShell, Dir: s.ctx.RepoRoot, Command: line}, true
}

// ProcessExited returns to browsing. Navigation state is untouched.
func (s *Session) ProcessExited(kind ProcessKind, exitCode int, err error) {
	if s.mode == ModeQuitting {
		return
	}
	s.mode = ModeBrowsing
	switch {
	case err != nil && kind == ProcessPager:
		s.Fail(fmt.Errorf("pager: %w", err))
	case err != nil:
		s.Fail(fmt.Errorf("command: %w", err))
	case kind == ProcessShell:
		s.Notify(fmt.Sprintf("command exited %d", exitCode))
	}
	s.clampScroll()
}

// Approve runs the approval command for the current queue entry and moves on
// to the next unapproved entry when it succeeds.
func (s *Session) Approve() {
	if !s.browsing() {
		return
	}
	if s.stack.Mode != stack.ModeQueue || s.ctx.Approver == nil {
		s.Notify("approval is only available in queue mode")
		return
	}
	item, ok := s.current()
	if !ok || item.Entry == nil {
		return
	}
	if !item.Resolved() {
		s.Notify("cannot approve an unresolved commit")
		return
	}
	if item.Entry.Approved() {
		s.Notify("already approved")
		return
	}
	entry, err := s.ctx.Approver.Approve(item.Entry.CommitID)
	if err != nil {
		var ae *queue.ApprovalError
		if errors.As(err, &ae) {
			s.banner = Banner{Level: BannerError, Text: "approval failed: " + ae.Reason}
		} else {
			s.Fail(err)
		}
		return
	}
	slog.Debug("approved", slog.String("id", entry.CommitID))
	s.stack.Items[s.commit].Entry = &entry
	s.Notify("approved " + item.Commit.ShortID())
	if next, ok := s.nextUnapproved(); ok {
		s.setCommit(next)
	}
}

// nextUnapproved looks only toward the top; review never jumps back.
func (s *Session) nextUnapproved() (int, bool) {
	for i := s.commit + 1; i < len(s.stack.Items); i++ {
		if e := s.stack.Items[i].Entry; e != nil && !e.Approved() {
			return i, true
		}
	}
	return 0, false
}

// Yank returns the current commit id for copying.
func (s *Session) Yank() (string, bool) {
	item, ok := s.current()
	if !ok {
		return "", false
	}
	return item.Commit.ID, true
}

func (s *Session) Notify(text string) {
	s.banner = Banner{Level: BannerInfo, Text: text}
}

func (s *Session) Fail(err error) {
	s.banner = Banner{Level: BannerError, Text: err.Error()}
}

func (s *Session) ClearBanner() { s.banner = Banner{} }

func (s *Session) Quit() { s.mode = ModeQuitting }
