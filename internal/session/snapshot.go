package session

import (
	"github.com/thiagokokada/jj-inspect/internal/diffcache"
	"github.com/thiagokokada/jj-inspect/internal/stack"
	"github.com/thiagokokada/jj-inspect/internal/vcs"
)

// Snapshot is a read-only view of the session and whatever is already
// cached. Building one never queries the backend.
type Snapshot struct {
	Mode       Mode
	Source     stack.Mode
	Base       string
	QueueDir   string
	Items      []stack.Item
	Commit     int
	File       int
	Scroll     int
	Files      diffcache.Files
	Diff       diffcache.FileDiff
	Banner     Banner
	StartupErr error
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Mode:       s.mode,
		Source:     s.stack.Mode,
		Base:       s.stack.Base,
		QueueDir:   s.ctx.Source.QueueDir,
		Items:      s.stack.Items,
		Commit:     s.commit,
		File:       s.file,
		Scroll:     s.scroll,
		Banner:     s.banner,
		StartupErr: s.startupErr,
	}
	item, ok := s.current()
	if !ok || !item.Resolved() {
		return snap
	}
	snap.Files = s.ctx.Cache.PeekFiles(item.Commit.ID)
	if s.file >= 0 && s.file < len(snap.Files.Changes) {
		snap.Diff = s.ctx.Cache.PeekDiff(item.Commit.ID, snap.Files.Changes[s.file].Path)
	}
	return snap
}

func (s Snapshot) Empty() bool { return s.StartupErr == nil && len(s.Items) == 0 }

func (s Snapshot) Current() (stack.Item, bool) {
	if s.Commit < 0 || s.Commit >= len(s.Items) {
		return stack.Item{}, false
	}
	return s.Items[s.Commit], true
}

func (s Snapshot) SelectedFile() (vcs.FileChange, bool) {
	if s.File < 0 || s.File >= len(s.Files.Changes) {
		return vcs.FileChange{}, false
	}
	return s.Files.Changes[s.File], true
}
