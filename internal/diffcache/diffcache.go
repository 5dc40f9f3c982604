package diffcache

import (
	"log/slog"
	"sort"

	"github.com/thiagokokada/jj-inspect/internal/vcs"
)

// Fetcher is the subset of vcs.Backend the cache fills from.
type Fetcher interface {
	FileChanges(id string) ([]vcs.FileChange, error)
	Diff(id, path string) ([]vcs.DiffHunk, error)
}

type State uint8

const (
	StateMissing State = iota
	StateLoaded
	StateUnavailable
)

// Files is the cached file list of one commit.
type Files struct {
	State   State
	Changes []vcs.FileChange
	Err     error
}

// FileDiff is the cached diff of one file. StateUnavailable keeps the cause
// so it can be shown in place of the hunks.
type FileDiff struct {
	State State
	Hunks []vcs.DiffHunk
	Err   error
}

// Rows is the number of display rows: one per hunk header and one per line.
func (d FileDiff) Rows() int {
	n := 0
	for _, h := range d.Hunks {
		n += 1 + len(h.Lines)
	}
	return n
}

type diffKey struct {
	id   string
	path string
}

// Cache retains file lists and diffs for the session. Nothing is evicted
// until Reset.
type Cache struct {
	fetcher Fetcher
	files   map[string]Files
	diffs   map[diffKey]FileDiff
}

func New(fetcher Fetcher) *Cache {
	c := &Cache{fetcher: fetcher}
	c.Reset()
	return c
}

func (c *Cache) Reset() {
	c.files = map[string]Files{}
	c.diffs = map[diffKey]FileDiff{}
}

// PeekFiles returns the cached file list without fetching.
func (c *Cache) PeekFiles(id string) Files {
	return c.files[id]
}

// Files returns the file list of id, fetching it on first access. Changes
// are ordered by path.
func (c *Cache) Files(id string) Files {
	if f, ok := c.files[id]; ok {
		return f
	}
	changes, err := c.fetcher.FileChanges(id)
	var f Files
	if err != nil {
		slog.Debug("file list unavailable", slog.String("id", id), slog.Any("error", err))
		f = Files{State: StateUnavailable, Err: err}
	} else {
		sorted := make([]vcs.FileChange, len(changes))
		copy(sorted, changes)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })
		f = Files{State: StateLoaded, Changes: sorted}
		slog.Debug("file list cached", slog.String("id", id), slog.Int("files", len(sorted)))
	}
	c.files[id] = f
	return f
}

// PeekDiff returns the cached diff without fetching.
func (c *Cache) PeekDiff(id, path string) FileDiff {
	return c.diffs[diffKey{id, path}]
}

// Diff returns the hunks of path in id, fetching them on first access. A
// failure is cached as StateUnavailable for that file only.
func (c *Cache) Diff(id, path string) FileDiff {
	key := diffKey{id, path}
	if d, ok := c.diffs[key]; ok {
		return d
	}
	hunks, err := c.fetcher.Diff(id, path)
	var d FileDiff
	if err != nil {
		slog.Debug("diff unavailable", slog.String("id", id), slog.String("path", path), slog.Any("error", err))
		d = FileDiff{State: StateUnavailable, Err: err}
	} else {
		d = FileDiff{State: StateLoaded, Hunks: hunks}
	}
	c.diffs[key] = d
	return d
}
