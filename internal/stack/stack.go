package stack

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/thiagokokada/jj-inspect/internal/queue"
	"github.com/thiagokokada/jj-inspect/internal/vcs"
)

// DefaultLimit caps the number of commits reviewed in stack mode.
const DefaultLimit = 50

type Mode int

const (
	ModeStack Mode = iota
	ModeQueue
)

func (m Mode) String() string {
	if m == ModeQueue {
		return "queue"
	}
	return "stack"
}

// EntryLister is the read side of the queue store.
type EntryLister interface {
	ListEntries() ([]queue.Entry, error)
}

// Source selects where the commits under review come from. It is fixed for
// the lifetime of a session.
type Source struct {
	Mode  Mode
	Base  string // stack mode; empty uses the backend default
	Head  string // stack mode; empty is the working copy
	Limit int    // stack mode; <= 0 means unlimited
	Queue EntryLister
	// QueueDir is shown in the status line.
	QueueDir string
}

// Backend is the subset of vcs.Backend used for resolution.
type Backend interface {
	DefaultBase() string
	ResolveRange(base, head string) ([]vcs.CommitRef, error)
	CommitMetadata(id string) (vcs.CommitRef, error)
}

// Item is one reviewable commit. Entry is set in queue mode. Err is set when
// a queue entry no longer resolves in the backend.
type Item struct {
	Commit vcs.CommitRef
	Entry  *queue.Entry
	Err    error
}

func (it Item) Resolved() bool { return it.Err == nil }

// Summary prefers the backend summary, falling back to the queued message.
func (it Item) Summary() string {
	if it.Commit.Summary != "" {
		return it.Commit.Summary
	}
	if it.Entry != nil {
		return it.Entry.Summary()
	}
	return ""
}

type Resolved struct {
	Mode  Mode
	Base  string
	Items []Item
}

func (r Resolved) Len() int { return len(r.Items) }

var ErrNonLinearStack = errors.New("stack is not linear")

type NonLinearError struct {
	Index   int
	ID      string
	Parents []string // parents inside the resolved set
}

func (e *NonLinearError) Error() string {
	short := e.ID
	if len(short) > 8 {
		short = short[:8]
	}
	if len(e.Parents) == 0 {
		return fmt.Sprintf("stack is not linear: commit %d (%s) does not descend from the previous commit", e.Index+1, short)
	}
	return fmt.Sprintf("stack is not linear: commit %d (%s) has in-stack parents %s", e.Index+1, short, strings.Join(e.Parents, ", "))
}

func (e *NonLinearError) Is(target error) bool { return target == ErrNonLinearStack }

type Resolver struct {
	backend Backend
	source  Source
}

func NewResolver(backend Backend, source Source) *Resolver {
	return &Resolver{backend: backend, source: source}
}

func (r *Resolver) Source() Source { return r.source }

func (r *Resolver) Resolve() (Resolved, error) {
	if r.source.Mode == ModeQueue {
		return r.resolveQueue()
	}
	return r.resolveStack()
}

func (r *Resolver) resolveStack() (Resolved, error) {
	base := r.source.Base
	if base == "" {
		base = r.backend.DefaultBase()
	}
	commits, err := r.backend.ResolveRange(base, r.source.Head)
	if err != nil {
		return Resolved{}, err
	}
	if err := VerifyLinear(commits); err != nil {
		return Resolved{}, err
	}
	if r.source.Limit > 0 && len(commits) > r.source.Limit {
		slog.Debug("stack truncated", slog.Int("commits", len(commits)), slog.Int("limit", r.source.Limit))
		commits = commits[len(commits)-r.source.Limit:]
	}
	items := make([]Item, len(commits))
	for i, c := range commits {
		c.Position = i
		items[i] = Item{Commit: c}
	}
	slog.Debug("stack resolved", slog.String("base", base), slog.Int("commits", len(items)))
	return Resolved{Mode: ModeStack, Base: base, Items: items}, nil
}

func (r *Resolver) resolveQueue() (Resolved, error) {
	if r.source.Queue == nil {
		return Resolved{}, fmt.Errorf("queue mode without a queue store")
	}
	entries, err := r.source.Queue.ListEntries()
	if err != nil {
		return Resolved{}, err
	}
	items := make([]Item, 0, len(entries))
	for i := range entries {
		entry := entries[i]
		item := Item{Entry: &entry}
		ref, err := r.backend.CommitMetadata(entry.CommitID)
		switch {
		case err == nil:
			item.Commit = ref
		case vcs.IsMissingBackend(err):
			return Resolved{}, err
		default:
			if !errors.Is(err, vcs.ErrParse) {
				err = &vcs.ParseError{Op: "resolve queue entry", Detail: err.Error()}
			}
			slog.Warn("queue entry unresolved", slog.String("id", entry.CommitID), slog.Any("error", err))
			item.Commit = vcs.CommitRef{ID: entry.CommitID}
			item.Err = err
		}
		item.Commit.Position = len(items)
		items = append(items, item)
	}
	slog.Debug("queue resolved", slog.Int("entries", len(items)))
	return Resolved{Mode: ModeQueue, Items: items}, nil
}

// VerifyLinear checks that commits form a single ancestry chain ordered from
// base to top: every commit after the first has exactly one parent inside
// the set and it is the commit before it.
func VerifyLinear(commits []vcs.CommitRef) error {
	ids := make(map[string]struct{}, len(commits))
	for _, c := range commits {
		ids[c.ID] = struct{}{}
	}
	for i, c := range commits {
		var inSet []string
		for _, p := range c.Parents {
			if _, ok := ids[p]; ok {
				inSet = append(inSet, p)
			}
		}
		if i == 0 {
			if len(inSet) != 0 {
				return &NonLinearError{Index: i, ID: c.ID, Parents: inSet}
			}
			continue
		}
		if len(inSet) != 1 || inSet[0] != commits[i-1].ID {
			return &NonLinearError{Index: i, ID: c.ID, Parents: inSet}
		}
	}
	return nil
}
