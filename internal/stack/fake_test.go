package stack

import (
	"errors"

	"github.com/thiagokokada/jj-inspect/internal/queue"
	"github.com/thiagokokada/jj-inspect/internal/vcs"
)

type fakeBackend struct {
	defaultBase        string
	resolveRangeFunc   func(base, head string) ([]vcs.CommitRef, error)
	commitMetadataFunc func(id string) (vcs.CommitRef, error)

	lastBase string
}

func (f *fakeBackend) DefaultBase() string { return f.defaultBase }

func (f *fakeBackend) ResolveRange(base, head string) ([]vcs.CommitRef, error) {
	f.lastBase = base
	if f.resolveRangeFunc == nil {
		return nil, errors.New("unexpected ResolveRange call")
	}
	return f.resolveRangeFunc(base, head)
}

func (f *fakeBackend) CommitMetadata(id string) (vcs.CommitRef, error) {
	if f.commitMetadataFunc == nil {
		return vcs.CommitRef{}, errors.New("unexpected CommitMetadata call")
	}
	return f.commitMetadataFunc(id)
}

type fakeQueue struct {
	entries []queue.Entry
	err     error
}

func (f fakeQueue) ListEntries() ([]queue.Entry, error) { return f.entries, f.err }

func chain(ids ...string) []vcs.CommitRef {
	commits := make([]vcs.CommitRef, len(ids))
	for i, id := range ids {
		commits[i] = vcs.CommitRef{ID: id, Summary: "commit " + id}
		if i > 0 {
			commits[i].Parents = []string{ids[i-1]}
		} else {
			commits[i].Parents = []string{"base"}
		}
	}
	return commits
}
