package session

import (
	"errors"
	"fmt"
	"testing"

	"github.com/thiagokokada/jj-inspect/internal/diffcache"
	"github.com/thiagokokada/jj-inspect/internal/queue"
	"github.com/thiagokokada/jj-inspect/internal/stack"
	"github.com/thiagokokada/jj-inspect/internal/vcs"
)

type fakeResolver struct {
	results []stack.Resolved
	errs    []error
	calls   int
}

func (f *fakeResolver) Resolve() (stack.Resolved, error) {
	i := f.calls
	f.calls++
	if i >= len(f.results) && i >= len(f.errs) {
		return stack.Resolved{}, errors.New("unexpected Resolve call")
	}
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var res stack.Resolved
	if i < len(f.results) {
		res = f.results[i]
	}
	return res, err
}

type fakeFetcher struct {
	files map[string][]vcs.FileChange
	diffs map[string][]vcs.DiffHunk // keyed by path
	calls []string
}

func (f *fakeFetcher) FileChanges(id string) ([]vcs.FileChange, error) {
	f.calls = append(f.calls, "files:"+id)
	files, ok := f.files[id]
	if !ok {
		return nil, fmt.Errorf("unexpected FileChanges(%s) call", id)
	}
	return files, nil
}

func (f *fakeFetcher) Diff(id, path string) ([]vcs.DiffHunk, error) {
	f.calls = append(f.calls, "diff:"+id+":"+path)
	hunks, ok := f.diffs[path]
	if !ok {
		return nil, &vcs.ParseError{Op: "diff", Detail: "no diff for " + path}
	}
	return hunks, nil
}

type fakeApprover struct {
	approveFunc func(id string) (queue.Entry, error)
	calls       []string
}

func (f *fakeApprover) Approve(id string) (queue.Entry, error) {
	f.calls = append(f.calls, id)
	if f.approveFunc == nil {
		return queue.Entry{}, errors.New("unexpected Approve call")
	}
	return f.approveFunc(id)
}

type fakePatches struct {
	patchTextFunc func(id, path string) (string, error)
}

func (f fakePatches) PatchText(id, path string) (string, error) {
	if f.patchTextFunc == nil {
		return "", errors.New("unexpected PatchText call")
	}
	return f.patchTextFunc(id, path)
}

func stackOf(ids ...string) stack.Resolved {
	items := make([]stack.Item, len(ids))
	for i, id := range ids {
		items[i] = stack.Item{Commit: vcs.CommitRef{ID: id, Summary: "commit " + id, Position: i}}
	}
	return stack.Resolved{Mode: stack.ModeStack, Base: "main", Items: items}
}

func queueOf(ids ...string) stack.Resolved {
	res := stackOf(ids...)
	res.Mode = stack.ModeQueue
	res.Base = ""
	for i := range res.Items {
		res.Items[i].Entry = &queue.Entry{CommitID: ids[i], Status: queue.StatusPending}
	}
	return res
}

func filesNamed(names ...string) []vcs.FileChange {
	files := make([]vcs.FileChange, len(names))
	for i, n := range names {
		files[i] = vcs.FileChange{Path: n, Kind: vcs.ChangeModified}
	}
	return files
}

func hunkRows(n int) []vcs.DiffHunk {
	lines := make([]vcs.DiffLine, n-1)
	for i := range lines {
		lines[i] = vcs.DiffLine{Kind: vcs.LineAdded, Text: fmt.Sprintf("line %d", i)}
	}
	return []vcs.DiffHunk{{Header: "@@ -0,0 +1 @@", Lines: lines}}
}

type fixture struct {
	sess     *Session
	resolver *fakeResolver
	fetcher  *fakeFetcher
	approver *fakeApprover
}

func newFixture(t *testing.T, initial stack.Resolved, opts ...func(*Context)) *fixture {
	t.Helper()
	fetcher := &fakeFetcher{files: map[string][]vcs.FileChange{}, diffs: map[string][]vcs.DiffHunk{}}
	resolver := &fakeResolver{results: []stack.Resolved{initial}}
	approver := &fakeApprover{}
	ctx := Context{
		RepoRoot: "/repo",
		Source:   stack.Source{Mode: initial.Mode, QueueDir: "/repo/.ai/internal/commit-queue"},
		Resolver: resolver,
		Cache:    diffcache.New(fetcher),
		Patches:  fakePatches{},
	}
	if initial.Mode == stack.ModeQueue {
		ctx.Approver = approver
	}
	for _, opt := range opts {
		opt(&ctx)
	}
	sess, err := New(ctx)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return &fixture{sess: sess, resolver: resolver, fetcher: fetcher, approver: approver}
}
