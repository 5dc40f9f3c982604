package vcs

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

type testRepo struct {
	t    *testing.T
	dir  string
	repo *gitlib.Repository
	n    int
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := gitlib.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	return &testRepo{t: t, dir: dir, repo: repo}
}

func (r *testRepo) write(name, content string) {
	r.t.Helper()
	path := filepath.Join(r.dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		r.t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		r.t.Fatalf("write %s: %v", name, err)
	}
	wt, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatalf("Worktree: %v", err)
	}
	if _, err := wt.Add(name); err != nil {
		r.t.Fatalf("Add %s: %v", name, err)
	}
}

func (r *testRepo) remove(name string) {
	r.t.Helper()
	wt, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatalf("Worktree: %v", err)
	}
	if _, err := wt.Remove(name); err != nil {
		r.t.Fatalf("Remove %s: %v", name, err)
	}
}

func (r *testRepo) commit(msg string) string {
	r.t.Helper()
	wt, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatalf("Worktree: %v", err)
	}
	r.n++
	hash, err := wt.Commit(msg, &gitlib.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@example.com",
			When:  time.Date(2024, 1, 1, 0, r.n, 0, 0, time.UTC),
		},
	})
	if err != nil {
		r.t.Fatalf("Commit: %v", err)
	}
	return hash.String()
}

func (r *testRepo) branch(name, id string) {
	r.t.Helper()
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), plumbing.NewHash(id))
	if err := r.repo.Storer.SetReference(ref); err != nil {
		r.t.Fatalf("SetReference: %v", err)
	}
}

func commitIDs(commits []CommitRef) []string {
	ids := make([]string, 0, len(commits))
	for _, c := range commits {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestGitNative_ResolveRange(t *testing.T) {
	r := newTestRepo(t)
	r.write("a.txt", "one\n")
	c1 := r.commit("initial")
	r.branch("main", c1)
	r.write("a.txt", "two\n")
	r.write("b.txt", "bee\n")
	c2 := r.commit("second\n\nbody text")
	r.remove("b.txt")
	c3 := r.commit("third")

	backend, err := OpenGit(filepath.Join(r.dir))
	if err != nil {
		t.Fatalf("OpenGit: %v", err)
	}
	if got := backend.DefaultBase(); got != "main" {
		t.Fatalf("DefaultBase() = %q, want %q", got, "main")
	}

	commits, err := backend.ResolveRange("main", "")
	if err != nil {
		t.Fatalf("ResolveRange: %v", err)
	}
	if got, want := commitIDs(commits), []string{c2, c3}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ResolveRange() = %v, want %v", got, want)
	}
	if commits[0].Summary != "second" {
		t.Fatalf("Summary = %q, want %q", commits[0].Summary, "second")
	}
	if !reflect.DeepEqual(commits[1].Parents, []string{c2}) {
		t.Fatalf("Parents = %v, want [%s]", commits[1].Parents, c2)
	}

	all, err := backend.ResolveRange("", c3)
	if err != nil {
		t.Fatalf("ResolveRange(full): %v", err)
	}
	if got, want := commitIDs(all), []string{c1, c2, c3}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ResolveRange(full) = %v, want %v", got, want)
	}

	empty, err := backend.ResolveRange(c3, c3)
	if err != nil {
		t.Fatalf("ResolveRange(empty): %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("ResolveRange(empty) = %v, want none", commitIDs(empty))
	}
}

func TestGitNative_FileChangesAndDiff(t *testing.T) {
	r := newTestRepo(t)
	r.write("a.txt", "one\n")
	r.commit("initial")
	r.write("a.txt", "two\n")
	r.write("dir/b.txt", "bee\n")
	c2 := r.commit("second")

	backend, err := OpenGit(r.dir)
	if err != nil {
		t.Fatalf("OpenGit: %v", err)
	}
	files, err := backend.FileChanges(c2)
	if err != nil {
		t.Fatalf("FileChanges: %v", err)
	}
	want := []FileChange{
		{Path: "a.txt", Kind: ChangeModified},
		{Path: "dir/b.txt", Kind: ChangeAdded},
	}
	if !reflect.DeepEqual(files, want) {
		t.Fatalf("FileChanges() = %#v, want %#v", files, want)
	}

	hunks, err := backend.Diff(c2, "a.txt")
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(hunks) != 1 {
		t.Fatalf("Diff() returned %d hunks, want 1", len(hunks))
	}
	wantLines := []DiffLine{
		{Kind: LineRemoved, Text: "one"},
		{Kind: LineAdded, Text: "two"},
	}
	if !reflect.DeepEqual(hunks[0].Lines, wantLines) {
		t.Fatalf("Diff() lines = %#v, want %#v", hunks[0].Lines, wantLines)
	}

	patch, err := backend.PatchText(c2, "")
	if err != nil {
		t.Fatalf("PatchText: %v", err)
	}
	for _, s := range []string{"a/a.txt", "b/dir/b.txt", "+bee"} {
		if !strings.Contains(patch, s) {
			t.Fatalf("PatchText() missing %q in:\n%s", s, patch)
		}
	}

	filePatch, err := backend.PatchText(c2, "a.txt")
	if err != nil {
		t.Fatalf("PatchText(file): %v", err)
	}
	if !strings.HasPrefix(filePatch, "diff --git a/a.txt b/a.txt\n") || !strings.Contains(filePatch, "+two") {
		t.Fatalf("PatchText(file) = %q", filePatch)
	}

	if _, err := backend.Diff(c2, "missing.txt"); !errors.Is(err, ErrParse) {
		t.Fatalf("Diff(missing) error = %v, want ErrParse", err)
	}
}

func TestGitNative_CommitMetadata(t *testing.T) {
	r := newTestRepo(t)
	r.write("a.txt", "one\n")
	c1 := r.commit("initial commit")

	backend, err := OpenGit(r.dir)
	if err != nil {
		t.Fatalf("OpenGit: %v", err)
	}
	ref, err := backend.CommitMetadata(c1)
	if err != nil {
		t.Fatalf("CommitMetadata: %v", err)
	}
	if ref.ID != c1 || ref.Summary != "initial commit" || ref.Author.Name != "Test" {
		t.Fatalf("CommitMetadata() = %+v", ref)
	}
	if len(ref.Parents) != 0 {
		t.Fatalf("Parents = %v, want none", ref.Parents)
	}

	_, err = backend.CommitMetadata(strings.Repeat("d", 40))
	if !errors.Is(err, ErrParse) {
		t.Fatalf("CommitMetadata(unknown) error = %v, want ErrParse", err)
	}
}

func TestOpen_AutoFallsBackToGit(t *testing.T) {
	r := newTestRepo(t)
	r.write("a.txt", "one\n")
	r.commit("initial")

	backend, err := Open(r.dir, KindAuto)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if backend.Name() != "git" {
		t.Fatalf("Name() = %q, want git", backend.Name())
	}
}
