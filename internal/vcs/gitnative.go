package vcs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
	"github.com/pmezard/go-difflib/difflib"
)

var gitBaseCandidates = []string{"origin/HEAD", "origin/main", "origin/master", "main", "master"}

type gitNative struct {
	repo *gitlib.Repository
	path string
	base *string
}

// OpenGit opens the git repository containing repoPath with go-git.
func OpenGit(repoPath string) (Backend, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	repo, err := gitlib.PlainOpenWithOptions(abs, &gitlib.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	root := abs
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}
	return &gitNative{repo: repo, path: root}, nil
}

func (g *gitNative) Name() string { return "git" }

func (g *gitNative) RepoPath() string { return g.path }

func (g *gitNative) wrap(op string, err error) error {
	if errors.Is(err, plumbing.ErrReferenceNotFound) || errors.Is(err, plumbing.ErrObjectNotFound) {
		return &ParseError{Op: op, Detail: err.Error()}
	}
	return &UnavailableError{Backend: "go-git", Op: op, Err: err}
}

func (g *gitNative) DefaultBase() string {
	if g.base != nil {
		return *g.base
	}
	base := ""
	for _, candidate := range gitBaseCandidates {
		if _, err := g.repo.ResolveRevision(plumbing.Revision(candidate)); err == nil {
			base = candidate
			break
		}
	}
	g.base = &base
	slog.Debug("default base resolved", slog.String("base", base))
	return base
}

func (g *gitNative) commit(rev, op string) (*object.Commit, error) {
	hash, err := g.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, g.wrap(op, fmt.Errorf("resolve %s: %w", rev, err))
	}
	c, err := g.repo.CommitObject(*hash)
	if err != nil {
		return nil, g.wrap(op, fmt.Errorf("load commit %s: %w", rev, err))
	}
	return c, nil
}

func (g *gitNative) ResolveRange(base, head string) ([]CommitRef, error) {
	const op = "resolve range"
	if head == "" {
		head = "HEAD"
	}
	headCommit, err := g.commit(head, op)
	if err != nil {
		return nil, err
	}
	excluded := map[plumbing.Hash]struct{}{}
	if base != "" {
		baseCommit, err := g.commit(base, op)
		if err != nil {
			return nil, err
		}
		iter := object.NewCommitPreorderIter(baseCommit, nil, nil)
		err = iter.ForEach(func(c *object.Commit) error {
			excluded[c.Hash] = struct{}{}
			return nil
		})
		iter.Close()
		if err != nil {
			return nil, g.wrap(op, err)
		}
	}
	if _, ok := excluded[headCommit.Hash]; ok {
		return nil, nil
	}

	// Post-order walk: parents are emitted before their children, which
	// yields base-to-top order for a linear range.
	type frame struct {
		c    *object.Commit
		next int
	}
	seen := map[plumbing.Hash]struct{}{headCommit.Hash: {}}
	stack := []frame{{c: headCommit}}
	var commits []CommitRef
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.c.ParentHashes) {
			ph := top.c.ParentHashes[top.next]
			top.next++
			if _, ok := excluded[ph]; ok {
				continue
			}
			if _, ok := seen[ph]; ok {
				continue
			}
			seen[ph] = struct{}{}
			pc, err := g.repo.CommitObject(ph)
			if err != nil {
				return nil, g.wrap(op, err)
			}
			stack = append(stack, frame{c: pc})
			continue
		}
		commits = append(commits, commitRef(top.c))
		stack = stack[:len(stack)-1]
	}
	return commits, nil
}

func commitRef(c *object.Commit) CommitRef {
	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}
	summary, _, _ := strings.Cut(strings.TrimSpace(c.Message), "\n")
	return CommitRef{
		ID:      c.Hash.String(),
		Parents: parents,
		Author:  Signature{Name: c.Author.Name, Email: c.Author.Email, When: c.Author.When},
		Summary: strings.TrimSpace(summary),
	}
}

func (g *gitNative) CommitMetadata(id string) (CommitRef, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return CommitRef{}, fmt.Errorf("commit not specified")
	}
	c, err := g.commit(id, "commit metadata")
	if err != nil {
		return CommitRef{}, err
	}
	return commitRef(c), nil
}

func (g *gitNative) changes(id, op string) (object.Changes, error) {
	c, err := g.commit(id, op)
	if err != nil {
		return nil, err
	}
	tree, err := c.Tree()
	if err != nil {
		return nil, g.wrap(op, err)
	}
	var parentTree *object.Tree
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return nil, g.wrap(op, err)
		}
		parentTree, err = parent.Tree()
		if err != nil {
			return nil, g.wrap(op, err)
		}
	}
	changes, err := object.DiffTreeWithOptions(context.Background(), parentTree, tree, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, g.wrap(op, err)
	}
	return changes, nil
}

func fileChange(ch *object.Change) (FileChange, error) {
	action, err := ch.Action()
	if err != nil {
		return FileChange{}, err
	}
	switch action {
	case merkletrie.Insert:
		return FileChange{Path: ch.To.Name, Kind: ChangeAdded}, nil
	case merkletrie.Delete:
		return FileChange{Path: ch.From.Name, Kind: ChangeDeleted}, nil
	default:
		if ch.From.Name != ch.To.Name {
			return FileChange{Path: ch.To.Name, OldPath: ch.From.Name, Kind: ChangeRenamed}, nil
		}
		return FileChange{Path: ch.To.Name, Kind: ChangeModified}, nil
	}
}

func (g *gitNative) FileChanges(id string) ([]FileChange, error) {
	const op = "file changes"
	changes, err := g.changes(id, op)
	if err != nil {
		return nil, err
	}
	files := make([]FileChange, 0, len(changes))
	for _, ch := range changes {
		fc, err := fileChange(ch)
		if err != nil {
			return nil, g.wrap(op, err)
		}
		files = append(files, fc)
	}
	sortFileChanges(files)
	return files, nil
}

func (g *gitNative) findChange(id, path, op string) (*object.Change, FileChange, error) {
	changes, err := g.changes(id, op)
	if err != nil {
		return nil, FileChange{}, err
	}
	for _, ch := range changes {
		fc, err := fileChange(ch)
		if err != nil {
			return nil, FileChange{}, g.wrap(op, err)
		}
		if fc.Path == path {
			return ch, fc, nil
		}
	}
	return nil, FileChange{}, parseErrorf(op, "path %s not changed in %s", path, id)
}

func (g *gitNative) Diff(id, path string) ([]DiffHunk, error) {
	const op = "diff"
	ch, fc, err := g.findChange(id, path, op)
	if err != nil {
		return nil, err
	}
	text, binary, err := unifiedFileDiff(ch, fc)
	if err != nil {
		return nil, g.wrap(op, err)
	}
	if binary {
		return []DiffHunk{{Header: binaryNote}}, nil
	}
	return parseUnifiedDiff(text)
}

func (g *gitNative) PatchText(id, path string) (string, error) {
	const op = "patch"
	if path == "" {
		changes, err := g.changes(id, op)
		if err != nil {
			return "", err
		}
		patch, err := changes.Patch()
		if err != nil {
			return "", g.wrap(op, err)
		}
		return patch.String(), nil
	}
	ch, fc, err := g.findChange(id, path, op)
	if err != nil {
		return "", err
	}
	oldPath := fc.Path
	if fc.OldPath != "" {
		oldPath = fc.OldPath
	}
	var b strings.Builder
	fmt.Fprintf(&b, "diff --git a/%s b/%s\n", oldPath, fc.Path)
	text, binary, err := unifiedFileDiff(ch, fc)
	if err != nil {
		return "", g.wrap(op, err)
	}
	if binary {
		b.WriteString("Binary files differ\n")
		return b.String(), nil
	}
	b.WriteString(text)
	if text != "" && !strings.HasSuffix(text, "\n") {
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func unifiedFileDiff(ch *object.Change, fc FileChange) (string, bool, error) {
	from, to, err := ch.Files()
	if err != nil {
		return "", false, err
	}
	for _, f := range []*object.File{from, to} {
		if f == nil {
			continue
		}
		bin, err := f.IsBinary()
		if err != nil {
			return "", false, err
		}
		if bin {
			return "", true, nil
		}
	}
	fromLines, err := fileLines(from)
	if err != nil {
		return "", false, err
	}
	toLines, err := fileLines(to)
	if err != nil {
		return "", false, err
	}
	oldPath := fc.Path
	if fc.OldPath != "" {
		oldPath = fc.OldPath
	}
	ud := difflib.UnifiedDiff{
		A:        fromLines,
		B:        toLines,
		FromFile: "a/" + oldPath,
		ToFile:   "b/" + fc.Path,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	return text, false, err
}

func fileLines(f *object.File) ([]string, error) {
	if f == nil {
		return []string{}, nil
	}
	content, err := f.Contents()
	if err != nil {
		return nil, err
	}
	if content == "" {
		return []string{}, nil
	}
	lines := strings.SplitAfter(content, "\n")
	if last := len(lines) - 1; lines[last] == "" {
		lines = lines[:last]
	} else {
		lines[last] += "\n"
	}
	return lines, nil
}
