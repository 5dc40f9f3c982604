package vcs

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
)

const logTemplate = `commit_id ++ "\t" ++ parents.map(|c| c.commit_id()).join(" ") ++ "\t" ++ ` +
	`author.name() ++ "\t" ++ author.email() ++ "\t" ++ ` +
	`author.timestamp().utc().format("%Y-%m-%dT%H:%M:%SZ") ++ "\t" ++ description.first_line() ++ "\n"`

var jjBaseCandidates = []string{"trunk()", "main@origin", "master@origin", "main", "master"}

type jjCLI struct {
	path string
	base string
}

// OpenJJ opens the jj workspace containing repoPath.
func OpenJJ(repoPath string) (Backend, error) {
	if err := ensureMinJJVersion(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	tmp := &jjCLI{path: abs}
	root, err := tmp.run([]string{"workspace", "root"}, "jj workspace root")
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("open repository: jj workspace root returned empty root")
	}
	return &jjCLI{path: root}, nil
}

func (j *jjCLI) Name() string { return "jj" }

func (j *jjCLI) RepoPath() string { return j.path }

func (j *jjCLI) run(args []string, context string) (string, error) {
	if j == nil || j.path == "" {
		return "", fmt.Errorf("repository root not set")
	}
	args = append([]string{"--color", "never", "--no-pager"}, args...)
	return runCommand(j.path, "jj", args, context)
}

func (j *jjCLI) DefaultBase() string {
	if j.base != "" {
		return j.base
	}
	j.base = "root()"
	for _, candidate := range jjBaseCandidates {
		out, err := j.run([]string{"log", "-r", candidate, "--no-graph", "-T", `commit_id ++ "\n"`}, "jj log")
		if err == nil && strings.TrimSpace(out) != "" {
			j.base = candidate
			break
		}
	}
	slog.Debug("default base resolved", slog.String("base", j.base))
	return j.base
}

func (j *jjCLI) ResolveRange(base, head string) ([]CommitRef, error) {
	if head == "" {
		head = "@"
	}
	if base == "" {
		base = j.DefaultBase()
	}
	revset := fmt.Sprintf("ancestors(%s) & ~ancestors(%s)", head, base)
	out, err := j.run([]string{"log", "-r", revset, "--no-graph", "-T", logTemplate}, "jj log")
	if err != nil {
		return nil, err
	}
	commits, err := parseLogRecords(out)
	if err != nil {
		return nil, err
	}
	// jj log prints newest first.
	reverseCommits(commits)
	return commits, nil
}

func (j *jjCLI) CommitMetadata(id string) (CommitRef, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return CommitRef{}, fmt.Errorf("commit not specified")
	}
	out, err := j.run([]string{"log", "-r", id, "--no-graph", "-T", logTemplate}, "jj log")
	if err != nil {
		return CommitRef{}, err
	}
	commits, err := parseLogRecords(out)
	if err != nil {
		return CommitRef{}, err
	}
	if len(commits) != 1 {
		return CommitRef{}, parseErrorf("commit metadata", "revision %s resolved to %d commits", id, len(commits))
	}
	return commits[0], nil
}

func (j *jjCLI) FileChanges(id string) ([]FileChange, error) {
	out, err := j.run([]string{"diff", "-r", id, "--summary"}, "jj diff --summary")
	if err != nil {
		return nil, err
	}
	return parseSummary(out)
}

func (j *jjCLI) Diff(id, path string) ([]DiffHunk, error) {
	out, err := j.PatchText(id, path)
	if err != nil {
		return nil, err
	}
	return parseUnifiedDiff(out)
}

func (j *jjCLI) PatchText(id, path string) (string, error) {
	args := []string{"diff", "-r", id, "--git"}
	if path != "" {
		args = append(args, "--", fileset(path))
	}
	return j.run(args, "jj diff --git")
}

// fileset quotes a repository-relative path as an exact jj fileset.
func fileset(path string) string {
	return "root-file:" + strconv.Quote(path)
}
