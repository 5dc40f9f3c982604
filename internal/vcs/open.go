package vcs

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Kind selects which backend serves queries.
type Kind string

const (
	KindAuto Kind = "auto"
	KindJJ   Kind = "jj"
	KindGit  Kind = "git"
)

// ParseKind validates a --backend flag value.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindAuto, KindJJ, KindGit:
		return k, nil
	case "":
		return KindAuto, nil
	default:
		return "", fmt.Errorf("unknown backend %q (want auto, jj or git)", s)
	}
}

// Open returns the backend for repoPath. In auto mode a jj workspace is
// preferred when the jj binary is installed; otherwise go-git is used.
func Open(repoPath string, kind Kind) (Backend, error) {
	switch kind {
	case KindJJ:
		return OpenJJ(repoPath)
	case KindGit:
		return OpenGit(repoPath)
	}
	if root, ok := findJJWorkspace(repoPath); ok {
		if _, err := execPath("jj"); err == nil {
			return OpenJJ(repoPath)
		}
		slog.Info("jj workspace found but jj is not installed, using git", slog.String("root", root))
	}
	return OpenGit(repoPath)
}

func findJJWorkspace(repoPath string) (string, bool) {
	dir, err := filepath.Abs(repoPath)
	if err != nil {
		return "", false
	}
	for {
		if fi, err := os.Stat(filepath.Join(dir, ".jj")); err == nil && fi.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
