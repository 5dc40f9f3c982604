package watch

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestPaths(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	queueDir := filepath.Join(root, ".ai", "internal", "commit-queue")
	if got := Paths(root, queueDir); len(got) != 0 {
		t.Fatalf("Paths() = %v, want none", got)
	}

	if err := os.MkdirAll(filepath.Join(root, ".git", "refs", "heads"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(queueDir, 0o755); err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(root, ".git"), filepath.Join(root, ".git", "refs", "heads"), queueDir}
	if got := Paths(root, queueDir); !slices.Equal(got, want) {
		t.Fatalf("Paths() = %v, want %v", got, want)
	}

	opHeads := filepath.Join(root, ".jj", "repo", "op_heads", "heads")
	if err := os.MkdirAll(opHeads, 0o755); err != nil {
		t.Fatal(err)
	}
	if got := Paths(root, ""); !slices.Equal(got, []string{opHeads}) {
		t.Fatalf("Paths() = %v, want jj op heads", got)
	}
}

func TestShouldIgnore(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]bool{
		"index.lock":      true,
		".a.json.123.tmp": true,
		"entry.json":      false,
		"refs/heads/main": false,
		"watchman.IPC":    true,
	} {
		if got := shouldIgnore(name); got != want {
			t.Fatalf("shouldIgnore(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestStart_PostsDebouncedEvent(t *testing.T) {
	dir := t.TempDir()
	w, err := Start([]string{dir}, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	for i := range 3 {
		name := filepath.Join(dir, "entry"+string(rune('a'+i))+".json")
		if err := os.WriteFile(name, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	select {
	case <-w.Events():
	case <-time.After(5 * time.Second):
		t.Fatal("no change event received")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

func TestStart_NoPaths(t *testing.T) {
	t.Parallel()

	if _, err := Start(nil, time.Millisecond); err == nil {
		t.Fatal("expected error without paths")
	}
}
