package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultApproveCommand is run with the commit id appended as its final argument.
const DefaultApproveCommand = "f commit-queue approve"

// DefaultDir returns the queue directory used when --queue-dir is not set.
func DefaultDir(repoRoot string) string {
	return filepath.Join(repoRoot, ".ai", "internal", "commit-queue")
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusFailed   Status = "failed"
)

type Entry struct {
	CommitID  string
	Bookmark  string
	Status    Status
	Message   string
	CreatedAt time.Time
	Path      string // record file the entry was read from
}

// Summary returns the first line of the recorded message.
func (e Entry) Summary() string {
	line, _, _ := strings.Cut(strings.TrimSpace(e.Message), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return "(no message)"
	}
	return line
}

func (e Entry) Approved() bool { return e.Status == StatusApproved }

// ApprovalError carries the approval command's output verbatim.
type ApprovalError struct {
	ID     string
	Reason string
}

func (e *ApprovalError) Error() string {
	return fmt.Sprintf("approve %s: %s", e.ID, e.Reason)
}

type record struct {
	CreatedAt      string `json:"created_at"`
	CommitSHA      string `json:"commit_sha"`
	Message        string `json:"message"`
	ReviewBookmark string `json:"review_bookmark"`
	Status         string `json:"status"`
}

// Runner invokes the approval command for id inside dir and returns its
// combined output.
type Runner func(dir, command, id string) ([]byte, error)

type Store struct {
	dir        string
	repoRoot   string
	approveCmd string
	run        Runner
}

func New(dir, repoRoot, approveCmd string) *Store {
	if strings.TrimSpace(approveCmd) == "" {
		approveCmd = DefaultApproveCommand
	}
	return &Store{dir: dir, repoRoot: repoRoot, approveCmd: approveCmd, run: runShell}
}

// NewWithRunner is like New but approval goes through run.
func NewWithRunner(dir, repoRoot, approveCmd string, run Runner) *Store {
	s := New(dir, repoRoot, approveCmd)
	s.run = run
	return s
}

func (s *Store) Dir() string { return s.dir }

func runShell(dir, command, id string) ([]byte, error) {
	cmd := exec.Command("sh", "-c", command+` "$1"`, "jj-inspect", id)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// ListEntries reads every record in the queue directory ordered by creation
// time, then file name. A missing directory is an empty queue.
func (s *Store) ListEntries() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read queue dir: %w", err)
	}
	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() || filepath.Ext(de.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.dir, de.Name())
		entry, err := readEntry(path)
		if err != nil {
			slog.Warn("skipping queue entry", slog.String("path", path), slog.Any("error", err))
			continue
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return filepath.Base(a.Path) < filepath.Base(b.Path)
	})
	slog.Debug("queue listed", slog.String("dir", s.dir), slog.Int("entries", len(entries)))
	return entries, nil
}

func readEntry(path string) (Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, err
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Entry{}, fmt.Errorf("decode: %w", err)
	}
	id := strings.TrimSpace(rec.CommitSHA)
	if id == "" {
		return Entry{}, fmt.Errorf("missing commit_sha")
	}
	status := Status(strings.TrimSpace(rec.Status))
	if status == "" {
		status = StatusPending
	}
	entry := Entry{
		CommitID: id,
		Bookmark: strings.TrimSpace(rec.ReviewBookmark),
		Status:   status,
		Message:  rec.Message,
		Path:     path,
	}
	if rec.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, rec.CreatedAt); err == nil {
			entry.CreatedAt = t
		}
	}
	return entry, nil
}

// Approve runs the approval command for id. Only a zero exit status marks the
// entry approved; otherwise the record is left untouched and an
// *ApprovalError describes the failure.
func (s *Store) Approve(id string) (Entry, error) {
	entries, err := s.ListEntries()
	if err != nil {
		return Entry{}, err
	}
	idx := -1
	for i, e := range entries {
		if e.CommitID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Entry{}, fmt.Errorf("no queue entry for %s", id)
	}
	entry := entries[idx]

	start := time.Now()
	out, err := s.run(s.repoRoot, s.approveCmd, id)
	slog.Debug("approval command",
		slog.String("id", id),
		slog.Duration("elapsed", time.Since(start)),
		slog.Any("error", err),
	)
	if err != nil {
		reason := strings.TrimSpace(string(out))
		if reason == "" {
			reason = err.Error()
		}
		return entry, &ApprovalError{ID: id, Reason: reason}
	}
	if err := writeStatus(entry.Path, StatusApproved); err != nil {
		return entry, fmt.Errorf("record approval: %w", err)
	}
	entry.Status = StatusApproved
	return entry, nil
}

// writeStatus rewrites the status field of a record in place, keeping any
// fields this package does not know about.
func writeStatus(path string, status Status) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	raw, err := json.Marshal(string(status))
	if err != nil {
		return err
	}
	fields["status"] = raw
	out, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(out); err != nil {
		return errors.Join(err, tmp.Close(), os.Remove(tmpName))
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(err, os.Remove(tmpName))
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Join(err, os.Remove(tmpName))
	}
	return nil
}
