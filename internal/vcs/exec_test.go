package vcs

import (
	"errors"
	"os/exec"
	"testing"
)

func TestRunCommand_MissingBinary(t *testing.T) {
	orig := execPath
	t.Cleanup(func() { execPath = orig })
	execPath = func(string) (string, error) { return "", exec.ErrNotFound }

	_, err := runCommand(t.TempDir(), "jj", []string{"log"}, "jj log")
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("runCommand() error = %v, want ErrBackendUnavailable", err)
	}
	if !IsMissingBackend(err) {
		t.Fatalf("IsMissingBackend(%v) = false, want true", err)
	}
}

func TestRunCommand_FailingQuery(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	_, err := runCommand(t.TempDir(), "sh", []string{"-c", "echo boom >&2; exit 3"}, "sh")
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("runCommand() error = %v, want ErrBackendUnavailable", err)
	}
	if IsMissingBackend(err) {
		t.Fatalf("IsMissingBackend(%v) = true, want false", err)
	}
	var ue *UnavailableError
	if !errors.As(err, &ue) || ue.Stderr != "boom" {
		t.Fatalf("stderr = %+v, want %q", ue, "boom")
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Kind{"": KindAuto, "auto": KindAuto, "jj": KindJJ, "git": KindGit} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = (%q, %v), want %q", in, got, err, want)
		}
	}
	if _, err := ParseKind("hg"); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
