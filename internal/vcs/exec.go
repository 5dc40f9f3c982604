package vcs

import (
	"bytes"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// execPath resolves a backend binary; replaced in tests.
var execPath = exec.LookPath

func runCommand(dir, bin string, args []string, context string) (string, error) {
	path, err := execPath(bin)
	if err != nil {
		return "", &UnavailableError{Backend: bin, Op: context, Missing: true, Err: err}
	}
	cmd := exec.Command(path, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	start := time.Now()
	err = cmd.Run()
	slog.Debug("backend query",
		slog.String("bin", bin),
		slog.String("op", context),
		slog.Duration("elapsed", time.Since(start)),
		slog.Any("error", err),
	)
	if err != nil {
		var execErr *exec.Error
		missing := errors.As(err, &execErr)
		return "", &UnavailableError{
			Backend: bin,
			Op:      context,
			Missing: missing,
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}
	return stdout.String(), nil
}
