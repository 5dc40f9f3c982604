package vcs

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Minimum jj release for the template functions and revset syntax used by
// the jj backend (author.timestamp().utc(), parents.map(), root-file:).
var minJJVersion = jjVersion{major: 0, minor: 22, patch: 0}

type jjVersion struct {
	major int
	minor int
	patch int
}

func (v jjVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

func (v jjVersion) less(other jjVersion) bool {
	if v.major != other.major {
		return v.major < other.major
	}
	if v.minor != other.minor {
		return v.minor < other.minor
	}
	return v.patch < other.patch
}

// parseJJVersionOutput accepts "jj 0.28.2", "jj 0.28.2-6b2f1e9c" and bare
// version numbers.
func parseJJVersionOutput(out string) (jjVersion, bool) {
	s := strings.TrimSpace(out)
	s = strings.TrimSpace(strings.TrimPrefix(s, "jj"))
	if s == "" || s[0] < '0' || s[0] > '9' {
		return jjVersion{}, false
	}
	end := 0
	for end < len(s) && ((s[end] >= '0' && s[end] <= '9') || s[end] == '.') {
		end++
	}
	parts := strings.Split(strings.Trim(s[:end], "."), ".")
	if len(parts) < 2 {
		return jjVersion{}, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return jjVersion{}, false
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return jjVersion{}, false
	}
	patch := 0
	if len(parts) >= 3 {
		if p, err := strconv.Atoi(parts[2]); err == nil {
			patch = p
		}
	}
	return jjVersion{major: major, minor: minor, patch: patch}, true
}

func validateJJVersionOutput(out string) error {
	got, ok := parseJJVersionOutput(out)
	if !ok {
		return &ParseError{Op: "jj --version", Detail: fmt.Sprintf("unable to parse %q", strings.TrimSpace(out))}
	}
	if got.less(minJJVersion) {
		return fmt.Errorf("jj %s is too old; jj-inspect requires jj >= %s", got, minJJVersion)
	}
	return nil
}

var (
	jjVersionOnce sync.Once
	jjVersionErr  error
)

func ensureMinJJVersion() error {
	jjVersionOnce.Do(func() {
		out, err := runCommand("", "jj", []string{"--version"}, "jj --version")
		if err != nil {
			jjVersionErr = err
			return
		}
		jjVersionErr = validateJJVersionOutput(out)
	})
	return jjVersionErr
}
