// Package buildinfo reports the version embedded by the Go toolchain.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Version returns the main module version, or "dev" for local builds.
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return "dev"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	return "dev"
}

// Revision returns the short VCS revision recorded at build time.
func Revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return ""
	}
	var rev string
	dirty := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if rev != "" && dirty {
		rev += "+dirty"
	}
	return rev
}

func tags(info *debug.BuildInfo) string {
	for _, s := range info.Settings {
		if s.Key == "-tags" {
			return s.Value
		}
	}
	return ""
}

// VersionWithTags returns the version followed by revision and build tags
// when they were recorded.
func VersionWithTags() string {
	out := Version()
	if rev := Revision(); rev != "" {
		out += " " + rev
	}
	if info, ok := debug.ReadBuildInfo(); ok && info != nil {
		if t := tags(info); t != "" {
			out = fmt.Sprintf("%s (tags: %s)", out, t)
		}
	}
	return out
}
