package vcs

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

var hunkHeaderRe = regexp.MustCompile(`^@@ -\d+(,\d+)? \+\d+(,\d+)? @@`)

const binaryNote = "(binary file differs)"

// parseUnifiedDiff splits git-style diff text into hunks. File headers are
// dropped; binary markers become a hunk with only a header note.
func parseUnifiedDiff(text string) ([]DiffHunk, error) {
	const op = "parse diff"
	var (
		hunks  []DiffHunk
		cur    *DiffHunk
		inHunk bool
	)
	flush := func() {
		if cur != nil {
			hunks = append(hunks, *cur)
			cur = nil
		}
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil, nil
	}
	for i, raw := range lines {
		line := strings.TrimSuffix(raw, "\r")
		switch {
		case strings.HasPrefix(line, "@@"):
			if !hunkHeaderRe.MatchString(line) {
				return nil, parseErrorf(op, "line %d: malformed hunk header %q", i+1, line)
			}
			flush()
			cur = &DiffHunk{Header: line}
			inHunk = true
		case strings.HasPrefix(line, "diff --git "):
			flush()
			inHunk = false
		case inHunk:
			if line == "" {
				cur.Lines = append(cur.Lines, DiffLine{Kind: LineContext})
				continue
			}
			switch line[0] {
			case '+':
				cur.Lines = append(cur.Lines, DiffLine{Kind: LineAdded, Text: line[1:]})
			case '-':
				cur.Lines = append(cur.Lines, DiffLine{Kind: LineRemoved, Text: line[1:]})
			case ' ':
				cur.Lines = append(cur.Lines, DiffLine{Kind: LineContext, Text: line[1:]})
			case '\\':
				// "\ No newline at end of file"
			default:
				return nil, parseErrorf(op, "line %d: unexpected line in hunk %q", i+1, line)
			}
		case isBinaryMarker(line):
			flush()
			hunks = append(hunks, DiffHunk{Header: binaryNote})
		case isFileHeader(line):
		default:
			return nil, parseErrorf(op, "line %d: unexpected line %q", i+1, line)
		}
	}
	flush()
	return hunks, nil
}

func isBinaryMarker(line string) bool {
	return (strings.HasPrefix(line, "Binary files ") && strings.HasSuffix(line, " differ")) ||
		line == "GIT binary patch"
}

var fileHeaderPrefixes = []string{
	"index ",
	"--- ",
	"+++ ",
	"new file mode ",
	"deleted file mode ",
	"old mode ",
	"new mode ",
	"similarity index ",
	"dissimilarity index ",
	"rename from ",
	"rename to ",
	"copy from ",
	"copy to ",
}

func isFileHeader(line string) bool {
	for _, p := range fileHeaderPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// parseSummary parses `jj diff --summary` output ("M path" per line).
func parseSummary(out string) ([]FileChange, error) {
	const op = "parse diff summary"
	var files []FileChange
	for _, raw := range strings.Split(out, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(line) < 3 || line[1] != ' ' {
			return nil, parseErrorf(op, "unexpected line %q", raw)
		}
		path := line[2:]
		var fc FileChange
		switch line[0] {
		case 'M':
			fc = FileChange{Path: path, Kind: ChangeModified}
		case 'A':
			fc = FileChange{Path: path, Kind: ChangeAdded}
		case 'D':
			fc = FileChange{Path: path, Kind: ChangeDeleted}
		case 'R', 'C':
			kind := ChangeRenamed
			if line[0] == 'C' {
				kind = ChangeCopied
			}
			oldPath, newPath, ok := expandRenamePath(path)
			if !ok {
				return nil, parseErrorf(op, "unexpected rename %q", raw)
			}
			fc = FileChange{Path: newPath, OldPath: oldPath, Kind: kind}
		default:
			return nil, parseErrorf(op, "unknown status %q", line[:1])
		}
		files = append(files, fc)
	}
	sortFileChanges(files)
	return files, nil
}

// expandRenamePath turns "dir/{old => new}/file" into its two paths.
func expandRenamePath(s string) (string, string, bool) {
	open := strings.Index(s, "{")
	arrow := strings.Index(s, " => ")
	if open < 0 {
		if arrow < 0 {
			return "", "", false
		}
		return s[:arrow], s[arrow+len(" => "):], true
	}
	end := strings.Index(s[open:], "}")
	if arrow < open || end < 0 || arrow > open+end {
		return "", "", false
	}
	end += open
	prefix, suffix := s[:open], s[end+1:]
	join := func(mid string) string {
		p := prefix + mid + suffix
		p = strings.ReplaceAll(p, "//", "/")
		return strings.TrimPrefix(p, "/")
	}
	return join(s[open+1 : arrow]), join(s[arrow+len(" => ") : end]), true
}

// sortFileChanges orders by path using byte-wise comparison.
func sortFileChanges(files []FileChange) {
	sort.SliceStable(files, func(i, j int) bool { return files[i].Path < files[j].Path })
}

const logFieldCount = 6

// parseLogRecords parses tab-separated records produced by logTemplate.
func parseLogRecords(out string) ([]CommitRef, error) {
	const op = "parse log"
	var commits []CommitRef
	for _, raw := range strings.Split(out, "\n") {
		line := strings.TrimRight(raw, "\r")
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", logFieldCount)
		if len(fields) != logFieldCount {
			return nil, parseErrorf(op, "expected %d fields, got %d in %q", logFieldCount, len(fields), raw)
		}
		id := strings.TrimSpace(fields[0])
		if id == "" {
			return nil, parseErrorf(op, "empty commit id in %q", raw)
		}
		when, err := time.Parse(time.RFC3339, strings.TrimSpace(fields[4]))
		if err != nil {
			return nil, parseErrorf(op, "bad timestamp %q", fields[4])
		}
		commits = append(commits, CommitRef{
			ID:      id,
			Parents: strings.Fields(fields[1]),
			Author:  Signature{Name: fields[2], Email: fields[3], When: when},
			Summary: strings.TrimSpace(fields[5]),
		})
	}
	return commits, nil
}

func reverseCommits(commits []CommitRef) {
	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}
}
