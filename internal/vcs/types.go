package vcs

import "time"

type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// CommitRef identifies one commit of a review session.
type CommitRef struct {
	ID       string
	Parents  []string
	Author   Signature
	Summary  string // first line of the description
	Position int    // index in the resolved base-to-top order
}

// ShortID returns the abbreviated commit id shown in headers.
func (c CommitRef) ShortID() string {
	if len(c.ID) <= 8 {
		return c.ID
	}
	return c.ID[:8]
}

type ChangeKind uint8

const (
	ChangeModified ChangeKind = iota
	ChangeAdded
	ChangeDeleted
	ChangeRenamed
	ChangeCopied
)

// Glyph is the single-letter status shown next to a path.
func (k ChangeKind) Glyph() string {
	switch k {
	case ChangeAdded:
		return "A"
	case ChangeDeleted:
		return "D"
	case ChangeRenamed:
		return "R"
	case ChangeCopied:
		return "C"
	default:
		return "M"
	}
}

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeDeleted:
		return "deleted"
	case ChangeRenamed:
		return "renamed"
	case ChangeCopied:
		return "copied"
	default:
		return "modified"
	}
}

type FileChange struct {
	Path    string
	OldPath string // set for renames and copies
	Kind    ChangeKind
}

// DisplayPath renders renames as "old -> new".
func (f FileChange) DisplayPath() string {
	if (f.Kind == ChangeRenamed || f.Kind == ChangeCopied) && f.OldPath != "" && f.OldPath != f.Path {
		return f.OldPath + " -> " + f.Path
	}
	return f.Path
}

type LineKind uint8

const (
	LineContext LineKind = iota
	LineAdded
	LineRemoved
)

type DiffLine struct {
	Kind LineKind
	Text string
}

type DiffHunk struct {
	Header string // "@@ -1,3 +1,4 @@" or a note such as "binary file differs"
	Lines  []DiffLine
}
