package vcs

// Backend abstracts the version-control queries a review session issues.
//
// Implementations shell out to jj or read the repository natively through
// go-git; callers never see command syntax or raw output.
type Backend interface {
	Name() string
	RepoPath() string
	// DefaultBase returns the base revision used when none was configured.
	DefaultBase() string

	// ResolveRange returns ancestors of head excluding ancestors of base,
	// ordered base to top. An empty head selects the working copy.
	ResolveRange(base, head string) ([]CommitRef, error)
	CommitMetadata(id string) (CommitRef, error)
	FileChanges(id string) ([]FileChange, error)
	Diff(id, path string) ([]DiffHunk, error)
	// PatchText returns the textual diff of one file, or of the whole
	// commit when path is empty.
	PatchText(id, path string) (string, error)
}
