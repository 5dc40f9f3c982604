// Package render projects a session snapshot into pane rows. It decides what
// is drawn; the tui package only decides how.
package render

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/truncate"

	"github.com/thiagokokada/jj-inspect/internal/diffcache"
	"github.com/thiagokokada/jj-inspect/internal/session"
	"github.com/thiagokokada/jj-inspect/internal/stack"
	"github.com/thiagokokada/jj-inspect/internal/vcs"
)

const (
	tabWidth        = 4
	ellipsis        = "…"
	selectedMarker  = "▸ "
	unselectedSpace = "  "
	emptyText       = "No commits to review"
	loadingText     = "loading…"
	minFilePane     = 16
	maxFilePane     = 48
	chromeRows      = 3 // header, status, hints
)

type RowKind int

const (
	RowContext RowKind = iota
	RowAdded
	RowRemoved
	RowHunkHeader
	RowNote
	RowBoundary
	RowError
)

type FileRow struct {
	Text     string
	Kind     vcs.ChangeKind
	Selected bool
	Err      bool
}

// DiffRow is one diff pane line. Prefix is the +/-/space marker and Text the
// code after it.
type DiffRow struct {
	Kind   RowKind
	Prefix string
	Text   string
}

type Hint struct {
	Key  string
	Desc string
}

type Frame struct {
	Width       int
	Height      int
	FileWidth   int
	DiffWidth   int
	BodyHeight  int
	Header      string
	Files       []FileRow
	Diff        []DiffRow
	DiffPath    string
	Placeholder string // replaces both panes when set
	Status      string
	Hints       []Hint
	Banner      string
	BannerErr   bool
}

// BodyHeight is the number of pane rows available for a terminal height.
func BodyHeight(height int, banner bool) int {
	h := height - chromeRows
	if banner {
		h--
	}
	return max(h, 1)
}

// PaneWidths splits the terminal width into file and diff panes, leaving one
// column for the separator.
func PaneWidths(width int) (int, int) {
	fw := min(max(width/3, minFilePane), maxFilePane)
	if fw > width/2 {
		fw = width / 2
	}
	dw := max(width-fw-1, 0)
	return fw, dw
}

func fit(s string, w int) string {
	if w <= 0 {
		return ""
	}
	return truncate.StringWithTail(s, uint(w), ellipsis)
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

func Project(snap session.Snapshot, width, height int) Frame {
	fw, dw := PaneWidths(width)
	f := Frame{
		Width:     width,
		Height:    height,
		FileWidth: fw,
		DiffWidth: dw,
	}
	if snap.Banner.Level != session.BannerNone && snap.Banner.Text != "" {
		f.Banner = fit(snap.Banner.Text, width)
		f.BannerErr = snap.Banner.Level == session.BannerError
	}
	f.BodyHeight = BodyHeight(height, f.Banner != "")
	f.Hints = hints(snap)
	f.Status = fit(statusLine(snap), width)

	switch {
	case snap.StartupErr != nil:
		f.Placeholder = snap.StartupErr.Error()
		return f
	case snap.Empty():
		f.Placeholder = emptyText
		return f
	}

	item, _ := snap.Current()
	f.Header = fit(header(item), width)
	f.Files = fileRows(snap, item, fw, f.BodyHeight)
	if fc, ok := snap.SelectedFile(); ok {
		f.DiffPath = fc.Path
	}
	f.Diff = diffRows(snap, item, dw, f.BodyHeight)
	return f
}

func header(item stack.Item) string {
	h := item.Commit.ShortID() + " " + item.Summary()
	if item.Entry != nil && item.Entry.Bookmark != "" {
		h += " [" + item.Entry.Bookmark + "]"
	}
	return expandTabs(h)
}

func fileRows(snap session.Snapshot, item stack.Item, width, height int) []FileRow {
	if !item.Resolved() {
		return []FileRow{{Text: fit("unresolved: "+item.Err.Error(), width), Err: true}}
	}
	switch snap.Files.State {
	case diffcache.StateMissing:
		return []FileRow{{Text: fit(loadingText, width)}}
	case diffcache.StateUnavailable:
		return []FileRow{{Text: fit("error: "+snap.Files.Err.Error(), width), Err: true}}
	}
	if len(snap.Files.Changes) == 0 {
		return []FileRow{{Text: fit("(no changes)", width)}}
	}
	start := 0
	if snap.File >= height {
		start = snap.File - height + 1
	}
	end := min(start+height, len(snap.Files.Changes))
	rows := make([]FileRow, 0, end-start)
	for i := start; i < end; i++ {
		fc := snap.Files.Changes[i]
		marker := unselectedSpace
		if i == snap.File {
			marker = selectedMarker
		}
		text := marker + fc.Kind.Glyph() + " " + expandTabs(fc.DisplayPath())
		rows = append(rows, FileRow{Text: fit(text, width), Kind: fc.Kind, Selected: i == snap.File})
	}
	return rows
}

func diffRows(snap session.Snapshot, item stack.Item, width, height int) []DiffRow {
	if !item.Resolved() || snap.Files.State != diffcache.StateLoaded {
		return nil
	}
	if len(snap.Files.Changes) == 0 {
		return []DiffRow{{Kind: RowNote, Text: fit("(no changes)", width)}}
	}
	switch snap.Diff.State {
	case diffcache.StateMissing:
		return []DiffRow{{Kind: RowBoundary, Text: fit(boundary(width), width)}}
	case diffcache.StateUnavailable:
		return []DiffRow{{Kind: RowError, Text: fit("diff unavailable: "+snap.Diff.Err.Error(), width)}}
	}
	all := flatten(snap.Diff.Hunks)
	if len(all) == 0 {
		return []DiffRow{{Kind: RowNote, Text: fit("(no textual changes)", width)}}
	}
	start := min(max(snap.Scroll, 0), len(all))
	end := min(start+height, len(all))
	rows := make([]DiffRow, 0, end-start)
	for _, r := range all[start:end] {
		r.Text = fit(r.Text, width-len(r.Prefix))
		rows = append(rows, r)
	}
	return rows
}

func boundary(width int) string {
	label := " " + loadingText + " "
	side := max((width-len([]rune(label)))/2, 0)
	return strings.Repeat("─", side) + label + strings.Repeat("─", side)
}

// flatten yields one row per hunk header and per line, matching
// diffcache.FileDiff.Rows.
func flatten(hunks []vcs.DiffHunk) []DiffRow {
	var rows []DiffRow
	for _, h := range hunks {
		kind := RowHunkHeader
		if !strings.HasPrefix(h.Header, "@@") {
			kind = RowNote
		}
		rows = append(rows, DiffRow{Kind: kind, Text: expandTabs(h.Header)})
		for _, l := range h.Lines {
			row := DiffRow{Text: expandTabs(l.Text)}
			switch l.Kind {
			case vcs.LineAdded:
				row.Kind, row.Prefix = RowAdded, "+"
			case vcs.LineRemoved:
				row.Kind, row.Prefix = RowRemoved, "-"
			default:
				row.Kind, row.Prefix = RowContext, " "
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func statusLine(snap session.Snapshot) string {
	var parts []string
	if snap.Source == stack.ModeQueue {
		parts = append(parts, "queue: "+snap.QueueDir)
	} else {
		base := snap.Base
		if base == "" {
			base = "(none)"
		}
		parts = append(parts, "stack base: "+base)
	}
	if snap.Files.State == diffcache.StateLoaded {
		parts = append(parts, fmt.Sprintf("%d files", len(snap.Files.Changes)))
	}
	if n := len(snap.Items); n > 0 {
		parts = append(parts, fmt.Sprintf("commit %d/%d", snap.Commit+1, n))
	}
	if item, ok := snap.Current(); ok && item.Entry != nil {
		parts = append(parts, string(item.Entry.Status))
	}
	if snap.Mode != session.ModeBrowsing {
		parts = append(parts, snap.Mode.String())
	}
	return strings.Join(parts, " | ")
}

func hints(snap session.Snapshot) []Hint {
	switch snap.Mode {
	case session.ModeCommand:
		return []Hint{{"enter", "run"}, {"esc", "cancel"}}
	case session.ModeFullDiffPager:
		return []Hint{{"", "pager running"}}
	case session.ModeQuitting:
		return nil
	}
	if snap.StartupErr != nil || snap.Empty() {
		return []Hint{{"r", "refresh"}, {"q", "quit"}}
	}
	h := []Hint{
		{"j/k", "file"},
		{"[/]", "commit"},
		{"J/K", "scroll"},
		{"enter", "diff"},
		{":", "command"},
		{"r", "refresh"},
		{"y", "copy id"},
	}
	if snap.Source == stack.ModeQueue {
		h = append(h, Hint{"A", "approve"})
	}
	return append(h, Hint{"q", "quit"})
}
