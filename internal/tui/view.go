package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"

	"github.com/thiagokokada/jj-inspect/internal/render"
	"github.com/thiagokokada/jj-inspect/internal/session"
)

const separator = "│"

func (m Model) View() string {
	if m.sess.Mode() == session.ModeQuitting {
		return ""
	}
	f := render.Project(m.sess.Snapshot(), m.width, m.height)

	lines := make([]string, 0, f.Height)
	lines = append(lines, m.styles.header.Render(pad(f.Header, f.Width)))
	lines = append(lines, m.body(f)...)
	if f.Banner != "" {
		st := m.styles.bannerInfo
		if f.BannerErr {
			st = m.styles.bannerErr
		}
		lines = append(lines, st.Render(f.Banner))
	}
	lines = append(lines, m.styles.status.Render(f.Status))
	if m.sess.Mode() == session.ModeCommand {
		lines = append(lines, m.input.View())
	} else {
		lines = append(lines, m.hints(f.Hints, f.Width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) body(f render.Frame) []string {
	if f.Placeholder != "" {
		text := truncate.StringWithTail(f.Placeholder, uint(max(f.Width, 0)), "…")
		placed := lipgloss.Place(f.Width, f.BodyHeight, lipgloss.Center, lipgloss.Center,
			m.styles.placeholder.Render(text))
		return strings.Split(placed, "\n")
	}
	sep := m.styles.separator.Render(separator)
	rows := make([]string, f.BodyHeight)
	for i := range rows {
		var file, diff string
		if i < len(f.Files) {
			file = m.fileCell(f.Files[i], f.FileWidth)
		} else {
			file = pad("", f.FileWidth)
		}
		if i < len(f.Diff) {
			diff = m.diffCell(f.Diff[i], f.DiffPath)
		}
		rows[i] = file + sep + diff
	}
	return rows
}

func (m Model) fileCell(r render.FileRow, width int) string {
	text := pad(r.Text, width)
	switch {
	case r.Err:
		return m.styles.errText.Render(text)
	case r.Selected:
		return m.styles.selected.Render(text)
	default:
		return m.styles.fileRow.Render(text)
	}
}

func (m Model) diffCell(r render.DiffRow, path string) string {
	switch r.Kind {
	case render.RowHunkHeader:
		return m.styles.hunk.Render(r.Text)
	case render.RowNote:
		return m.styles.note.Render(r.Text)
	case render.RowBoundary:
		return m.styles.boundary.Render(r.Text)
	case render.RowError:
		return m.styles.errText.Render(r.Text)
	}
	st := m.styles.fileRow
	switch r.Kind {
	case render.RowAdded:
		st = m.styles.added
	case render.RowRemoved:
		st = m.styles.removed
	}
	code := m.hl.Line(path, r.Text)
	if code == r.Text {
		code = st.Render(r.Text)
	}
	return st.Render(r.Prefix) + code
}

func (m Model) hints(hints []render.Hint, width int) string {
	parts := make([]string, 0, len(hints))
	used := 0
	for _, h := range hints {
		plain := h.Desc
		if h.Key != "" {
			plain = h.Key + " " + h.Desc
		}
		if used > 0 && used+2+len([]rune(plain)) > width {
			break
		}
		used += len([]rune(plain)) + 2
		if h.Key == "" {
			parts = append(parts, m.styles.hintDesc.Render(h.Desc))
			continue
		}
		parts = append(parts, m.styles.hintKey.Render(h.Key)+" "+m.styles.hintDesc.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}

// pad right-fills s with spaces to w printable columns.
func pad(s string, w int) string {
	n := ansi.PrintableRuneWidth(s)
	if n >= w {
		return s
	}
	return s + strings.Repeat(" ", w-n)
}
