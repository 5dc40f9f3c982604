package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Highlighter colours single diff lines by the file's language.
type Highlighter struct {
	enabled  bool
	style    *chroma.Style
	renderer *lipgloss.Renderer
	lexers   map[string]chroma.Lexer
	colors   map[string]lipgloss.Style
}

func New(enabled, dark bool) *Highlighter {
	return NewWithRenderer(enabled, dark, lipgloss.DefaultRenderer())
}

func NewWithRenderer(enabled, dark bool, r *lipgloss.Renderer) *Highlighter {
	return &Highlighter{
		enabled:  enabled,
		style:    styleFor(dark),
		renderer: r,
		lexers:   map[string]chroma.Lexer{},
		colors:   map[string]lipgloss.Style{},
	}
}

func styleFor(dark bool) *chroma.Style {
	name := "github"
	if dark {
		name = "github-dark"
	}
	if st := styles.Get(name); st != nil {
		return st
	}
	return styles.Fallback
}

func (h *Highlighter) lexer(path string) chroma.Lexer {
	if l, ok := h.lexers[path]; ok {
		return l
	}
	var l chroma.Lexer
	if m := lexers.Match(path); m != nil {
		l = chroma.Coalesce(m)
	}
	h.lexers[path] = l
	return l
}

func colorFromEntry(entry chroma.StyleEntry) string {
	if !entry.Colour.IsSet() {
		return ""
	}
	return "#" + strings.TrimPrefix(strings.ToLower(entry.Colour.String()), "#")
}

// Line returns code with ANSI colours for the language of path. Unknown
// languages and disabled highlighting return code unchanged.
func (h *Highlighter) Line(path, code string) string {
	if h == nil || !h.enabled || code == "" || path == "" {
		return code
	}
	lexer := h.lexer(path)
	if lexer == nil {
		return code
	}
	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var b strings.Builder
	for _, tok := range it.Tokens() {
		value := strings.TrimRight(tok.Value, "\n")
		if value == "" {
			continue
		}
		color := colorFromEntry(h.style.Get(tok.Type))
		if color == "" {
			b.WriteString(value)
			continue
		}
		st, ok := h.colors[color]
		if !ok {
			st = h.renderer.NewStyle().Foreground(lipgloss.Color(color))
			h.colors[color] = st
		}
		b.WriteString(st.Render(value))
	}
	return b.String()
}

// ColorizePatch adds ANSI colours to unified diff text for a pager such as
// less -R. Colours are always emitted since the output is not a terminal.
func ColorizePatch(text string) string {
	p := termenv.ANSI
	var b strings.Builder
	b.Grow(len(text) + len(text)/4)
	for _, line := range strings.SplitAfter(text, "\n") {
		body := strings.TrimSuffix(line, "\n")
		nl := line[len(body):]
		switch {
		case body == "":
		case strings.HasPrefix(body, "diff --git "), strings.HasPrefix(body, "+++ "), strings.HasPrefix(body, "--- "):
			body = p.String(body).Bold().String()
		case strings.HasPrefix(body, "@@"):
			body = p.String(body).Foreground(p.Color("6")).String()
		case body[0] == '+':
			body = p.String(body).Foreground(p.Color("2")).String()
		case body[0] == '-':
			body = p.String(body).Foreground(p.Color("1")).String()
		}
		b.WriteString(body)
		b.WriteString(nl)
	}
	return b.String()
}
