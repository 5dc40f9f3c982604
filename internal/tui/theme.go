package tui

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	darkmode "github.com/thiagokokada/dark-mode-go"
)

// ThemePreference selects the palette; auto follows the desktop setting.
type ThemePreference int

const (
	ThemeAuto ThemePreference = iota
	ThemeLight
	ThemeDark
)

var themeNames = [...]string{ThemeAuto: "auto", ThemeLight: "light", ThemeDark: "dark"}

func (p ThemePreference) String() string {
	if p < ThemeAuto || int(p) >= len(themeNames) {
		return themeNames[ThemeAuto]
	}
	return themeNames[p]
}

// ThemePreferenceFromString parses a --mode value; anything unknown is auto.
func ThemePreferenceFromString(raw string) ThemePreference {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for p, name := range themeNames {
		if raw == name {
			return ThemePreference(p)
		}
	}
	return ThemeAuto
}

type palette struct {
	Name       string
	Added      lipgloss.Color
	Removed    lipgloss.Color
	Hunk       lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Error      lipgloss.Color
	SelectedBg lipgloss.Color
	HeaderBg   lipgloss.Color
}

var (
	lightPalette = palette{
		Name:       "light",
		Added:      lipgloss.Color("#116329"),
		Removed:    lipgloss.Color("#a40e26"),
		Hunk:       lipgloss.Color("#0550ae"),
		Accent:     lipgloss.Color("#8250df"),
		Muted:      lipgloss.Color("#6e7781"),
		Error:      lipgloss.Color("#cf222e"),
		SelectedBg: lipgloss.Color("#ddf4ff"),
		HeaderBg:   lipgloss.Color("#eaeef2"),
	}
	darkPalette = palette{
		Name:       "dark",
		Added:      lipgloss.Color("#3fb950"),
		Removed:    lipgloss.Color("#f85149"),
		Hunk:       lipgloss.Color("#58a6ff"),
		Accent:     lipgloss.Color("#d2a8ff"),
		Muted:      lipgloss.Color("#8b949e"),
		Error:      lipgloss.Color("#ff7b72"),
		SelectedBg: lipgloss.Color("#1f3b57"),
		HeaderBg:   lipgloss.Color("#2f2f2f"),
	}
	detectDarkMode = darkmode.IsDarkMode
)

func (p palette) isDark() bool { return p.Name == "dark" }

// paletteFor resolves auto through the desktop dark-mode setting, falling
// back to the terminal background and finally to light.
func paletteFor(pref ThemePreference) palette {
	switch pref {
	case ThemeDark:
		return darkPalette
	case ThemeLight:
		return lightPalette
	}
	if detectDarkMode != nil {
		dark, err := detectDarkMode()
		if err == nil {
			if dark {
				return darkPalette
			}
			return lightPalette
		}
		slog.Debug("detect dark-mode", slog.Any("error", err))
	}
	if lipgloss.HasDarkBackground() {
		return darkPalette
	}
	return lightPalette
}
