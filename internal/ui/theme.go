package ui

import (
	"maps"
	"slices"

	"github.com/charmbracelet/lipgloss"
)

type palette struct {
	Surface  lipgloss.Color
	Text     lipgloss.Color
	Muted    lipgloss.Color
	Accent   lipgloss.Color
	Border   lipgloss.Color
	Yes      lipgloss.Color
	No       lipgloss.Color
	Confetti []lipgloss.Color
}

var palettes = map[string]palette{
	"rose": {
		Surface:  lipgloss.Color("#ffe4ea"),
		Text:     lipgloss.Color("#444444"),
		Muted:    lipgloss.Color("#8d8d8d"),
		Accent:   lipgloss.Color("#e63946"),
		Border:   lipgloss.Color("#f4a1b0"),
		Yes:      lipgloss.Color("#e63946"),
		No:       lipgloss.Color("#bdbdbd"),
		Confetti: []lipgloss.Color{"#e63946", "#ffb3c1", "#ffd166", "#ff8fab", "#ffffff"},
	},
	"midnight": {
		Surface:  lipgloss.Color("#313244"),
		Text:     lipgloss.Color("#cdd6f4"),
		Muted:    lipgloss.Color("#a6adc8"),
		Accent:   lipgloss.Color("#f38ba8"),
		Border:   lipgloss.Color("#585b70"),
		Yes:      lipgloss.Color("#f38ba8"),
		No:       lipgloss.Color("#6c7086"),
		Confetti: []lipgloss.Color{"#f38ba8", "#cba6f7", "#f9e2af", "#94e2d5", "#fab387"},
	},
	"dracula": {
		Surface:  lipgloss.Color("#343746"),
		Text:     lipgloss.Color("#f8f8f2"),
		Muted:    lipgloss.Color("#6272a4"),
		Accent:   lipgloss.Color("#ff79c6"),
		Border:   lipgloss.Color("#44475a"),
		Yes:      lipgloss.Color("#ff5555"),
		No:       lipgloss.Color("#6272a4"),
		Confetti: []lipgloss.Color{"#ff79c6", "#bd93f9", "#f1fa8c", "#50fa7b", "#ffb86c"},
	},
	"gruvbox": {
		Surface:  lipgloss.Color("#3c3836"),
		Text:     lipgloss.Color("#ebdbb2"),
		Muted:    lipgloss.Color("#a89984"),
		Accent:   lipgloss.Color("#fb4934"),
		Border:   lipgloss.Color("#665c54"),
		Yes:      lipgloss.Color("#fb4934"),
		No:       lipgloss.Color("#928374"),
		Confetti: []lipgloss.Color{"#fb4934", "#d3869b", "#fabd2f", "#b8bb26", "#fe8019"},
	},
}

func paletteFor(name string) palette {
	if p, ok := palettes[name]; ok {
		return p
	}
	return palettes["rose"]
}

// nextThemeName cycles through the palettes in name order; unknown names start from the first.
func nextThemeName(current string, step int) string {
	names := slices.Sorted(maps.Keys(palettes))
	i := max(slices.Index(names, current), 0)
	n := len(names)
	return names[((i+step)%n+n)%n]
}

// styles derived from a palette; rebuilt when the theme changes.
type styles struct {
	title    lipgloss.Style
	subtitle lipgloss.Style
	muted    lipgloss.Style
	card     lipgloss.Style
	yes      lipgloss.Style
	yesFocus lipgloss.Style
	no       lipgloss.Style
	button   lipgloss.Style
	tile     lipgloss.Style
	tileSel  lipgloss.Style
	status   lipgloss.Style
}

func newStyles(p palette) styles {
	btn := lipgloss.NewStyle().Padding(0, 2).Bold(true)
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		subtitle: lipgloss.NewStyle().Italic(true).Foreground(p.Text),
		muted:    lipgloss.NewStyle().Foreground(p.Muted),
		card:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.Border).Padding(1, 3),
		yes:      btn.Foreground(lipgloss.Color("#ffffff")).Background(p.Yes),
		yesFocus: btn.Foreground(lipgloss.Color("#ffffff")).Background(p.Yes).Underline(true),
		no:       btn.Foreground(p.Text).Background(p.No),
		button:   btn.Foreground(lipgloss.Color("#ffffff")).Background(p.Accent),
		tile:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.Border).Foreground(p.Text).Background(p.Surface),
		tileSel:  lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(p.Accent).Foreground(p.Accent).Background(p.Surface).Bold(true),
		status:   lipgloss.NewStyle().Foreground(p.Muted),
	}
}
