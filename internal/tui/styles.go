package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Palette is the set of colours a theme is built from.
type Palette struct {
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Focus   lipgloss.Color
	Good    lipgloss.Color
	Bad     lipgloss.Color
	Caution lipgloss.Color
	Answer  lipgloss.Color
}

var palettes = map[string]Palette{
	"default": {
		Accent:  "#7D56F4",
		Text:    "#FAFAFA",
		Muted:   "#626262",
		Focus:   "#04B575",
		Good:    "#96CEB4",
		Bad:     "#FF6B6B",
		Caution: "#FFEAA7",
		Answer:  "#FFD700",
	},
	"dark": {
		Accent:  "#5A3FC0",
		Text:    "#D0D0D0",
		Muted:   "#4E4E4E",
		Focus:   "#2E8B57",
		Good:    "#6FBF8F",
		Bad:     "#E05252",
		Caution: "#D7B65D",
		Answer:  "#E0B000",
	},
	"light": {
		Accent:  "#5B2FD6",
		Text:    "#1C1C1C",
		Muted:   "#8A8A8A",
		Focus:   "#007A4D",
		Good:    "#2E7D5B",
		Bad:     "#C62828",
		Caution: "#9A6A00",
		Answer:  "#8C6D00",
	},
}

// Content styles, rebuilt by ApplyTheme.
var (
	palette Palette

	HeaderStyle  lipgloss.Style
	PromptStyle  lipgloss.Style
	AnswerStyle  lipgloss.Style
	ScoreStyle   lipgloss.Style
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	InfoStyle    lipgloss.Style
)

func init() {
	_ = ApplyTheme("default")
}

// ApplyTheme switches every style to the named palette.
func ApplyTheme(name string) error {
	p, ok := palettes[name]
	if !ok {
		return fmt.Errorf("unknown theme %q", name)
	}

	palette = p
	HeaderStyle = lipgloss.NewStyle().Foreground(p.Text).Background(p.Accent).Bold(true)
	PromptStyle = lipgloss.NewStyle().Foreground(p.Good).Bold(true)
	AnswerStyle = lipgloss.NewStyle().Foreground(p.Answer)
	ScoreStyle = lipgloss.NewStyle().Foreground(p.Text)
	SuccessStyle = lipgloss.NewStyle().Foreground(p.Good).Bold(true)
	ErrorStyle = lipgloss.NewStyle().Foreground(p.Bad).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(p.Caution).Bold(true)
	InfoStyle = lipgloss.NewStyle().Foreground(p.Muted)
	return nil
}

// paneStyle is the bordered frame around one pane.
func paneStyle(focused bool) lipgloss.Style {
	border := palette.Muted
	if focused {
		border = palette.Focus
	}
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border)
}
