// Package theme holds the color palette and pre-built lipgloss styles
// shared by slate's terminal surfaces (styled help, the watch view).
package theme

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const defaultThemeName = "kanagawa"

// --- Kanagawa Dragon palette ---
const (
	kanagawaGreen              = "#98BB6C"
	kanagawaYellow             = "#FF9E3B"
	kanagawaRed                = "#FF5D62"
	kanagawaOrange             = "#FFA066"
	kanagawaCyan               = "#7E9CD8"
	kanagawaBlue               = "#7FB4CA"
	kanagawaViolet             = "#957FB8"
	kanagawaLightText          = "#DCD7BA"
	kanagawaMutedText          = "#727169"
	kanagawaBorder             = "#363646"
	kanagawaSelectedBackground = "#223249"
	kanagawaSubtleBackground   = "#1F1F28"
)

// --- Terminal (ANSI-friendly) palette ---
const (
	terminalGreen              = "2"
	terminalYellow             = "3"
	terminalRed                = "1"
	terminalOrange             = "208"
	terminalCyan               = "6"
	terminalBlue               = "4"
	terminalViolet             = "5"
	terminalLightText          = "7"
	terminalMutedText          = "8"
	terminalBorder             = "8"
	terminalSelectedBackground = "8"
	terminalSubtleBackground   = "0"
)

// Colors encapsulates the palette used by a theme.
type Colors struct {
	Green              lipgloss.TerminalColor
	Yellow             lipgloss.TerminalColor
	Red                lipgloss.TerminalColor
	Orange             lipgloss.TerminalColor
	Cyan               lipgloss.TerminalColor
	Blue               lipgloss.TerminalColor
	Violet             lipgloss.TerminalColor
	LightText          lipgloss.TerminalColor
	MutedText          lipgloss.TerminalColor
	Border             lipgloss.TerminalColor
	SelectedBackground lipgloss.TerminalColor
	SubtleBackground   lipgloss.TerminalColor
}

// Theme holds the pre-configured styles for slate's terminal output.
type Theme struct {
	Colors Colors

	Header lipgloss.Style
	Title  lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	Bold     lipgloss.Style
	Italic   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style

	Box       lipgloss.Style
	Highlight lipgloss.Style
	Accent    lipgloss.Style
}

var themeRegistry = map[string]func() Colors{
	"kanagawa": newKanagawaColors,
	"terminal": newTerminalColors,
}

// DefaultTheme is the theme instance the CLI surfaces use.
var DefaultTheme = NewTheme()

// NewTheme builds a theme from the SLATE_THEME environment variable,
// falling back to an ANSI palette when the terminal cannot do true color.
func NewTheme() *Theme {
	name := strings.ToLower(os.Getenv("SLATE_THEME"))
	builder, ok := themeRegistry[name]
	if !ok {
		builder = themeRegistry[defaultThemeName]
		if termenv.ColorProfile() != termenv.TrueColor {
			// Degrade to the ANSI palette on limited terminals.
			builder = newTerminalColors
		}
	}
	return newThemeFromColors(builder())
}

func newKanagawaColors() Colors {
	return Colors{
		Green:              lipgloss.Color(kanagawaGreen),
		Yellow:             lipgloss.Color(kanagawaYellow),
		Red:                lipgloss.Color(kanagawaRed),
		Orange:             lipgloss.Color(kanagawaOrange),
		Cyan:               lipgloss.Color(kanagawaCyan),
		Blue:               lipgloss.Color(kanagawaBlue),
		Violet:             lipgloss.Color(kanagawaViolet),
		LightText:          lipgloss.Color(kanagawaLightText),
		MutedText:          lipgloss.Color(kanagawaMutedText),
		Border:             lipgloss.Color(kanagawaBorder),
		SelectedBackground: lipgloss.Color(kanagawaSelectedBackground),
		SubtleBackground:   lipgloss.Color(kanagawaSubtleBackground),
	}
}

func newTerminalColors() Colors {
	return Colors{
		Green:              lipgloss.Color(terminalGreen),
		Yellow:             lipgloss.Color(terminalYellow),
		Red:                lipgloss.Color(terminalRed),
		Orange:             lipgloss.Color(terminalOrange),
		Cyan:               lipgloss.Color(terminalCyan),
		Blue:               lipgloss.Color(terminalBlue),
		Violet:             lipgloss.Color(terminalViolet),
		LightText:          lipgloss.Color(terminalLightText),
		MutedText:          lipgloss.Color(terminalMutedText),
		Border:             lipgloss.Color(terminalBorder),
		SelectedBackground: lipgloss.Color(terminalSelectedBackground),
		SubtleBackground:   lipgloss.Color(terminalSubtleBackground),
	}
}

func newThemeFromColors(c Colors) *Theme {
	return &Theme{
		Colors: c,

		Header: lipgloss.NewStyle().Bold(true).Foreground(c.Orange),
		Title:  lipgloss.NewStyle().Bold(true).Foreground(c.Blue),

		Success: lipgloss.NewStyle().Foreground(c.Green),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(c.Red),
		Warning: lipgloss.NewStyle().Foreground(c.Yellow),
		Info:    lipgloss.NewStyle().Foreground(c.Cyan),

		Bold:     lipgloss.NewStyle().Bold(true),
		Italic:   lipgloss.NewStyle().Italic(true),
		Muted:    lipgloss.NewStyle().Foreground(c.MutedText),
		Selected: lipgloss.NewStyle().Background(c.SelectedBackground).Foreground(c.LightText),

		Box:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(c.Border).Padding(0, 1),
		Highlight: lipgloss.NewStyle().Bold(true).Foreground(c.Cyan),
		Accent:    lipgloss.NewStyle().Foreground(c.Violet),
	}
}
