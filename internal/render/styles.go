package render

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorSecondary = lipgloss.Color("#10B981")
	colorAccent    = lipgloss.Color("#F59E0B")
	colorError     = lipgloss.Color("#EF4444")
	colorMuted     = lipgloss.Color("#6B7280")
)

// Styles groups the styles used for terminal output. Build it from a
// renderer so color support follows the output stream.
type Styles struct {
	Title      lipgloss.Style
	Label      lipgloss.Style
	Value      lipgloss.Style
	Course     lipgloss.Style
	Special    lipgloss.Style
	Operator   lipgloss.Style
	None       lipgloss.Style
	Enumerator lipgloss.Style
	Warning    lipgloss.Style
	Box        lipgloss.Style
}

// NewStyles creates the styles for renderer r
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title: r.NewStyle().
			Bold(true).
			Foreground(colorPrimary),

		Label: r.NewStyle().
			Foreground(colorMuted),

		Value: r.NewStyle().
			Bold(true),

		Course: r.NewStyle().
			Foreground(colorSecondary),

		Special: r.NewStyle().
			Foreground(colorAccent),

		Operator: r.NewStyle().
			Bold(true).
			Foreground(colorPrimary),

		None: r.NewStyle().
			Foreground(colorMuted).
			Italic(true),

		Enumerator: r.NewStyle().
			Foreground(colorMuted).
			PaddingRight(1),

		Warning: r.NewStyle().
			Foreground(colorError),

		Box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1),
	}
}
