// Package feedback renders grading results for the terminal or a notebook
// output area. Colors apply only when the destination is a color terminal;
// everything else gets plain text.
package feedback

import "github.com/charmbracelet/lipgloss"

// Semantic colors
var (
	Destructive = lipgloss.Color("#e53935") // Red
	Success     = lipgloss.Color("#8BC34A") // Lime Green
	Warning     = lipgloss.Color("#FFC107") // Yellow
	Info        = lipgloss.Color("#2196F3") // Blue
	Muted       = lipgloss.Color("#6b7280") // Gray
)

// Styles holds the styles a Printer uses, bound to one renderer.
type Styles struct {
	Banner       lipgloss.Style
	WarningTitle lipgloss.Style
	ErrorTitle   lipgloss.Style
	Success      lipgloss.Style
	Notice       lipgloss.Style
	TableHeader  lipgloss.Style
	TableCell    lipgloss.Style
	Pass         lipgloss.Style
	Fail         lipgloss.Style
}

// NewStyles builds the palette for r.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Banner:       r.NewStyle().Foreground(Info).Bold(true),
		WarningTitle: r.NewStyle().Foreground(Warning).Bold(true),
		ErrorTitle:   r.NewStyle().Foreground(Destructive).Bold(true),
		Success:      r.NewStyle().Foreground(Success).Bold(true),
		Notice:       r.NewStyle().Foreground(Warning),
		TableHeader:  r.NewStyle().Bold(true).Padding(0, 1),
		TableCell:    r.NewStyle().Padding(0, 1),
		Pass:         r.NewStyle().Foreground(Success).Padding(0, 1),
		Fail:         r.NewStyle().Foreground(Destructive).Padding(0, 1),
	}
}
