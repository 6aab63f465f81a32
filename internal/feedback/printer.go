package feedback

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Section titles.
const (
	WarningsTitle = "Warnings:"
	ErrorsTitle   = "Errors:"
)

// Printer writes feedback to one destination.
type Printer struct {
	w      io.Writer
	styles Styles
}

// NewPrinter returns a printer for w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, styles: NewStyles(lipgloss.NewRenderer(w))}
}

// Banner prints a run header line.
func (p *Printer) Banner(text string) {
	fmt.Fprintln(p.w, p.styles.Banner.Render(text))
}

// Section prints a blank line, the title, then one bullet per message.
// Nothing is printed for an empty list.
func (p *Printer) Section(title string, style lipgloss.Style, messages []string) {
	if len(messages) == 0 {
		return
	}
	fmt.Fprintf(p.w, "\n%s\n", style.Render(title))
	for _, msg := range messages {
		fmt.Fprintf(p.w, "  - %s\n", msg)
	}
}

// Report prints the warnings section followed by the errors section.
func (p *Printer) Report(warnings, errors []string) {
	p.Section(WarningsTitle, p.styles.WarningTitle, warnings)
	p.Section(ErrorsTitle, p.styles.ErrorTitle, errors)
}

// Notice prints an attention line preceded by a blank line.
func (p *Printer) Notice(text string) {
	fmt.Fprintf(p.w, "\n%s\n", p.styles.Notice.Render(text))
}

// Success prints the success line.
func (p *Printer) Success(text string) {
	fmt.Fprintln(p.w, p.styles.Success.Render(text))
}

// ScoreRow is one question in a score table.
type ScoreRow struct {
	QuestionID string
	Passed     bool
	Points     float64
	Possible   float64
}

// Scores prints a table of per-question results and the total.
func (p *Printer) Scores(rows []ScoreRow) {
	var earned, possible float64
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Question", "Result", "Points")

	for _, r := range rows {
		result := "FAIL"
		if r.Passed {
			result = "PASS"
		}
		t.Row(r.QuestionID, result, formatPoints(r.Points)+"/"+formatPoints(r.Possible))
		earned += r.Points
		possible += r.Possible
	}

	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return p.styles.TableHeader
		case col == 1 && row >= 0 && row < len(rows):
			if rows[row].Passed {
				return p.styles.Pass
			}
			return p.styles.Fail
		default:
			return p.styles.TableCell
		}
	})

	fmt.Fprintln(p.w, t.Render())
	fmt.Fprintf(p.w, "Total: %s/%s\n", formatPoints(earned), formatPoints(possible))
}

func formatPoints(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
