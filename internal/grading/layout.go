package grading

import (
	"fmt"
	"regexp"
	"strings"

	"nbgrade/internal/config"
	"nbgrade/internal/notebook"
)

// Block is one question block found in a notebook.
type Block struct {
	QuestionID string // empty when the check cell is missing or malformed
	Marker     int    // index of the "Points possible" cell
	Code       int    // index of the student's code cell
	Check      int    // index of the check cell
	Problems   []string
}

// Layout locates question blocks.
type Layout struct {
	cfg        config.LayoutConfig
	invocation *regexp.Regexp
}

// NewLayout compiles the invocation pattern of cfg.
func NewLayout(cfg config.LayoutConfig) *Layout {
	before, after, _ := strings.Cut(cfg.InvocationFormat, "%s")
	return &Layout{
		cfg:        cfg,
		invocation: regexp.MustCompile(regexp.QuoteMeta(before) + `(.+?)` + regexp.QuoteMeta(after)),
	}
}

// IsMarker reports whether cell starts a question block.
func (l *Layout) IsMarker(cell notebook.Cell) bool {
	return strings.HasPrefix(cell.Source, l.cfg.MarkerPrefix)
}

// InvokesCheck reports whether cell calls the grader for qid.
func (l *Layout) InvokesCheck(cell notebook.Cell, qid string) bool {
	return strings.Contains(cell.Source, l.cfg.Invocation(qid))
}

// InvokesGrader reports whether cell calls the grader at all. Such cells are
// never executed while scanning.
func (l *Layout) InvokesGrader(cell notebook.Cell) bool {
	return strings.Contains(cell.Source, l.cfg.InvocationMarker)
}

// Blocks lists every question block with the layout problems found in it:
// missing offset cells, offset cells that are not code, and check cells
// without a grader call.
func (l *Layout) Blocks(nb *notebook.Notebook) []Block {
	var blocks []Block
	for i, cell := range nb.Cells {
		if !l.IsMarker(cell) {
			continue
		}
		b := Block{
			Marker: i,
			Code:   i + l.cfg.CodeCellOffset,
			Check:  i + l.cfg.CheckCellOffset,
		}
		for _, slot := range []struct {
			name string
			idx  int
		}{{"code", b.Code}, {"check", b.Check}} {
			switch {
			case slot.idx >= len(nb.Cells):
				b.Problems = append(b.Problems, fmt.Sprintf("%s cell %d is missing", slot.name, slot.idx))
			case nb.Cells[slot.idx].Kind != notebook.KindCode:
				b.Problems = append(b.Problems, fmt.Sprintf("%s cell %d is %s, expected code",
					slot.name, slot.idx, nb.Cells[slot.idx].Kind))
			}
		}
		if b.Check < len(nb.Cells) {
			if m := l.invocation.FindStringSubmatch(nb.Cells[b.Check].Source); m != nil {
				b.QuestionID = m[1]
			} else {
				b.Problems = append(b.Problems, fmt.Sprintf("check cell %d does not call %s", b.Check, l.cfg.InvocationMarker))
			}
		}
		blocks = append(blocks, b)
	}
	return blocks
}
