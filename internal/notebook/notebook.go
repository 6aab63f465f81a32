// Package notebook reads Jupyter .ipynb files into an ordered list of cells.
package notebook

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"nbgrade/internal/logging"
)

// CellKind is the type of a notebook cell.
type CellKind int

const (
	KindCode CellKind = iota
	KindMarkdown
	KindRaw
)

func (k CellKind) String() string {
	switch k {
	case KindCode:
		return "code"
	case KindMarkdown:
		return "markdown"
	default:
		return "raw"
	}
}

// Cell is one notebook cell.
type Cell struct {
	Kind   CellKind
	Source string
}

// Notebook is an ordered, read-only sequence of cells.
type Notebook struct {
	Path  string
	Cells []Cell
}

// source accepts both nbformat spellings: one string, or a list of lines.
type source string

func (s *source) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = source(one)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("cell source must be a string or a list of strings")
	}
	*s = source(strings.Join(lines, ""))
	return nil
}

type rawNotebook struct {
	Cells []struct {
		CellType string `json:"cell_type"`
		Source   source `json:"source"`
	} `json:"cells"`
	NBFormat int `json:"nbformat"`
}

// Parse decodes an .ipynb document.
func Parse(r io.Reader) (*Notebook, error) {
	var raw rawNotebook
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode notebook: %w", err)
	}
	if raw.NBFormat != 0 && raw.NBFormat < 4 {
		return nil, fmt.Errorf("unsupported nbformat %d (need 4 or later)", raw.NBFormat)
	}

	nb := &Notebook{Cells: make([]Cell, 0, len(raw.Cells))}
	for _, c := range raw.Cells {
		kind := KindRaw
		switch c.CellType {
		case "code":
			kind = KindCode
		case "markdown":
			kind = KindMarkdown
		}
		nb.Cells = append(nb.Cells, Cell{Kind: kind, Source: string(c.Source)})
	}
	return nb, nil
}

// Load reads the notebook at path.
func Load(path string) (*Notebook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open notebook: %w", err)
	}
	defer f.Close()

	nb, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	nb.Path = path
	logging.NotebookDebug("loaded %s: %d cells", path, len(nb.Cells))
	return nb, nil
}
