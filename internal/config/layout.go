package config

import (
	"fmt"
	"strings"
)

// LayoutConfig describes how a question block sits in the notebook.
// A block is a marker cell, the student's code cell at marker+CodeCellOffset,
// and the check cell at marker+CheckCellOffset.
type LayoutConfig struct {
	CodeCellOffset   int    `yaml:"code_cell_offset"`
	CheckCellOffset  int    `yaml:"check_cell_offset"`
	MarkerPrefix     string `yaml:"marker_prefix"`
	InvocationFormat string `yaml:"invocation_format"` // must contain one %s for the question id
	InvocationMarker string `yaml:"invocation_marker"` // cells containing it are never executed
}

// Validate checks the offsets and invocation pattern.
func (c *LayoutConfig) Validate() error {
	if c.CodeCellOffset < 1 || c.CheckCellOffset < 1 {
		return fmt.Errorf("layout offsets must be positive (code=%d, check=%d)", c.CodeCellOffset, c.CheckCellOffset)
	}
	if c.CodeCellOffset == c.CheckCellOffset {
		return fmt.Errorf("code and check cell offsets must differ (both %d)", c.CodeCellOffset)
	}
	if c.MarkerPrefix == "" {
		return fmt.Errorf("layout marker_prefix is empty")
	}
	if strings.Count(c.InvocationFormat, "%s") != 1 {
		return fmt.Errorf("layout invocation_format %q must contain exactly one %%s", c.InvocationFormat)
	}
	if c.InvocationMarker == "" {
		return fmt.Errorf("layout invocation_marker is empty")
	}
	return nil
}

// Invocation renders the check-cell call for a question id.
func (c *LayoutConfig) Invocation(questionID string) string {
	return fmt.Sprintf(c.InvocationFormat, questionID)
}
