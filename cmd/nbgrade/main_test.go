package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nbgrade/internal/config"
	"nbgrade/internal/metadata"
)

const metadataYAML = `q1:
  required_funcs: [abs]
  required_vars: [x]
  assertions: assert(x == 5, "x should be 5")
  points_possible: 2
q2:
  required_vars: [y]
  assertions: assert(y == 3)
  points_possible: 1
`

func writeAssignment(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cells := []map[string]interface{}{
		{"cell_type": "code", "source": "func abs(n int) int {\n\tif n < 0 {\n\t\treturn -n\n\t}\n\treturn n\n}\n"},
		{"cell_type": "markdown", "source": "Points possible: 2"},
		{"cell_type": "code", "source": "x := abs(-5)"},
		{"cell_type": "code", "source": `grader.Check("q1")`},
		{"cell_type": "markdown", "source": "Points possible: 1"},
		{"cell_type": "code", "source": "y := 4"},
		{"cell_type": "code", "source": `grader.Check("q2")`},
	}
	data, err := json.Marshal(map[string]interface{}{"nbformat": 4, "cells": cells})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hw.ipynb"), data, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.yaml"), []byte(metadataYAML), 0644))
	return dir
}

// execute runs the CLI with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	verbose, configPath, notebookDir, project = false, "", "", ""
	autograder, notebookOverride, packOutput, force = false, "", "", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	dir := writeAssignment(t)

	out, err := execute(t, "check", "q1", "--dir", dir, "--project", "hw")
	require.NoError(t, err)
	assert.Contains(t, out, "Running checks for q1...")
	assert.Contains(t, out, "All checks passed!")

	out, err = execute(t, "check", "q2", "--dir", dir, "--project", "hw")
	require.NoError(t, err, "interactive checks do not fail the process")
	assert.Contains(t, out, "Test case failed: ")
}

func TestCheckCommandAutograder(t *testing.T) {
	dir := writeAssignment(t)

	_, err := execute(t, "check", "q1", "--autograder", "--dir", dir, "--project", "hw")
	require.NoError(t, err)

	out, err := execute(t, "check", "q2", "--autograder", "--dir", dir, "--project", "hw")
	require.ErrorIs(t, err, errCheckFailed)
	assert.NotContains(t, out, "Errors:")
}

func TestCheckCommandMissingNotebook(t *testing.T) {
	_, err := execute(t, "check", "q1", "--dir", t.TempDir(), "--project", "hw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hw.ipynb")
}

func TestGradeCommand(t *testing.T) {
	dir := writeAssignment(t)

	out, err := execute(t, "grade", "--dir", dir, "--project", "hw")
	require.NoError(t, err)
	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "Total: 2/3")
}

func TestListCommand(t *testing.T) {
	dir := writeAssignment(t)

	out, err := execute(t, "list", "--dir", dir, "--project", "hw")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "q1"))
	assert.Contains(t, lines[0], "2 pts")
	assert.True(t, strings.HasPrefix(lines[1], "q2"))
}

func TestPackMetadataCommand(t *testing.T) {
	dir := writeAssignment(t)
	src := filepath.Join(dir, "metadata.yaml")

	out, err := execute(t, "pack-metadata", src, "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Packed 2 questions (3 points)")

	a, err := metadata.LoadFile(filepath.Join(dir, "metadata.gob"))
	require.NoError(t, err)
	assert.Equal(t, []string{"q1", "q2"}, a.IDs())
}

func TestDatasetCommandWithoutDataset(t *testing.T) {
	dir := writeAssignment(t)

	_, err := execute(t, "dataset", "Pikachu", "--dir", dir, "--project", "hw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no dataset")
}

func TestInvalidConfig(t *testing.T) {
	dir := writeAssignment(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".nbgrade.yaml"), []byte("logging:\n  level: loud\n"), 0644))

	_, err := execute(t, "list", "--dir", dir, "--project", "hw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)

	out, err := execute(t, "init", "--dir", dir, "--project", "hw")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hw", cfg.Project)
	assert.Equal(t, dir, cfg.NotebookDir)
	assert.Equal(t, config.DefaultConfig().Layout, cfg.Layout)

	_, err = execute(t, "init", "--dir", dir, "--project", "other")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "init", "--dir", dir, "--project", "other", "--force")
	require.NoError(t, err)
	cfg, err = config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "other", cfg.Project)
}
