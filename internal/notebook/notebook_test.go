package notebook

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
 "cells": [
  {"cell_type": "markdown", "metadata": {}, "source": ["# Project\n", "Points possible: 2"]},
  {"cell_type": "code", "execution_count": null, "metadata": {}, "outputs": [], "source": "x := 5"},
  {"cell_type": "code", "execution_count": 3, "metadata": {}, "outputs": [], "source": []},
  {"cell_type": "raw", "metadata": {}, "source": "raw text"}
 ],
 "metadata": {"kernelspec": {"name": "gophernotes"}},
 "nbformat": 4,
 "nbformat_minor": 5
}`

func TestParse(t *testing.T) {
	nb, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	want := []Cell{
		{Kind: KindMarkdown, Source: "# Project\nPoints possible: 2"},
		{Kind: KindCode, Source: "x := 5"},
		{Kind: KindCode, Source: ""},
		{Kind: KindRaw, Source: "raw text"},
	}
	if diff := cmp.Diff(want, nb.Cells); diff != "" {
		t.Errorf("cells mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", "{"},
		{"old format", `{"cells": [], "nbformat": 3}`},
		{"bad source", `{"cells": [{"cell_type": "code", "source": 7}], "nbformat": 4}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.ipynb")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	nb, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, nb.Path)
	assert.Len(t, nb.Cells, 4)

	_, err = Load(filepath.Join(t.TempDir(), "absent.ipynb"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCellKindString(t *testing.T) {
	assert.Equal(t, "code", KindCode.String())
	assert.Equal(t, "markdown", KindMarkdown.String())
	assert.Equal(t, "raw", KindRaw.String())
}
