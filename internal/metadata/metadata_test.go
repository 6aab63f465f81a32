package metadata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `q1:
  required_funcs: [abs]
  required_vars: [x]
  assertions: assert(x == 5, "x should be 5")
  points_possible: 2
q10:
  required_vars: [total]
  assertions: ""
  points_possible: 1.5
q2:
  required_funcs: ["project.GetHP", "+"]
  points_possible: 3
`

func writeYAML(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "metadata.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0644))
	return path
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	writeYAML(t, dir)

	a, err := Load(dir, "metadata.gob", "metadata.yaml")
	require.NoError(t, err)

	want := Question{
		RequiredCalls:  []string{"abs"},
		RequiredVars:   []string{"x"},
		Assertions:     `assert(x == 5, "x should be 5")`,
		PointsPossible: 2,
	}
	if diff := cmp.Diff(want, a["q1"]); diff != "" {
		t.Errorf("q1 mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"q1", "q2", "q10"}, a.IDs())
	assert.Equal(t, 6.5, a.TotalPoints())
}

func TestPackAndPreferBinary(t *testing.T) {
	dir := t.TempDir()
	yamlPath := writeYAML(t, dir)
	binPath := filepath.Join(dir, "metadata.gob")

	packed, err := PackFile(yamlPath, binPath)
	require.NoError(t, err)

	// The YAML now disagrees with the binary; Load must read the binary.
	require.NoError(t, os.WriteFile(yamlPath, []byte("q99: {}\n"), 0644))

	loaded, err := Load(dir, "metadata.gob", "metadata.yaml")
	require.NoError(t, err)
	if diff := cmp.Diff(packed, loaded); diff != "" {
		t.Errorf("binary round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir(), "metadata.gob", "metadata.yaml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "metadata.gob")

	_, err = LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.gob"), []byte("not gob"), 0644))

	_, err := Load(dir, "metadata.gob", "metadata.yaml")
	assert.ErrorContains(t, err, "failed to decode metadata")
}

func TestNaturalLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"q2", "q10", true},
		{"q10", "q2", false},
		{"q1", "q1", false},
		{"a", "b", true},
		{"q1", "r0", true},
		{"q", "q1", true},
	}
	for _, tt := range tests {
		if got := naturalLess(tt.a, tt.b); got != tt.want {
			t.Errorf("naturalLess(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
