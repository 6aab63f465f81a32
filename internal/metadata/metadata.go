// Package metadata loads the per-question requirements an instructor ships
// next to the assignment notebook.
//
// Two encodings exist: a binary gob file handed to students (not meant to
// be read casually) and a YAML file instructors author. PackFile converts
// the second into the first.
package metadata

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"nbgrade/internal/logging"
)

// ErrNotFound is returned when no metadata file exists.
var ErrNotFound = errors.New("metadata not found")

// Question is what one question requires of the student's code.
type Question struct {
	RequiredCalls  []string `yaml:"required_funcs"`
	RequiredVars   []string `yaml:"required_vars"`
	Assertions     string   `yaml:"assertions"`
	PointsPossible float64  `yaml:"points_possible"`
}

// Assignment maps question ids to their requirements.
type Assignment map[string]Question

// IDs returns the question ids in natural order (q2 before q10).
func (a Assignment) IDs() []string {
	ids := make([]string, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return naturalLess(ids[i], ids[j]) })
	return ids
}

// TotalPoints sums PointsPossible over all questions.
func (a Assignment) TotalPoints() float64 {
	var total float64
	for _, q := range a {
		total += q.PointsPossible
	}
	return total
}

// naturalLess orders by the non-digit prefix, then by the trailing number.
func naturalLess(a, b string) bool {
	pa, na := splitNumber(a)
	pb, nb := splitNumber(b)
	if pa != pb || na < 0 || nb < 0 || na == nb {
		return a < b
	}
	return na < nb
}

func splitNumber(s string) (string, int) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == len(s) {
		return s, -1
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil {
		return s, -1
	}
	return s[:i], n
}

// Load reads the assignment metadata from dir, preferring the binary file.
func Load(dir, binaryName, yamlName string) (Assignment, error) {
	for _, name := range []string{binaryName, yamlName} {
		if name == "" {
			continue
		}
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		return LoadFile(path)
	}
	return nil, fmt.Errorf("%w: could not find %s in %s. Please do not delete or rename the "+
		"metadata file included in the assignment zip; re-download the zip if you need to recover it",
		ErrNotFound, binaryName, dir)
}

// LoadFile reads one metadata file, choosing the decoder by extension.
func LoadFile(path string) (Assignment, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open metadata: %w", err)
	}
	defer f.Close()

	a := make(Assignment)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.NewDecoder(f).Decode(&a)
	default:
		err = gob.NewDecoder(f).Decode(&a)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode metadata %s: %w", path, err)
	}

	logging.SessionDebug("loaded metadata %s: %d questions", path, len(a))
	return a, nil
}

// WriteBinary stores the assignment in the binary format.
func (a Assignment) WriteBinary(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := gob.NewEncoder(f).Encode(a); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	return f.Close()
}

// PackFile converts a YAML metadata file into the binary format.
func PackFile(yamlPath, binaryPath string) (Assignment, error) {
	a, err := LoadFile(yamlPath)
	if err != nil {
		return nil, err
	}
	if err := a.WriteBinary(binaryPath); err != nil {
		return nil, err
	}
	return a, nil
}
