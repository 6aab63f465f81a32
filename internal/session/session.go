// Package session binds a grading run to one notebook on disk and the files
// that sit next to it. A Session replaces process-wide "where is the
// notebook" state: it is created once, validated eagerly, and passed around.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"nbgrade/internal/config"
	"nbgrade/internal/dataset"
	"nbgrade/internal/logging"
	"nbgrade/internal/metadata"
	"nbgrade/internal/notebook"
)

var (
	// ErrPathNotFound is returned when the notebook directory does not exist.
	ErrPathNotFound = errors.New("path not found")
	// ErrNotebookNotFound is returned when the notebook file does not exist.
	ErrNotebookNotFound = errors.New("notebook not found")
)

// Session locates the notebook, metadata and dataset for one assignment.
type Session struct {
	cfg          *config.Config
	dir          string
	notebookPath string
}

// New validates that dir exists and holds <project>.ipynb.
// A nil cfg uses config.DefaultConfig.
func New(dir, project string, cfg *config.Config) (*Session, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("%w: %s does not exist", ErrPathNotFound, dir)
	}

	nbPath := filepath.Join(dir, project+".ipynb")
	if _, err := os.Stat(nbPath); err != nil {
		return nil, fmt.Errorf("%w: we expected your notebook to be at %s, but it's not there. "+
			"Please do not change the name of the notebook file after extracting the assignment zip file",
			ErrNotebookNotFound, nbPath)
	}

	logging.SessionDebug("session at %s (notebook %s)", dir, nbPath)
	return &Session{cfg: cfg, dir: dir, notebookPath: nbPath}, nil
}

// FromNotebook builds a session around an explicit notebook path. The
// metadata and dataset are looked up in the notebook's directory.
func FromNotebook(path string, cfg *config.Config) (*Session, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotebookNotFound, path)
	}
	return &Session{cfg: cfg, dir: filepath.Dir(path), notebookPath: path}, nil
}

// WithNotebook returns a copy of s pointed at another notebook file.
// An empty path returns s unchanged.
func (s *Session) WithNotebook(path string) (*Session, error) {
	if path == "" {
		return s, nil
	}
	return FromNotebook(path, s.cfg)
}

// Dir is the directory holding the notebook.
func (s *Session) Dir() string { return s.dir }

// NotebookPath is the notebook file.
func (s *Session) NotebookPath() string { return s.notebookPath }

// Config is the configuration the session was built with.
func (s *Session) Config() *config.Config { return s.cfg }

// Notebook loads the notebook from disk.
func (s *Session) Notebook() (*notebook.Notebook, error) {
	return notebook.Load(s.notebookPath)
}

// Metadata loads the assignment metadata next to the notebook.
func (s *Session) Metadata() (metadata.Assignment, error) {
	return metadata.Load(s.dir, s.cfg.Files.MetadataBinary, s.cfg.Files.MetadataYAML)
}

// Dataset loads the assignment tables next to the notebook. It returns
// nil, nil when the tables are not shipped with this assignment.
func (s *Session) Dataset(ctx context.Context) (*dataset.Dataset, error) {
	attrs := filepath.Join(s.dir, s.cfg.Files.DatasetAttributes)
	eff := filepath.Join(s.dir, s.cfg.Files.DatasetEffectiveness)

	d, err := dataset.Load(ctx, attrs, eff)
	if errors.Is(err, os.ErrNotExist) {
		logging.DatasetDebug("no dataset in %s: %v", s.dir, err)
		return nil, nil
	}
	return d, err
}
