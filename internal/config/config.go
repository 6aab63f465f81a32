package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the notebook directory.
const FileName = ".nbgrade.yaml"

// Config holds all nbgrade configuration.
type Config struct {
	// Project name; the notebook is <NotebookDir>/<Project>.ipynb
	Project string `yaml:"project"`

	// Directory holding the notebook, metadata, and dataset files
	NotebookDir string `yaml:"notebook_dir"`

	// Execution settings
	Execution ExecutionConfig `yaml:"execution"`

	// Notebook layout conventions
	Layout LayoutConfig `yaml:"layout"`

	// Auxiliary file names, relative to NotebookDir
	Files FilesConfig `yaml:"files"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// FilesConfig names the files a session reads.
type FilesConfig struct {
	MetadataBinary       string `yaml:"metadata_binary"`
	MetadataYAML         string `yaml:"metadata_yaml"`
	DatasetAttributes    string `yaml:"dataset_attributes"`
	DatasetEffectiveness string `yaml:"dataset_effectiveness"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Project:     "project",
		NotebookDir: ".",

		Execution: ExecutionConfig{
			Timeout:         "2s",
			AllowedPackages: DefaultAllowedPackages(),
		},

		Layout: LayoutConfig{
			CodeCellOffset:   1,
			CheckCellOffset:  2,
			MarkerPrefix:     "Points possible",
			InvocationFormat: `grader.Check("%s")`,
			InvocationMarker: "grader.Check",
		},

		Files: FilesConfig{
			MetadataBinary:       "metadata.gob",
			MetadataYAML:         "metadata.yaml",
			DatasetAttributes:    "pokemon_attributes.csv",
			DatasetEffectiveness: "type_effectiveness.csv",
		},

		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("NBGRADE_PROJECT"); v != "" {
		c.Project = v
	}
	if v := os.Getenv("NBGRADE_NOTEBOOK_DIR"); v != "" {
		c.NotebookDir = v
	}
	if v := os.Getenv("NBGRADE_TIMEOUT"); v != "" {
		c.Execution.Timeout = v
	}
	if v := os.Getenv("NBGRADE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("NBGRADE_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
}

// GetExecutionTimeout returns the per-cell execution deadline.
// A bare number is read as seconds.
func (c *Config) GetExecutionTimeout() time.Duration {
	if secs, err := strconv.ParseFloat(c.Execution.Timeout, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	d, err := time.ParseDuration(c.Execution.Timeout)
	if err != nil || d <= 0 {
		return DefaultExecutionTimeout
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Project == "" {
		return fmt.Errorf("project name not configured (set project in %s or NBGRADE_PROJECT)", FileName)
	}
	if c.Execution.Timeout != "" {
		if _, err := strconv.ParseFloat(c.Execution.Timeout, 64); err != nil {
			if _, err := time.ParseDuration(c.Execution.Timeout); err != nil {
				return fmt.Errorf("invalid execution timeout %q: %w", c.Execution.Timeout, err)
			}
		}
	}
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	return nil
}

// NotebookPath returns the default notebook location.
func (c *Config) NotebookPath() string {
	return filepath.Join(c.NotebookDir, c.Project+".ipynb")
}
