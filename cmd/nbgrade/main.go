package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"nbgrade/internal/config"
	"nbgrade/internal/logging"
)

var (
	// Global flags
	verbose     bool
	configPath  string
	notebookDir string
	project     string

	// Loaded in PersistentPreRunE
	cfg *config.Config
)

// errCheckFailed makes the process exit 1 without printing anything more.
var errCheckFailed = errors.New("check failed")

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "nbgrade",
	Short: "Check Go notebook assignments question by question",
	Long: `nbgrade checks the questions of a Go notebook assignment.

For each question it replays the cells above the question, runs the
question's code under a time limit, and validates it against the
assignment metadata: required calls, required names and assertions.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig()
		if err != nil {
			return err
		}

		logCfg := cfg.Logging.Options()
		if verbose {
			logCfg.Level = "debug"
		}
		if err := logging.Initialize(logCfg); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.BootDebug("config loaded: project=%s dir=%s timeout=%v",
			cfg.Project, cfg.NotebookDir, cfg.GetExecutionTimeout())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

// configFile returns the config path selected by --config and --dir.
func configFile() string {
	if configPath != "" {
		return configPath
	}
	dir := notebookDir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, config.FileName)
}

// loadConfig reads the config file and applies the command-line overrides.
func loadConfig() (*config.Config, error) {
	path := configFile()
	c, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if notebookDir != "" {
		c.NotebookDir = notebookDir
	}
	if project != "" {
		c.Project = project
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return c, nil
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: <dir>/"+config.FileName+")")
	rootCmd.PersistentFlags().StringVarP(&notebookDir, "dir", "d", "", "Notebook directory (default: from config)")
	rootCmd.PersistentFlags().StringVarP(&project, "project", "p", "", "Project name; the notebook is <dir>/<project>.ipynb")

	checkCmd.Flags().BoolVar(&autograder, "autograder", false, "Automated run: print no feedback, exit 1 unless the question passes")
	checkCmd.Flags().StringVar(&notebookOverride, "notebook", "", "Check this notebook file instead of <dir>/<project>.ipynb")
	packCmd.Flags().StringVarP(&packOutput, "output", "o", "", "Output file (default: metadata binary next to the YAML file)")
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(packCmd)
	rootCmd.AddCommand(datasetCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errCheckFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
