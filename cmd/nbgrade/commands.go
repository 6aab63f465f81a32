package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"nbgrade/internal/config"
	"nbgrade/internal/feedback"
	"nbgrade/internal/logging"
	"nbgrade/internal/metadata"
	"nbgrade/internal/session"
	"nbgrade/internal/watch"
	"nbgrade/pkg/grader"
)

var (
	autograder       bool
	notebookOverride string
	packOutput       string
	force            bool
)

// initCmd writes the effective configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to " + config.FileName,
	Long: `Writes the configuration nbgrade would use, defaults plus any flag and
environment overrides, to the config file so it can be edited.

An existing file is left alone unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

// checkCmd checks one question
var checkCmd = &cobra.Command{
	Use:   "check [question-id]",
	Short: "Check one question of the notebook",
	Long: `Replays the cells above the question, runs the question's code and
validates it against the assignment metadata.

Interactive runs print feedback. With --autograder feedback is suppressed
and the exit status tells whether the question passed.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

// gradeCmd grades every question
var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Check every question in automated mode and print a score table",
	Args:  cobra.NoArgs,
	RunE:  runGrade,
}

// listCmd lists question blocks
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the question blocks of the notebook and report layout problems",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

// watchCmd re-checks on save
var watchCmd = &cobra.Command{
	Use:   "watch [question-id]",
	Short: "Check a question every time the notebook is saved",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

// packCmd converts YAML metadata to the binary format
var packCmd = &cobra.Command{
	Use:   "pack-metadata [metadata.yaml]",
	Short: "Convert YAML assignment metadata into the binary metadata file",
	Args:  cobra.ExactArgs(1),
	RunE:  runPack,
}

// datasetCmd prints one dataset record
var datasetCmd = &cobra.Command{
	Use:   "dataset [name]",
	Short: "Print the attributes of one dataset record",
	Args:  cobra.ExactArgs(1),
	RunE:  runDataset,
}

func newGrader(cmd *cobra.Command) (*grader.Grader, error) {
	return grader.New(cfg.NotebookDir, cfg.Project, cfg, cmd.OutOrStdout())
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configFile()
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	logging.Boot("wrote config to %s", path)
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	g, err := newGrader(cmd)
	if err != nil {
		return err
	}
	passed, err := g.Check(cmd.Context(), args[0], autograder, notebookOverride)
	if err != nil {
		return err
	}
	if autograder && !passed {
		return errCheckFailed
	}
	return nil
}

func runGrade(cmd *cobra.Command, args []string) error {
	g, err := newGrader(cmd)
	if err != nil {
		return err
	}
	scores, err := g.Grade(cmd.Context())
	if err != nil {
		return err
	}

	rows := make([]feedback.ScoreRow, 0, len(scores))
	for _, s := range scores {
		rows = append(rows, feedback.ScoreRow{
			QuestionID: s.QuestionID,
			Passed:     s.Result.Passed(),
			Points:     s.Points,
			Possible:   s.Possible,
		})
	}
	feedback.NewPrinter(cmd.OutOrStdout()).Scores(rows)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	g, err := newGrader(cmd)
	if err != nil {
		return err
	}
	blocks, assignment, err := g.Blocks()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	seen := make(map[string]bool)
	for _, b := range blocks {
		qid := b.QuestionID
		if qid == "" {
			qid = "?"
		}
		seen[qid] = true

		points := "no metadata"
		if q, ok := assignment[qid]; ok {
			points = fmt.Sprintf("%g pts", q.PointsPossible)
		}
		fmt.Fprintf(out, "%-8s cells %d-%d  %s\n", qid, b.Marker, b.Check, points)
		for _, p := range b.Problems {
			fmt.Fprintf(out, "  ! %s\n", p)
		}
	}
	for _, qid := range assignment.IDs() {
		if !seen[qid] {
			fmt.Fprintf(out, "%-8s not found in notebook\n", qid)
		}
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	qid := args[0]
	g, err := newGrader(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	check := func(ctx context.Context, _ string) {
		if _, err := g.Check(ctx, qid, false, ""); err != nil {
			logging.WatchError("check %s failed: %v", qid, err)
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
	}

	w, err := watch.New(g.Session().NotebookPath(), check)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	check(ctx, w.Path())
	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl+C to stop)\n", w.Path())

	select {
	case <-ctx.Done():
	case <-w.Done():
	}
	return nil
}

func runPack(cmd *cobra.Command, args []string) error {
	src := args[0]
	dst := packOutput
	if dst == "" {
		dst = filepath.Join(filepath.Dir(src), cfg.Files.MetadataBinary)
	}

	assignment, err := metadata.PackFile(src, dst)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Packed %d questions (%g points) into %s\n",
		len(assignment), assignment.TotalPoints(), dst)
	return nil
}

func runDataset(cmd *cobra.Command, args []string) error {
	sess, err := session.New(cfg.NotebookDir, cfg.Project, cfg)
	if err != nil {
		return err
	}
	ds, err := sess.Dataset(cmd.Context())
	if err != nil {
		return err
	}
	if ds == nil {
		return fmt.Errorf("no dataset in %s (expected %s and %s)",
			sess.Dir(), cfg.Files.DatasetAttributes, cfg.Files.DatasetEffectiveness)
	}
	return ds.PrintAttributes(cmd.OutOrStdout(), args[0])
}
