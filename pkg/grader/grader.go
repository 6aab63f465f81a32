// Package grader is the entry point for checking notebook questions. It ties
// a notebook on disk to its metadata and dataset and runs the question
// checker over it.
//
//	g, err := grader.New(".", "project", nil, os.Stdout)
//	passed, err := g.Check(ctx, "q1", false, "")
package grader

import (
	"context"
	"fmt"
	"io"
	"os"

	"nbgrade/internal/config"
	"nbgrade/internal/execution"
	"nbgrade/internal/grading"
	"nbgrade/internal/logging"
	"nbgrade/internal/metadata"
	"nbgrade/internal/notebook"
	"nbgrade/internal/session"
)

// Grader checks the questions of one assignment.
type Grader struct {
	sess *session.Session
	out  io.Writer
}

// New creates a grader for <dir>/<project>.ipynb. A nil cfg uses the
// defaults and a nil out writes to stdout.
func New(dir, project string, cfg *config.Config, out io.Writer) (*Grader, error) {
	sess, err := session.New(dir, project, cfg)
	if err != nil {
		return nil, err
	}
	return FromSession(sess, out), nil
}

// FromSession wraps an existing session.
func FromSession(sess *session.Session, out io.Writer) *Grader {
	if out == nil {
		out = os.Stdout
	}
	return &Grader{sess: sess, out: out}
}

// Session returns the grader's session.
func (g *Grader) Session() *session.Session { return g.sess }

// Check checks question qid. Feedback is printed as the check runs.
//
// In autograder mode the result is true iff the question passed every check;
// otherwise it is always false, so an interactive caller has nothing to act
// on. notebookOverride, when non-empty, checks another notebook file.
// Errors are reserved for setup problems: missing files, bad metadata or an
// unknown question id.
func (g *Grader) Check(ctx context.Context, qid string, autograder bool, notebookOverride string) (bool, error) {
	sess, err := g.sess.WithNotebook(notebookOverride)
	if err != nil {
		return false, err
	}

	mode := grading.Interactive
	if autograder {
		mode = grading.Automated
	}

	run, err := prepare(ctx, sess, g.out)
	if err != nil {
		return false, err
	}
	res, err := run.checker.Check(ctx, run.nb, run.assignment, qid, mode)
	if err != nil {
		return false, err
	}
	logging.Grading("%s: %s", qid, res.State)
	return autograder && res.Passed(), nil
}

// Score is the automated result of one question.
type Score struct {
	QuestionID string
	Result     grading.Result
	Points     float64
	Possible   float64
}

// Grade checks every question in automated mode, in question id order.
// Student output and feedback are discarded.
func (g *Grader) Grade(ctx context.Context) ([]Score, error) {
	run, err := prepare(ctx, g.sess, io.Discard)
	if err != nil {
		return nil, err
	}

	scores := make([]Score, 0, len(run.assignment))
	for _, qid := range run.assignment.IDs() {
		if err := ctx.Err(); err != nil {
			return scores, err
		}
		res, err := run.checker.Check(ctx, run.nb, run.assignment, qid, grading.Automated)
		if err != nil {
			return scores, err
		}
		s := Score{QuestionID: qid, Result: res, Possible: run.assignment[qid].PointsPossible}
		if res.Passed() {
			s.Points = s.Possible
		}
		scores = append(scores, s)
	}
	return scores, nil
}

// Blocks lists the question blocks of the notebook with their layout
// problems, plus the question ids in the metadata.
func (g *Grader) Blocks() ([]grading.Block, metadata.Assignment, error) {
	nb, err := g.sess.Notebook()
	if err != nil {
		return nil, nil, err
	}
	assignment, err := g.sess.Metadata()
	if err != nil {
		return nil, nil, err
	}
	return grading.NewLayout(g.sess.Config().Layout).Blocks(nb), assignment, nil
}

type prepared struct {
	checker    *grading.Checker
	nb         *notebook.Notebook
	assignment metadata.Assignment
}

// prepare loads everything a check needs from sess.
func prepare(ctx context.Context, sess *session.Session, out io.Writer) (*prepared, error) {
	assignment, err := sess.Metadata()
	if err != nil {
		return nil, err
	}
	nb, err := sess.Notebook()
	if err != nil {
		return nil, err
	}
	ds, err := sess.Dataset(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	var packages []execution.PackageFunc
	if ds != nil {
		packages = append(packages, ds.Exports)
	}
	return &prepared{
		checker:    grading.NewChecker(sess.Config(), out, packages...),
		nb:         nb,
		assignment: assignment,
	}, nil
}
