// Package grading checks one question of a notebook: it replays the cells
// above the question, runs the question's code, and validates the result
// against the question's metadata.
package grading

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"nbgrade/internal/config"
	"nbgrade/internal/execution"
	"nbgrade/internal/feedback"
	"nbgrade/internal/logging"
	"nbgrade/internal/metadata"
	"nbgrade/internal/notebook"
)

// ErrUnknownQuestion is returned when a question id has no metadata entry.
var ErrUnknownQuestion = errors.New("unknown question")

// Mode selects who is asking for the check.
type Mode int

const (
	// Interactive is a student checking from the notebook. Problems in the
	// cells above the question block the check.
	Interactive Mode = iota
	// Automated is a batch grading run. Feedback is not printed and prior
	// problems do not block.
	Automated
)

func (m Mode) String() string {
	if m == Automated {
		return "automated"
	}
	return "interactive"
}

// State is a step of the checker's scan.
type State int

const (
	StateScanning State = iota
	StateFoundTarget
	StateExecutedOK
	StateExecutedWithIssues
	StateBlockedByPriorIssues
	StateDone // scan ended without finding the question
)

func (s State) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateFoundTarget:
		return "found_target"
	case StateExecutedOK:
		return "executed_ok"
	case StateExecutedWithIssues:
		return "executed_with_issues"
	case StateBlockedByPriorIssues:
		return "blocked_by_prior_issues"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result is the outcome of one check.
type Result struct {
	QuestionID string
	RunID      string
	State      State
	// Feedback holds the prior cells' feedback when blocked, otherwise the
	// question's own feedback.
	Feedback execution.Feedback
}

// Passed reports whether the question passed every check.
func (r Result) Passed() bool { return r.State == StateExecutedOK }

// Checker runs question checks. Each Check builds its own environment, so a
// Checker may be reused across questions but checks must not run concurrently
// on the same output writer.
type Checker struct {
	layout   *Layout
	executor *execution.Executor
	env      execution.Options
	out      io.Writer
}

// NewChecker returns a checker writing student output and feedback to out.
// packages are offered to student code alongside the allowed stdlib.
func NewChecker(cfg *config.Config, out io.Writer, packages ...execution.PackageFunc) *Checker {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if out == nil {
		out = io.Discard
	}
	return &Checker{
		layout:   NewLayout(cfg.Layout),
		executor: execution.NewExecutor(cfg.GetExecutionTimeout()),
		env: execution.Options{
			AllowedPackages: cfg.Execution.AllowedPackages,
			Packages:        packages,
		},
		out: out,
	}
}

// Check grades question qid of nb. Student faults never surface as errors;
// the returned error is reserved for an unknown qid or an environment that
// cannot be built.
func (c *Checker) Check(ctx context.Context, nb *notebook.Notebook, assignment metadata.Assignment, qid string, mode Mode) (Result, error) {
	printer := feedback.NewPrinter(c.out)
	printer.Banner(fmt.Sprintf(CheckStartFormat, qid))

	q, ok := assignment[qid]
	if !ok {
		return Result{}, fmt.Errorf("%w: could not find question %q in %s", ErrUnknownQuestion, qid, nb.Path)
	}

	runID := uuid.NewString()
	log := logging.WithRunID(logging.CategoryGrading, runID).With("question", qid)
	timer := logging.StartTimer(logging.CategoryGrading, "check "+qid)
	defer timer.Stop()

	opts := c.env
	opts.Stdout = c.out
	env, err := execution.NewEnvironment(opts)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create environment: %w", err)
	}

	res := Result{QuestionID: qid, RunID: runID, State: StateScanning}
	prior := &execution.Feedback{}
	checkOffset := c.layout.cfg.CheckCellOffset

	for i := 0; i < len(nb.Cells)-checkOffset; i++ {
		cell := nb.Cells[i]
		if c.layout.IsMarker(cell) && c.layout.InvokesCheck(nb.Cells[i+checkOffset], qid) {
			log.Debug("found question block at cell %d (%s mode)", i, mode)
			res.State = StateFoundTarget
			c.runQuestion(ctx, env, printer, nb, i, q, prior, mode, &res)
			log.Info("check finished: %s (%d warnings, %d errors)",
				res.State, len(res.Feedback.Warnings), len(res.Feedback.Errors))
			return res, nil
		}
		if cell.Kind == notebook.KindCode && !c.layout.InvokesGrader(cell) {
			restore := env.SuppressOutput()
			c.executor.Execute(ctx, env, cell.Source, AboveQuestionErrorPrefix, prior)
			restore()
		}
	}

	res.State = StateDone
	res.Feedback = *prior
	log.Warn("question block not found in %d cells", len(nb.Cells))
	return res, nil
}

// runQuestion drives the state machine from StateFoundTarget to a terminal state.
func (c *Checker) runQuestion(ctx context.Context, env *execution.Environment, printer *feedback.Printer,
	nb *notebook.Notebook, marker int, q metadata.Question, prior *execution.Feedback, mode Mode, res *Result) {
	if prior.HasIssues() && mode == Interactive {
		printer.Report(prior.Warnings, prior.Errors)
		printer.Notice(IssuesAboveMessage)
		res.State = StateBlockedByPriorIssues
		res.Feedback = *prior
		return
	}

	var code string
	if idx := marker + c.layout.cfg.CodeCellOffset; idx < len(nb.Cells) {
		code = nb.Cells[idx].Source
	}

	current := &execution.Feedback{}
	c.executor.Execute(ctx, env, code, CurrentQuestionErrorPrefix, current)
	if current.HasErrors() && mode == Interactive {
		printer.Report(current.Warnings, current.Errors)
		res.State = StateExecutedWithIssues
		res.Feedback = *current
		return
	}

	Validate(ctx, c.executor, env, code, q, current)
	res.Feedback = *current
	if current.HasIssues() {
		if mode == Interactive {
			printer.Report(current.Warnings, current.Errors)
		}
		res.State = StateExecutedWithIssues
		return
	}
	printer.Success(SuccessMessage)
	res.State = StateExecutedOK
}
