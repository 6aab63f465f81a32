// Package execution runs student Go code inside a persistent interpreter
// under a wall-clock deadline, and reports faults and global-state hygiene
// problems as feedback instead of returning them.
package execution

import (
	"context"
	"errors"
	"fmt"
	"go/types"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/traefik/yaegi/interp"

	"nbgrade/internal/logging"
	"nbgrade/internal/snippet"
)

// MaxExecutionTime bounds one Execute call.
const MaxExecutionTime = 2 * time.Second

// TimeoutMessage is reported when student code exceeds the deadline.
const TimeoutMessage = "Execution timed out in our grader system. Please modify your code so it runs faster."

// Executor runs code in an Environment.
//
// Concurrency: an Executor holds no mutable state and may be shared; the
// Environment passed to Execute may not.
type Executor struct {
	timeout time.Duration
}

// NewExecutor returns an executor with the given per-call deadline.
// A non-positive timeout selects MaxExecutionTime.
func NewExecutor(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = MaxExecutionTime
	}
	return &Executor{timeout: timeout}
}

// Execute runs code in env and records problems in fb, each error message
// starting with prefix. Faults in the student code never escape: parse
// errors, compile errors, panics and the deadline all become one entry in
// fb.Errors, and execution stops at the first failing chunk. Afterwards every
// pre-existing global whose value changed and every newly bound predeclared
// identifier produces a warning.
func (x *Executor) Execute(ctx context.Context, env *Environment, code, prefix string, fb *Feedback) {
	timer := logging.StartTimer(logging.CategoryExec, "execute")
	defer timer.StopWithThreshold(x.timeout / 2)

	snip, err := snippet.Parse(code)
	if err != nil {
		fb.Fail(prefix + err.Error())
		return
	}

	before := env.snapshot()

	runCtx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	ok, attempted := len(snip.Chunks), len(snip.Chunks)
	for i, c := range snip.Chunks {
		logging.ExecDebug("eval chunk %d/%d (%s, line %d)", i+1, len(snip.Chunks), c.Kind, c.Line)
		src := evalSource(c)
		_, err := env.interp.EvalWithContext(runCtx, src)
		if err == nil {
			env.record(src)
			continue
		}

		ok, attempted = i, i+1
		msg := describe(runCtx, err)
		switch {
		case interrupted(err):
			if rerr := env.rebuild(ctx, x.timeout); rerr != nil {
				logging.ExecWarn("failed to rebuild interpreter: %v", rerr)
			}
			rebase(before, env.snapshot())
		case panicked(err):
			// The chunk ran up to the panic; what it bound stays bound.
			ok = i + 1
			env.record(src)
		case strings.Contains(msg, loopMessage):
			if name := firstUnknown(env, snip, i); name != "" {
				msg = "undefined: " + name
			}
		}
		fb.Fail(prefix + msg)
		break
	}

	// A chunk that failed to compile binds nothing, but its names still
	// count as introduced so shadowing a builtin is reported either way.
	for _, n := range namesIn(snip, ok) {
		env.bind(n)
	}
	for _, name := range importsIn(snip, ok) {
		env.imports[name] = true
	}
	var introduced []string
	for _, n := range namesIn(snip, attempted) {
		introduced = append(introduced, n.Ident)
	}

	checkHygiene(before, env.snapshot(), introduced, fb)
}

// evalSource adapts a chunk for the interpreter's incremental mode, which
// picks declaration or statement handling from the first token.
func evalSource(c snippet.Chunk) string {
	if c.Kind == snippet.Stmt && strings.HasPrefix(c.Source, "func") {
		// A leading function literal would otherwise be read as a declaration.
		return ";" + c.Source
	}
	return c.Source
}

// namesIn lists the top-level names of the first n chunks.
func namesIn(snip *snippet.Snippet, n int) []snippet.Name {
	return prefixOf(snip, n).Names()
}

// importsIn lists the packages imported by the first n chunks.
func importsIn(snip *snippet.Snippet, n int) []string {
	return prefixOf(snip, n).Imports()
}

func prefixOf(snip *snippet.Snippet, n int) *snippet.Snippet {
	return &snippet.Snippet{Fset: snip.Fset, Chunks: snip.Chunks[:n], Files: snip.Files[:n]}
}

// loopMessage is what the interpreter reports for a top-level := whose
// right-hand side names something undefined.
const loopMessage = "constant definition loop"

// firstUnknown returns the first name chunk i refers to that is neither
// declared in the cell so far nor known to env.
func firstUnknown(env *Environment, snip *snippet.Snippet, i int) string {
	local := make(map[string]bool)
	for _, n := range namesIn(snip, i) {
		local[n.Ident] = true
	}
	for _, name := range importsIn(snip, i) {
		local[name] = true
	}
	for _, name := range snip.FreeNames(i) {
		if !local[name] && !env.known(name) {
			return name
		}
	}
	return ""
}

var positionPrefix = regexp.MustCompile(`^(?:[^\s:]*:)?\d+:\d+: `)

// describe turns an interpreter error into a student-facing message.
func describe(ctx context.Context, err error) string {
	if errors.Is(err, context.DeadlineExceeded) && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		logging.ExecWarn("execution deadline exceeded")
		return TimeoutMessage
	}
	if errors.Is(err, context.Canceled) {
		return "Execution was cancelled."
	}
	var p interp.Panic
	if errors.As(err, &p) {
		return fmt.Sprint(p.Value)
	}
	return positionPrefix.ReplaceAllString(err.Error(), "")
}

// interrupted reports whether the evaluation was stopped from outside.
func interrupted(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// panicked reports whether the student code panicked while running.
func panicked(err error) bool {
	var p interp.Panic
	return errors.As(err, &p)
}

// rebase takes the function values of a rebuilt interpreter into before.
// Replaying declares every function literal again at a new address.
func rebase(before, now map[string]interface{}) {
	for name, v := range now {
		if _, isFunc := v.(funcID); !isFunc {
			continue
		}
		if _, ok := before[name]; ok {
			before[name] = v
		}
	}
}

// checkHygiene compares global state around one execution.
func checkHygiene(before, after map[string]interface{}, introduced []string, fb *Feedback) {
	names := make([]string, 0, len(before))
	for name := range before {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		now, ok := after[name]
		if !ok {
			continue
		}
		if !sameValue(before[name], now) {
			fb.Warn(fmt.Sprintf("Global variable '%s' was modified.", name))
		}
	}

	fresh := make(map[string]bool)
	for name := range after {
		if _, ok := before[name]; !ok {
			fresh[name] = true
		}
	}
	for _, name := range introduced {
		if _, ok := before[name]; !ok {
			fresh[name] = true
		}
	}
	var shadowed []string
	for name := range fresh {
		if isPredeclared(name) {
			shadowed = append(shadowed, name)
		}
	}
	sort.Strings(shadowed)
	for _, name := range shadowed {
		fb.Warn(fmt.Sprintf("Built-in function '%s' was modified. You should never overwrite these.", name))
	}
}

func sameValue(a, b interface{}) (same bool) {
	defer func() {
		if recover() != nil {
			same = true
		}
	}()
	return reflect.DeepEqual(a, b)
}

// isPredeclared reports whether name is one of Go's predeclared identifiers
// (len, append, int, true, nil, ...).
func isPredeclared(name string) bool {
	return types.Universe.Lookup(name) != nil
}
