package execution

import (
	"context"
	"fmt"
	"io"
	"path"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"nbgrade/internal/config"
	"nbgrade/internal/logging"
	"nbgrade/internal/snippet"
)

// prelude is evaluated into every environment before any student code.
// It is not tracked, so it never shows up as a student global.
const prelude = `func assert(cond bool, msg ...string) {
	if !cond {
		if len(msg) > 0 {
			panic("assertion failed: " + msg[0])
		}
		panic("assertion failed")
	}
}`

// PackageFunc builds extra interpreter packages bound to the environment's
// output writer.
type PackageFunc func(stdout io.Writer) interp.Exports

// Options configures a new Environment.
type Options struct {
	// Stdout receives student output. Nil discards it.
	Stdout io.Writer
	// AllowedPackages lists importable stdlib paths. Nil uses config.DefaultAllowedPackages.
	AllowedPackages []string
	// Packages adds non-stdlib packages such as the assignment dataset.
	Packages []PackageFunc
}

// Environment is the accumulated state of one grading run: a persistent Go
// interpreter plus the names the student's code bound in it.
// An Environment is not safe for concurrent use.
type Environment struct {
	interp  *interp.Interpreter
	out     *switchWriter
	allowed []string
	pkgs    []PackageFunc
	decls   map[string]binding
	imports map[string]bool
	// history holds every chunk that ran, in order, so that the interpreter
	// can be rebuilt after an evaluation had to be abandoned.
	history []string
}

// binding records a top-level name; gen counts its declarations so that
// redeclaring a function shows up as a change.
type binding struct {
	gen int
}

// preludeNames are callable from student code without being student globals.
var preludeNames = map[string]bool{"assert": true}

// NewEnvironment creates an empty environment.
func NewEnvironment(opts Options) (*Environment, error) {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	allowed := opts.AllowedPackages
	if allowed == nil {
		allowed = config.DefaultAllowedPackages()
	}

	e := &Environment{
		out:     &switchWriter{w: stdout},
		allowed: allowed,
		pkgs:    opts.Packages,
		decls:   make(map[string]binding),
		imports: make(map[string]bool),
	}
	i, err := e.newInterpreter()
	if err != nil {
		return nil, err
	}
	e.interp = i
	return e, nil
}

func (e *Environment) newInterpreter() (*interp.Interpreter, error) {
	i := interp.New(interp.Options{
		Stdout: e.out,
		Stderr: io.Discard,
	})
	if err := i.Use(stdlibSubset(e.allowed)); err != nil {
		return nil, fmt.Errorf("failed to load stdlib: %w", err)
	}
	for _, pkg := range e.pkgs {
		if err := i.Use(pkg(e.out)); err != nil {
			return nil, fmt.Errorf("failed to load package: %w", err)
		}
	}
	if _, err := i.Eval(prelude); err != nil {
		return nil, fmt.Errorf("failed to load prelude: %w", err)
	}
	return i, nil
}

// rebuild replaces the interpreter with a fresh one and replays the history
// into it, output suppressed. An evaluation stopped at its deadline resumes
// if its interpreter is evaluated again, so the old interpreter must never be
// used after a stop. A replayed chunk that hits the deadline is dropped from
// the history together with everything after it, and the replay restarts.
func (e *Environment) rebuild(ctx context.Context, timeout time.Duration) error {
	ctx = context.WithoutCancel(ctx)
	restore := e.SuppressOutput()
	defer restore()

	for {
		i, err := e.newInterpreter()
		if err != nil {
			return err
		}
		replayed := len(e.history)
		for k, src := range e.history {
			runCtx, cancel := context.WithTimeout(ctx, timeout)
			_, err := i.EvalWithContext(runCtx, src)
			cancel()
			if interrupted(err) {
				replayed = k
				break
			}
		}
		if replayed == len(e.history) {
			e.interp = i
			logging.ExecDebug("interpreter rebuilt from %d chunks", replayed)
			return nil
		}
		logging.ExecWarn("replay of chunk %d timed out; dropping %d chunks", replayed, len(e.history)-replayed)
		e.history = e.history[:replayed]
	}
}

func (e *Environment) record(src string) {
	e.history = append(e.history, src)
}

// known reports whether student code can refer to name: a bound global, an
// imported package or a prelude helper.
func (e *Environment) known(name string) bool {
	return e.Has(name) || e.imports[name] || preludeNames[name]
}

// stdlibSubset keeps the yaegi stdlib symbols whose import path is allowed.
func stdlibSubset(allowed []string) interp.Exports {
	keep := make(map[string]bool, len(allowed))
	for _, p := range allowed {
		keep[p] = true
	}
	subset := make(interp.Exports)
	for key, syms := range stdlib.Symbols {
		// Keys are "<import path>/<package name>".
		if keep[path.Dir(key)] {
			subset[key] = syms
		}
	}
	return subset
}

// Keys returns every name the student code has bound, sorted: variables,
// constants, functions and types.
func (e *Environment) Keys() []string {
	seen := make(map[string]bool)
	for name := range e.interp.Globals() {
		seen[name] = true
	}
	for name := range e.decls {
		seen[name] = true
	}
	keys := make([]string, 0, len(seen))
	for name := range seen {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether name is bound.
func (e *Environment) Has(name string) bool {
	if _, ok := e.decls[name]; ok {
		return true
	}
	_, ok := e.interp.Globals()[name]
	return ok
}

// Value returns the current value of a global variable or constant.
func (e *Environment) Value(name string) (interface{}, bool) {
	v, ok := e.interp.Globals()[name]
	if !ok {
		return nil, false
	}
	return capture(v), true
}

// SuppressOutput discards student output until the returned func is called.
func (e *Environment) SuppressOutput() (restore func()) {
	prev := e.out.swap(io.Discard)
	return func() { e.out.swap(prev) }
}

// snapshot captures the comparable state of every global.
func (e *Environment) snapshot() map[string]interface{} {
	globals := e.interp.Globals()
	snap := make(map[string]interface{}, len(globals)+len(e.decls))
	for name, v := range globals {
		snap[name] = capture(v)
	}
	for name, b := range e.decls {
		if _, ok := snap[name]; !ok {
			snap[name] = b
		}
	}
	return snap
}

func (e *Environment) bind(n snippet.Name) {
	b := e.decls[n.Ident]
	b.gen++
	e.decls[n.Ident] = b
}

// funcID compares function values by code pointer.
type funcID uintptr

// capture extracts a comparable Go value from an interpreter value.
func capture(v reflect.Value) (out interface{}) {
	defer func() {
		if recover() != nil {
			out = nil
		}
	}()
	if !v.IsValid() {
		return nil
	}
	if v.Kind() == reflect.Func {
		return funcID(v.Pointer())
	}
	if !v.CanInterface() {
		return nil
	}
	return v.Interface()
}

// switchWriter forwards writes to a replaceable destination.
type switchWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *switchWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *switchWriter) swap(w io.Writer) io.Writer {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.w
	s.w = w
	return prev
}
