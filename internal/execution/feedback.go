package execution

// Feedback collects the student-facing messages produced while running and
// validating code. Warnings flag hygiene problems; Errors flag failures.
type Feedback struct {
	Warnings []string
	Errors   []string
}

// Warn appends a warning.
func (f *Feedback) Warn(msg string) { f.Warnings = append(f.Warnings, msg) }

// Fail appends an error.
func (f *Feedback) Fail(msg string) { f.Errors = append(f.Errors, msg) }

// HasErrors reports whether any error was recorded.
func (f *Feedback) HasErrors() bool { return len(f.Errors) > 0 }

// HasIssues reports whether any warning or error was recorded.
func (f *Feedback) HasIssues() bool { return len(f.Warnings) > 0 || len(f.Errors) > 0 }
