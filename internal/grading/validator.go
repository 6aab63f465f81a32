package grading

import (
	"context"
	"fmt"

	"nbgrade/internal/execution"
	"nbgrade/internal/metadata"
	"nbgrade/internal/usage"
)

// Validate checks code against a question's requirements and records every
// violation in fb: each required call the code never makes, each required
// name the environment lacks, and the outcome of running the assertions
// (prefixed with AssertionFailedPrefix). All three checks always run.
func Validate(ctx context.Context, x *execution.Executor, env *execution.Environment, code string, q metadata.Question, fb *execution.Feedback) {
	for _, name := range q.RequiredCalls {
		used, err := usage.Uses(code, name)
		if err != nil {
			// The code already failed to parse; one message is enough.
			fb.Fail(fmt.Sprintf(UnanalyzableFormat, err))
			break
		}
		if !used {
			fb.Fail(fmt.Sprintf(MissedCallFormat, name))
		}
	}

	for _, name := range q.RequiredVars {
		if !env.Has(name) {
			fb.Fail(fmt.Sprintf(MissedVarFormat, name))
		}
	}

	x.Execute(ctx, env, q.Assertions, AssertionFailedPrefix, fb)
}
