package grading

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nbgrade/internal/execution"
	"nbgrade/internal/metadata"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		setup string
		code  string
		q     metadata.Question
		want  []string
	}{
		{
			name: "all satisfied",
			code: "total := 1 + 2",
			q:    metadata.Question{RequiredCalls: []string{"+"}, RequiredVars: []string{"total"}, Assertions: "assert(total == 3)"},
		},
		{
			name:  "call through package selector",
			setup: `import "strings"`,
			code:  `s := strings.ToUpper("go")`,
			q:     metadata.Question{RequiredCalls: []string{"strings.ToUpper"}},
		},
		{
			name: "every problem reported",
			code: "y := 1",
			q:    metadata.Question{RequiredCalls: []string{"abs", "len"}, RequiredVars: []string{"x", "y"}},
			want: []string{
				"Your code must call 'abs'.",
				"Your code must call 'len'.",
				"Your code must define 'x'.",
			},
		},
		{
			name: "unparsable code",
			code: "x := (",
			q:    metadata.Question{RequiredCalls: []string{"abs", "len"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := execution.NewEnvironment(execution.Options{})
			require.NoError(t, err)
			x := execution.NewExecutor(0)
			if tt.setup != "" {
				pre := &execution.Feedback{}
				x.Execute(context.Background(), env, tt.setup, "", pre)
				require.Empty(t, pre.Errors)
			}
			run := &execution.Feedback{}
			x.Execute(context.Background(), env, tt.code, "", run)

			fb := &execution.Feedback{}
			Validate(context.Background(), x, env, tt.code, tt.q, fb)

			if tt.name == "unparsable code" {
				require.Len(t, fb.Errors, 1)
				assert.True(t, strings.HasPrefix(fb.Errors[0], "Could not analyze your code: "))
				return
			}
			if diff := cmp.Diff(tt.want, fb.Errors); diff != "" {
				t.Errorf("errors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	env, err := execution.NewEnvironment(execution.Options{})
	require.NoError(t, err)
	x := execution.NewExecutor(0)

	code := "x := abs(-5)"
	pre := &execution.Feedback{}
	x.Execute(context.Background(), env, "func abs(n int) int {\n\tif n < 0 {\n\t\treturn -n\n\t}\n\treturn n\n}\n"+code, "", pre)
	require.Empty(t, pre.Errors)

	q := metadata.Question{
		RequiredCalls: []string{"abs", "len"},
		RequiredVars:  []string{"x", "missing"},
		Assertions:    `assert(x == 999, "x should be 999")`,
	}

	first := &execution.Feedback{}
	Validate(context.Background(), x, env, code, q, first)
	second := &execution.Feedback{}
	Validate(context.Background(), x, env, code, q, second)

	require.Len(t, first.Errors, 3)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second validation differs (-first +second):\n%s", diff)
	}
}
