package snippet

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(chunks []Chunk) []Kind {
	var out []Kind
	for _, c := range chunks {
		out = append(out, c.Kind)
	}
	return out
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    []Kind
		sources []string
	}{
		{
			name:    "single statement",
			src:     "x := 5",
			want:    []Kind{Stmt},
			sources: []string{"x := 5"},
		},
		{
			name:    "statements grouped",
			src:     "x := 5\ny := x * 2\n",
			want:    []Kind{Stmt},
			sources: []string{"x := 5\ny := x * 2"},
		},
		{
			name: "decl then stmt",
			src:  "func abs(n int) int {\n\tif n < 0 {\n\t\treturn -n\n\t}\n\treturn n\n}\nx := abs(-5)",
			want: []Kind{Decl, Stmt},
			sources: []string{
				"func abs(n int) int {\n\tif n < 0 {\n\t\treturn -n\n\t}\n\treturn n\n}",
				"x := abs(-5)",
			},
		},
		{
			name:    "import and var are decls",
			src:     "import \"strings\"\nvar s = strings.ToUpper(\"a\")\ns += \"b\"",
			want:    []Kind{Decl, Stmt},
			sources: []string{"import \"strings\"\nvar s = strings.ToUpper(\"a\")", "s += \"b\""},
		},
		{
			name: "method is decl",
			src:  "type T int\nfunc (t T) Double() T { return t * 2 }",
			want: []Kind{Decl},
		},
		{
			name: "func literal call is stmt",
			src:  "func() { x = 1 }()",
			want: []Kind{Stmt},
		},
		{
			name: "interleaved",
			src:  "a := 1\nconst b = 2\nc := a + b",
			want: []Kind{Stmt, Decl, Stmt},
		},
		{
			name: "comments only",
			src:  "// nothing here\n/* still nothing */",
			want: nil,
		},
		{
			name:    "semicolons on one line",
			src:     "a := 1; b := 2;",
			want:    []Kind{Stmt},
			sources: []string{"a := 1; b := 2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := Split(tt.src)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, kinds(chunks)); diff != "" {
				t.Errorf("kinds mismatch (-want +got):\n%s", diff)
			}
			if tt.sources != nil {
				var got []string
				for _, c := range chunks {
					got = append(got, c.Source)
				}
				if diff := cmp.Diff(tt.sources, got); diff != "" {
					t.Errorf("sources mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	chunks, err := Split("a := 1\n\nfunc f() {}\n\nb := 2")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, 1, chunks[0].Line)
	assert.Equal(t, 3, chunks[1].Line)
	assert.Equal(t, 5, chunks[2].Line)
}

func TestSplitScanError(t *testing.T) {
	_, err := Split("s := \"unterminated")
	var syn *SyntaxError
	require.True(t, errors.As(err, &syn))
	assert.Contains(t, err.Error(), "line 1")
}

func TestParseReportsCellLines(t *testing.T) {
	_, err := Parse("x := 1\ny := 2\nz := (3 +\n")
	var syn *SyntaxError
	require.True(t, errors.As(err, &syn), "got %v", err)
	assert.GreaterOrEqual(t, syn.List[0].Pos.Line, 3)
	assert.Contains(t, err.Error(), "syntax error on line")
}

func TestParseErrorStaysInsideCell(t *testing.T) {
	tests := []struct {
		src  string
		line int
	}{
		{"x := (", 1},
		{"a := 1\nb := (", 2},
		{"a := 1\nb := (\n\n", 2},
		{"func f() {}\nif true {", 2},
	}
	for _, tt := range tests {
		_, err := Parse(tt.src)
		var syn *SyntaxError
		require.True(t, errors.As(err, &syn), "%q: got %v", tt.src, err)
		assert.Equal(t, tt.line, syn.List[0].Pos.Line, tt.src)
		assert.Contains(t, err.Error(), fmt.Sprintf("syntax error on line %d:", tt.line), tt.src)
	}
}

func TestParseDeclChunkError(t *testing.T) {
	_, err := Parse("x := 1\nfunc broken( {\n}")
	var syn *SyntaxError
	require.True(t, errors.As(err, &syn), "got %v", err)
	assert.Equal(t, 2, syn.List[0].Pos.Line)
}

func TestParseBody(t *testing.T) {
	snip, err := Parse("func f() int { return 1 }\nx := f()\ny := x")
	require.NoError(t, err)
	require.Len(t, snip.Files, 2)
	assert.Len(t, snip.Body(0), 1)
	assert.Len(t, snip.Body(1), 2)
}

func TestNames(t *testing.T) {
	src := `import "fmt"
const limit = 3
type point struct{ x, y int }
func (p point) String() string { return fmt.Sprint(p.x, p.y) }
func helper() {}
var a, _ = 1, 2
b, c := 3, 4
len := 42
b = 5
var d int`

	snip, err := Parse(src)
	require.NoError(t, err)

	want := []Name{
		{"limit", NameConst},
		{"point", NameType},
		{"helper", NameFunc},
		{"a", NameVar},
		{"b", NameVar},
		{"c", NameVar},
		{"len", NameVar},
		{"d", NameVar},
	}
	if diff := cmp.Diff(want, snip.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}
