package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nbgrade/internal/config"
	"nbgrade/internal/notebook"
)

func TestBlocks(t *testing.T) {
	l := NewLayout(config.DefaultConfig().Layout)
	nb := &notebook.Notebook{Cells: []notebook.Cell{
		markdown("# Assignment"),
		markdown("Points possible: 2"),
		code("x := 1"),
		code(`grader.Check("q1")`),
		markdown("Points possible: 1"),
		markdown("write your answer here"),
		code("fmt.Println(x)"),
		markdown("Points possible: 3"),
		code("y := 2"),
	}}

	blocks := l.Blocks(nb)
	require.Len(t, blocks, 3)

	assert.Equal(t, Block{QuestionID: "q1", Marker: 1, Code: 2, Check: 3}, blocks[0])

	assert.Empty(t, blocks[1].QuestionID)
	assert.Equal(t, []string{
		"code cell 5 is markdown, expected code",
		"check cell 6 does not call grader.Check",
	}, blocks[1].Problems)

	assert.Equal(t, []string{"check cell 9 is missing"}, blocks[2].Problems)
}

func TestCustomInvocation(t *testing.T) {
	cfg := config.DefaultConfig().Layout
	cfg.InvocationFormat = "check(%s)"
	cfg.InvocationMarker = "check("
	l := NewLayout(cfg)

	nb := &notebook.Notebook{Cells: []notebook.Cell{
		markdown("Points possible: 1"),
		code("a := 1"),
		code("check(part.2)"),
	}}

	blocks := l.Blocks(nb)
	require.Len(t, blocks, 1)
	assert.Equal(t, "part.2", blocks[0].QuestionID)
	assert.True(t, l.InvokesCheck(nb.Cells[2], "part.2"))
	assert.False(t, l.InvokesCheck(nb.Cells[2], "part"+".3"))
	assert.True(t, l.InvokesGrader(nb.Cells[2]))
}
