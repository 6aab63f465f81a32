// Package snippet splits a notebook cell of Go source into evaluable chunks.
//
// A cell is REPL-style Go: top-level declarations (import, const, var, type,
// func, methods) freely mixed with statements. Split groups consecutive
// top-level items of the same kind into chunks so that each chunk can be fed
// to the interpreter on its own, and Parse turns every chunk into an AST.
package snippet

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"strings"
)

// Kind classifies a chunk.
type Kind int

const (
	// Decl is a run of top-level declarations.
	Decl Kind = iota
	// Stmt is a run of statements executed at top level.
	Stmt
)

func (k Kind) String() string {
	switch k {
	case Decl:
		return "decl"
	case Stmt:
		return "stmt"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Chunk is a contiguous slice of cell source holding items of one kind.
type Chunk struct {
	Kind   Kind
	Source string
	Line   int // 1-based line of the chunk's first token within the cell
}

// SyntaxError reports scan or parse errors with cell-relative line numbers.
type SyntaxError struct {
	List scanner.ErrorList
}

func (e *SyntaxError) Error() string {
	if len(e.List) == 0 {
		return "syntax error"
	}
	first := e.List[0]
	msg := fmt.Sprintf("syntax error on line %d: %s", first.Pos.Line, first.Msg)
	if n := len(e.List); n > 1 {
		msg += fmt.Sprintf(" (and %d more)", n-1)
	}
	return msg
}

type item struct {
	tok token.Token
	off int
}

// Split tokenizes src and cuts it into chunks at top-level statement
// boundaries. Comments between items stay attached to the preceding chunk.
func Split(src string) ([]Chunk, error) {
	fset := token.NewFileSet()
	file := fset.AddFile("cell", -1, len(src))

	var errs scanner.ErrorList
	var s scanner.Scanner
	s.Init(file, []byte(src), func(pos token.Position, msg string) {
		errs.Add(pos, msg)
	}, 0)

	var toks []item
	for {
		pos, tok, _ := s.Scan()
		if tok == token.EOF {
			break
		}
		toks = append(toks, item{tok: tok, off: file.Offset(pos)})
	}
	if len(errs) > 0 {
		errs.Sort()
		return nil, &SyntaxError{List: errs}
	}

	// Each top-level item is toks[start:end], end exclusive of its semicolon.
	type span struct{ start, end int }
	var spans []span
	depth := 0
	start := -1
	for i, it := range toks {
		switch it.tok {
		case token.LPAREN, token.LBRACK, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACK, token.RBRACE:
			if depth > 0 {
				depth--
			}
		}
		if it.tok == token.SEMICOLON && depth == 0 {
			if start >= 0 {
				spans = append(spans, span{start, i})
			}
			start = -1
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		spans = append(spans, span{start, len(toks)})
	}

	var chunks []Chunk
	var offsets []int
	for _, sp := range spans {
		kind := classify(toks[sp.start:sp.end])
		if n := len(chunks); n > 0 && chunks[n-1].Kind == kind {
			continue
		}
		off := toks[sp.start].off
		chunks = append(chunks, Chunk{Kind: kind, Line: file.Line(file.Pos(off))})
		offsets = append(offsets, off)
	}

	// Chunk i runs from its first token to the next chunk's first token.
	for i := range chunks {
		end := len(src)
		if i+1 < len(chunks) {
			end = offsets[i+1]
		}
		chunks[i].Source = strings.TrimRight(src[offsets[i]:end], " \t\r\n;")
	}
	return chunks, nil
}

// classify decides whether a top-level item is a declaration.
func classify(toks []item) Kind {
	if len(toks) == 0 {
		return Stmt
	}
	switch toks[0].tok {
	case token.IMPORT, token.CONST, token.VAR, token.TYPE:
		return Decl
	case token.FUNC:
		if len(toks) < 2 {
			return Stmt
		}
		switch toks[1].tok {
		case token.IDENT:
			return Decl
		case token.LPAREN:
			// func (recv T) Name(...) is a method; func (...) {...} is a literal.
			rp := matchParen(toks, 1)
			if rp > 0 && rp+2 < len(toks) &&
				toks[rp+1].tok == token.IDENT &&
				(toks[rp+2].tok == token.LPAREN || toks[rp+2].tok == token.LBRACK) {
				return Decl
			}
		}
	}
	return Stmt
}

func matchParen(toks []item, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].tok {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// Snippet is a parsed cell.
type Snippet struct {
	Fset   *token.FileSet
	Chunks []Chunk
	Files  []*ast.File // Files[i] holds Chunks[i]; statements live in func _
}

const (
	declHeader = "package main\n"
	stmtHeader = "package main\nfunc _() {\n"
)

// Parse splits src and parses every chunk.
func Parse(src string) (*Snippet, error) {
	chunks, err := Split(src)
	if err != nil {
		return nil, err
	}

	snip := &Snippet{Fset: token.NewFileSet(), Chunks: chunks}
	for _, c := range chunks {
		wrapped, headerLines := declHeader+c.Source, 1
		if c.Kind == Stmt {
			wrapped, headerLines = stmtHeader+c.Source+"\n}", 2
		}
		f, err := parser.ParseFile(snip.Fset, "cell", wrapped, parser.SkipObjectResolution)
		if err != nil {
			last := c.Line + strings.Count(c.Source, "\n")
			return nil, relocate(err, c.Line-1-headerLines, last)
		}
		snip.Files = append(snip.Files, f)
	}
	return snip, nil
}

// relocate shifts parser error positions back into cell coordinates,
// clamped to the chunk's lines. Errors at the closing brace of a statement
// wrapper land on the chunk's last line.
func relocate(err error, delta, last int) error {
	list, ok := err.(scanner.ErrorList)
	if !ok {
		return err
	}
	out := make(scanner.ErrorList, 0, len(list))
	for _, e := range list {
		pos := e.Pos
		pos.Filename = ""
		pos.Line += delta
		if pos.Line > last {
			pos.Line = last
		}
		if pos.Line < 1 {
			pos.Line = 1
		}
		out = append(out, &scanner.Error{Pos: pos, Msg: e.Msg})
	}
	return &SyntaxError{List: out}
}

// Body returns the top-level nodes of chunk i: declarations for Decl chunks,
// statements for Stmt chunks.
func (s *Snippet) Body(i int) []ast.Node {
	f := s.Files[i]
	var nodes []ast.Node
	if s.Chunks[i].Kind == Decl {
		for _, d := range f.Decls {
			nodes = append(nodes, d)
		}
		return nodes
	}
	for _, d := range f.Decls {
		fn, ok := d.(*ast.FuncDecl)
		if !ok || fn.Body == nil {
			continue
		}
		for _, st := range fn.Body.List {
			nodes = append(nodes, st)
		}
	}
	return nodes
}
