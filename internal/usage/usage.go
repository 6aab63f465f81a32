// Package usage answers whether a piece of Go source calls a function or
// applies an operator.
package usage

import (
	"go/ast"
	"go/token"

	"nbgrade/internal/snippet"
)

// Uses reports whether code calls name or applies the operator name.
//
// A call matches when its callee resolves to exactly name: a plain
// identifier resolves to itself, a selector to "<x>.<sel>" (so "math.Abs" or
// "strings.Builder.WriteString" chains), parentheses and generic
// instantiation are transparent, and any other callee root resolves to "".
// An operator matches by its token spelling ("+", "&&", "!") or by its
// go/token constant name ("ADD", "LAND", "NOT").
//
// A source that does not parse returns a *snippet.SyntaxError.
func Uses(code, name string) (bool, error) {
	snip, err := snippet.Parse(code)
	if err != nil {
		return false, err
	}

	v := &finder{name: name}
	for _, f := range snip.Files {
		ast.Walk(v, f)
		if v.found {
			return true, nil
		}
	}
	return false, nil
}

type finder struct {
	name  string
	found bool
}

func (v *finder) Visit(node ast.Node) ast.Visitor {
	if v.found || node == nil {
		return nil
	}
	switch n := node.(type) {
	case *ast.CallExpr:
		if calleeName(n.Fun) == v.name {
			v.found = true
		}
	case *ast.BinaryExpr:
		if operatorMatches(n.Op, v.name) {
			v.found = true
		}
	case *ast.UnaryExpr:
		if operatorMatches(n.Op, v.name) {
			v.found = true
		}
	}
	if v.found {
		return nil
	}
	return v
}

// calleeName renders the dotted chain of a callee expression.
func calleeName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		return calleeName(e.X) + "." + e.Sel.Name
	case *ast.ParenExpr:
		return calleeName(e.X)
	case *ast.IndexExpr:
		return calleeName(e.X)
	case *ast.IndexListExpr:
		return calleeName(e.X)
	default:
		return ""
	}
}

var opNames = map[token.Token]string{
	token.ADD:     "ADD",
	token.SUB:     "SUB",
	token.MUL:     "MUL",
	token.QUO:     "QUO",
	token.REM:     "REM",
	token.AND:     "AND",
	token.OR:      "OR",
	token.XOR:     "XOR",
	token.SHL:     "SHL",
	token.SHR:     "SHR",
	token.AND_NOT: "AND_NOT",
	token.LAND:    "LAND",
	token.LOR:     "LOR",
	token.ARROW:   "ARROW",
	token.NOT:     "NOT",
	token.EQL:     "EQL",
	token.NEQ:     "NEQ",
	token.LSS:     "LSS",
	token.LEQ:     "LEQ",
	token.GTR:     "GTR",
	token.GEQ:     "GEQ",
	token.TILDE:   "TILDE",
}

func operatorMatches(op token.Token, name string) bool {
	return op.String() == name || opNames[op] == name
}
