package snippet

import (
	"go/ast"
	"go/token"
	"go/types"
	"path"
	"strconv"
)

// Imports lists the package names the cell's import declarations bind.
// Blank and dot imports bind nothing.
func (s *Snippet) Imports() []string {
	var names []string
	for i := range s.Chunks {
		for _, node := range s.Body(i) {
			gd, ok := node.(*ast.GenDecl)
			if !ok || gd.Tok != token.IMPORT {
				continue
			}
			for _, spec := range gd.Specs {
				is := spec.(*ast.ImportSpec)
				if is.Name != nil {
					if is.Name.Name != "_" && is.Name.Name != "." {
						names = append(names, is.Name.Name)
					}
					continue
				}
				if p, err := strconv.Unquote(is.Path.Value); err == nil {
					names = append(names, path.Base(p))
				}
			}
		}
	}
	return names
}

// FreeNames lists, in source order and without repeats, the identifiers
// chunk i refers to without declaring them anywhere in the chunk.
// Predeclared identifiers are left out, as are selector fields,
// composite literal keys and labels. Scopes are not tracked: a name
// declared anywhere in the chunk counts as declared everywhere in it.
func (s *Snippet) FreeNames(i int) []string {
	nodes := s.Body(i)

	declared := make(map[string]bool)
	for _, n := range nodes {
		ast.Inspect(n, func(node ast.Node) bool {
			switch d := node.(type) {
			case *ast.AssignStmt:
				if d.Tok == token.DEFINE {
					for _, lhs := range d.Lhs {
						if id, ok := lhs.(*ast.Ident); ok {
							declared[id.Name] = true
						}
					}
				}
			case *ast.RangeStmt:
				if d.Tok == token.DEFINE {
					for _, e := range []ast.Expr{d.Key, d.Value} {
						if id, ok := e.(*ast.Ident); ok {
							declared[id.Name] = true
						}
					}
				}
			case *ast.ValueSpec:
				for _, id := range d.Names {
					declared[id.Name] = true
				}
			case *ast.TypeSpec:
				declared[d.Name.Name] = true
			case *ast.FuncDecl:
				declared[d.Name.Name] = true
			case *ast.Field:
				for _, id := range d.Names {
					declared[id.Name] = true
				}
			case *ast.ImportSpec:
				return false
			}
			return true
		})
	}

	var free []string
	seen := make(map[string]bool)
	var visit func(ast.Node) bool
	visit = func(node ast.Node) bool {
		switch n := node.(type) {
		case *ast.Ident:
			name := n.Name
			if name != "_" && !declared[name] && !seen[name] && types.Universe.Lookup(name) == nil {
				seen[name] = true
				free = append(free, name)
			}
		case *ast.SelectorExpr:
			ast.Inspect(n.X, visit)
			return false
		case *ast.KeyValueExpr:
			if _, ok := n.Key.(*ast.Ident); !ok {
				ast.Inspect(n.Key, visit)
			}
			ast.Inspect(n.Value, visit)
			return false
		case *ast.LabeledStmt:
			ast.Inspect(n.Stmt, visit)
			return false
		case *ast.BranchStmt, *ast.ImportSpec:
			return false
		}
		return true
	}
	for _, n := range nodes {
		ast.Inspect(n, visit)
	}
	return free
}
