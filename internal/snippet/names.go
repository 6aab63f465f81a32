package snippet

import (
	"go/ast"
	"go/token"
)

// NameKind tells what a top-level name denotes.
type NameKind int

const (
	NameVar NameKind = iota
	NameConst
	NameFunc
	NameType
)

// Name is an identifier introduced at cell top level.
type Name struct {
	Ident string
	Kind  NameKind
}

// Names lists the identifiers the cell introduces at top level, in source
// order. Short variable declarations count; blank identifiers and methods
// do not.
func (s *Snippet) Names() []Name {
	var names []Name
	add := func(ident *ast.Ident, kind NameKind) {
		if ident != nil && ident.Name != "_" {
			names = append(names, Name{Ident: ident.Name, Kind: kind})
		}
	}
	addGen := func(gd *ast.GenDecl) {
		for _, spec := range gd.Specs {
			switch sp := spec.(type) {
			case *ast.ValueSpec:
				kind := NameVar
				if gd.Tok == token.CONST {
					kind = NameConst
				}
				for _, id := range sp.Names {
					add(id, kind)
				}
			case *ast.TypeSpec:
				add(sp.Name, NameType)
			}
		}
	}

	for i := range s.Chunks {
		for _, node := range s.Body(i) {
			switch n := node.(type) {
			case *ast.GenDecl:
				addGen(n)
			case *ast.FuncDecl:
				if n.Recv == nil {
					add(n.Name, NameFunc)
				}
			case *ast.DeclStmt:
				if gd, ok := n.Decl.(*ast.GenDecl); ok {
					addGen(gd)
				}
			case *ast.AssignStmt:
				if n.Tok != token.DEFINE {
					continue
				}
				for _, lhs := range n.Lhs {
					if id, ok := lhs.(*ast.Ident); ok {
						add(id, NameVar)
					}
				}
			}
		}
	}
	return names
}
