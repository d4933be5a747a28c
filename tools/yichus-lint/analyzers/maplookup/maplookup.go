// Package maplookup detects repeated map lookups with the same key.
package maplookup

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer flags an if statement that tests m[k] and then reads m[k]
// again in its body instead of binding the value once.
//
// TODO: use type info to tell slice indexing from map lookups, then add
// this to the default analyzer set.
var Analyzer = &analysis.Analyzer{
	Name:     "maplookup",
	Doc:      "detects repeated map lookups that should bind the value once",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	inspect.Preorder([]ast.Node{(*ast.IfStmt)(nil)}, func(n ast.Node) {
		ifStmt := n.(*ast.IfStmt)

		// An init clause means the value is already bound.
		if ifStmt.Init != nil {
			return
		}

		condKeys := make(map[string]bool)
		for _, idx := range indexExprs(ifStmt.Cond) {
			if key := lookupKey(idx); key != "" {
				condKeys[key] = true
			}
		}
		if len(condKeys) == 0 {
			return
		}

		for _, idx := range indexExprs(ifStmt.Body) {
			if key := lookupKey(idx); key != "" && condKeys[key] {
				pass.Reportf(idx.Pos(),
					"repeated lookup of %s - bind it once with := in the if",
					key)
			}
		}
	})

	return nil, nil
}

// indexExprs collects the outermost index expressions under n. Nested
// lookups like m[a][b] count once, as the whole chain.
func indexExprs(n ast.Node) []*ast.IndexExpr {
	var out []*ast.IndexExpr
	ast.Inspect(n, func(n ast.Node) bool {
		if idx, ok := n.(*ast.IndexExpr); ok {
			out = append(out, idx)
			return false
		}
		return true
	})
	return out
}

// lookupKey renders m[k] as a comparable string. It returns "" when
// either part is more than a plain identifier chain, so lookups through
// function calls never spuriously match each other.
func lookupKey(idx *ast.IndexExpr) string {
	x := chain(idx.X)
	k := chain(idx.Index)
	if x == "" || k == "" {
		return ""
	}
	return x + "[" + k + "]"
}

func chain(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		if base := chain(e.X); base != "" {
			return base + "." + e.Sel.Name
		}
	case *ast.IndexExpr:
		return lookupKey(e)
	}
	return ""
}
