// Package nestedloop detects quadratic scans over the same collection.
package nestedloop

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer flags a range loop nested inside another range over the same
// collection. Kinship and candidate scans walk person and relation
// slices; a pairwise pass belongs behind a map keyed on what the inner
// loop matches.
var Analyzer = &analysis.Analyzer{
	Name:     "nestedloop",
	Doc:      "detects quadratic nested loops over the same collection",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.RangeStmt)(nil),
	}

	inspect.Preorder(nodeFilter, func(n ast.Node) {
		outer, ok := n.(*ast.RangeStmt)
		if !ok {
			return
		}

		target := rangeTarget(outer.X)
		if target == "" {
			return
		}

		ast.Inspect(outer.Body, func(n ast.Node) bool {
			inner, ok := n.(*ast.RangeStmt)
			if !ok {
				return true
			}

			if rangeTarget(inner.X) == target {
				pass.Reportf(inner.Pos(),
					"quadratic scan: nested loop over %q - index it in a map first",
					target)
			}

			return true
		})
	})

	return nil, nil
}

// rangeTarget names the ranged collection when it is an identifier or a
// field selection, "" otherwise.
func rangeTarget(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		if ident, ok := e.X.(*ast.Ident); ok {
			return ident.Name + "." + e.Sel.Name
		}
	}
	return ""
}
