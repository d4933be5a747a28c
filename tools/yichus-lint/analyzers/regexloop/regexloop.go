// Package regexloop detects regex compilation inside loops.
package regexloop

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/ersonp/yichus-core/tools/yichus-lint/analyzers/loops"
)

// Analyzer flags regexp compilation inside loops. Sanitization patterns
// belong at package scope; compiling per iteration rebuilds the automaton
// every pass.
var Analyzer = &analysis.Analyzer{
	Name:     "regexloop",
	Doc:      "detects regexp compilation inside loops",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

var compileFuncs = map[string]bool{
	"Compile":          true,
	"MustCompile":      true,
	"CompilePOSIX":     true,
	"MustCompilePOSIX": true,
}

func run(pass *analysis.Pass) (interface{}, error) {
	ins := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	loops.Bodies(ins, func(body *ast.BlockStmt) {
		ast.Inspect(body, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}

			sel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}

			ident, ok := sel.X.(*ast.Ident)
			if !ok {
				return true
			}

			if ident.Name == "regexp" && compileFuncs[sel.Sel.Name] {
				pass.Reportf(call.Pos(),
					"regexp.%s inside loop - compile once at package scope",
					sel.Sel.Name)
			}

			return true
		})
	})

	return nil, nil
}
