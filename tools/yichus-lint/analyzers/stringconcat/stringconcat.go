// Package stringconcat detects string accumulation across loop iterations.
package stringconcat

import (
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/ersonp/yichus-core/tools/yichus-lint/analyzers/loops"
)

// Analyzer flags += on a string inside a loop when the string outlives
// the loop body. Each append copies everything written so far. Strings
// declared per iteration reset every pass and are left alone.
var Analyzer = &analysis.Analyzer{
	Name:     "stringconcat",
	Doc:      "detects string accumulation in loops that should use strings.Builder",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	ins := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	loops.Bodies(ins, func(body *ast.BlockStmt) {
		ast.Inspect(body, func(n ast.Node) bool {
			assign, ok := n.(*ast.AssignStmt)
			if !ok || assign.Tok != token.ADD_ASSIGN || len(assign.Lhs) != 1 {
				return true
			}

			lhs := assign.Lhs[0]
			if !isString(pass, lhs) {
				return true
			}

			if declaredWithin(pass, lhs, body) {
				return true
			}

			pass.Reportf(assign.Pos(),
				"string accumulation in loop - use strings.Builder")
			return true
		})
	})

	return nil, nil
}

// isString reports whether the expression has underlying string type.
func isString(pass *analysis.Pass, expr ast.Expr) bool {
	tv := pass.TypesInfo.TypeOf(expr)
	if tv == nil {
		return false
	}
	basic, ok := tv.Underlying().(*types.Basic)
	return ok && basic.Kind() == types.String
}

// declaredWithin reports whether expr names a variable declared inside
// body. Such strings reset every iteration and never accumulate.
func declaredWithin(pass *analysis.Pass, expr ast.Expr, body *ast.BlockStmt) bool {
	ident, ok := expr.(*ast.Ident)
	if !ok {
		return false
	}
	obj := pass.TypesInfo.ObjectOf(ident)
	if obj == nil {
		return false
	}
	return obj.Pos() >= body.Pos() && obj.Pos() <= body.End()
}
