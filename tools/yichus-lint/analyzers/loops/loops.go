// Package loops provides traversal helpers shared by the loop analyzers.
package loops

import (
	"go/ast"

	"golang.org/x/tools/go/ast/inspector"
)

// Bodies calls fn with the body of every for and range statement.
func Bodies(ins *inspector.Inspector, fn func(body *ast.BlockStmt)) {
	nodeFilter := []ast.Node{
		(*ast.RangeStmt)(nil),
		(*ast.ForStmt)(nil),
	}

	ins.Preorder(nodeFilter, func(n ast.Node) {
		switch stmt := n.(type) {
		case *ast.RangeStmt:
			fn(stmt.Body)
		case *ast.ForStmt:
			fn(stmt.Body)
		}
	})
}
