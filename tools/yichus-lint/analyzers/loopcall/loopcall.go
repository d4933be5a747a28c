// Package loopcall detects per-item external calls inside loops.
package loopcall

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/ersonp/yichus-core/tools/yichus-lint/analyzers/loops"
)

// Analyzer flags store, vector index, and embedder calls inside loops.
// Each crosses a process boundary, and the ports expose batch variants.
var Analyzer = &analysis.Analyzer{
	Name:     "loopcall",
	Doc:      "detects store, index, and embedder calls inside loops that should be batched",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// perItemMethods are port methods with a batch or one-shot alternative.
// LLM extraction is deliberately absent - chunked ExtractEvents calls in
// a loop are how ingestion works.
var perItemMethods = map[string]bool{
	// Embedder (EmbedBatch covers the loop case)
	"Embed": true,
	// VectorDB singles (SaveBatch covers Save; repeated Search and Delete
	// fan out one query per iteration)
	"Save":   true,
	"Search": true,
	"Delete": true,
	// TreeStore - LoadGraph replays a full event log per call
	"LoadGraph": true,
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

			if perItemMethods[sel.Sel.Name] {
				pass.Reportf(call.Pos(),
					"potential N+1: %s called inside loop - batch it or hoist it out",
					sel.Sel.Name)
			}

			return true
		})
	})

	return nil, nil
}
