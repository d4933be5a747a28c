// yichus-lint runs the custom static analyzers for yichus-core. Status
// computation and tie derivation are linear passes over snapshots; the
// analyzers here catch the patterns that turn those passes quadratic or
// chatty against sqlite and qdrant.
package main

import (
	"golang.org/x/tools/go/analysis/multichecker"

	"github.com/ersonp/yichus-core/tools/yichus-lint/analyzers"
)

func main() {
	multichecker.Main(analyzers.All()...)
}
