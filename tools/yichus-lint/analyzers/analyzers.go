// Package analyzers provides the custom static analyzers for yichus-core.
package analyzers

import (
	"golang.org/x/tools/go/analysis"

	"github.com/ersonp/yichus-core/tools/yichus-lint/analyzers/loopcall"
	"github.com/ersonp/yichus-core/tools/yichus-lint/analyzers/nestedloop"
	"github.com/ersonp/yichus-core/tools/yichus-lint/analyzers/regexloop"
	"github.com/ersonp/yichus-core/tools/yichus-lint/analyzers/stringconcat"
)

// All returns the analyzers wired into the yichus-lint binary. maplookup
// stays opt-in until it can tell slice indexing from map lookups.
func All() []*analysis.Analyzer {
	return []*analysis.Analyzer{
		loopcall.Analyzer,
		nestedloop.Analyzer,
		regexloop.Analyzer,
		stringconcat.Analyzer,
	}
}
