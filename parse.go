package cfg

import (
	"fmt"

	"github.com/cfgscript/cfg/ast"
	"github.com/cfgscript/cfg/cfgpath"
	"github.com/cfgscript/cfg/parser"
)

// Rule names accepted by Parse, mirroring the grammar productions spec
// §4.3 names directly.
const (
	RuleContainer = "container"
	RuleExpr      = "expr"
)

// Parse parses text under the named grammar rule (spec §6 free function
// `parse(text, rule_name)`), returning the raw AST without evaluation.
// Supported rules are RuleContainer (a full document) and RuleExpr (a
// single expression).
func Parse(text string, ruleName string) (ast.Node, error) {
	p, err := parser.NewParser(text)
	if err != nil {
		return nil, err
	}
	switch ruleName {
	case RuleContainer:
		return p.ParseContainer()
	case RuleExpr:
		return p.ParseExpr()
	default:
		return nil, fmt.Errorf("cfg: unknown parse rule %q", ruleName)
	}
}

// ParsePath parses s as a path expression (spec §6 free function
// `parse_path(s)`), the same grammar Config.Get uses internally when a
// literal key lookup misses.
func ParsePath(s string) (ast.Node, error) {
	return cfgpath.ParsePath(s)
}

// ToSource reconstructs canonical source text for a path AST produced
// by ParsePath (spec §6 free function `to_source(node)`).
func ToSource(n ast.Node) string {
	return cfgpath.ToSource(n)
}
