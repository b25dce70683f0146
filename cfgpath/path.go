// Package cfgpath implements the Path Engine: parsing a dotted/indexed
// path string into an ast.Node, walking it step by step, and
// reconstructing canonical source text from a parsed path.
package cfgpath

import (
	"fmt"

	"github.com/cfgscript/cfg/ast"
	"github.com/cfgscript/cfg/parser"
	"github.com/cfgscript/cfg/token"
)

// InvalidPathError reports that a string could not be parsed as a path.
// Cause, when non-nil, is the underlying tokenizer or parser failure.
type InvalidPathError struct {
	Path  string
	Cause error
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("Invalid path: %s", e.Path)
}

func (e *InvalidPathError) Unwrap() error { return e.Cause }

// ParsePath tokenizes and parses s as a primary expression, requiring
// the first token to be a WORD and the parser to reach end-of-stream
// immediately afterward. Any failure collapses to an InvalidPathError.
func ParsePath(s string) (ast.Node, error) {
	p, err := parser.NewParser(s)
	if err != nil {
		return nil, &InvalidPathError{Path: s, Cause: err}
	}
	if !p.PeekKind().Word() {
		return nil, &InvalidPathError{Path: s}
	}
	n, err := p.ParsePrimaryPublic()
	if err != nil {
		return nil, &InvalidPathError{Path: s, Cause: err}
	}
	if !p.AtEOF() {
		return nil, &InvalidPathError{Path: s}
	}
	return n, nil
}

// Step is one yielded element of a path walk. Loc is the source
// location this step should blame on failure: the root token's
// position for the root step, the field-name token's position for a
// DOT step, the index expression's position for a `[` step, and the
// opening bracket's position for a `:` step.
type Step struct {
	Op      byte // '.', '[', or ':'
	Name    string
	Index   ast.Node
	Slice   *ast.SliceNode
	RootTok token.Token
	IsRoot  bool
	Loc     token.Location
}

// Iterate performs an in-order walk of a path AST, yielding the root
// identifier first and then one Step per DOT/LBRACK/COLON binary node
// encountered on the way down, per §4.4.
func Iterate(n ast.Node, yield func(Step) error) error {
	switch v := n.(type) {
	case *ast.TokenNode:
		return yield(Step{IsRoot: true, RootTok: v.Tok, Loc: v.Tok.Start})
	case *ast.BinaryNode:
		if err := Iterate(v.Left, yield); err != nil {
			return err
		}
		switch v.Kind {
		case token.DOT:
			name, _ := v.Right.(*ast.TokenNode)
			return yield(Step{Op: '.', Name: name.Tok.Text, Loc: name.Tok.Start})
		case token.LBRACK:
			return yield(Step{Op: '[', Index: v.Right, Loc: v.Right.Start()})
		case token.COLON:
			sl, _ := v.Right.(*ast.SliceNode)
			return yield(Step{Op: ':', Slice: sl, Loc: sl.Loc})
		default:
			return fmt.Errorf("cfgpath: unexpected node kind in path: %s", v.Kind)
		}
	default:
		return fmt.Errorf("cfgpath: unexpected node type in path: %T", n)
	}
}
