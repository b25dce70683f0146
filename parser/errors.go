// Package parser turns a lexer.Tokenizer's token stream into an ast.Node
// tree by recursive descent with single-token lookahead, following the
// precedence ladder from 'or' expressions down to atom.
package parser

import (
	"fmt"

	"github.com/cfgscript/cfg/token"
)

// Error is the parser's single error kind: a syntax error pinned to the
// location of the offending token. The parser never attempts recovery.
type Error struct {
	Loc     token.Location
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Loc, e.Message)
}
