// Package ast defines the typed Abstract Syntax Tree produced by the
// parser: a tagged sum type dispatched by type switch in the evaluator,
// rather than by runtime class hierarchy (spec: "AST dispatch").
package ast

import (
	"github.com/cfgscript/cfg/token"
)

// Node is implemented by every AST node variant. Every node carries the
// start location of its first token (spec invariant).
type Node interface {
	Start() token.Location
	isNode()
}

// TokenNode is a leaf: a scalar literal or bare identifier.
type TokenNode struct {
	Tok token.Token
}

func (n *TokenNode) Start() token.Location { return n.Tok.Start }
func (*TokenNode) isNode()                 {}

// UnaryNode covers PLUS, MINUS, TILDE, NOT, AT (include) and DOLLAR
// (reference) prefix operators.
type UnaryNode struct {
	Kind    token.Kind
	Operand Node
	Loc     token.Location
}

func (n *UnaryNode) Start() token.Location { return n.Loc }
func (*UnaryNode) isNode()                 {}

// BinaryNode covers arithmetic, bitwise, logical, comparison, and the
// DOT/LBRACK/COLON path-navigation operators.
type BinaryNode struct {
	Kind  token.Kind
	Left  Node
	Right Node
}

func (n *BinaryNode) Start() token.Location { return n.Left.Start() }
func (*BinaryNode) isNode()                 {}

// SliceNode represents `[start:stop:step]`; any of the three may be nil.
// A nil Step implies a step of 1.
type SliceNode struct {
	SliceStart Node
	Stop       Node
	Step       Node
	Loc        token.Location
}

func (n *SliceNode) Start() token.Location { return n.Loc }
func (*SliceNode) isNode()                 {}

// ListNode is an ordered sequence of element expressions.
type ListNode struct {
	Elements []Node
	Loc      token.Location
}

func (n *ListNode) Start() token.Location { return n.Loc }
func (*ListNode) isNode()                 {}

// MappingEntry is one key/value pair of a MappingNode, preserving the
// key token (for position and duplicate-key diagnostics).
type MappingEntry struct {
	Key   token.Token
	Value Node
}

// MappingNode is an ordered sequence of key/value pairs. Duplicate
// detection is a post-parse concern (performed when the mapping is
// wrapped for evaluation), not here.
type MappingNode struct {
	Entries []MappingEntry
	Loc     token.Location
}

func (n *MappingNode) Start() token.Location { return n.Loc }
func (*MappingNode) isNode()                 {}
