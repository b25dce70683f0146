package ast

import "github.com/alecthomas/repr"

// Dump renders a Node tree for debugging and test failure output.
func Dump(n Node) string {
	return repr.String(n, repr.Indent("  "), repr.OmitEmpty(true))
}
