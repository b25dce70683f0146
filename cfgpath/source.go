package cfgpath

import (
	"strings"

	"github.com/cfgscript/cfg/ast"
)

// ToSource reconstructs canonical source text for a parsed path, as used
// in error messages and tests. Slice endpoints that are absent in the
// AST are rendered as empty, e.g. "[:]", "[::step]".
func ToSource(n ast.Node) string {
	var b strings.Builder
	writeSource(&b, n)
	return b.String()
}

func writeSource(b *strings.Builder, n ast.Node) {
	_ = Iterate(n, func(s Step) error {
		switch {
		case s.IsRoot:
			b.WriteString(s.RootTok.Text)
		case s.Op == '.':
			b.WriteByte('.')
			b.WriteString(s.Name)
		case s.Op == '[':
			b.WriteByte('[')
			b.WriteString(exprSource(s.Index))
			b.WriteByte(']')
		case s.Op == ':':
			b.WriteByte('[')
			writeSlicePart(b, s.Slice.SliceStart)
			b.WriteByte(':')
			writeSlicePart(b, s.Slice.Stop)
			if s.Slice.Step != nil {
				b.WriteByte(':')
				writeSlicePart(b, s.Slice.Step)
			}
			b.WriteByte(']')
		}
		return nil
	})
}

func writeSlicePart(b *strings.Builder, n ast.Node) {
	if n == nil {
		return
	}
	b.WriteString(exprSource(n))
}

// exprSource renders an index/slice-position expression to source text.
// Paths only ever place literal tokens or nested paths in these
// positions for the canonical round-trip case covered by tests.
func exprSource(n ast.Node) string {
	switch v := n.(type) {
	case *ast.TokenNode:
		return v.Tok.Text
	case *ast.BinaryNode:
		var b strings.Builder
		writeSource(&b, n)
		return b.String()
	default:
		return ""
	}
}
