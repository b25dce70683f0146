package cfg

import (
	"unicode"

	"github.com/smasher164/xid"
)

// IsIdentifier reports whether s is a single valid CFG identifier (the
// tokenizer's WORD grammar, spec §4.2): a leading `_` or XID_Start
// rune, followed by zero or more `_`/digit/XID_Continue runes, with
// nothing left over. Config.Get consults this to decide whether a
// lookup miss on a literal key should be treated as "not found" rather
// than re-tried as a path expression (spec §4.6 Entry).
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	runes := []rune(s)
	first := runes[0]
	if !(first == '_' || xid.Start(first)) {
		return false
	}
	for _, r := range runes[1:] {
		if !(r == '_' || xid.Continue(r) || unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}
