package cfg

import (
	"fmt"

	"github.com/cfgscript/cfg/cfgpath"
	"github.com/cfgscript/cfg/lexer"
	"github.com/cfgscript/cfg/parser"
	"github.com/cfgscript/cfg/token"
)

// TokenizerError, ParserError and InvalidPathError are re-exported from
// their owning packages so callers can type-switch on a single error
// taxonomy without importing cfg/lexer, cfg/parser, or cfg/cfgpath
// directly.
type (
	TokenizerError   = lexer.Error
	ParserError      = parser.Error
	InvalidPathError = cfgpath.InvalidPathError
)

// BadIndexError reports a wrong-type or out-of-range index, or a slice
// applied to a non-list.
type BadIndexError struct {
	Loc     token.Location
	Message string
}

func (e *BadIndexError) Error() string { return fmt.Sprintf("%s: %s", e.Loc, e.Message) }

// CircularReferenceError reports a cycle among ${…} references.
// Entries is sorted alphabetically by reconstructed path source.
type CircularReferenceError struct {
	Entries []CycleEntry
}

// CycleEntry is one node of a detected reference cycle.
type CycleEntry struct {
	Source string
	Loc    token.Location
}

func (e *CircularReferenceError) Error() string {
	msg := "Circular reference: "
	for i, ent := range e.Entries {
		if i > 0 {
			msg += ", "
		}
		msg += fmt.Sprintf("%s %s", ent.Source, ent.Loc)
	}
	return msg
}

// ConfigError is the catch-all evaluation failure kind: unknown
// variable, unable-to-evaluate, duplicate key, unable-to-convert
// string, non-mapping root, unresolvable include, arithmetic type
// mismatch.
type ConfigError struct {
	Loc     token.Location
	Message string
}

func (e *ConfigError) Error() string {
	if e.Loc.Zero() {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Loc, e.Message)
}

func newConfigError(loc token.Location, format string, args ...any) error {
	return &ConfigError{Loc: loc, Message: fmt.Sprintf(format, args...)}
}
