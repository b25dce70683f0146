// Package lexer turns raw CFG source text into a stream of located
// tokens: CharSource supplies Unicode code points with push-back, and
// Tokenizer consumes those to produce token.Token values.
package lexer

import "github.com/cfgscript/cfg/token"

const endOfStream rune = -1

// CharSource is a Unicode code-point stream over an in-memory buffer,
// with push-back support (spec: "push-back capacity >= 1 is sufficient
// for this grammar; implementations may use an unbounded stack" — we
// hold the whole decoded buffer, so push-back is simply rewinding the
// cursor and is effectively unbounded).
type CharSource struct {
	runes []rune
	locAt []token.Location // locAt[i] is the location of runes[i]; locAt[len(runes)] is the end-of-stream location
	pos   int

	pushedCount int // consecutive PushBack calls not yet re-consumed by Read
}

// NewCharSource wraps text for code-point-at-a-time reading, starting at
// line 1, column 1.
func NewCharSource(text string) *CharSource {
	runes := []rune(text)
	locAt := make([]token.Location, len(runes)+1)
	loc := token.Location{Line: 1, Column: 1}
	for i, r := range runes {
		locAt[i] = loc
		if r == '\n' {
			loc = loc.NextLine()
		} else {
			loc = loc.NextColumn(1)
		}
	}
	locAt[len(runes)] = loc
	return &CharSource{runes: runes, locAt: locAt}
}

// AtEnd reports whether the stream is exhausted.
func (c *CharSource) AtEnd() bool {
	return c.pos >= len(c.runes)
}

// PushBackDepth reports how many pending push-backs have not yet been
// re-consumed by Read. Exposed for tests and debugging only; it is not
// part of the core tokenizer contract.
func (c *CharSource) PushBackDepth() int {
	return c.pushedCount
}

// CharLocation returns the location of the most recently returned rune.
// Before any Read call it equals LogicalLocation.
func (c *CharSource) CharLocation() token.Location {
	if c.pos == 0 {
		return c.locAt[0]
	}
	return c.locAt[c.pos-1]
}

// LogicalLocation returns the location of the next rune to be read.
func (c *CharSource) LogicalLocation() token.Location {
	return c.locAt[c.pos]
}

// Read returns the next code point, or (endOfStream, false) once the
// stream is exhausted.
func (c *CharSource) Read() (rune, bool) {
	if c.pos >= len(c.runes) {
		return endOfStream, false
	}
	r := c.runes[c.pos]
	c.pos++
	if c.pushedCount > 0 {
		c.pushedCount--
	}
	return r, true
}

// PushBack restores r to the front of the stream, reverting to the
// (char_location, logical_location) pair that was current before r was
// read. The caller must push back the character it most recently read.
func (c *CharSource) PushBack(r rune) {
	if c.pos == 0 {
		panic("lexer: PushBack called with nothing read")
	}
	c.pos--
	c.pushedCount++
}
