package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationNextLine(t *testing.T) {
	loc := Location{Line: 3, Column: 7}
	next := loc.NextLine()
	assert.Equal(t, Location{Line: 4, Column: 1}, next)
}

func TestLocationNextColumn(t *testing.T) {
	loc := Location{Line: 1, Column: 1}
	assert.Equal(t, Location{Line: 1, Column: 4}, loc.NextColumn(3))
}

func TestLocationZero(t *testing.T) {
	assert.True(t, Location{}.Zero())
	assert.False(t, Location{Line: 1, Column: 1}.Zero())
}

func TestLocationString(t *testing.T) {
	assert.Equal(t, "(2, 5)", Location{Line: 2, Column: 5}.String())
}

func TestKeywordLookup(t *testing.T) {
	cases := map[string]Kind{
		"true": TRUE, "false": FALSE, "null": NONE,
		"is": IS, "in": IN, "not": NOT, "and": AND, "or": OR,
	}
	for text, want := range cases {
		k, ok := Keyword(text)
		require.True(t, ok, text)
		assert.Equal(t, want, k)
	}
	_, ok := Keyword("notakeyword")
	assert.False(t, ok)
}

func TestReprPunctuationIsQuoted(t *testing.T) {
	assert.Equal(t, "'{'", Repr(LCURLY))
	assert.Equal(t, "'is not'", Repr(ISNOT))
}

func TestReprNamedKinds(t *testing.T) {
	assert.Equal(t, "identifier", Repr(WORD))
	assert.Equal(t, "whole number", Repr(INTEGER))
	assert.Equal(t, "floating-point number", Repr(FLOAT))
	assert.Equal(t, "complex number", Repr(COMPLEX))
	assert.Equal(t, "string", Repr(STRING))
	assert.Equal(t, "end-of-line", Repr(NEWLINE))
	assert.Equal(t, "end of input", Repr(EOF))
	assert.Equal(t, "null", Repr(NONE))
}

func TestTokenWord(t *testing.T) {
	assert.True(t, Token{Kind: WORD, Text: "foo"}.Word())
	assert.False(t, Token{Kind: STRING, Text: "foo"}.Word())
}

func TestTokenStringFallsBackToRepr(t *testing.T) {
	assert.Equal(t, "identifier", Token{Kind: WORD}.String())
	assert.Equal(t, "abc", Token{Kind: WORD, Text: "abc"}.String())
}
