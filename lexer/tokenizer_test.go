package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfgscript/cfg/token"
)

// tokensOf drains a Tokenizer down to (and including) the first EOF,
// failing the test immediately on any tokenizer error.
func tokensOf(t *testing.T, text string) []token.Token {
	t.Helper()
	tok := NewTokenizer(text)
	var out []token.Token
	for {
		tk, err := tok.GetToken()
		require.NoError(t, err)
		out = append(out, tk)
		if tk.Kind == token.EOF {
			return out
		}
	}
}

func kindsOf(toks []token.Token) []token.Kind {
	kinds := make([]token.Kind, len(toks))
	for i, tk := range toks {
		kinds[i] = tk.Kind
	}
	return kinds
}

func TestTokenizerSkipsWhitespaceButKeepsNewlines(t *testing.T) {
	toks := tokensOf(t, "a   b\nc")
	assert.Equal(t, []token.Kind{token.WORD, token.WORD, token.NEWLINE, token.WORD, token.EOF}, kindsOf(toks))
}

func TestTokenizerLineContinuationIsSilent(t *testing.T) {
	toks := tokensOf(t, "a \\\nb")
	assert.Equal(t, []token.Kind{token.WORD, token.WORD, token.EOF}, kindsOf(toks))
}

func TestTokenizerBackslashNotFollowedByNewlineFails(t *testing.T) {
	tok := NewTokenizer("a \\b")
	_, err := tok.GetToken() // 'a'
	require.NoError(t, err)
	_, err = tok.GetToken()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unexpected character: \\")
}

func TestTokenizerComment(t *testing.T) {
	toks := tokensOf(t, "# a comment\r\nx")
	require.Equal(t, []token.Kind{token.NEWLINE, token.WORD, token.EOF}, kindsOf(toks))
	assert.Equal(t, "# a comment", toks[0].Text)
}

func TestTokenizerNewlineVariants(t *testing.T) {
	for _, text := range []string{"\n", "\r", "\r\n"} {
		toks := tokensOf(t, "a"+text+"b")
		require.Equal(t, []token.Kind{token.WORD, token.NEWLINE, token.WORD, token.EOF}, kindsOf(toks))
	}
}

func TestTokenizerKeywords(t *testing.T) {
	toks := tokensOf(t, "true false null is in not and or")
	kinds := kindsOf(toks)
	want := []token.Kind{token.TRUE, token.FALSE, token.NONE, token.IS, token.IN, token.NOT, token.AND, token.OR, token.EOF}
	assert.Equal(t, want, kinds)
	assert.Equal(t, true, toks[0].Value)
	assert.Equal(t, false, toks[1].Value)
	assert.Nil(t, toks[2].Value)
}

func TestTokenizerIdentifierWithUnderscoreAndDigits(t *testing.T) {
	toks := tokensOf(t, "_foo_bar123")
	require.Equal(t, token.WORD, toks[0].Kind)
	assert.Equal(t, "_foo_bar123", toks[0].Text)
}

func TestTokenizerSimpleStrings(t *testing.T) {
	toks := tokensOf(t, `'hello' "world"`)
	require.Len(t, toks, 3)
	assert.Equal(t, "hello", toks[0].Value)
	assert.Equal(t, "world", toks[1].Value)
}

func TestTokenizerTripleQuotedStringSpansLines(t *testing.T) {
	toks := tokensOf(t, "'''line1\nline2'''")
	require.Equal(t, token.STRING, toks[0].Kind)
	assert.Equal(t, "line1\nline2", toks[0].Value)
}

func TestTokenizerUnterminatedStringFails(t *testing.T) {
	tok := NewTokenizer("'abc")
	_, err := tok.GetToken()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unterminated quoted string")
}

func TestTokenizerUnterminatedSingleLineStringAtNewline(t *testing.T) {
	tok := NewTokenizer("'abc\ndef'")
	_, err := tok.GetToken()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unterminated quoted string")
}

func TestTokenizerEscapeSequences(t *testing.T) {
	cases := map[string]string{
		`'\n'`:         "\n",
		`'\t'`:         "\t",
		`'\\'`:         `\`,
		`'\''`:         `'`,
		`'\x41'`:       "A",
		`'A'`:     "A",
		`'\U00000041'`: "A",
	}
	for src, want := range cases {
		toks := tokensOf(t, src)
		require.Equal(t, token.STRING, toks[0].Kind, src)
		assert.Equal(t, want, toks[0].Value, src)
	}
}

func TestTokenizerEscapeRejectsLoneSurrogate(t *testing.T) {
	tok := NewTokenizer(`'\uD800'`)
	_, err := tok.GetToken()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid escape sequence")
}

func TestTokenizerEscapeRejectsBeyondUnicodeMax(t *testing.T) {
	tok := NewTokenizer(`'\U00110000'`)
	_, err := tok.GetToken()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid escape sequence")
}

func TestTokenizerBacktickString(t *testing.T) {
	toks := tokensOf(t, "`$HOME|/tmp`")
	require.Equal(t, token.BACKTICK, toks[0].Kind)
	assert.Equal(t, "$HOME|/tmp", toks[0].Value)
}

func TestTokenizerUnterminatedBacktickFails(t *testing.T) {
	tok := NewTokenizer("`abc")
	_, err := tok.GetToken()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unterminated `-string")
}

func TestTokenizerDecimalIntegerAndFloat(t *testing.T) {
	toks := tokensOf(t, "123 4.5 6e2 7.5e-3")
	require.Equal(t, token.INTEGER, toks[0].Kind)
	assert.Equal(t, int64(123), toks[0].Value)
	require.Equal(t, token.FLOAT, toks[1].Kind)
	assert.Equal(t, 4.5, toks[1].Value)
	require.Equal(t, token.FLOAT, toks[2].Kind)
	assert.Equal(t, 600.0, toks[2].Value)
	require.Equal(t, token.FLOAT, toks[3].Kind)
	assert.InDelta(t, 0.0075, toks[3].Value, 1e-12)
}

func TestTokenizerComplexLiteral(t *testing.T) {
	toks := tokensOf(t, "3j")
	require.Equal(t, token.COMPLEX, toks[0].Kind)
	assert.Equal(t, complex(0, 3), toks[0].Value)
}

func TestTokenizerHexOctalBinary(t *testing.T) {
	toks := tokensOf(t, "0x1F 0o17 0b101")
	require.Equal(t, token.INTEGER, toks[0].Kind)
	assert.Equal(t, int64(31), toks[0].Value)
	require.Equal(t, token.INTEGER, toks[1].Kind)
	assert.Equal(t, int64(15), toks[1].Value)
	require.Equal(t, token.INTEGER, toks[2].Kind)
	assert.Equal(t, int64(5), toks[2].Value)
}

func TestTokenizerLegacyOctalLeadingZero(t *testing.T) {
	toks := tokensOf(t, "017")
	require.Equal(t, token.INTEGER, toks[0].Kind)
	assert.Equal(t, int64(15), toks[0].Value)
}

func TestTokenizerUnderscoresInNumbers(t *testing.T) {
	toks := tokensOf(t, "1_000_000")
	require.Equal(t, token.INTEGER, toks[0].Kind)
	assert.Equal(t, int64(1000000), toks[0].Value)
}

func TestTokenizerUnderscoreAtStartFails(t *testing.T) {
	tok := NewTokenizer("0x_1")
	_, err := tok.GetToken()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid '_' in number")
}

func TestTokenizerTrailingUnderscoreFails(t *testing.T) {
	tok := NewTokenizer("1_ ")
	_, err := tok.GetToken()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid '_' at end of number")
}

func TestTokenizerNegativeNumberLiteral(t *testing.T) {
	toks := tokensOf(t, "-5")
	require.Equal(t, token.INTEGER, toks[0].Kind)
	assert.Equal(t, int64(-5), toks[0].Value)
}

func TestTokenizerMinusBeforeWordIsOperator(t *testing.T) {
	toks := tokensOf(t, "-a")
	require.Equal(t, []token.Kind{token.MINUS, token.WORD, token.EOF}, kindsOf(toks))
}

func TestTokenizerPunctuationSingle(t *testing.T) {
	toks := tokensOf(t, ":-+*/%,{}[]()@$< >~&|^.")
	want := []token.Kind{
		token.COLON, token.MINUS, token.PLUS, token.STAR, token.SLASH, token.MODULO,
		token.COMMA, token.LCURLY, token.RCURLY, token.LBRACK, token.RBRACK,
		token.LPAREN, token.RPAREN, token.AT, token.DOLLAR, token.LT, token.GT,
		token.TILDE, token.BITAND, token.BITOR, token.BITXOR, token.DOT, token.EOF,
	}
	assert.Equal(t, want, kindsOf(toks))
}

func TestTokenizerMultiCharPunctuation(t *testing.T) {
	toks := tokensOf(t, "<= <> << >= >> == != // ** && ||")
	want := []token.Kind{
		token.LE, token.ALTNEQ, token.LSHIFT, token.GE, token.RSHIFT, token.EQ,
		token.NEQ, token.SLASHSLASH, token.POWER, token.AND, token.OR, token.EOF,
	}
	assert.Equal(t, want, kindsOf(toks))
}

func TestTokenizerAssignVsEq(t *testing.T) {
	toks := tokensOf(t, "= ==")
	assert.Equal(t, []token.Kind{token.ASSIGN, token.EQ, token.EOF}, kindsOf(toks))
}

func TestTokenizerBangAloneFails(t *testing.T) {
	tok := NewTokenizer("!")
	_, err := tok.GetToken()
	require.Error(t, err)
}

func TestTokenizerUnexpectedCharacter(t *testing.T) {
	tok := NewTokenizer("?")
	_, err := tok.GetToken()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unexpected character: ?")
}

func TestTokenizerReturnsEOFRepeatedly(t *testing.T) {
	tok := NewTokenizer("")
	tk1, err := tok.GetToken()
	require.NoError(t, err)
	tk2, err := tok.GetToken()
	require.NoError(t, err)
	assert.Equal(t, token.EOF, tk1.Kind)
	assert.Equal(t, token.EOF, tk2.Kind)
}

func TestTokenizerNumberInvalidCharacter(t *testing.T) {
	// 0x with no hex digits is invalid.
	tok := NewTokenizer("0x")
	_, err := tok.GetToken()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid character in number")
}
