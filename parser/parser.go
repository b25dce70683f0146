package parser

import (
	"fmt"

	"github.com/cfgscript/cfg/ast"
	"github.com/cfgscript/cfg/lexer"
	"github.com/cfgscript/cfg/token"
)

// Parser holds single-token lookahead over a lexer.Tokenizer.
type Parser struct {
	tok  *lexer.Tokenizer
	next token.Token
}

// NewParser tokenizes and primes the lookahead token.
func NewParser(text string) (*Parser, error) {
	p := &Parser{tok: lexer.NewTokenizer(text)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) advance() error {
	t, err := p.tok.GetToken()
	if err != nil {
		return err
	}
	p.next = t
	return nil
}

func (p *Parser) fail(loc token.Location, format string, args ...any) error {
	return &Error{Loc: loc, Message: fmt.Sprintf(format, args...)}
}

func (p *Parser) at(k token.Kind) bool { return p.next.Kind == k }

func (p *Parser) skipNewlines() error {
	for p.at(token.NEWLINE) {
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if p.next.Kind != k {
		return token.Token{}, p.fail(p.next.Start, "Expected %s, but found %s", token.Repr(k), token.Repr(p.next.Kind))
	}
	t := p.next
	if err := p.advance(); err != nil {
		return token.Token{}, err
	}
	return t, nil
}

// ParseContainer parses a full document: container := NEWLINE* ( mapping |
// list | mappingBody ) NEWLINE*.
func (p *Parser) ParseContainer() (ast.Node, error) {
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	var result ast.Node
	var err error
	switch p.next.Kind {
	case token.LCURLY:
		result, err = p.parseMapping()
	case token.LBRACK:
		result, err = p.parseList()
	default:
		result, err = p.parseMappingBody(token.EOF)
	}
	if err != nil {
		return nil, err
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Parser) parseMapping() (ast.Node, error) {
	loc := p.next.Start
	if _, err := p.expect(token.LCURLY); err != nil {
		return nil, err
	}
	body, err := p.parseMappingBody(token.RCURLY)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RCURLY); err != nil {
		return nil, err
	}
	body.(*ast.MappingNode).Loc = loc
	return body, nil
}

// parseMappingBody parses entries until the closer token is seen (RCURLY
// for a braced mapping, EOF for a bare top-level document).
func (p *Parser) parseMappingBody(closer token.Kind) (ast.Node, error) {
	loc := p.next.Start
	m := &ast.MappingNode{Loc: loc}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	for p.next.Kind != closer {
		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		if p.next.Kind != token.COLON && p.next.Kind != token.ASSIGN {
			return nil, p.fail(p.next.Start, "Expected key-value separator, but found %s", token.Repr(p.next.Kind))
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		m.Entries = append(m.Entries, ast.MappingEntry{Key: key, Value: val})
		if p.next.Kind == token.NEWLINE || p.next.Kind == token.COMMA {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// parseKey parses WORD | STRING+, concatenating adjacent string literals.
// A string key's Text is its decoded, concatenated value (the quotes are
// dropped), since the mapping is keyed by Text.
func (p *Parser) parseKey() (token.Token, error) {
	if p.next.Kind == token.WORD {
		t := p.next
		if err := p.advance(); err != nil {
			return token.Token{}, err
		}
		return t, nil
	}
	if p.next.Kind == token.STRING {
		t, err := p.parseStringRun()
		if err != nil {
			return token.Token{}, err
		}
		t.Text, _ = t.Value.(string)
		return t, nil
	}
	return token.Token{}, p.fail(p.next.Start, "Unexpected type for key: %s", token.Repr(p.next.Kind))
}

func (p *Parser) parseStringRun() (token.Token, error) {
	first := p.next
	text := first.Text
	value, _ := first.Value.(string)
	end := first.End
	if err := p.advance(); err != nil {
		return token.Token{}, err
	}
	for p.next.Kind == token.STRING {
		text += p.next.Text
		if s, ok := p.next.Value.(string); ok {
			value += s
		}
		end = p.next.End
		if err := p.advance(); err != nil {
			return token.Token{}, err
		}
	}
	first.Text = text
	first.Value = value
	first.End = end
	return first, nil
}

func (p *Parser) parseList() (ast.Node, error) {
	loc := p.next.Start
	if _, err := p.expect(token.LBRACK); err != nil {
		return nil, err
	}
	n, err := p.parseListBody(token.RBRACK)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACK); err != nil {
		return nil, err
	}
	n.Loc = loc
	return n, nil
}

func (p *Parser) parseListBody(closer token.Kind) (*ast.ListNode, error) {
	loc := p.next.Start
	l := &ast.ListNode{Loc: loc}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	for p.next.Kind != closer {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		l.Elements = append(l.Elements, e)
		if p.next.Kind == token.NEWLINE || p.next.Kind == token.COMMA {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// ParseExpr is the public entry for callers that need a single bare
// expression, such as cfg.Parse with its expression rule.
func (p *Parser) ParseExpr() (ast.Node, error) { return p.parseExpr() }

// ParsePrimaryPublic exposes primary parsing for the path engine, which
// parses a path string as a bare primary (no operators above trailers).
func (p *Parser) ParsePrimaryPublic() (ast.Node, error) { return p.parsePrimary() }

// PeekKind returns the lookahead token (not only its kind) without
// consuming it.
func (p *Parser) PeekKind() token.Token { return p.next }

// AtEOF reports whether the lookahead token is end-of-stream.
func (p *Parser) AtEOF() bool { return p.next.Kind == token.EOF }

func (p *Parser) parseExpr() (ast.Node, error) {
	left, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}
	for p.next.Kind == token.OR {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryNode{Kind: token.OR, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAndExpr() (ast.Node, error) {
	left, err := p.parseNotExpr()
	if err != nil {
		return nil, err
	}
	for p.next.Kind == token.AND {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseNotExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryNode{Kind: token.AND, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNotExpr() (ast.Node, error) {
	if p.next.Kind == token.NOT {
		loc := p.next.Start
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseNotExpr()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryNode{Kind: token.NOT, Operand: operand, Loc: loc}, nil
	}
	return p.parseComparison()
}

// isNotIn reports whether the lookahead is 'not', without consuming
// tokens. After a comparison operand this can only start a 'not in'
// operator; parseComparison then requires the following 'in'. A leading
// 'not' (negation) never reaches here, since parseNotExpr handles it
// before parseComparison runs.
func (p *Parser) isNotIn() bool {
	return p.next.Kind == token.NOT
}

func isCompOp(k token.Kind) bool {
	switch k {
	case token.LT, token.GT, token.LE, token.GE, token.EQ, token.NEQ, token.ALTNEQ, token.IN, token.IS:
		return true
	}
	return false
}

func (p *Parser) parseComparison() (ast.Node, error) {
	left, err := p.parseBitOr()
	if err != nil {
		return nil, err
	}
	for isCompOp(p.next.Kind) || p.isNotIn() {
		opKind := p.next.Kind
		if opKind == token.NOT {
			// two-token lookahead: 'not in'
			if err := p.advance(); err != nil {
				return nil, err
			}
			if _, err := p.expect(token.IN); err != nil {
				return nil, err
			}
			opKind = token.NOTIN
		} else {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if opKind == token.IS && p.next.Kind == token.NOT {
				opKind = token.ISNOT
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
		}
		right, err := p.parseBitOr()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryNode{Kind: opKind, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseBitOr() (ast.Node, error) {
	left, err := p.parseBitXor()
	if err != nil {
		return nil, err
	}
	for p.next.Kind == token.BITOR {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseBitXor()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryNode{Kind: token.BITOR, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseBitXor() (ast.Node, error) {
	left, err := p.parseBitAnd()
	if err != nil {
		return nil, err
	}
	for p.next.Kind == token.BITXOR {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseBitAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryNode{Kind: token.BITXOR, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseBitAnd() (ast.Node, error) {
	left, err := p.parseShift()
	if err != nil {
		return nil, err
	}
	for p.next.Kind == token.BITAND {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseShift()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryNode{Kind: token.BITAND, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseShift() (ast.Node, error) {
	left, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	for p.next.Kind == token.LSHIFT || p.next.Kind == token.RSHIFT {
		opKind := p.next.Kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryNode{Kind: opKind, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAdd() (ast.Node, error) {
	left, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for p.next.Kind == token.PLUS || p.next.Kind == token.MINUS {
		opKind := p.next.Kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryNode{Kind: opKind, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMul() (ast.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.next.Kind == token.STAR || p.next.Kind == token.SLASH ||
		p.next.Kind == token.SLASHSLASH || p.next.Kind == token.MODULO {
		opKind := p.next.Kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryNode{Kind: opKind, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Node, error) {
	switch p.next.Kind {
	case token.PLUS, token.MINUS, token.TILDE, token.AT:
		opKind := p.next.Kind
		loc := p.next.Start
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryNode{Kind: opKind, Operand: operand, Loc: loc}, nil
	}
	return p.parsePower()
}

// parsePower handles right-associative '**': power := primary ('**'
// unaryExpr)?.
func (p *Parser) parsePower() (ast.Node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.next.Kind == token.POWER {
		if err := p.advance(); err != nil {
			return nil, err
		}
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryNode{Kind: token.POWER, Left: base, Right: exp}, nil
	}
	return base, nil
}

func (p *Parser) parsePrimary() (ast.Node, error) {
	n, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		switch p.next.Kind {
		case token.DOT:
			if err := p.advance(); err != nil {
				return nil, err
			}
			name, err := p.expect(token.WORD)
			if err != nil {
				return nil, err
			}
			n = &ast.BinaryNode{Kind: token.DOT, Left: n, Right: &ast.TokenNode{Tok: name}}
		case token.LBRACK:
			trailer, err := p.parseIndexTrailer()
			if err != nil {
				return nil, err
			}
			n = &ast.BinaryNode{Kind: trailer.opKind, Left: n, Right: trailer.node}
		default:
			return n, nil
		}
	}
}

type indexTrailer struct {
	opKind token.Kind
	node   ast.Node
}

// parseIndexTrailer parses '[' indexOrSlice ']' per §4.3's disambiguation
// rule: collect list-body-style expressions separated by ':'; one part
// with no colon is an index, any colon makes it a slice.
func (p *Parser) parseIndexTrailer() (indexTrailer, error) {
	loc := p.next.Start
	if _, err := p.expect(token.LBRACK); err != nil {
		return indexTrailer{}, err
	}
	parts, colons, err := p.parseSliceParts()
	if err != nil {
		return indexTrailer{}, err
	}
	if _, err := p.expect(token.RBRACK); err != nil {
		return indexTrailer{}, err
	}
	if colons == 0 {
		if len(parts) != 1 {
			return indexTrailer{}, p.fail(loc, "expected 1 expression, found %d", len(parts))
		}
		return indexTrailer{opKind: token.LBRACK, node: parts[0]}, nil
	}
	sl := &ast.SliceNode{Loc: loc}
	if len(parts) > 0 {
		sl.SliceStart = parts[0]
	}
	if len(parts) > 1 {
		sl.Stop = parts[1]
	}
	if len(parts) > 2 {
		sl.Step = parts[2]
	}
	if len(parts) > 3 {
		return indexTrailer{}, p.fail(loc, "expected 1 expression, found %d", len(parts))
	}
	return indexTrailer{opKind: token.COLON, node: sl}, nil
}

// parseSliceParts parses a list body (NEWLINE* (expr ((NEWLINE|',')
// NEWLINE*)?)*) split into colon-delimited segments. Each segment holds
// the expressions found before the next colon (or the closing ']');
// when colons == 0 there is exactly one segment covering the whole
// bracket. An empty segment is recorded as nil; a segment with more than
// one expression fails here with "expected 1 expression, found N", and
// an empty index with no colon is reported by the caller.
func (p *Parser) parseSliceParts() ([]ast.Node, int, error) {
	var parts []ast.Node
	var cur []ast.Node
	colons := 0
	flush := func() error {
		switch len(cur) {
		case 0:
			parts = append(parts, nil)
		case 1:
			parts = append(parts, cur[0])
		default:
			return p.fail(p.next.Start, "expected 1 expression, found %d", len(cur))
		}
		cur = nil
		return nil
	}
	if err := p.skipNewlines(); err != nil {
		return nil, 0, err
	}
	for p.next.Kind != token.RBRACK {
		if p.next.Kind == token.COLON {
			if err := flush(); err != nil {
				return nil, 0, err
			}
			colons++
			if err := p.advance(); err != nil {
				return nil, 0, err
			}
			if err := p.skipNewlines(); err != nil {
				return nil, 0, err
			}
			continue
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, 0, err
		}
		cur = append(cur, e)
		if p.next.Kind == token.COMMA {
			if err := p.advance(); err != nil {
				return nil, 0, err
			}
		}
		if err := p.skipNewlines(); err != nil {
			return nil, 0, err
		}
	}
	if err := flush(); err != nil {
		return nil, 0, err
	}
	if colons == 0 && len(parts) == 1 && parts[0] == nil {
		return nil, 0, nil
	}
	return parts, colons, nil
}

func (p *Parser) parseAtom() (ast.Node, error) {
	switch p.next.Kind {
	case token.LCURLY:
		return p.parseMapping()
	case token.LBRACK:
		return p.parseList()
	case token.DOLLAR:
		loc := p.next.Start
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.LCURLY); err != nil {
			return nil, err
		}
		inner, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RCURLY); err != nil {
			return nil, err
		}
		return &ast.UnaryNode{Kind: token.DOLLAR, Operand: inner, Loc: loc}, nil
	case token.LPAREN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return inner, nil
	case token.STRING:
		t, err := p.parseStringRun()
		if err != nil {
			return nil, err
		}
		return &ast.TokenNode{Tok: t}, nil
	case token.WORD, token.INTEGER, token.FLOAT, token.COMPLEX, token.BACKTICK,
		token.TRUE, token.FALSE, token.NONE:
		t := p.next
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.TokenNode{Tok: t}, nil
	}
	return nil, p.fail(p.next.Start, "Unexpected token: %s", token.Repr(p.next.Kind))
}
