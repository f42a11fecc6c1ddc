package explang

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shibukawa/snapplot/tokenizer"
)

// ErrInvalidExpression indicates that an expression string could not be parsed.
var ErrInvalidExpression = errors.New("explang: invalid expression")

// Parse parses an arithmetic expression over numbers, identifiers, calls and
// the operators + - * / % ^ (** is accepted as ^). Relational and logical
// operators are rejected; callers split relations before parsing each side.
//
// Precedence from loosest to tightest: additive, multiplicative, unary sign,
// power. Power is right-associative, so -x^2 is -(x^2) and 2^3^2 is 2^(3^2).
func Parse(expr string) (Node, error) {
	tokens, err := tokenizer.NewMathTokenizer(expr).AllTokens()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExpression, err)
	}

	return ParseTokens(tokens)
}

// ParseTokens parses an already tokenized expression. The slice may or may
// not end with an EOF token.
func ParseTokens(tokens []tokenizer.Token) (Node, error) {
	p := &parser{tokens: tokens}

	if p.peek().Type == tokenizer.EOF {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidExpression)
	}

	n, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.Type != tokenizer.EOF {
		return nil, p.unexpected(tok)
	}

	return n, nil
}

type parser struct {
	tokens []tokenizer.Token
	pos    int
}

func (p *parser) peek() tokenizer.Token {
	if p.pos >= len(p.tokens) {
		return tokenizer.Token{Type: tokenizer.EOF}
	}

	return p.tokens[p.pos]
}

func (p *parser) next() tokenizer.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}

	return tok
}

func (p *parser) unexpected(tok tokenizer.Token) error {
	if tok.Type == tokenizer.EOF {
		return fmt.Errorf("%w: unexpected end of expression", ErrInvalidExpression)
	}

	return fmt.Errorf("%w: unexpected token '%s' at position %d", ErrInvalidExpression, tok.Value, tok.Position.Offset+1)
}

func (p *parser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok.Type != tokenizer.PLUS && tok.Type != tokenizer.MINUS {
			return left, nil
		}

		p.next()

		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}

		left = &Binary{Op: tok.Value, Left: left, Right: right, At: positionOf(tok)}
	}
}

func (p *parser) parseMultiplicative() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok.Type != tokenizer.MULTIPLY && tok.Type != tokenizer.DIVIDE && tok.Type != tokenizer.MODULO {
			return left, nil
		}

		p.next()

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		left = &Binary{Op: tok.Value, Left: left, Right: right, At: positionOf(tok)}
	}
}

func (p *parser) parseUnary() (Node, error) {
	tok := p.peek()
	if tok.Type == tokenizer.MINUS || tok.Type == tokenizer.PLUS {
		p.next()

		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &Unary{Op: tok.Value, Operand: operand, At: positionOf(tok)}, nil
	}

	return p.parsePower()
}

func (p *parser) parsePower() (Node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	tok := p.peek()
	if tok.Type != tokenizer.POWER {
		return base, nil
	}

	p.next()

	// the exponent may carry its own sign: 2^-x
	exponent, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	return &Binary{Op: "^", Left: base, Right: exponent, At: positionOf(tok)}, nil
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.next()

	switch tok.Type {
	case tokenizer.NUMBER:
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid number '%s' at position %d", ErrInvalidExpression, tok.Value, tok.Position.Offset+1)
		}

		return &Number{Value: v, Raw: tok.Value, At: positionOf(tok)}, nil
	case tokenizer.IDENTIFIER:
		if p.peek().Type == tokenizer.OPENED_PARENS {
			return p.parseCall(tok)
		}

		return &Ident{Name: tok.Value, At: positionOf(tok)}, nil
	case tokenizer.OPENED_PARENS:
		inner, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}

		if closing := p.next(); closing.Type != tokenizer.CLOSED_PARENS {
			return nil, fmt.Errorf("%w: expected ')' at position %d", ErrInvalidExpression, closing.Position.Offset+1)
		}

		return inner, nil
	default:
		return nil, p.unexpected(tok)
	}
}

func (p *parser) parseCall(name tokenizer.Token) (Node, error) {
	p.next() // (

	call := &Call{Name: name.Value, At: positionOf(name)}

	if p.peek().Type == tokenizer.CLOSED_PARENS {
		p.next()
		return call, nil
	}

	for {
		arg, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}

		call.Args = append(call.Args, arg)

		switch tok := p.next(); tok.Type {
		case tokenizer.COMMA:
			continue
		case tokenizer.CLOSED_PARENS:
			return call, nil
		default:
			return nil, p.unexpected(tok)
		}
	}
}
