package tokenizer

import (
	"fmt"
	"iter"
	"strings"
	"unicode"
)

// TokenIterator uses Go 1.24 iterator pattern
type TokenIterator iter.Seq2[Token, error]

// MathTokenizer is a tokenizer that returns an iterator
type MathTokenizer struct {
	input   string
	options TokenizerOptions
}

// TokenizerOptions are options for the tokenizer
type TokenizerOptions struct {
	SkipWhitespace bool
}

// NewMathTokenizer creates a new MathTokenizer
func NewMathTokenizer(input string, options ...TokenizerOptions) *MathTokenizer {
	opts := TokenizerOptions{
		SkipWhitespace: true,
	}
	if len(options) > 0 {
		opts = options[0]
	}

	return &MathTokenizer{
		input:   input,
		options: opts,
	}
}

// Tokens returns an iterator of tokens
func (t *MathTokenizer) Tokens() TokenIterator {
	return func(yield func(Token, error) bool) {
		tokenizer := &tokenizer{
			input:  []rune(t.input),
			line:   1,
			column: 1,
		}

		for {
			token, err := tokenizer.nextToken()
			if err != nil {
				if !yield(token, err) {
					return
				}

				continue
			}

			if token.Type == EOF {
				yield(token, nil)
				return
			}

			if t.options.SkipWhitespace && token.Type == WHITESPACE {
				continue
			}

			if !yield(token, nil) {
				return
			}
		}
	}
}

// AllTokens gets all tokens as a slice. Tokens that failed to scan are kept
// (as OTHER or NUMBER) so callers can still inspect the text; the last
// error is returned alongside.
func (t *MathTokenizer) AllTokens() ([]Token, error) {
	tokens := make([]Token, 0, len(t.input)+1)

	var lastError error

	for token, err := range t.Tokens() {
		if err != nil {
			lastError = err
		}

		tokens = append(tokens, token)
		if token.Type == EOF {
			break
		}
	}

	return tokens, lastError
}

// Internal tokenizer implementation
type tokenizer struct {
	input    []rune
	position int
	line     int
	column   int
}

func (t *tokenizer) current() rune {
	if t.position >= len(t.input) {
		return 0
	}

	return t.input[t.position]
}

func (t *tokenizer) peek() rune {
	if t.position+1 >= len(t.input) {
		return 0
	}

	return t.input[t.position+1]
}

func (t *tokenizer) advance() {
	if t.position >= len(t.input) {
		return
	}

	if t.input[t.position] == '\n' {
		t.line++
		t.column = 1
	} else {
		t.column++
	}

	t.position++
}

func (t *tokenizer) position0() Position {
	return Position{Line: t.line, Column: t.column, Offset: t.position}
}

// single emits a token made of n runes starting at the current position.
func (t *tokenizer) single(tokenType TokenType, n int) Token {
	pos := t.position0()
	end := min(t.position+n, len(t.input))
	value := string(t.input[t.position:end])

	for range n {
		t.advance()
	}

	return Token{Type: tokenType, Value: value, Position: pos}
}

// nextToken gets the next token
func (t *tokenizer) nextToken() (Token, error) {
	c := t.current()

	switch {
	case t.position >= len(t.input):
		return Token{Type: EOF, Position: t.position0()}, nil
	case unicode.IsSpace(c):
		return t.readWhitespace(), nil
	case c == '(':
		return t.single(OPENED_PARENS, 1), nil
	case c == ')':
		return t.single(CLOSED_PARENS, 1), nil
	case c == ',':
		return t.single(COMMA, 1), nil
	case c == '+':
		return t.single(PLUS, 1), nil
	case c == '-':
		return t.single(MINUS, 1), nil
	case c == '*':
		if t.peek() == '*' {
			return t.single(POWER, 2), nil
		}

		return t.single(MULTIPLY, 1), nil
	case c == '/':
		return t.single(DIVIDE, 1), nil
	case c == '%':
		return t.single(MODULO, 1), nil
	case c == '^':
		return t.single(POWER, 1), nil
	case c == '=':
		if t.peek() == '=' {
			return t.single(DOUBLE_EQUAL, 2), nil
		}

		return t.single(EQUAL, 1), nil
	case c == '<':
		if t.peek() == '=' {
			return t.single(LESS_EQUAL, 2), nil
		}

		return t.single(LESS_THAN, 1), nil
	case c == '>':
		if t.peek() == '=' {
			return t.single(GREATER_EQUAL, 2), nil
		}

		return t.single(GREATER_THAN, 1), nil
	case c == '!':
		if t.peek() == '=' {
			return t.single(NOT_EQUAL, 2), nil
		}

		return t.single(NOT, 1), nil
	case c == '&' && t.peek() == '&':
		return t.single(AND, 2), nil
	case c == '|' && t.peek() == '|':
		return t.single(OR, 2), nil
	case unicode.IsLetter(c) || c == '_':
		return t.readIdentifier(), nil
	case unicode.IsDigit(c) || (c == '.' && unicode.IsDigit(t.peek())):
		return t.readNumber()
	default:
		token := t.single(OTHER, 1)
		return token, fmt.Errorf("%w '%s' at %s", ErrUnexpectedCharacter, token.Value, token.Position)
	}
}

// readWhitespace reads whitespace characters
func (t *tokenizer) readWhitespace() Token {
	pos := t.position0()

	var builder strings.Builder
	for t.position < len(t.input) && unicode.IsSpace(t.current()) {
		builder.WriteRune(t.current())
		t.advance()
	}

	return Token{Type: WHITESPACE, Value: builder.String(), Position: pos}
}

// readIdentifier reads a maximal run of letters, digits and underscores
// starting with a letter. Normalized input separates single-letter
// variables with '*', so a run here is a function name, PI or a variable.
func (t *tokenizer) readIdentifier() Token {
	pos := t.position0()

	var builder strings.Builder
	for t.position < len(t.input) {
		c := t.current()
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' {
			break
		}

		builder.WriteRune(c)
		t.advance()
	}

	return Token{Type: IDENTIFIER, Value: builder.String(), Position: pos}
}

// readNumber reads a decimal literal with an optional fraction.
func (t *tokenizer) readNumber() (Token, error) {
	pos := t.position0()
	dots := 0

	var builder strings.Builder
	for t.position < len(t.input) {
		c := t.current()
		if c == '.' {
			dots++
		} else if !unicode.IsDigit(c) {
			break
		}

		builder.WriteRune(c)
		t.advance()
	}

	token := Token{Type: NUMBER, Value: builder.String(), Position: pos}
	if dots > 1 {
		return token, fmt.Errorf("%w '%s' at %s", ErrInvalidNumber, token.Value, pos)
	}

	return token, nil
}
