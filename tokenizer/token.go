package tokenizer

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrUnexpectedCharacter = errors.New("unexpected character")
	ErrInvalidNumber       = errors.New("invalid number format")
)

// TokenType represents the type of a token
type TokenType int

const (
	// Basic tokens
	EOF TokenType = iota
	WHITESPACE
	IDENTIFIER    // variables, constants, function names
	NUMBER        // numeric literals
	OPENED_PARENS // (
	CLOSED_PARENS // )
	COMMA         // ,

	// Arithmetic operators
	PLUS     // +
	MINUS    // -
	MULTIPLY // *
	DIVIDE   // /
	MODULO   // %
	POWER    // ^ or **

	// Relational operators
	EQUAL         // =
	DOUBLE_EQUAL  // ==
	NOT_EQUAL     // !=
	LESS_THAN     // <
	GREATER_THAN  // >
	LESS_EQUAL    // <=
	GREATER_EQUAL // >=

	// Logical operators
	AND // &&
	OR  // ||
	NOT // !

	// Others
	OTHER
)

var tokenTypeNames = map[TokenType]string{
	EOF:           "EOF",
	WHITESPACE:    "WHITESPACE",
	IDENTIFIER:    "IDENTIFIER",
	NUMBER:        "NUMBER",
	OPENED_PARENS: "OPENED_PARENS",
	CLOSED_PARENS: "CLOSED_PARENS",
	COMMA:         "COMMA",
	PLUS:          "PLUS",
	MINUS:         "MINUS",
	MULTIPLY:      "MULTIPLY",
	DIVIDE:        "DIVIDE",
	MODULO:        "MODULO",
	POWER:         "POWER",
	EQUAL:         "EQUAL",
	DOUBLE_EQUAL:  "DOUBLE_EQUAL",
	NOT_EQUAL:     "NOT_EQUAL",
	LESS_THAN:     "LESS_THAN",
	GREATER_THAN:  "GREATER_THAN",
	LESS_EQUAL:    "LESS_EQUAL",
	GREATER_EQUAL: "GREATER_EQUAL",
	AND:           "AND",
	OR:            "OR",
	NOT:           "NOT",
	OTHER:         "OTHER",
}

// String returns the string representation of TokenType
func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}

	return "UNKNOWN"
}

// IsComparison reports whether the token type is one of < <= > >=.
func (t TokenType) IsComparison() bool {
	switch t {
	case LESS_THAN, LESS_EQUAL, GREATER_THAN, GREATER_EQUAL:
		return true
	}

	return false
}

// IsRelational reports whether the token type compares two sides,
// including equality.
func (t TokenType) IsRelational() bool {
	switch t {
	case EQUAL, DOUBLE_EQUAL, NOT_EQUAL:
		return true
	}

	return t.IsComparison()
}

// Position represents a position in the source expression
type Position struct {
	Line   int
	Column int
	Offset int // rune offset, 0-based
}

// String returns "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a token
type Token struct {
	Type     TokenType
	Value    string
	Position Position
}

// String returns the string representation of Token
func (t Token) String() string {
	return t.Type.String() + ": " + t.Value
}
