package evaluator

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrUnknownIdentifier = errors.New("unknown identifier")
	ErrArity             = errors.New("arity mismatch")
	ErrSyntax            = errors.New("syntax error")
	ErrNotNumeric        = errors.New("result is not numeric")
	ErrMissingBinding    = errors.New("missing binding")
	ErrUnknownBackend    = errors.New("unknown evaluator backend")
)

// EvaluationError is returned by every evaluator failure. Err is one of the
// sentinel errors above so callers can branch with errors.Is.
type EvaluationError struct {
	Expr   string
	Reason string
	Err    error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate %q: %s", e.Expr, e.Reason)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

func newError(expr string, kind error, reason string) *EvaluationError {
	return &EvaluationError{Expr: expr, Reason: reason, Err: kind}
}
