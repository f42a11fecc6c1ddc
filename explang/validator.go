package explang

import (
	"errors"
	"fmt"
)

// Validation failure categories.
var (
	ErrUnknownIdentifier = errors.New("unknown identifier")
	ErrUnknownFunction   = errors.New("unknown function")
	ErrArity             = errors.New("wrong number of arguments")
)

// ValidationError represents a reference in the tree that the scope cannot satisfy.
type ValidationError struct {
	Node    Node
	Name    string
	Kind    error
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

func (e ValidationError) Unwrap() error {
	return e.Kind
}

// Arity is the accepted argument count range of a function.
type Arity struct {
	Min int
	Max int
}

// Scope lists the names an expression may reference.
type Scope struct {
	Identifiers map[string]bool
	Functions   map[string]Arity
}

// NewScope builds a scope from identifier names and a function table.
func NewScope(identifiers []string, functions map[string]Arity) Scope {
	ids := make(map[string]bool, len(identifiers))
	for _, name := range identifiers {
		ids[name] = true
	}

	return Scope{Identifiers: ids, Functions: functions}
}

// Validate reports every identifier and call in n that scope does not allow,
// in tree order.
func Validate(n Node, scope Scope) []ValidationError {
	var errs []ValidationError

	Walk(n, func(node Node) bool {
		switch v := node.(type) {
		case *Ident:
			if !scope.Identifiers[v.Name] {
				errs = append(errs, ValidationError{
					Node:    v,
					Name:    v.Name,
					Kind:    ErrUnknownIdentifier,
					Message: fmt.Sprintf("unknown identifier %q at position %d", v.Name, v.At.Offset+1),
				})
			}
		case *Call:
			arity, ok := scope.Functions[v.Name]
			if !ok {
				errs = append(errs, ValidationError{
					Node:    v,
					Name:    v.Name,
					Kind:    ErrUnknownFunction,
					Message: fmt.Sprintf("unknown function %q at position %d", v.Name, v.At.Offset+1),
				})

				return true
			}

			if len(v.Args) < arity.Min || len(v.Args) > arity.Max {
				errs = append(errs, ValidationError{
					Node:    v,
					Name:    v.Name,
					Kind:    ErrArity,
					Message: fmt.Sprintf("function %q takes %s, got %d", v.Name, arity, len(v.Args)),
				})
			}
		}

		return true
	})

	return errs
}

func (a Arity) String() string {
	if a.Min == a.Max {
		if a.Min == 1 {
			return "1 argument"
		}

		return fmt.Sprintf("%d arguments", a.Min)
	}

	return fmt.Sprintf("%d to %d arguments", a.Min, a.Max)
}
