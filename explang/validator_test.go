package explang

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var testFunctions = map[string]Arity{
	"sin": {Min: 1, Max: 1},
	"log": {Min: 1, Max: 2},
}

func TestValidate_Success(t *testing.T) {
	scope := NewScope([]string{"x", "a", "PI"}, testFunctions)

	cases := []string{
		"sin(x)",
		"a*x+PI",
		"log(x)",
		"log(x, 2)",
		"2^3",
	}

	for _, expr := range cases {
		n, err := Parse(expr)
		if !assert.NoError(t, err, expr) {
			continue
		}

		assert.Empty(t, Validate(n, scope), expr)
	}
}

func TestValidate_Errors(t *testing.T) {
	scope := NewScope([]string{"x"}, testFunctions)

	tests := []struct {
		name  string
		input string
		kind  error
		names []string
	}{
		{name: "unknown identifier", input: "x+b", kind: ErrUnknownIdentifier, names: []string{"b"}},
		{name: "unknown function", input: "exp(x)", kind: ErrUnknownFunction, names: []string{"exp"}},
		{name: "variable used as call", input: "a(x+1)", kind: ErrUnknownFunction, names: []string{"a"}},
		{name: "too few", input: "sin()", kind: ErrArity, names: []string{"sin"}},
		{name: "too many", input: "log(x,2,3)", kind: ErrArity, names: []string{"log"}},
		{name: "several", input: "u*n*k", kind: ErrUnknownIdentifier, names: []string{"u", "n", "k"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Parse(tt.input)
			if !assert.NoError(t, err) {
				return
			}

			errs := Validate(n, scope)
			if !assert.Len(t, errs, len(tt.names)) {
				return
			}

			for i, e := range errs {
				assert.Equal(t, tt.names[i], e.Name)
				assert.True(t, errors.Is(e, tt.kind))
				assert.NotEmpty(t, e.Error())
			}
		})
	}
}

func TestArityString(t *testing.T) {
	assert.Equal(t, "1 argument", Arity{Min: 1, Max: 1}.String())
	assert.Equal(t, "2 arguments", Arity{Min: 2, Max: 2}.String())
	assert.Equal(t, "1 to 2 arguments", Arity{Min: 1, Max: 2}.String())
}
