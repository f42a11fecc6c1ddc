package variables

import (
	"math"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"sin(x)", nil},
		{"ax^2+bx+c", []string{"a", "b", "c"}},
		{"y>kx", []string{"k"}},
		{"2πr", []string{"r"}},
		{"e^x+PI", nil},
		{"Ax+a", []string{"A", "a"}},
		{"sqrtx+cosy", nil},
		{"unknownvar", []string{"a", "k", "n", "o", "r", "u", "v", "w"}},
		{"X^2+Y^2=r^2", []string{"r"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.input))
		})
	}
}

func TestRecompute(t *testing.T) {
	t.Run("retains previous value", func(t *testing.T) {
		prev := New(DefaultRange).With("a", 3)
		next := Recompute(prev, []string{"ax+1"})

		v, ok := next.Get("a")
		assert.True(t, ok)
		assert.Equal(t, 3.0, v)
	})

	t.Run("drops unreferenced names", func(t *testing.T) {
		prev := New(DefaultRange).With("a", 3)
		next := Recompute(prev, []string{"sin(x)"})

		_, ok := next.Get("a")
		assert.False(t, ok)
		assert.Equal(t, 0, next.Len())
	})

	t.Run("defaults new names to one", func(t *testing.T) {
		next := Recompute(New(DefaultRange).With("a", 3), []string{"a+b"})

		assert.Equal(t, []string{"a", "b"}, next.Names())

		b, _ := next.Get("b")
		assert.Equal(t, 1.0, b)
	})

	t.Run("union over expressions", func(t *testing.T) {
		next := Recompute(Environment{}, []string{"ax", "y>bx", "x<c"})
		assert.Equal(t, []string{"a", "b", "c"}, next.Names())
	})

	t.Run("previous snapshot untouched", func(t *testing.T) {
		prev := New(DefaultRange).With("a", 3)
		_ = Recompute(prev, []string{"b"})
		_ = prev.With("a", 5)

		v, _ := prev.Get("a")
		assert.Equal(t, 3.0, v)
	})
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  float64
	}{
		{"on step", 2.5, 2.5},
		{"rounds to step", 3.14159, 3.1},
		{"rounds up", 0.26, 0.3},
		{"negative", -1.23, -1.2},
		{"clamp high", 42, 10},
		{"clamp low", -42, -10},
		{"positive infinity", math.Inf(1), 10},
		{"nan uses default", math.NaN(), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultRange.Quantize(tt.input))
		})
	}
}

func TestEnvironment(t *testing.T) {
	env := FromMap(DefaultRange, map[string]float64{"b": 2, "a": 12})

	assert.Equal(t, []string{"a", "b"}, env.Names())

	a, _ := env.Get("a")
	assert.Equal(t, 10.0, a)

	bindings := env.Bindings()
	bindings["x"] = 1

	_, ok := env.Get("x")
	assert.False(t, ok)

	var zero Environment
	assert.Equal(t, DefaultRange, zero.Range())
	assert.Equal(t, 0, zero.Len())

	custom := New(Range{Min: 0, Max: 1, Step: 0.5, Default: 0})
	assert.Equal(t, 0.5, custom.With("k", 0.6).Bindings()["k"])

	assert.Equal(t, DefaultRange, New(Range{Min: 1, Max: 0, Step: 1}).Range())
}
