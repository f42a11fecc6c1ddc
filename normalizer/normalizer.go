// Package normalizer rewrites calculator-style shorthand (`2x`, `sinx`, `ax^2`, `π`)
// into the explicit form accepted by the evaluator: explicit multiplication,
// explicit call parentheses, canonical constants and balanced grouping.
//
// Normalize is total and idempotent: Normalize(Normalize(s)) == Normalize(s).
package normalizer

import (
	"sort"
	"strings"
	"unicode"
)

// Functions is the closed function vocabulary recognized by the shorthand
// expansion. The letter-pair multiplication heuristic depends on this set
// being fixed.
var Functions = []string{
	"sin", "cos", "tan", "sec", "csc", "cot",
	"log", "ln", "sqrt", "abs",
	"asin", "acos", "atan",
}

// ConstantPI is the evaluator's spelling of π.
const ConstantPI = "PI"

// functionsByLength holds the vocabulary sorted longest first so the greedy
// word split prefers "asin" over "a" + "sin".
var functionsByLength = func() []string {
	names := append([]string(nil), Functions...)
	sort.SliceStable(names, func(i, j int) bool {
		return len(names[i]) > len(names[j])
	})

	return names
}()

// IsFunction reports whether name belongs to the function vocabulary.
func IsFunction(name string) bool {
	for _, fn := range Functions {
		if fn == name {
			return true
		}
	}

	return false
}

type segmentKind int

const (
	segFunction segmentKind = iota
	segConstant
	segLetter
	segNumber
	segOpen
	segClose
	segOther
)

type segment struct {
	kind segmentKind
	text string
}

func (s segment) isWord() bool {
	return s.kind == segFunction || s.kind == segConstant || s.kind == segLetter
}

func (s segment) isAtom() bool {
	return s.kind == segConstant || s.kind == segLetter || s.kind == segNumber
}

// Normalize applies the rewrite passes in order. It never fails; ambiguous
// input resolves through the deterministic heuristics below.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	s := stripWhitespace(raw)
	s = foldAxes(s)

	segs := split(s)
	segs = expandCalls(segs)
	s = joinWithMultiplication(segs)

	return balance(s)
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}

		return r
	}, s)
}

func foldAxes(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case 'X':
			return 'x'
		case 'Y':
			return 'y'
		}

		return r
	}, s)
}

func isASCIILetter(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// split cuts the text into segments. Letter runs are split greedily into
// words: the longest vocabulary function, then "pi" in any case, then a
// single letter.
func split(s string) []segment {
	runes := []rune(s)
	segs := make([]segment, 0, len(runes))

	for i := 0; i < len(runes); {
		r := runes[i]

		switch {
		case r == 'π':
			segs = append(segs, segment{kind: segConstant, text: ConstantPI})
			i++
		case isASCIILetter(r):
			start := i
			for i < len(runes) && isASCIILetter(runes[i]) {
				i++
			}

			segs = append(segs, splitWord(string(runes[start:i]))...)
		case isDigit(r) || r == '.':
			start := i
			for i < len(runes) && (isDigit(runes[i]) || runes[i] == '.') {
				i++
			}

			segs = append(segs, segment{kind: segNumber, text: string(runes[start:i])})
		case r == '(':
			segs = append(segs, segment{kind: segOpen, text: "("})
			i++
		case r == ')':
			segs = append(segs, segment{kind: segClose, text: ")"})
			i++
		default:
			segs = append(segs, segment{kind: segOther, text: string(r)})
			i++
		}
	}

	return segs
}

func splitWord(run string) []segment {
	var segs []segment

	for len(run) > 0 {
		if fn := matchFunction(run); fn != "" {
			segs = append(segs, segment{kind: segFunction, text: fn})
			run = run[len(fn):]

			continue
		}

		if len(run) >= 2 && strings.EqualFold(run[:2], "pi") {
			segs = append(segs, segment{kind: segConstant, text: ConstantPI})
			run = run[2:]

			continue
		}

		segs = append(segs, segment{kind: segLetter, text: run[:1]})
		run = run[1:]
	}

	return segs
}

func matchFunction(run string) string {
	for _, fn := range functionsByLength {
		if strings.HasPrefix(run, fn) {
			return fn
		}
	}

	return ""
}

// expandCalls turns a function followed directly by an atom or another
// function into an explicit call: sin x -> sin ( x ).
func expandCalls(segs []segment) []segment {
	out := make([]segment, 0, len(segs))

	for i := 0; i < len(segs); {
		call, next := expandCall(segs, i)
		out = append(out, call...)
		i = next
	}

	return out
}

func expandCall(segs []segment, i int) ([]segment, int) {
	if segs[i].kind != segFunction || i+1 >= len(segs) {
		return segs[i : i+1], i + 1
	}

	next := segs[i+1]

	switch {
	case next.isAtom():
		return []segment{
			segs[i],
			{kind: segOpen, text: "("},
			next,
			{kind: segClose, text: ")"},
		}, i + 2
	case next.kind == segFunction && i+2 < len(segs) && segs[i+2].kind == segOpen:
		// sincos(x) -> sin(cos(x)); an unclosed argument list runs to the end
		// and is closed by balance
		end := matchingClose(segs, i+2)

		call := make([]segment, 0, end-i+2)
		call = append(call, segs[i], segment{kind: segOpen, text: "("}, next, segs[i+2])
		call = append(call, expandCalls(segs[i+3:end])...)

		if end < len(segs) {
			call = append(call, segs[end], segment{kind: segClose, text: ")"})
			return call, end + 1
		}

		return call, end
	case next.kind == segFunction:
		inner, end := expandCall(segs, i+1)
		if len(inner) == 1 {
			// inner function has nothing to apply to; leave both untouched
			return segs[i : i+1], i + 1
		}

		call := make([]segment, 0, len(inner)+3)
		call = append(call, segs[i], segment{kind: segOpen, text: "("})
		call = append(call, inner...)
		call = append(call, segment{kind: segClose, text: ")"})

		return call, end
	default:
		return segs[i : i+1], i + 1
	}
}

// matchingClose returns the index of the ')' closing segs[open], or
// len(segs) when it is never closed.
func matchingClose(segs []segment, open int) int {
	depth := 0

	for i := open; i < len(segs); i++ {
		switch segs[i].kind {
		case segOpen:
			depth++
		case segClose:
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return len(segs)
}

// joinWithMultiplication inserts '*' wherever two segments are juxtaposed
// as implied multiplication.
func joinWithMultiplication(segs []segment) string {
	var b strings.Builder

	for i, seg := range segs {
		if i > 0 && needsMultiplication(segs[i-1], seg) {
			b.WriteByte('*')
		}

		b.WriteString(seg.text)
	}

	return b.String()
}

func needsMultiplication(prev, cur segment) bool {
	switch prev.kind {
	case segNumber:
		return cur.isWord() || cur.kind == segOpen
	case segConstant, segLetter:
		return cur.isWord() || cur.kind == segNumber
	case segFunction:
		// a bare function name left unexpanded is followed by an operator
		// or the end; nothing juxtaposed survives expandCalls
		return false
	case segClose:
		return cur.isWord() || cur.kind == segNumber || cur.kind == segOpen
	}

	return false
}

func balance(s string) string {
	open := strings.Count(s, "(")
	closing := strings.Count(s, ")")

	if open > closing {
		return s + strings.Repeat(")", open-closing)
	}

	return s
}
