package relation

import (
	"slices"
	"strings"

	pc "github.com/shibukawa/parsercombinator"
	tok "github.com/shibukawa/snapplot/tokenizer"
)

type token = pc.Token[tok.Token]

// Predicate is one entry of the ordered classification table.
type Predicate struct {
	Name  string
	Kind  Kind
	Match func(normalized string) (Relation, bool)
}

// Predicates returns the classification table in priority order. Classify
// uses the first predicate that matches.
func Predicates() []Predicate {
	return []Predicate{
		{Name: "compound inequality", Kind: KindCompoundInequality, Match: tokenPredicate(matchCompound)},
		{Name: "y inequality", Kind: KindYInequality, Match: tokenPredicate(matchYInequality)},
		{Name: "x inequality", Kind: KindXInequality, Match: tokenPredicate(matchXInequality)},
		{Name: "implicit relation", Kind: KindImplicit, Match: tokenPredicate(matchImplicit)},
	}
}

// Classify assigns exactly one relation kind to a normalized expression.
// It never fails: text the predicates do not recognize, including text the
// tokenizer rejects, is an explicit function left for the evaluator to judge.
func Classify(normalized string) Relation {
	for _, p := range Predicates() {
		if r, ok := p.Match(normalized); ok {
			return r
		}
	}

	return Explicit{Expr: normalized}
}

var (
	comparator = primitive("comparator", tok.LESS_THAN, tok.LESS_EQUAL, tok.GREATER_THAN, tok.GREATER_EQUAL)
	logicalAnd = primitive("and", tok.AND)
	equality   = primitive("equality", tok.EQUAL, tok.DOUBLE_EQUAL)
	// relational matches anything that makes a side more than arithmetic
	relational = primitive("relational",
		tok.LESS_THAN, tok.LESS_EQUAL, tok.GREATER_THAN, tok.GREATER_EQUAL,
		tok.EQUAL, tok.DOUBLE_EQUAL, tok.NOT_EQUAL, tok.AND, tok.OR, tok.NOT)

	yHead = pc.Seq(axis("y"), comparator)
	xHead = pc.Seq(axis("x"), comparator)
)

func primitive(typeName string, types ...tok.TokenType) pc.Parser[tok.Token] {
	return func(pctx *pc.ParseContext[tok.Token], tokens []token) (int, []token, error) {
		if len(tokens) > 0 && slices.Contains(types, tokens[0].Val.Type) {
			return 1, tokens[:1], nil
		}

		return 0, nil, pc.ErrNotMatch
	}
}

// axis matches the plot axis identifier. Normalized text already folds case;
// folding again keeps the predicates usable on raw text.
func axis(name string) pc.Parser[tok.Token] {
	return func(pctx *pc.ParseContext[tok.Token], tokens []token) (int, []token, error) {
		if len(tokens) > 0 && tokens[0].Val.Type == tok.IDENTIFIER && strings.EqualFold(tokens[0].Val.Value, name) {
			return 1, tokens[:1], nil
		}

		return 0, nil, pc.ErrNotMatch
	}
}

func tokenPredicate(match func(pctx *pc.ParseContext[tok.Token], tokens []token) (Relation, bool)) func(string) (Relation, bool) {
	return func(normalized string) (Relation, bool) {
		tokens, err := tok.NewMathTokenizer(normalized).AllTokens()
		if err != nil {
			return nil, false
		}

		return match(pc.NewParseContext[tok.Token](), toParserTokens(tokens))
	}
}

func toParserTokens(tokens []tok.Token) []token {
	results := make([]token, 0, len(tokens))

	for _, t := range tokens {
		if t.Type == tok.EOF {
			break
		}

		results = append(results, token{
			Type: "raw",
			Pos: &pc.Pos{
				Line:  t.Position.Line,
				Col:   t.Position.Column,
				Index: t.Position.Offset,
			},
			Val: t,
			Raw: t.Value,
		})
	}

	return results
}

func text(tokens []token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Raw)
	}

	return b.String()
}

func comparatorOf(t token) Comparator {
	switch t.Val.Type {
	case tok.LESS_THAN:
		return LessThan
	case tok.LESS_EQUAL:
		return LessEqual
	case tok.GREATER_THAN:
		return GreaterThan
	default:
		return GreaterEqual
	}
}

// arithmetic reports whether tokens form a non-empty side with no relational
// or logical operator.
func arithmetic(pctx *pc.ParseContext[tok.Token], tokens []token) bool {
	if len(tokens) == 0 {
		return false
	}

	_, _, _, _, found := pc.Find(pctx, relational, tokens)

	return !found
}

func references(tokens []token, names ...string) bool {
	for _, t := range tokens {
		if t.Val.Type != tok.IDENTIFIER {
			continue
		}

		for _, name := range names {
			if strings.EqualFold(t.Val.Value, name) {
				return true
			}
		}
	}

	return false
}

// clause matches "<head> <cmp> side" and returns the comparator and side.
func clause(pctx *pc.ParseContext[tok.Token], head pc.Parser[tok.Token], tokens []token) (Comparator, []token, bool) {
	consume, matched, err := head(pctx, tokens)
	if err != nil {
		return 0, nil, false
	}

	return comparatorOf(matched[len(matched)-1]), tokens[consume:], true
}

// y <cmp> A && y <cmp> B, split on the first &&.
func matchCompound(pctx *pc.ParseContext[tok.Token], tokens []token) (Relation, bool) {
	op1, rest, ok := clause(pctx, yHead, tokens)
	if !ok {
		return nil, false
	}

	first, _, _, remained, found := pc.Find(pctx, logicalAnd, rest)
	if !found || !arithmetic(pctx, first) {
		return nil, false
	}

	op2, second, ok := clause(pctx, yHead, remained)
	if !ok || !arithmetic(pctx, second) {
		return nil, false
	}

	return CompoundInequality{
		First:  Clause{Op: op1, Expr: text(first)},
		Second: Clause{Op: op2, Expr: text(second)},
	}, true
}

// y <cmp> RHS
func matchYInequality(pctx *pc.ParseContext[tok.Token], tokens []token) (Relation, bool) {
	op, rhs, ok := clause(pctx, yHead, tokens)
	if !ok || !arithmetic(pctx, rhs) {
		return nil, false
	}

	return YInequality{Op: op, RHS: text(rhs)}, true
}

// x <cmp> THRESHOLD, THRESHOLD free of both axes
func matchXInequality(pctx *pc.ParseContext[tok.Token], tokens []token) (Relation, bool) {
	op, threshold, ok := clause(pctx, xHead, tokens)
	if !ok || !arithmetic(pctx, threshold) || references(threshold, "x", "y") {
		return nil, false
	}

	return XInequality{Op: op, Threshold: text(threshold)}, true
}

// lhs = rhs with exactly one equality and nothing else relational, or a bare
// arithmetic expression in y read as F(x, y) = 0. An equation need not
// reference both axes: x=3 and 0=0 are implicit too.
func matchImplicit(pctx *pc.ParseContext[tok.Token], tokens []token) (Relation, bool) {
	lhs, _, _, rhs, found := pc.Find(pctx, equality, tokens)
	if !found {
		if arithmetic(pctx, tokens) && references(tokens, "y") {
			return Implicit{Residual: text(tokens)}, true
		}

		return nil, false
	}

	if !arithmetic(pctx, lhs) || !arithmetic(pctx, rhs) {
		return nil, false
	}

	if len(lhs) == 1 && references(lhs, "y") && !references(rhs, "y") {
		return Explicit{Expr: text(rhs)}, true
	}

	return Implicit{Residual: "(" + text(lhs) + ")-(" + text(rhs) + ")"}, true
}
