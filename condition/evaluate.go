package condition

import (
	"log/slog"
	"reflect"
	"strings"
	"time"
)

const (
	// DefaultMaxDepth bounds expression nesting; deeper trees evaluate false.
	DefaultMaxDepth = 10
	// DefaultPatternBudget is the advisory time budget for a single regex match.
	DefaultPatternBudget = 100 * time.Millisecond
)

// Config tunes an Evaluator. Zero fields take the package defaults.
type Config struct {
	MaxDepth      int
	PatternBudget time.Duration
	Logger        *slog.Logger
}

// Evaluator evaluates expression trees against a runtime context map.
// It is stateless after construction and safe for concurrent use.
type Evaluator struct {
	maxDepth      int
	patternBudget time.Duration
	logger        *slog.Logger
}

// NewEvaluator builds an Evaluator from cfg.
func NewEvaluator(cfg Config) *Evaluator {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.PatternBudget <= 0 {
		cfg.PatternBudget = DefaultPatternBudget
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Evaluator{
		maxDepth:      cfg.MaxDepth,
		patternBudget: cfg.PatternBudget,
		logger:        cfg.Logger,
	}
}

// Evaluate resolves the expression tree against ctx. A nil expression and
// an empty group both evaluate true; every failure mode evaluates false.
func (ev *Evaluator) Evaluate(expr *Expression, ctx map[string]any) bool {
	return ev.evaluate(expr, ctx, 0)
}

func (ev *Evaluator) evaluate(expr *Expression, ctx map[string]any, depth int) bool {
	if expr == nil {
		return true
	}
	if depth >= ev.maxDepth {
		return false
	}

	if expr.IsGroup() {
		return ev.evaluateGroup(expr, ctx, depth)
	}
	return ev.evaluateLeaf(expr, ctx)
}

func (ev *Evaluator) evaluateGroup(expr *Expression, ctx map[string]any, depth int) bool {
	if len(expr.Conditions) == 0 {
		return true
	}

	switch expr.Logic {
	case LogicOr:
		for i := range expr.Conditions {
			if ev.evaluate(&expr.Conditions[i], ctx, depth+1) {
				return true
			}
		}
		return false
	case LogicAnd, "":
		for i := range expr.Conditions {
			if !ev.evaluate(&expr.Conditions[i], ctx, depth+1) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (ev *Evaluator) evaluateLeaf(expr *Expression, ctx map[string]any) bool {
	actual, found := ResolveKey(expr.Key, ctx)

	switch expr.Operator {
	case OpExists:
		return found && actual != nil
	case OpNotExists:
		return !found || actual == nil
	}

	switch expr.Operator {
	case OpEquals:
		return Equal(actual, expr.Value)
	case OpNotEquals:
		return !Equal(actual, expr.Value)
	case OpContains:
		return contains(actual, expr.Value)
	case OpNotContains:
		return !contains(actual, expr.Value)
	case OpStartsWith:
		a, e, ok := bothStrings(actual, expr.Value)
		return ok && strings.HasPrefix(a, e)
	case OpEndsWith:
		a, e, ok := bothStrings(actual, expr.Value)
		return ok && strings.HasSuffix(a, e)
	case OpGreaterThan:
		a, e, ok := bothNumbers(actual, expr.Value)
		return ok && a > e
	case OpLessThan:
		a, e, ok := bothNumbers(actual, expr.Value)
		return ok && a < e
	case OpGreaterOrEqual:
		a, e, ok := bothNumbers(actual, expr.Value)
		return ok && a >= e
	case OpLessOrEqual:
		a, e, ok := bothNumbers(actual, expr.Value)
		return ok && a <= e
	case OpIn:
		list, ok := asList(expr.Value)
		return ok && listContains(list, actual)
	case OpNotIn:
		list, ok := asList(expr.Value)
		return ok && !listContains(list, actual)
	case OpMatches:
		a, p, ok := bothStrings(actual, expr.Value)
		return ok && ev.matchPattern(p, a)
	case OpIsTrue:
		b, ok := actual.(bool)
		return ok && b
	case OpIsFalse:
		b, ok := actual.(bool)
		return ok && !b
	default:
		// Unknown operators arriving from stored definitions soft-fail.
		return false
	}
}

// Equal compares two context values. Numbers compare by value regardless of
// the concrete numeric type the decoder produced; everything else compares
// by deep equality.
func Equal(a, b any) bool {
	if an, aok := asNumber(a); aok {
		if bn, bok := asNumber(b); bok {
			return an == bn
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func contains(actual, expected any) bool {
	switch v := actual.(type) {
	case string:
		s, ok := expected.(string)
		return ok && strings.Contains(v, s)
	default:
		if list, ok := asList(actual); ok {
			return listContains(list, expected)
		}
		return false
	}
}

func listContains(list []any, value any) bool {
	for _, item := range list {
		if Equal(item, value) {
			return true
		}
	}
	return false
}

func bothStrings(a, b any) (string, string, bool) {
	as, aok := a.(string)
	bs, bok := b.(string)
	return as, bs, aok && bok
}

func bothNumbers(a, b any) (float64, float64, bool) {
	an, aok := asNumber(a)
	bn, bok := asNumber(b)
	return an, bn, aok && bok
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func asList(v any) ([]any, bool) {
	switch list := v.(type) {
	case []any:
		return list, true
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}
