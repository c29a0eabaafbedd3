package logic

import (
	"fmt"
	"strings"
)

// leafFunc evaluates a non-combinator operator. Leaf operators never recurse,
// which keeps the dispatch table free of initialisation cycles.
type leafFunc func(op Operator, args []any, data map[string]any) (any, error)

var leafOperators = map[Operator]leafFunc{
	OpVar:                evalVar,
	OpEquals:             evalEquals,
	OpNotEquals:          evalNotEquals,
	OpGreaterThan:        numericComparison(func(a, b float64) bool { return a > b }),
	OpLessThan:           numericComparison(func(a, b float64) bool { return a < b }),
	OpGreaterThanOrEqual: numericComparison(func(a, b float64) bool { return a >= b }),
	OpLessThanOrEqual:    numericComparison(func(a, b float64) bool { return a <= b }),
	OpIncludes:           evalIncludes,
	OpStartsWith:         stringComparison(strings.HasPrefix),
	OpEndsWith:           stringComparison(strings.HasSuffix),
	OpArrayLength:        evalArrayLength,
	OpArrayIsEmpty:       evalArrayIsEmpty,
}

func fieldArg(op Operator, args []any) (string, error) {
	if len(args) == 0 {
		return "", &InvalidRuleError{Operator: op, Reason: "missing field argument"}
	}
	field, ok := args[0].(string)
	if !ok {
		return "", &InvalidRuleError{Operator: op, Reason: fmt.Sprintf("field argument must be a string, got %T", args[0])}
	}
	return field, nil
}

// valueArg returns the argument at idx, or nil when the rule omits it.
func valueArg(args []any, idx int) any {
	if idx < len(args) {
		return args[idx]
	}
	return nil
}

func fieldAndValue(op Operator, args []any, data map[string]any) (any, any, error) {
	field, err := fieldArg(op, args)
	if err != nil {
		return nil, nil, err
	}
	current, _ := lookup(data, field)
	return current, valueArg(args, 1), nil
}

func evalVar(op Operator, args []any, data map[string]any) (any, error) {
	field, err := fieldArg(op, args)
	if err != nil {
		return nil, err
	}
	value, _ := lookup(data, field)
	return value, nil
}

func evalEquals(op Operator, args []any, data map[string]any) (any, error) {
	current, want, err := fieldAndValue(op, args, data)
	if err != nil {
		return nil, err
	}
	return strictEqual(current, want), nil
}

func evalNotEquals(op Operator, args []any, data map[string]any) (any, error) {
	current, want, err := fieldAndValue(op, args, data)
	if err != nil {
		return nil, err
	}
	return !strictEqual(current, want), nil
}

func numericComparison(compare func(a, b float64) bool) leafFunc {
	return func(op Operator, args []any, data map[string]any) (any, error) {
		current, want, err := fieldAndValue(op, args, data)
		if err != nil {
			return nil, err
		}
		a, ok := toNumber(current)
		if !ok {
			return false, nil
		}
		b, ok := toNumber(want)
		if !ok {
			return false, nil
		}
		return compare(a, b), nil
	}
}

func stringComparison(compare func(s, affix string) bool) leafFunc {
	return func(op Operator, args []any, data map[string]any) (any, error) {
		current, want, err := fieldAndValue(op, args, data)
		if err != nil {
			return nil, err
		}
		s, ok := current.(string)
		if !ok {
			return false, nil
		}
		affix, ok := want.(string)
		if !ok {
			return false, nil
		}
		return compare(s, affix), nil
	}
}

func evalIncludes(op Operator, args []any, data map[string]any) (any, error) {
	current, want, err := fieldAndValue(op, args, data)
	if err != nil {
		return nil, err
	}
	if s, ok := current.(string); ok {
		sub, ok := want.(string)
		return ok && strings.Contains(s, sub), nil
	}
	seq, ok := asSequence(current)
	if !ok {
		return false, nil
	}
	for _, item := range seq {
		if sameValueZero(item, want) {
			return true, nil
		}
	}
	return false, nil
}

func evalArrayLength(op Operator, args []any, data map[string]any) (any, error) {
	field, err := fieldArg(op, args)
	if err != nil {
		return nil, err
	}
	value, _ := lookup(data, field)
	seq, ok := asSequence(value)
	if !ok {
		return float64(0), nil
	}
	return float64(len(seq)), nil
}

func evalArrayIsEmpty(op Operator, args []any, data map[string]any) (any, error) {
	field, err := fieldArg(op, args)
	if err != nil {
		return nil, err
	}
	value, _ := lookup(data, field)
	seq, ok := asSequence(value)
	return !ok || len(seq) == 0, nil
}
