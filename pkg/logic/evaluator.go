package logic

import (
	"go.uber.org/zap"
)

// Evaluator resolves rules against field values. The zero value is not
// usable; construct one with New. Evaluators hold no per-call state and are
// safe for concurrent use.
type Evaluator struct {
	logger *zap.Logger
	debug  bool
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger used for debug traces.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithDebug traces every evaluated rule, its input record and its result at
// debug level. Tracing never changes the returned value.
func WithDebug(enabled bool) Option {
	return func(e *Evaluator) {
		e.debug = enabled
	}
}

// New constructs an Evaluator. Without options it logs nothing.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

var defaultEvaluator = New()

// Evaluate resolves rule against data with the default, silent evaluator.
func Evaluate(rule Rule, data map[string]any) (any, error) {
	return defaultEvaluator.Evaluate(rule, data)
}

// EvaluateRaw parses a generically decoded rule and evaluates it.
func EvaluateRaw(raw any, data map[string]any) (any, error) {
	rule, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return defaultEvaluator.Evaluate(rule, data)
}

// Bool evaluates rule and coerces the result with Truthy.
func Bool(rule Rule, data map[string]any) (bool, error) {
	return defaultEvaluator.Bool(rule, data)
}

// Evaluate resolves rule against data. The result is a bool for comparisons
// and combinators, a float64 for arrayLength and the raw field value for var.
// data is never modified.
func (e *Evaluator) Evaluate(rule Rule, data map[string]any) (any, error) {
	if e == nil {
		return defaultEvaluator.Evaluate(rule, data)
	}
	return e.eval(rule, data)
}

// Bool evaluates rule and coerces the result with Truthy.
func (e *Evaluator) Bool(rule Rule, data map[string]any) (bool, error) {
	result, err := e.Evaluate(rule, data)
	if err != nil {
		return false, err
	}
	return Truthy(result), nil
}

func (e *Evaluator) eval(rule Rule, data map[string]any) (any, error) {
	result, err := e.dispatch(rule, data)
	if e.debug {
		e.logger.Debug("logic: evaluate",
			zap.Stringer("rule", rule),
			zap.Any("data", data),
			zap.Any("result", result),
			zap.Error(err),
		)
	}
	return result, err
}

func (e *Evaluator) dispatch(rule Rule, data map[string]any) (any, error) {
	if rule.Operator == "" {
		return nil, missingOperator()
	}

	switch rule.Operator {
	case OpAnd:
		for _, arg := range rule.Args {
			nested, err := nestedRule(rule.Operator, arg)
			if err != nil {
				return nil, err
			}
			result, err := e.eval(nested, data)
			if err != nil {
				return nil, err
			}
			if !Truthy(result) {
				return false, nil
			}
		}
		return true, nil
	case OpOr:
		for _, arg := range rule.Args {
			nested, err := nestedRule(rule.Operator, arg)
			if err != nil {
				return nil, err
			}
			result, err := e.eval(nested, data)
			if err != nil {
				return nil, err
			}
			if Truthy(result) {
				return true, nil
			}
		}
		return false, nil
	case OpNot:
		if len(rule.Args) == 0 {
			return nil, &InvalidRuleError{Operator: OpNot, Reason: "missing nested rule"}
		}
		nested, err := nestedRule(rule.Operator, rule.Args[0])
		if err != nil {
			return nil, err
		}
		result, err := e.eval(nested, data)
		if err != nil {
			return nil, err
		}
		return !Truthy(result), nil
	}

	fn, ok := leafOperators[rule.Operator]
	if !ok {
		return nil, &UnknownOperatorError{Operator: string(rule.Operator)}
	}
	return fn(rule.Operator, rule.Args, data)
}
