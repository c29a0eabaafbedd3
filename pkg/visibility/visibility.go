// Package visibility turns visibility rules into live predicates and tracks
// which rules depend on which fields so a form engine can re-run only the
// rules affected by a value change.
package visibility

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formlogic/pkg/logic"
)

// Predicate decides whether a field is visible for the current form values.
type Predicate func(values map[string]any) bool

// Rule binds a target field to a live condition and the fields whose changes
// require the condition to be re-run. Source holds the serializable rule the
// condition was built from, when there is one.
type Rule struct {
	Field        string
	Condition    Predicate
	Dependencies []string
	Source       *logic.Rule
}

// PanicError reports a predicate that panicked while being evaluated.
type PanicError struct {
	Field string
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("visibility: condition for %q panicked: %v", e.Field, e.Value)
}

// Visible runs the rule condition. A nil condition or a panicking condition
// reports the field as hidden; the panic is returned as *PanicError.
func (r Rule) Visible(values map[string]any) (visible bool, err error) {
	if r.Condition == nil {
		return false, nil
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			visible = false
			err = &PanicError{Field: r.Field, Value: recovered}
		}
	}()
	return r.Condition(values), nil
}

// Normalizer wraps serializable rules into predicates.
type Normalizer struct {
	evaluator *logic.Evaluator
	logger    *zap.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithEvaluator sets the evaluator used by generated predicates.
func WithEvaluator(evaluator *logic.Evaluator) Option {
	return func(n *Normalizer) {
		if evaluator != nil {
			n.evaluator = evaluator
		}
	}
}

// WithLogger sets the logger that records rule evaluation failures.
func WithLogger(logger *zap.Logger) Option {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewNormalizer builds a Normalizer with a silent default evaluator.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		evaluator: logic.New(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(n)
	}
	return n
}

// FromRule returns a predicate that evaluates rule and coerces the result
// with logic.Truthy. Evaluation errors are logged and the field is hidden.
func (n *Normalizer) FromRule(field string, rule logic.Rule) Predicate {
	evaluator := n.evaluator
	logger := n.logger
	return func(values map[string]any) bool {
		ok, err := evaluator.Bool(rule, values)
		if err != nil {
			logger.Warn("visibility: rule evaluation failed, hiding field",
				zap.String("field", field),
				zap.Stringer("rule", rule),
				zap.Error(err),
			)
			return false
		}
		return ok
	}
}

// FromRule wraps rule with a default Normalizer.
func FromRule(field string, rule logic.Rule) Predicate {
	return NewNormalizer().FromRule(field, rule)
}
