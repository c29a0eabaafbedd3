package logic

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Operator names the comparison or combinator a rule performs.
type Operator string

const (
	OpVar                Operator = "var"
	OpEquals             Operator = "equals"
	OpNotEquals          Operator = "notEquals"
	OpGreaterThan        Operator = "greaterThan"
	OpLessThan           Operator = "lessThan"
	OpGreaterThanOrEqual Operator = "greaterThanOrEqual"
	OpLessThanOrEqual    Operator = "lessThanOrEqual"
	OpIncludes           Operator = "includes"
	OpStartsWith         Operator = "startsWith"
	OpEndsWith           Operator = "endsWith"
	OpArrayLength        Operator = "arrayLength"
	OpArrayIsEmpty       Operator = "arrayIsEmpty"
	OpAnd                Operator = "and"
	OpOr                 Operator = "or"
	OpNot                Operator = "not"
)

var allOperators = []Operator{
	OpVar,
	OpEquals,
	OpNotEquals,
	OpGreaterThan,
	OpLessThan,
	OpGreaterThanOrEqual,
	OpLessThanOrEqual,
	OpIncludes,
	OpStartsWith,
	OpEndsWith,
	OpArrayLength,
	OpArrayIsEmpty,
	OpAnd,
	OpOr,
	OpNot,
}

// Operators returns every supported operator in declaration order.
func Operators() []Operator {
	out := make([]Operator, len(allOperators))
	copy(out, allOperators)
	return out
}

// Valid reports whether the operator belongs to the fixed operator set.
func (o Operator) Valid() bool {
	if o.Combinator() {
		return true
	}
	_, ok := leafOperators[o]
	return ok
}

// Combinator reports whether the operator takes nested rules as arguments.
func (o Operator) Combinator() bool {
	switch o {
	case OpAnd, OpOr, OpNot:
		return true
	default:
		return false
	}
}

// Rule is a serializable boolean or comparison expression over named fields.
// Leaf operators take the field name as their first argument; combinators
// hold nested Rule values in Args.
type Rule struct {
	Operator Operator `json:"operator"`
	Args     []any    `json:"args"`
}

// MarshalJSON always emits the args list so decoders never see a null.
func (r Rule) MarshalJSON() ([]byte, error) {
	args := r.Args
	if args == nil {
		args = []any{}
	}
	return json.Marshal(struct {
		Operator Operator `json:"operator"`
		Args     []any    `json:"args"`
	}{Operator: r.Operator, Args: args})
}

// UnmarshalJSON decodes nested combinator arguments back into Rule values.
// An empty args list decodes to nil.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var wire struct {
		Operator Operator          `json:"operator"`
		Args     []json.RawMessage `json:"args"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("logic: decode rule: %w", err)
	}

	out := Rule{Operator: wire.Operator}
	if len(wire.Args) > 0 {
		out.Args = make([]any, len(wire.Args))
	}
	for idx, raw := range wire.Args {
		if wire.Operator.Combinator() {
			trimmed := bytes.TrimSpace(raw)
			if len(trimmed) == 0 || trimmed[0] != '{' {
				return &InvalidRuleError{Operator: wire.Operator, Reason: fmt.Sprintf("argument %d is not a rule object", idx)}
			}
			var nested Rule
			if err := json.Unmarshal(trimmed, &nested); err != nil {
				return err
			}
			out.Args[idx] = nested
			continue
		}
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return fmt.Errorf("logic: decode %s argument %d: %w", wire.Operator, idx, err)
		}
		out.Args[idx] = value
	}

	*r = out
	return nil
}

// String renders the rule in its JSON wire form.
func (r Rule) String() string {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf("%s(%v)", r.Operator, r.Args)
	}
	return string(payload)
}

// Fields returns the field names referenced by the rule and its nested rules,
// in order of first appearance.
func (r Rule) Fields() []string {
	var out []string
	seen := make(map[string]struct{})
	collectFields(r, seen, &out)
	return out
}

func collectFields(r Rule, seen map[string]struct{}, out *[]string) {
	if r.Operator.Combinator() {
		for _, arg := range r.Args {
			nested, err := nestedRule(r.Operator, arg)
			if err != nil {
				continue
			}
			collectFields(nested, seen, out)
		}
		return
	}
	if len(r.Args) == 0 {
		return
	}
	field, ok := r.Args[0].(string)
	if !ok || field == "" {
		return
	}
	if _, exists := seen[field]; exists {
		return
	}
	seen[field] = struct{}{}
	*out = append(*out, field)
}
