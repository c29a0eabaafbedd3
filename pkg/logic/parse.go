package logic

import "fmt"

// Parse converts a generically decoded rule (for example the map produced by
// json.Unmarshal into any) into a Rule. Inputs that are not objects or lack
// an operator key fail with *InvalidRuleError; unsupported operator names
// fail with *UnknownOperatorError.
func Parse(raw any) (Rule, error) {
	switch v := raw.(type) {
	case Rule:
		return v, nil
	case *Rule:
		if v == nil {
			return Rule{}, &InvalidRuleError{Reason: "rule must be an object"}
		}
		return *v, nil
	case map[string]any:
		return parseMap(v)
	default:
		return Rule{}, &InvalidRuleError{Reason: fmt.Sprintf("rule must be an object, got %T", raw)}
	}
}

func parseMap(raw map[string]any) (Rule, error) {
	opRaw, ok := raw["operator"]
	if !ok {
		return Rule{}, missingOperator()
	}
	name, ok := opRaw.(string)
	if !ok {
		return Rule{}, &InvalidRuleError{Reason: fmt.Sprintf("operator must be a string, got %T", opRaw)}
	}
	if name == "" {
		return Rule{}, missingOperator()
	}
	op := Operator(name)
	if !op.Valid() {
		return Rule{}, &UnknownOperatorError{Operator: name}
	}

	var args []any
	switch typed := raw["args"].(type) {
	case nil:
	case []any:
		args = typed
	default:
		return Rule{}, &InvalidRuleError{Operator: op, Reason: fmt.Sprintf("args must be a list, got %T", typed)}
	}

	out := Rule{Operator: op}
	if len(args) == 0 {
		return out, nil
	}
	out.Args = make([]any, len(args))
	for idx, arg := range args {
		if op.Combinator() {
			nested, err := Parse(arg)
			if err != nil {
				return Rule{}, err
			}
			out.Args[idx] = nested
			continue
		}
		out.Args[idx] = canonical(arg)
	}
	return out, nil
}

// nestedRule resolves a combinator argument into a Rule.
func nestedRule(op Operator, arg any) (Rule, error) {
	switch v := arg.(type) {
	case Rule:
		return v, nil
	case *Rule:
		if v != nil {
			return *v, nil
		}
	case map[string]any:
		return Parse(v)
	}
	return Rule{}, &InvalidRuleError{Operator: op, Reason: fmt.Sprintf("nested rule must be an object, got %T", arg)}
}
