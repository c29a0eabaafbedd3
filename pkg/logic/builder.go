package logic

// Constructors below always produce well-formed rules whose arguments are in
// canonical JSON form, so Encode/Decode round-trips compare equal.

func leaf(op Operator, field string, values ...any) Rule {
	args := make([]any, 0, len(values)+1)
	args = append(args, field)
	for _, value := range values {
		args = append(args, canonical(value))
	}
	return Rule{Operator: op, Args: args}
}

func combine(op Operator, rules []Rule) Rule {
	if len(rules) == 0 {
		return Rule{Operator: op}
	}
	args := make([]any, len(rules))
	for i, rule := range rules {
		args[i] = rule
	}
	return Rule{Operator: op, Args: args}
}

// Var reads field from the record.
func Var(field string) Rule {
	return leaf(OpVar, field)
}

// Equals matches when field holds value.
func Equals(field string, value any) Rule {
	return leaf(OpEquals, field, value)
}

// NotEquals matches when field does not hold value.
func NotEquals(field string, value any) Rule {
	return leaf(OpNotEquals, field, value)
}

// GreaterThan matches a numeric field above n.
func GreaterThan(field string, n float64) Rule {
	return leaf(OpGreaterThan, field, n)
}

// LessThan matches a numeric field below n.
func LessThan(field string, n float64) Rule {
	return leaf(OpLessThan, field, n)
}

// GreaterThanOrEqual matches a numeric field at or above n.
func GreaterThanOrEqual(field string, n float64) Rule {
	return leaf(OpGreaterThanOrEqual, field, n)
}

// LessThanOrEqual matches a numeric field at or below n.
func LessThanOrEqual(field string, n float64) Rule {
	return leaf(OpLessThanOrEqual, field, n)
}

// Includes matches a list containing value or a string containing it.
func Includes(field string, value any) Rule {
	return leaf(OpIncludes, field, value)
}

// StartsWith matches a string field beginning with prefix.
func StartsWith(field, prefix string) Rule {
	return leaf(OpStartsWith, field, prefix)
}

// EndsWith matches a string field ending with suffix.
func EndsWith(field, suffix string) Rule {
	return leaf(OpEndsWith, field, suffix)
}

// ArrayLength yields the length of a list field, or 0 for anything else.
func ArrayLength(field string) Rule {
	return leaf(OpArrayLength, field)
}

// ArrayIsEmpty matches a field that is not a non-empty list.
func ArrayIsEmpty(field string) Rule {
	return leaf(OpArrayIsEmpty, field)
}

// And requires every rule to be truthy. With no rules it is always true.
func And(rules ...Rule) Rule {
	return combine(OpAnd, rules)
}

// Or requires at least one truthy rule. With no rules it is always false.
func Or(rules ...Rule) Rule {
	return combine(OpOr, rules)
}

// Not negates the truthiness of rule.
func Not(rule Rule) Rule {
	return Rule{Operator: OpNot, Args: []any{rule}}
}

// And joins r with others under a single and rule.
func (r Rule) And(others ...Rule) Rule {
	return And(append([]Rule{r}, others...)...)
}

// Or joins r with others under a single or rule.
func (r Rule) Or(others ...Rule) Rule {
	return Or(append([]Rule{r}, others...)...)
}

// Not negates r.
func (r Rule) Not() Rule {
	return Not(r)
}

// FieldRef starts a fluent rule over a single field:
//
//	logic.Field("age").GreaterThanOrEqual(18).And(logic.Field("country").Equals("NO"))
type FieldRef string

// Field returns a FieldRef for name.
func Field(name string) FieldRef {
	return FieldRef(name)
}

// Value reads the field.
func (f FieldRef) Value() Rule {
	return Var(string(f))
}

// Equals matches when the field holds value.
func (f FieldRef) Equals(value any) Rule {
	return Equals(string(f), value)
}

// NotEquals matches when the field does not hold value.
func (f FieldRef) NotEquals(value any) Rule {
	return NotEquals(string(f), value)
}

// GreaterThan matches a numeric field above n.
func (f FieldRef) GreaterThan(n float64) Rule {
	return GreaterThan(string(f), n)
}

// LessThan matches a numeric field below n.
func (f FieldRef) LessThan(n float64) Rule {
	return LessThan(string(f), n)
}

// GreaterThanOrEqual matches a numeric field at or above n.
func (f FieldRef) GreaterThanOrEqual(n float64) Rule {
	return GreaterThanOrEqual(string(f), n)
}

// LessThanOrEqual matches a numeric field at or below n.
func (f FieldRef) LessThanOrEqual(n float64) Rule {
	return LessThanOrEqual(string(f), n)
}

// Includes matches a list or string containing value.
func (f FieldRef) Includes(value any) Rule {
	return Includes(string(f), value)
}

// StartsWith matches a string field beginning with prefix.
func (f FieldRef) StartsWith(prefix string) Rule {
	return StartsWith(string(f), prefix)
}

// EndsWith matches a string field ending with suffix.
func (f FieldRef) EndsWith(suffix string) Rule {
	return EndsWith(string(f), suffix)
}

// Length yields the length of a list field.
func (f FieldRef) Length() Rule {
	return ArrayLength(string(f))
}

// IsEmpty matches a field that is not a non-empty list.
func (f FieldRef) IsEmpty() Rule {
	return ArrayIsEmpty(string(f))
}
