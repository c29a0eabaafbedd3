package logic

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var seedFields = []string{"a", "b", "tags", "name", "age"}

// ruleFromSeeds builds a deterministic rule tree from a slice of integers so
// gopter can shrink failures down to small trees.
func ruleFromSeeds(seeds []int) Rule {
	pos := 0
	next := func() int {
		if len(seeds) == 0 {
			return 0
		}
		v := seeds[pos%len(seeds)]
		pos++
		if v < 0 {
			v = -v
		}
		return v
	}

	var build func(depth int) Rule
	build = func(depth int) Rule {
		field := seedFields[next()%len(seedFields)]
		choice := next() % len(allOperators)
		if depth >= 3 && allOperators[choice].Combinator() {
			choice = 0
		}
		switch op := allOperators[choice]; op {
		case OpVar:
			return Var(field)
		case OpEquals:
			return Equals(field, seedValue(next()))
		case OpNotEquals:
			return NotEquals(field, seedValue(next()))
		case OpGreaterThan:
			return GreaterThan(field, float64(next()%50))
		case OpLessThan:
			return LessThan(field, float64(next()%50))
		case OpGreaterThanOrEqual:
			return GreaterThanOrEqual(field, float64(next()%50))
		case OpLessThanOrEqual:
			return LessThanOrEqual(field, float64(next()%50))
		case OpIncludes:
			return Includes(field, seedValue(next()))
		case OpStartsWith:
			return StartsWith(field, "x")
		case OpEndsWith:
			return EndsWith(field, "y")
		case OpArrayLength:
			return ArrayLength(field)
		case OpArrayIsEmpty:
			return ArrayIsEmpty(field)
		case OpNot:
			return Not(build(depth + 1))
		default:
			children := make([]Rule, next()%3)
			for i := range children {
				children[i] = build(depth + 1)
			}
			if op == OpAnd {
				return And(children...)
			}
			return Or(children...)
		}
	}
	return build(0)
}

func seedValue(n int) any {
	switch n % 5 {
	case 0:
		return "x"
	case 1:
		return n % 40
	case 2:
		return n%2 == 0
	case 3:
		return nil
	default:
		return []string{"x", "y"}
	}
}

func dataFromSeeds(seeds []int) map[string]any {
	data := make(map[string]any)
	for i, seed := range seeds {
		if seed%4 == 0 {
			continue
		}
		field := seedFields[i%len(seedFields)]
		switch seed % 3 {
		case 0:
			data[field] = float64(seed % 50)
		case 1:
			data[field] = "xy"
		default:
			data[field] = []any{"x", float64(seed % 40)}
		}
	}
	return data
}

func TestRuleJSONRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("decode(encode(rule)) equals rule", prop.ForAll(
		func(seeds []int) bool {
			rule := ruleFromSeeds(seeds)
			payload, err := json.Marshal(rule)
			if err != nil {
				t.Logf("marshal: %v", err)
				return false
			}
			var decoded Rule
			if err := json.Unmarshal(payload, &decoded); err != nil {
				t.Logf("unmarshal: %v", err)
				return false
			}
			if diff := cmp.Diff(rule, decoded); diff != "" {
				t.Logf("round-trip mismatch (-want +got):\n%s", diff)
				return false
			}
			return true
		},
		gen.SliceOfN(12, gen.IntRange(0, 1000)),
	))

	properties.TestingRun(t)
}

func TestEvaluatePurityProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("evaluate is deterministic and leaves data untouched", prop.ForAll(
		func(ruleSeeds, dataSeeds []int) bool {
			rule := ruleFromSeeds(ruleSeeds)
			data := dataFromSeeds(dataSeeds)
			snapshot := dataFromSeeds(dataSeeds)

			first, err1 := Evaluate(rule, data)
			second, err2 := Evaluate(rule, data)
			if (err1 == nil) != (err2 == nil) {
				return false
			}
			if !cmp.Equal(first, second) {
				return false
			}
			return cmp.Equal(data, snapshot)
		},
		gen.SliceOfN(12, gen.IntRange(0, 1000)),
		gen.SliceOfN(5, gen.IntRange(0, 1000)),
	))

	properties.Property("not(not(rule)) equals Truthy(rule)", prop.ForAll(
		func(ruleSeeds, dataSeeds []int) bool {
			rule := ruleFromSeeds(ruleSeeds)
			data := dataFromSeeds(dataSeeds)

			plain, err := Evaluate(rule, data)
			if err != nil {
				return false
			}
			doubled, err := Evaluate(Not(Not(rule)), data)
			if err != nil {
				return false
			}
			return doubled == Truthy(plain)
		},
		gen.SliceOfN(12, gen.IntRange(0, 1000)),
		gen.SliceOfN(5, gen.IntRange(0, 1000)),
	))

	properties.TestingRun(t)
}

func TestRuleMarshalShape(t *testing.T) {
	t.Parallel()

	payload, err := json.Marshal(And(Equals("a", "show"), Not(Var("b"))))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"operator":"and","args":[{"operator":"equals","args":["a","show"]},{"operator":"not","args":[{"operator":"var","args":["b"]}]}]}`
	if string(payload) != want {
		t.Fatalf("unexpected wire form:\n got %s\nwant %s", payload, want)
	}

	empty, err := json.Marshal(Or())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(empty) != `{"operator":"or","args":[]}` {
		t.Fatalf("expected empty args list, got %s", empty)
	}
}

func TestRuleUnmarshalRejectsScalarNestedRule(t *testing.T) {
	t.Parallel()

	var rule Rule
	err := json.Unmarshal([]byte(`{"operator":"not","args":[true]}`), &rule)
	if !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected invalid rule error, got %v", err)
	}
}

func TestRuleUnmarshalMissingOperatorFailsAtEvaluate(t *testing.T) {
	t.Parallel()

	var rule Rule
	if err := json.Unmarshal([]byte(`{"args":["a"]}`), &rule); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, err := Evaluate(rule, nil); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected invalid rule on evaluate, got %v", err)
	}
}

func TestRuleFields(t *testing.T) {
	t.Parallel()

	rule := Or(Equals("a", "x"), And(Var("b"), Not(Includes("a", "y"))), ArrayIsEmpty("c"))
	if diff := cmp.Diff([]string{"a", "b", "c"}, rule.Fields()); diff != "" {
		t.Fatalf("Fields mismatch (-want +got):\n%s", diff)
	}
}
