package visibility

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-formlogic/pkg/logic"
)

func TestFromRule(t *testing.T) {
	t.Parallel()

	pred := FromRule("b", logic.Equals("a", "show"))
	if !pred(map[string]any{"a": "show"}) {
		t.Fatalf("expected b to be visible when a == show")
	}
	if pred(map[string]any{"a": "hide"}) {
		t.Fatalf("expected b to be hidden when a == hide")
	}
	if pred(nil) {
		t.Fatalf("expected b to be hidden with no values")
	}
}

func TestFromRuleTruthiness(t *testing.T) {
	t.Parallel()

	pred := FromRule("details", logic.ArrayLength("items"))
	if pred(map[string]any{"items": []any{}}) {
		t.Fatalf("zero length must hide")
	}
	if !pred(map[string]any{"items": []any{"x"}}) {
		t.Fatalf("non-zero length must show")
	}
}

func TestFromRuleFailsClosed(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	normalizer := NewNormalizer(WithLogger(zap.New(core)))

	pred := normalizer.FromRule("secret", logic.Rule{Operator: "bogus", Args: []any{"a"}})
	if pred(map[string]any{"a": true}) {
		t.Fatalf("broken rule must hide the field")
	}
	if logs.Len() != 1 {
		t.Fatalf("expected the failure to be logged once, got %d", logs.Len())
	}
	if got := logs.All()[0].ContextMap()["field"]; got != "secret" {
		t.Fatalf("expected field in log context, got %#v", got)
	}
}

func TestRuleVisibleRecoversPanics(t *testing.T) {
	t.Parallel()

	rule := Rule{Field: "x", Condition: func(map[string]any) bool { panic("boom") }}
	ok, err := rule.Visible(nil)
	if ok {
		t.Fatalf("panicking rule must hide")
	}
	var panicErr *PanicError
	if !errors.As(err, &panicErr) || panicErr.Field != "x" {
		t.Fatalf("expected PanicError for x, got %v", err)
	}

	if ok, err := (Rule{Field: "y"}).Visible(nil); ok || err != nil {
		t.Fatalf("nil condition must hide without error, got %v, %v", ok, err)
	}
}

func TestIndexAffected(t *testing.T) {
	t.Parallel()

	rules := []Rule{
		{Field: "b", Dependencies: []string{"a"}},
		{Field: "c", Dependencies: []string{"a", "b", "a"}},
		{Field: "d"},
	}
	idx := NewIndex(rules)

	if diff := cmp.Diff([]int{0, 1, 2}, idx.Affected("a")); diff != "" {
		t.Fatalf("Affected(a) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2}, idx.Affected("b")); diff != "" {
		t.Fatalf("Affected(b) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2}, idx.Affected("zzz")); diff != "" {
		t.Fatalf("Affected(zzz) mismatch (-want +got):\n%s", diff)
	}
	if idx.Len() != 3 {
		t.Fatalf("expected 3 rules, got %d", idx.Len())
	}
}
