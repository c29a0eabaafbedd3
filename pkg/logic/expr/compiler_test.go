package expr

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formlogic/pkg/logic"
)

func TestCompile(t *testing.T) {
	t.Parallel()

	cases := []struct {
		src  string
		want logic.Rule
	}{
		{"enabled", logic.Var("enabled")},
		{"!enabled", logic.Not(logic.Var("enabled"))},
		{`a == "show"`, logic.Equals("a", "show")},
		{`a == 'show'`, logic.Equals("a", "show")},
		{`plan == pro`, logic.Equals("plan", "pro")},
		{`count != 3`, logic.NotEquals("count", 3)},
		{`flag == true`, logic.Equals("flag", true)},
		{`missing == null`, logic.Equals("missing", nil)},
		{`age > 18`, logic.GreaterThan("age", 18)},
		{`age >= -1.5`, logic.GreaterThanOrEqual("age", -1.5)},
		{`age < 65`, logic.LessThan("age", 65)},
		{`age <= 65`, logic.LessThanOrEqual("age", 65)},
		{`a && b && c`, logic.And(logic.Var("a"), logic.Var("b"), logic.Var("c"))},
		{`a || b && c`, logic.Or(logic.Var("a"), logic.And(logic.Var("b"), logic.Var("c")))},
		{`(a || b) && !c`, logic.And(logic.Or(logic.Var("a"), logic.Var("b")), logic.Not(logic.Var("c")))},
		{`profile.city == "Oslo"`, logic.Equals("profile.city", "Oslo")},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.src, func(t *testing.T) {
			t.Parallel()
			got, err := Compile(tc.src)
			if err != nil {
				t.Fatalf("Compile(%q) returned error: %v", tc.src, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("Compile(%q) mismatch (-want +got):\n%s", tc.src, diff)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":           "empty expression",
		"a = 1":      "use '=='",
		"a & b":      "use '&&'",
		"a | b":      "use '||'",
		`a == "open`: "unterminated string",
		"(a || b":    "missing closing",
		"a ==":       "missing literal",
		`a > "x"`:    "expects a number",
		"a b":        "unexpected token",
		"&& a":       "expected identifier",
	}

	for src, fragment := range cases {
		src, fragment := src, fragment
		t.Run(src, func(t *testing.T) {
			t.Parallel()
			_, err := Compile(src)
			if err == nil {
				t.Fatalf("Compile(%q) expected error", src)
			}
			if !strings.Contains(err.Error(), fragment) {
				t.Fatalf("Compile(%q) error %q does not mention %q", src, err, fragment)
			}
		})
	}
}

func TestCompiledRulesEvaluate(t *testing.T) {
	t.Parallel()

	rule := MustCompile(`plan == "pro" && (seats > 5 || !trial)`)

	ok, err := logic.Bool(rule, map[string]any{"plan": "pro", "seats": float64(2), "trial": false})
	if err != nil {
		t.Fatalf("Bool returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected rule to pass for non-trial pro plan")
	}

	ok, err = logic.Bool(rule, map[string]any{"plan": "pro", "seats": float64(2), "trial": true})
	if err != nil {
		t.Fatalf("Bool returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected rule to fail for small trial")
	}
}
