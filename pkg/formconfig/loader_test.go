package formconfig_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formlogic/pkg/formconfig"
	"github.com/goliatone/go-formlogic/pkg/logic"
	"github.com/goliatone/go-formlogic/pkg/testsupport"
)

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	cfg, err := formconfig.Load(testsupport.Fixture(t, "contact.yaml"), "contact.yaml")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if got := len(cfg.Fields); got != 6 {
		t.Fatalf("expected 6 fields, got %d", got)
	}
	name := cfg.Fields["name"]
	if name.Label != "Full name" {
		t.Fatalf("expected markup stripped from label, got %q", name.Label)
	}
	if diff := cmp.Diff([]formconfig.ValidationRule{formconfig.Required(), formconfig.MaxLength(40)}, name.ValidationRules); diff != "" {
		t.Fatalf("name rules mismatch (-want +got):\n%s", diff)
	}
	if got := cfg.Fields["topic"].Props["options"]; !cmp.Equal(got, []any{"sales", "support", "other"}) {
		t.Fatalf("unexpected topic options: %#v", got)
	}

	rules := cfg.Behavior.VisibilityRules
	if len(rules) != 2 {
		t.Fatalf("expected 2 visibility rules, got %d", len(rules))
	}
	if diff := cmp.Diff(logic.Equals("topic", "other"), rules[0].Condition); diff != "" {
		t.Fatalf("expression condition mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(logic.Equals("topic", "support"), rules[1].Condition); diff != "" {
		t.Fatalf("object condition mismatch (-want +got):\n%s", diff)
	}
	if cfg.Behavior.OnSubmit != "sendContactEmail" {
		t.Fatalf("expected submit action name, got %q", cfg.Behavior.OnSubmit)
	}
	if got := cfg.Layout.Structure[0].ItemsPerRow.Desktop; got != 2 {
		t.Fatalf("expected desktop columns 2, got %d", got)
	}
}

func TestLoadJSON(t *testing.T) {
	t.Parallel()

	cfg, err := formconfig.LoadFS(testsupport.FS(), "signup.json")
	if err != nil {
		t.Fatalf("LoadFS returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"a"}, cfg.Behavior.VisibilityRules[0].Dependencies); diff != "" {
		t.Fatalf("dependencies mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(logic.Equals("a", "show"), cfg.Behavior.VisibilityRules[0].Condition); diff != "" {
		t.Fatalf("condition mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		doc  string
		want string
	}{
		"empty":             {"  ", "is empty"},
		"broken json":       {`{"fields": `, "parse"},
		"unknown operator":  {`{"behavior":{"visibilityRules":[{"field":"b","condition":{"operator":"xor","args":[]}}]}}`, `unknown operator "xor"`},
		"missing operator":  {`{"behavior":{"visibilityRules":[{"field":"b","condition":{"args":["a"]}}]}}`, "missing operator property"},
		"bad expression":    {"behavior:\n  visibilityRules:\n    - field: b\n      condition: \"a = 1\"\n", "use '=='"},
		"missing condition": {`{"behavior":{"visibilityRules":[{"field":"b"}]}}`, "has no condition"},
		"missing target":    {`{"behavior":{"visibilityRules":[{"condition":"a"}]}}`, "has no field"},
		"untyped rule":      {`{"fields":{"a":{"type":"input","validationRules":[{"value":3}]}}}`, "has no type"},
	}

	for name, tc := range cases {
		name, tc := name, tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := formconfig.Load([]byte(tc.doc), "doc")
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLayoutColumns(t *testing.T) {
	t.Parallel()

	row := formconfig.LayoutRow{Items: []string{"a", "b", "c"}}
	if got := row.Columns(formconfig.Desktop); got != 3 {
		t.Fatalf("desktop: expected 3, got %d", got)
	}
	if got := row.Columns(formconfig.Tablet); got != 2 {
		t.Fatalf("tablet: expected 2, got %d", got)
	}
	if got := row.Columns(formconfig.Mobile); got != 1 {
		t.Fatalf("mobile: expected 1, got %d", got)
	}

	explicit := formconfig.LayoutRow{Items: []string{"a"}, ItemsPerRow: formconfig.ItemsPerRow{Desktop: 4, Tablet: 3, Mobile: 2}}
	if got := explicit.Columns(formconfig.Mobile); got != 2 {
		t.Fatalf("explicit mobile: expected 2, got %d", got)
	}
}

func TestDefaultMessages(t *testing.T) {
	t.Parallel()

	cases := map[string]formconfig.ValidationRule{
		"This field is required":        formconfig.Required(),
		"Select at most 1 item":         formconfig.MaxItems(1),
		"Select at least 2 items":       formconfig.MinItems(2),
		"Must be at most 5 characters":  formconfig.MaxLength(5),
		"Must be at least 1 character":  formconfig.MinLength(1),
		"Must be a valid email address": formconfig.Email(),
		"Must be a valid URL":           formconfig.URL(),
		"Must be after start":           formconfig.DateAfter("start"),
		"Must be before end":            formconfig.DateBefore("end"),
		"Custom copy":                   formconfig.Required().WithMessage("Custom copy"),
	}
	for want, rule := range cases {
		if got := rule.ErrorMessage(); got != want {
			t.Fatalf("ErrorMessage(%s) = %q, want %q", rule.Type, got, want)
		}
	}
}
