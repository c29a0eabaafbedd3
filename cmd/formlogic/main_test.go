package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/goliatone/go-formlogic/pkg/prompt"
	"github.com/goliatone/go-formlogic/pkg/testsupport"
)

func execute(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	a.logger = zap.NewNop()
	root := a.rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFixture(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, testsupport.Fixture(t, name), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestEvalCommand(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		args []string
		want string
	}{
		"json rule": {
			args: []string{"eval", "--rule", `{"operator":"includes","args":["tags","x"]}`, "--data", `{"tags":["a","x"]}`},
			want: "true",
		},
		"expression": {
			args: []string{"eval", "--rule", "plan == 'pro' && seats > 5", "--data", `{"plan":"pro","seats":6}`},
			want: "true",
		},
		"var": {
			args: []string{"eval", "--rule", `{"operator":"var","args":["plan"]}`, "--data", "plan: pro", "--debug"},
			want: `"pro"`,
		},
		"missing field": {
			args: []string{"eval", "--rule", `{"operator":"var","args":["plan"]}`},
			want: "null",
		},
	}
	for name, tc := range cases {
		name, tc := name, tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			out, err := execute(t, newApp(), tc.args...)
			if err != nil {
				t.Fatalf("eval returned error: %v", err)
			}
			if got := strings.TrimSpace(out); got != tc.want {
				t.Fatalf("eval printed %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEvalCommandErrors(t *testing.T) {
	t.Parallel()

	if _, err := execute(t, newApp(), "eval", "--rule", `{"operator":"xor","args":[]}`); err == nil || !strings.Contains(err.Error(), `"xor"`) {
		t.Fatalf("expected unknown operator error, got %v", err)
	}
	if _, err := execute(t, newApp(), "eval", "--rule", `{"args":[]}`); err == nil || !strings.Contains(err.Error(), "missing operator property") {
		t.Fatalf("expected missing operator error, got %v", err)
	}
	if _, err := execute(t, newApp(), "eval"); err == nil {
		t.Fatalf("expected missing --rule to fail")
	}
}

func TestMergeCommand(t *testing.T) {
	t.Parallel()

	out, err := execute(t, newApp(), "merge", "--config", writeFixture(t, "contact.yaml"))
	if err != nil {
		t.Fatalf("merge returned error: %v", err)
	}
	var view struct {
		Fields map[string]struct {
			Label string `json:"label"`
		} `json:"fields"`
		Behavior struct {
			VisibilityRules []struct {
				Field     string `json:"field"`
				Condition struct {
					Operator string `json:"operator"`
					Args     []any  `json:"args"`
				} `json:"condition"`
				Dependencies []string `json:"dependencies"`
			} `json:"visibilityRules"`
			OnSubmit string `json:"onSubmit"`
		} `json:"behavior"`
	}
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode merge output: %v\n%s", err, out)
	}
	if view.Fields["name"].Label != "Full name" {
		t.Fatalf("expected sanitised label, got %q", view.Fields["name"].Label)
	}
	if got := len(view.Behavior.VisibilityRules); got != 2 {
		t.Fatalf("expected 2 visibility rules, got %d", got)
	}
	details := view.Behavior.VisibilityRules[0]
	if details.Condition.Operator != "equals" {
		t.Fatalf("expected compiled expression, got %+v", details.Condition)
	}
	if diff := cmp.Diff([]string{"topic"}, details.Dependencies); diff != "" {
		t.Fatalf("dependencies mismatch (-want +got):\n%s", diff)
	}
	if view.Behavior.OnSubmit != "sendContactEmail" {
		t.Fatalf("expected submit action, got %q", view.Behavior.OnSubmit)
	}
}

func TestSchemaCommand(t *testing.T) {
	t.Parallel()

	out, err := execute(t, newApp(), "schema", "--config", writeFixture(t, "signup.json"))
	if err != nil {
		t.Fatalf("schema returned error: %v", err)
	}
	var doc struct {
		Type       string         `json:"type"`
		Required   []string       `json:"required"`
		Properties map[string]any `json:"properties"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode schema output: %v\n%s", err, out)
	}
	if doc.Type != "object" {
		t.Fatalf("expected object schema, got %q", doc.Type)
	}
	if diff := cmp.Diff([]string{"a"}, doc.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	if len(doc.Properties) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(doc.Properties))
	}
}

func TestValidateCommand(t *testing.T) {
	t.Parallel()

	config := writeFixture(t, "signup.json")

	out, err := execute(t, newApp(), "validate", "--config", config, "--values", writeFile(t, "ok.json", `{"a":"show","b":"yes"}`))
	if err != nil {
		t.Fatalf("validate returned error: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"valid": true`) {
		t.Fatalf("expected valid result, got %s", out)
	}

	out, err = execute(t, newApp(), "validate", "--config", config, "--values", writeFile(t, "bad.yaml", "b: hidden\n"))
	if !errors.Is(err, errInvalidValues) {
		t.Fatalf("expected errInvalidValues, got %v", err)
	}
	if !strings.Contains(out, "This field is required") {
		t.Fatalf("expected field message in output, got %s", out)
	}
}

type scriptedDriver struct {
	inputs []string
}

func (d *scriptedDriver) Input(context.Context, prompt.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	next := d.inputs[0]
	d.inputs = d.inputs[1:]
	return next, nil
}

func (d *scriptedDriver) TextArea(context.Context, prompt.TextAreaConfig) (string, error) {
	return "", errors.New("no textarea scripted")
}

func (d *scriptedDriver) Select(context.Context, prompt.SelectConfig) (int, error) {
	return -1, errors.New("no select scripted")
}

func (d *scriptedDriver) MultiSelect(context.Context, prompt.SelectConfig) ([]int, error) {
	return nil, errors.New("no multiselect scripted")
}

func (d *scriptedDriver) Info(context.Context, string) error { return nil }

func TestFillCommand(t *testing.T) {
	t.Parallel()

	a := newApp()
	a.driver = func(io.Writer) prompt.Driver { return &scriptedDriver{inputs: []string{"show", "there"}} }

	out, err := execute(t, a, "fill", "--config", writeFixture(t, "signup.json"))
	if err != nil {
		t.Fatalf("fill returned error: %v", err)
	}
	var values map[string]any
	if err := json.Unmarshal([]byte(out), &values); err != nil {
		t.Fatalf("decode fill output: %v\n%s", err, out)
	}
	if diff := cmp.Diff(map[string]any{"a": "show", "b": "there"}, values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}
