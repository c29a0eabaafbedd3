package validation

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/goliatone/go-formlogic/pkg/formconfig"
	"github.com/goliatone/go-formlogic/pkg/logic"
)

// nativeCheck constrains the raw value shape. Length and format rules only
// apply to text values and item rules only to lists; a value of another kind
// is left to the shape check.
type nativeCheck struct {
	rule   formconfig.ValidationRule
	schema *openapi3.Schema
}

func newNativeCheck(rule formconfig.ValidationRule) nativeCheck {
	check := nativeCheck{rule: rule}
	bound := int64(max(rule.Value, 0))
	switch rule.Type {
	case formconfig.RuleMinLength:
		check.schema = openapi3.NewStringSchema().WithMinLength(bound)
	case formconfig.RuleMaxLength:
		check.schema = openapi3.NewStringSchema().WithMaxLength(bound)
	case formconfig.RuleMinItems:
		check.schema = openapi3.NewArraySchema().WithMinItems(bound)
	case formconfig.RuleMaxItems:
		check.schema = openapi3.NewArraySchema().WithMaxItems(bound)
	}
	return check
}

func (c nativeCheck) valid(value any) bool {
	switch c.rule.Type {
	case formconfig.RuleEmail:
		text, ok := value.(string)
		return !ok || validEmail(text)
	case formconfig.RuleURL:
		text, ok := value.(string)
		return !ok || validURL(text)
	case formconfig.RuleMinLength, formconfig.RuleMaxLength:
		if _, ok := value.(string); !ok {
			return true
		}
	case formconfig.RuleMinItems, formconfig.RuleMaxItems:
		if _, ok := value.([]any); !ok {
			return true
		}
	}
	return c.schema == nil || c.schema.VisitJSON(value) == nil
}

func validEmail(text string) bool {
	addr, err := mail.ParseAddress(text)
	return err == nil && addr.Address == text
}

func validURL(text string) bool {
	parsed, err := url.Parse(text)
	return err == nil && parsed.Scheme != "" && parsed.Host != ""
}

// normalise converts value into the JSON data model kin-openapi visits.
func normalise(value any) (any, error) {
	switch value.(type) {
	case nil, string, bool, float64, []any, map[string]any:
		return value, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func refine(field string, rule formconfig.ValidationRule, value any, values map[string]any, logger *zap.Logger) (string, bool) {
	switch rule.Type {
	case formconfig.RuleRequired:
		if Present(value) {
			return "", true
		}
		return rule.ErrorMessage(), false
	case formconfig.RuleCustom:
		return runCustom(field, rule, value, values, logger)
	default:
		return "", true
	}
}

// runCustom calls the rule validator. A panicking validator fails the field.
func runCustom(field string, rule formconfig.ValidationRule, value any, values map[string]any, logger *zap.Logger) (message string, ok bool) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Warn("validation: custom validator panicked",
				zap.String("field", field),
				zap.String("panic", fmt.Sprint(recovered)),
			)
			message, ok = rule.ErrorMessage(), false
		}
	}()

	passed, custom := rule.Validator(value, values)
	if passed {
		return "", true
	}
	if custom != "" {
		return custom, false
	}
	return rule.ErrorMessage(), false
}

// Present reports whether value satisfies a required rule: text must hold
// non-whitespace content, lists must hold at least one element and other
// values must be truthy.
func Present(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return rv.Len() > 0
	}
	return logic.Truthy(value)
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case string:
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

// compareDates reports whether value is on the required side of the other
// field's date. Values that are not dates are left to other rules.
func compareDates(rule formconfig.ValidationRule, value any, values map[string]any) bool {
	current, ok := parseDate(value)
	if !ok {
		return true
	}
	other, ok := parseDate(values[rule.Field])
	if !ok {
		return true
	}
	if rule.Type == formconfig.RuleDateAfter {
		return current.After(other)
	}
	return current.Before(other)
}
