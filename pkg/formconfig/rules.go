package formconfig

import (
	"fmt"
)

// ValidationType names a validation rule kind.
type ValidationType string

const (
	RuleRequired   ValidationType = "required"
	RuleMaxItems   ValidationType = "maxItems"
	RuleMinItems   ValidationType = "minItems"
	RuleMaxLength  ValidationType = "maxLength"
	RuleMinLength  ValidationType = "minLength"
	RuleEmail      ValidationType = "email"
	RuleURL        ValidationType = "url"
	RuleDateAfter  ValidationType = "dateAfter"
	RuleDateBefore ValidationType = "dateBefore"
	RuleCustom     ValidationType = "custom"
)

// ValidatorFunc checks a field value. Returning ok=false fails the field;
// a non-empty message replaces the rule message.
type ValidatorFunc func(value any, values map[string]any) (ok bool, message string)

// ValidationRule constrains one field. Value carries the bound for
// min/max rules and Field the other field for date rules. Validator is only
// set from code for custom rules and is never serialised.
type ValidationRule struct {
	Type      ValidationType `json:"type" yaml:"type"`
	Value     int            `json:"value,omitempty" yaml:"value,omitempty"`
	Field     string         `json:"field,omitempty" yaml:"field,omitempty"`
	Message   string         `json:"message,omitempty" yaml:"message,omitempty"`
	Validator ValidatorFunc  `json:"-" yaml:"-"`
}

// Required fails a missing or blank value.
func Required() ValidationRule {
	return ValidationRule{Type: RuleRequired}
}

// MaxItems caps a list at n entries.
func MaxItems(n int) ValidationRule {
	return ValidationRule{Type: RuleMaxItems, Value: n}
}

// MinItems requires at least n list entries.
func MinItems(n int) ValidationRule {
	return ValidationRule{Type: RuleMinItems, Value: n}
}

// MaxLength caps text at n characters.
func MaxLength(n int) ValidationRule {
	return ValidationRule{Type: RuleMaxLength, Value: n}
}

// MinLength requires at least n characters.
func MinLength(n int) ValidationRule {
	return ValidationRule{Type: RuleMinLength, Value: n}
}

// Email requires a bare email address.
func Email() ValidationRule {
	return ValidationRule{Type: RuleEmail}
}

// URL requires an absolute URL.
func URL() ValidationRule {
	return ValidationRule{Type: RuleURL}
}

// DateAfter requires a date later than the one in field.
func DateAfter(field string) ValidationRule {
	return ValidationRule{Type: RuleDateAfter, Field: field}
}

// DateBefore requires a date earlier than the one in field.
func DateBefore(field string) ValidationRule {
	return ValidationRule{Type: RuleDateBefore, Field: field}
}

// Custom builds a custom rule around fn.
func Custom(fn ValidatorFunc) ValidationRule {
	return ValidationRule{Type: RuleCustom, Validator: fn}
}

// WithMessage returns a copy of r with a message override.
func (r ValidationRule) WithMessage(message string) ValidationRule {
	r.Message = message
	return r
}

// ErrorMessage returns the message override or the default for the kind.
func (r ValidationRule) ErrorMessage() string {
	if r.Message != "" {
		return r.Message
	}
	return DefaultMessage(r)
}

// DefaultMessage generates the default message for a rule kind.
func DefaultMessage(r ValidationRule) string {
	switch r.Type {
	case RuleRequired:
		return "This field is required"
	case RuleMaxItems:
		return fmt.Sprintf("Select at most %d %s", r.Value, plural(r.Value, "item", "items"))
	case RuleMinItems:
		return fmt.Sprintf("Select at least %d %s", r.Value, plural(r.Value, "item", "items"))
	case RuleMaxLength:
		return fmt.Sprintf("Must be at most %d %s", r.Value, plural(r.Value, "character", "characters"))
	case RuleMinLength:
		return fmt.Sprintf("Must be at least %d %s", r.Value, plural(r.Value, "character", "characters"))
	case RuleEmail:
		return "Must be a valid email address"
	case RuleURL:
		return "Must be a valid URL"
	case RuleDateAfter:
		return fmt.Sprintf("Must be after %s", r.Field)
	case RuleDateBefore:
		return fmt.Sprintf("Must be before %s", r.Field)
	default:
		return "Invalid value"
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
