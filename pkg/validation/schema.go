package validation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/goliatone/go-formlogic/pkg/formconfig"
)

// ErrMissingValidator reports a custom rule built without a validator.
var ErrMissingValidator = errors.New("validation: custom rule has no validator")

// Shape is the value shape a field type accepts.
type Shape string

const (
	ShapeString     Shape = "string"
	ShapeStringList Shape = "stringList"
	ShapeAny        Shape = "any"
)

// ShapeFor maps a field type to its value shape. Unknown types accept any
// value.
func ShapeFor(fieldType formconfig.FieldType) Shape {
	switch fieldType {
	case formconfig.FieldInput, formconfig.FieldTextarea, formconfig.FieldSelect:
		return ShapeString
	case formconfig.FieldMultiSelect:
		return ShapeStringList
	default:
		return ShapeAny
	}
}

// Option configures Build.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger used to report recovered validator panics.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Schema validates form values field by field. It is immutable and safe to
// share once built.
type Schema struct {
	fields map[string]*fieldSchema
	order  []string
	logger *zap.Logger
}

type fieldSchema struct {
	name     string
	label    string
	shape    Shape
	base     *openapi3.Schema
	native   []nativeCheck
	refining []formconfig.ValidationRule
	dates    []formconfig.ValidationRule
	optional bool
}

// Build derives a Schema from fields. It fails when a custom rule carries
// no validator or a rule kind is unknown.
func Build(fields map[string]formconfig.FieldConfig, opts ...Option) (*Schema, error) {
	cfg := options{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	schema := &Schema{
		fields: make(map[string]*fieldSchema, len(fields)),
		order:  make([]string, 0, len(fields)),
		logger: cfg.logger,
	}
	for name, field := range fields {
		built, err := buildField(name, field)
		if err != nil {
			return nil, err
		}
		schema.fields[name] = built
		schema.order = append(schema.order, name)
	}
	sort.Strings(schema.order)
	return schema, nil
}

func buildField(name string, field formconfig.FieldConfig) (*fieldSchema, error) {
	shape := ShapeFor(field.Type)
	built := &fieldSchema{
		name:     name,
		label:    field.Label,
		shape:    shape,
		base:     shapeSchema(shape),
		optional: true,
	}

	for idx, rule := range field.ValidationRules {
		switch rule.Type {
		case formconfig.RuleEmail, formconfig.RuleURL,
			formconfig.RuleMinLength, formconfig.RuleMaxLength,
			formconfig.RuleMinItems, formconfig.RuleMaxItems:
			built.native = append(built.native, newNativeCheck(rule))
		case formconfig.RuleRequired:
			built.optional = false
			built.refining = append(built.refining, rule)
		case formconfig.RuleCustom:
			if rule.Validator == nil {
				return nil, fmt.Errorf("%w: field %q rule %d", ErrMissingValidator, name, idx)
			}
			built.refining = append(built.refining, rule)
		case formconfig.RuleDateAfter, formconfig.RuleDateBefore:
			if rule.Field == "" {
				return nil, fmt.Errorf("validation: field %q rule %d: %s needs a field to compare with", name, idx, rule.Type)
			}
			built.dates = append(built.dates, rule)
		default:
			return nil, fmt.Errorf("validation: field %q rule %d: unknown rule type %q", name, idx, rule.Type)
		}
	}
	return built, nil
}

func shapeSchema(shape Shape) *openapi3.Schema {
	switch shape {
	case ShapeString:
		return openapi3.NewStringSchema()
	case ShapeStringList:
		return openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())
	default:
		return nil
	}
}

// Fields returns the validated field names, sorted.
func (s *Schema) Fields() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Has reports whether the schema validates name.
func (s *Schema) Has(name string) bool {
	_, ok := s.fields[name]
	return ok
}

// Optional reports whether name accepts a missing value.
func (s *Schema) Optional(name string) bool {
	field, ok := s.fields[name]
	return !ok || field.optional
}

// Validate checks every field against values.
func (s *Schema) Validate(values map[string]any) Result {
	return s.ValidateFields(values, s.order)
}

// ValidateFields checks only the named fields against values. Names the
// schema does not know are ignored.
func (s *Schema) ValidateFields(values map[string]any, names []string) Result {
	result := Result{Valid: true}
	for _, name := range names {
		if !s.Has(name) {
			continue
		}
		if messages := s.ValidateField(name, values[name], values); len(messages) > 0 {
			result.add(name, messages)
		}
	}
	return result
}

// ValidateField runs the pipeline for one field and returns its failure
// messages in rule order. values gives custom and date rules access to the
// rest of the form.
func (s *Schema) ValidateField(name string, value any, values map[string]any) []string {
	field, ok := s.fields[name]
	if !ok {
		return nil
	}
	return field.validate(value, values, s.logger)
}

func (f *fieldSchema) validate(value any, values map[string]any, logger *zap.Logger) []string {
	var messages []string
	if value != nil {
		normalised, err := normalise(value)
		if err != nil {
			return []string{shapeMessage(f.shape)}
		}
		if f.base != nil && f.base.VisitJSON(normalised) != nil {
			return []string{shapeMessage(f.shape)}
		}
		for _, check := range f.native {
			if !check.valid(normalised) {
				messages = append(messages, check.rule.ErrorMessage())
			}
		}
	}

	for _, rule := range f.refining {
		if message, ok := refine(f.name, rule, value, values, logger); !ok {
			messages = append(messages, message)
		}
	}
	// Custom rules decide for themselves whether an absent optional value is acceptable.
	if value == nil && f.optional {
		return messages
	}
	for _, rule := range f.dates {
		if !compareDates(rule, value, values) {
			messages = append(messages, rule.ErrorMessage())
		}
	}
	return messages
}

func shapeMessage(shape Shape) string {
	switch shape {
	case ShapeString:
		return "Must be text"
	case ShapeStringList:
		return "Must be a list of text values"
	default:
		return "Invalid value"
	}
}
