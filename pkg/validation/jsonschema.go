package validation

import (
	"errors"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formlogic/pkg/formconfig"
)

// Issue is a document-level validation failure located by JSON pointer.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// JSONSchema exports the schema as an object schema. Fields without a
// required rule are left out of "required"; custom and date rules have no
// JSON schema form and are omitted.
func (s *Schema) JSONSchema() *openapi3.Schema {
	doc := openapi3.NewObjectSchema()
	for _, name := range s.order {
		field := s.fields[name]
		doc.WithProperty(name, field.jsonSchema())
		if !field.optional {
			doc.Required = append(doc.Required, name)
		}
	}
	return doc
}

func (f *fieldSchema) jsonSchema() *openapi3.Schema {
	var out *openapi3.Schema
	switch f.shape {
	case ShapeString:
		out = openapi3.NewStringSchema()
	case ShapeStringList:
		out = openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())
	default:
		out = openapi3.NewSchema()
	}
	out.Title = f.label
	if f.optional {
		out.Nullable = true
	}

	for _, check := range f.native {
		bound := int64(max(check.rule.Value, 0))
		switch check.rule.Type {
		case formconfig.RuleEmail:
			out.Format = "email"
		case formconfig.RuleURL:
			out.Format = "uri"
		case formconfig.RuleMinLength:
			out.WithMinLength(bound)
		case formconfig.RuleMaxLength:
			out.WithMaxLength(bound)
		case formconfig.RuleMinItems:
			out.WithMinItems(bound)
		case formconfig.RuleMaxItems:
			out.WithMaxItems(bound)
		}
	}
	if f.shape == ShapeStringList && !f.optional && out.MinItems == 0 {
		out.WithMinItems(1)
	}
	return out
}

// ValidateDocument checks values against the exported JSON schema and
// reports every failure with its location. It is meant for tooling that
// works on whole documents; forms should use Validate for per-field
// messages.
func (s *Schema) ValidateDocument(values map[string]any) []Issue {
	normalised, err := normalise(values)
	if err != nil {
		return []Issue{{Message: err.Error()}}
	}
	if normalised == nil {
		normalised = map[string]any{}
	}
	err = s.JSONSchema().VisitJSON(normalised, openapi3.MultiErrors())
	if err == nil {
		return nil
	}

	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		issues := make([]Issue, 0, len(multi))
		for _, item := range multi {
			issues = append(issues, issueFromError(item))
		}
		return issues
	}
	return []Issue{issueFromError(err)}
}

func issueFromError(err error) Issue {
	if err == nil {
		return Issue{Message: "unknown error"}
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		pointer := schemaErr.JSONPointer()
		return Issue{
			Path:    pointerPath(pointer),
			Field:   fieldPath(pointer),
			Message: strings.TrimSpace(schemaErr.Reason),
		}
	}
	return Issue{Message: strings.TrimSpace(err.Error())}
}

func pointerPath(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	escaped := make([]string, len(segments))
	for idx, segment := range segments {
		segment = strings.ReplaceAll(segment, "~", "~0")
		escaped[idx] = strings.ReplaceAll(segment, "/", "~1")
	}
	return "/" + strings.Join(escaped, "/")
}

// fieldPath renders pointer segments as a dotted field path; list indexes
// stay as separate segments, so "tags/1" becomes "tags.1".
func fieldPath(segments []string) string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		out = append(out, segment)
	}
	return strings.Join(out, ".")
}
