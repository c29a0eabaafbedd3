// Package validation derives per-field validators from form field
// configurations.
//
// Each field gets a value shape from its type (text, list of text, or
// opaque), then its native rules (length, item count, email, url), then an
// optional wrapper when it carries no required rule, and finally its
// refining rules (required, custom). The order is fixed: native checks see
// the raw shape and optional fields accept a nil value before any refining
// rule runs. Date rules compare a field against another field and run last.
//
// Native length and item constraints are expressed as kin-openapi schemas,
// which also back the JSON schema export used by tooling.
package validation
