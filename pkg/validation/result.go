package validation

import (
	"sort"
	"strings"
)

// Result holds the failures of one validation pass keyed by field name.
type Result struct {
	Valid  bool                `json:"valid"`
	Fields map[string][]string `json:"fields,omitempty"`
}

func (r *Result) add(field string, messages []string) {
	if r.Fields == nil {
		r.Fields = make(map[string][]string)
	}
	r.Fields[field] = append(r.Fields[field], messages...)
	r.Valid = false
}

// Messages returns the failures recorded for field.
func (r Result) Messages(field string) []string {
	return r.Fields[field]
}

// Failed returns the names of fields with failures, sorted.
func (r Result) Failed() []string {
	out := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// String renders one "field: message" line per failure.
func (r Result) String() string {
	if r.Valid {
		return "valid"
	}
	var b strings.Builder
	for _, name := range r.Failed() {
		for _, message := range r.Fields[name] {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(name)
			b.WriteString(": ")
			b.WriteString(message)
		}
	}
	return b.String()
}
