package engine

import (
	"errors"
	"sort"
	"strings"
)

// ErrInvalid matches every *SubmitError via errors.Is.
var ErrInvalid = errors.New("engine: form is invalid")

// SubmitError reports the visible fields that failed validation on submit.
type SubmitError struct {
	Fields map[string][]string
}

func (e *SubmitError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "engine: form is invalid: " + strings.Join(names, ", ")
}

// Is lets errors.Is match ErrInvalid.
func (e *SubmitError) Is(target error) bool {
	return target == ErrInvalid
}
