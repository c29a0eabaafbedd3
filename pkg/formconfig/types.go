package formconfig

import (
	"context"

	"github.com/goliatone/go-formlogic/pkg/logic"
)

// FieldType selects the input a field renders as.
type FieldType string

const (
	FieldInput       FieldType = "input"
	FieldTextarea    FieldType = "textarea"
	FieldSelect      FieldType = "select"
	FieldMultiSelect FieldType = "multiselect"
	FieldFile        FieldType = "file"
	FieldCustom      FieldType = "custom"
)

// BaseConfig is the serialisable form definition.
type BaseConfig struct {
	Fields   map[string]FieldConfig `json:"fields" yaml:"fields"`
	Layout   LayoutConfig           `json:"layout" yaml:"layout"`
	Behavior BehaviorConfig         `json:"behavior" yaml:"behavior"`
}

// FieldConfig describes one form field.
type FieldConfig struct {
	Type            FieldType        `json:"type" yaml:"type"`
	Label           string           `json:"label,omitempty" yaml:"label,omitempty"`
	ValidationRules []ValidationRule `json:"validationRules,omitempty" yaml:"validationRules,omitempty"`
	Props           map[string]any   `json:"props,omitempty" yaml:"props,omitempty"`
}

// LayoutConfig lists the rows the form renders, top to bottom.
type LayoutConfig struct {
	Structure []LayoutRow `json:"structure" yaml:"structure"`
}

// LayoutRow groups fields rendered side by side.
type LayoutRow struct {
	RowLayoutType string      `json:"rowLayoutType,omitempty" yaml:"rowLayoutType,omitempty"`
	Items         []string    `json:"items" yaml:"items"`
	ItemsPerRow   ItemsPerRow `json:"itemsPerRow,omitempty" yaml:"itemsPerRow,omitempty"`
}

// Breakpoint names a viewport width class.
type Breakpoint string

const (
	Desktop Breakpoint = "desktop"
	Tablet  Breakpoint = "tablet"
	Mobile  Breakpoint = "mobile"
)

// ItemsPerRow sets how many columns a row uses per breakpoint. Zero values
// degrade from the wider breakpoint.
type ItemsPerRow struct {
	Desktop int `json:"desktop,omitempty" yaml:"desktop,omitempty"`
	Tablet  int `json:"tablet,omitempty" yaml:"tablet,omitempty"`
	Mobile  int `json:"mobile,omitempty" yaml:"mobile,omitempty"`
}

// Columns resolves the number of columns row renders with at bp. Desktop
// defaults to one column per item, tablet to at most two, mobile to one.
func (row LayoutRow) Columns(bp Breakpoint) int {
	desktop := row.ItemsPerRow.Desktop
	if desktop <= 0 {
		desktop = len(row.Items)
	}
	if desktop <= 0 {
		desktop = 1
	}
	tablet := row.ItemsPerRow.Tablet
	if tablet <= 0 {
		tablet = min(desktop, 2)
	}
	mobile := row.ItemsPerRow.Mobile
	if mobile <= 0 {
		mobile = 1
	}

	switch bp {
	case Tablet:
		return min(tablet, desktop)
	case Mobile:
		return min(mobile, tablet, desktop)
	default:
		return desktop
	}
}

// BehaviorConfig holds the serialisable runtime behaviour of a form.
// OnSubmit names a submit action; names are kept for inspection but are
// never invoked, only an override SubmitFunc runs on submit.
type BehaviorConfig struct {
	InitiallyHiddenFields []string         `json:"initiallyHiddenFields,omitempty" yaml:"initiallyHiddenFields,omitempty"`
	VisibilityRules       []VisibilityRule `json:"visibilityRules,omitempty" yaml:"visibilityRules,omitempty"`
	ComputedFields        []ComputedField  `json:"computedFields,omitempty" yaml:"computedFields,omitempty"`
	DefaultValues         map[string]any   `json:"defaultValues,omitempty" yaml:"defaultValues,omitempty"`
	OnSubmit              string           `json:"onSubmit,omitempty" yaml:"onSubmit,omitempty"`
}

// VisibilityRule shows Field while Condition holds. Dependencies lists the
// fields whose changes re-run the condition; when empty, the fields the
// condition references are used.
type VisibilityRule struct {
	Field        string     `json:"field" yaml:"field"`
	Condition    logic.Rule `json:"condition" yaml:"condition"`
	Dependencies []string   `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// ComputeFunc derives a field value from the current form values.
type ComputeFunc func(values map[string]any) any

// ComputedField recomputes Field whenever one of its dependencies changes.
// Compute only comes from code; computed fields loaded from files carry no
// function and are skipped by the engine.
type ComputedField struct {
	Field        string      `json:"field" yaml:"field"`
	Dependencies []string    `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Compute      ComputeFunc `json:"-" yaml:"-"`
}

// SubmitFunc receives the form values after successful validation.
type SubmitFunc func(ctx context.Context, values map[string]any) error

// RenderFunc renders a custom field slot.
type RenderFunc func(name string, field MergedField, value any) string
