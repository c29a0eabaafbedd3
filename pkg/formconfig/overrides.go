package formconfig

import (
	"github.com/goliatone/go-formlogic/pkg/logic"
	"github.com/goliatone/go-formlogic/pkg/visibility"
)

// Overrides patches a BaseConfig from code. Every member is optional.
type Overrides struct {
	Fields   map[string]FieldOverride
	Layout   LayoutConfig
	Behavior BehaviorOverrides
}

// FieldOverride patches one field. Empty Type and Label keep the base
// values; ValidationRules are appended to the base rules.
type FieldOverride struct {
	Type            FieldType
	Label           string
	ValidationRules []ValidationRule
	Props           map[string]any
	Render          RenderFunc
}

// BehaviorOverrides patches the behaviour section.
type BehaviorOverrides struct {
	InitiallyHiddenFields []string
	VisibilityRules       []VisibilityOverride
	ComputedFields        []ComputedField
	DefaultValues         map[string]any
	OnSubmit              SubmitFunc
}

// VisibilityOverride adds a visibility rule from code. Set either Condition
// (serialisable) or Predicate (live); Predicate wins when both are set.
type VisibilityOverride struct {
	Field        string
	Condition    *logic.Rule
	Predicate    visibility.Predicate
	Dependencies []string
}

// MergedField is a field as the form engine sees it.
type MergedField struct {
	FieldConfig
	Render RenderFunc
}

// MergedConfig is the effective configuration of one form instance. It is
// built once by Merge and must be treated as immutable afterwards.
type MergedConfig struct {
	Fields   map[string]MergedField
	Layout   LayoutConfig
	Behavior MergedBehavior

	index visibility.Index
}

// MergedBehavior holds live behaviour. OnSubmit is never nil. SubmitAction
// keeps the base config's submit action name for inspection only.
type MergedBehavior struct {
	InitiallyHiddenFields []string
	VisibilityRules       []visibility.Rule
	ComputedFields        []ComputedField
	DefaultValues         map[string]any
	OnSubmit              SubmitFunc
	SubmitAction          string
}

// RulesFor returns the visibility rules to re-run after field changes.
func (c MergedConfig) RulesFor(field string) []visibility.Rule {
	positions := c.index.Affected(field)
	if len(positions) == 0 {
		return nil
	}
	out := make([]visibility.Rule, 0, len(positions))
	for _, pos := range positions {
		out = append(out, c.Behavior.VisibilityRules[pos])
	}
	return out
}

// RuleIndex exposes the dependency index over Behavior.VisibilityRules.
func (c MergedConfig) RuleIndex() visibility.Index {
	return c.index
}

// FieldConfigs returns the plain field configurations, keyed by name.
func (c MergedConfig) FieldConfigs() map[string]FieldConfig {
	out := make(map[string]FieldConfig, len(c.Fields))
	for name, field := range c.Fields {
		out[name] = field.FieldConfig
	}
	return out
}

// View projects the merged configuration back onto its serialisable parts.
// Visibility rules that only exist as live predicates are omitted, as are
// custom validators and render callbacks.
func (c MergedConfig) View() BaseConfig {
	view := BaseConfig{
		Fields: make(map[string]FieldConfig, len(c.Fields)),
		Layout: cloneLayout(c.Layout),
		Behavior: BehaviorConfig{
			InitiallyHiddenFields: cloneStrings(c.Behavior.InitiallyHiddenFields),
			DefaultValues:         cloneValues(c.Behavior.DefaultValues),
			OnSubmit:              c.Behavior.SubmitAction,
		},
	}
	for name, field := range c.Fields {
		view.Fields[name] = cloneField(field.FieldConfig)
	}
	for _, rule := range c.Behavior.VisibilityRules {
		if rule.Source == nil {
			continue
		}
		view.Behavior.VisibilityRules = append(view.Behavior.VisibilityRules, VisibilityRule{
			Field:        rule.Field,
			Condition:    *rule.Source,
			Dependencies: cloneStrings(rule.Dependencies),
		})
	}
	for _, computed := range c.Behavior.ComputedFields {
		view.Behavior.ComputedFields = append(view.Behavior.ComputedFields, ComputedField{
			Field:        computed.Field,
			Dependencies: cloneStrings(computed.Dependencies),
		})
	}
	return view
}
