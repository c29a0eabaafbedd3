package formconfig

import (
	"context"
	"errors"
	"fmt"

	"github.com/mohae/deepcopy"
	"go.uber.org/zap"

	"github.com/goliatone/go-formlogic/pkg/logic"
	"github.com/goliatone/go-formlogic/pkg/visibility"
)

var (
	// ErrUnknownLayoutField reports a layout row naming a field that does not
	// exist after merging.
	ErrUnknownLayoutField = errors.New("formconfig: layout references unknown field")
	// ErrInvalidVisibilityRule reports a visibility rule without a target or
	// without a condition.
	ErrInvalidVisibilityRule = errors.New("formconfig: invalid visibility rule")
)

// MergeOption configures Merge.
type MergeOption func(*mergeOptions)

type mergeOptions struct {
	logger    *zap.Logger
	evaluator *logic.Evaluator
}

// WithLogger sets the logger that generated visibility predicates use to
// report rule failures.
func WithLogger(logger *zap.Logger) MergeOption {
	return func(o *mergeOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEvaluator sets the evaluator that generated visibility predicates use.
func WithEvaluator(evaluator *logic.Evaluator) MergeOption {
	return func(o *mergeOptions) {
		if evaluator != nil {
			o.evaluator = evaluator
		}
	}
}

// Merge combines base with overrides into the effective configuration:
//
//   - fields merge per key; validation rules concatenate (base first) and
//     props merge with override keys winning
//   - a non-empty override layout replaces the base layout
//   - hidden fields, visibility rules and computed fields concatenate
//   - serialisable visibility conditions become predicates
//   - default values merge with override keys winning
//   - OnSubmit is the override function, or a no-op
//
// Inputs are never modified and the result shares no mutable state with
// them. Merge fails when a layout row names a field that does not exist.
func Merge(base BaseConfig, overrides Overrides, opts ...MergeOption) (MergedConfig, error) {
	options := mergeOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&options)
	}
	if options.evaluator == nil {
		options.evaluator = logic.New(logic.WithLogger(options.logger))
	}
	normalizer := visibility.NewNormalizer(
		visibility.WithEvaluator(options.evaluator),
		visibility.WithLogger(options.logger),
	)

	merged := MergedConfig{
		Fields: mergeFields(base.Fields, overrides.Fields),
		Layout: mergeLayout(base.Layout, overrides.Layout),
	}
	if err := validateLayout(merged.Layout, merged.Fields); err != nil {
		return MergedConfig{}, err
	}

	rules, err := mergeVisibility(base.Behavior.VisibilityRules, overrides.Behavior.VisibilityRules, normalizer)
	if err != nil {
		return MergedConfig{}, err
	}

	merged.Behavior = MergedBehavior{
		InitiallyHiddenFields: concatStrings(base.Behavior.InitiallyHiddenFields, overrides.Behavior.InitiallyHiddenFields),
		VisibilityRules:       rules,
		ComputedFields:        concatComputed(base.Behavior.ComputedFields, overrides.Behavior.ComputedFields),
		DefaultValues:         mergeValues(base.Behavior.DefaultValues, overrides.Behavior.DefaultValues),
		OnSubmit:              resolveSubmit(overrides.Behavior.OnSubmit),
		SubmitAction:          base.Behavior.OnSubmit,
	}
	merged.index = visibility.NewIndex(merged.Behavior.VisibilityRules)
	return merged, nil
}

func mergeFields(base map[string]FieldConfig, overrides map[string]FieldOverride) map[string]MergedField {
	out := make(map[string]MergedField, len(base)+len(overrides))
	for name, field := range base {
		out[name] = MergedField{FieldConfig: cloneField(field)}
	}
	for name, override := range overrides {
		current := out[name]
		if override.Type != "" {
			current.Type = override.Type
		}
		if override.Label != "" {
			current.Label = override.Label
		}
		if len(override.ValidationRules) > 0 {
			rules := make([]ValidationRule, 0, len(current.ValidationRules)+len(override.ValidationRules))
			rules = append(rules, current.ValidationRules...)
			rules = append(rules, override.ValidationRules...)
			current.ValidationRules = rules
		}
		if len(override.Props) > 0 {
			if current.Props == nil {
				current.Props = make(map[string]any, len(override.Props))
			}
			for key, value := range override.Props {
				current.Props[key] = deepcopy.Copy(value)
			}
		}
		if override.Render != nil {
			current.Render = override.Render
		}
		out[name] = current
	}
	return out
}

func mergeLayout(base, override LayoutConfig) LayoutConfig {
	if len(override.Structure) > 0 {
		return cloneLayout(override)
	}
	return cloneLayout(base)
}

func validateLayout(layout LayoutConfig, fields map[string]MergedField) error {
	for rowIdx, row := range layout.Structure {
		for _, item := range row.Items {
			if _, ok := fields[item]; !ok {
				return fmt.Errorf("%w: row %d item %q", ErrUnknownLayoutField, rowIdx, item)
			}
		}
	}
	return nil
}

func mergeVisibility(base []VisibilityRule, overrides []VisibilityOverride, normalizer *visibility.Normalizer) ([]visibility.Rule, error) {
	out := make([]visibility.Rule, 0, len(base)+len(overrides))
	for idx, rule := range base {
		if rule.Field == "" {
			return nil, fmt.Errorf("%w: base rule %d has no target field", ErrInvalidVisibilityRule, idx)
		}
		out = append(out, fromRule(rule.Field, rule.Condition, rule.Dependencies, normalizer))
	}
	for idx, rule := range overrides {
		if rule.Field == "" {
			return nil, fmt.Errorf("%w: override rule %d has no target field", ErrInvalidVisibilityRule, idx)
		}
		switch {
		case rule.Predicate != nil:
			out = append(out, visibility.Rule{
				Field:        rule.Field,
				Condition:    rule.Predicate,
				Dependencies: cloneStrings(rule.Dependencies),
			})
		case rule.Condition != nil:
			out = append(out, fromRule(rule.Field, *rule.Condition, rule.Dependencies, normalizer))
		default:
			return nil, fmt.Errorf("%w: override rule for %q has no condition", ErrInvalidVisibilityRule, rule.Field)
		}
	}
	return out, nil
}

func fromRule(field string, condition logic.Rule, deps []string, normalizer *visibility.Normalizer) visibility.Rule {
	source := condition
	dependencies := cloneStrings(deps)
	if len(dependencies) == 0 {
		dependencies = condition.Fields()
	}
	return visibility.Rule{
		Field:        field,
		Condition:    normalizer.FromRule(field, condition),
		Dependencies: dependencies,
		Source:       &source,
	}
}

func resolveSubmit(override SubmitFunc) SubmitFunc {
	if override != nil {
		return override
	}
	return noopSubmit
}

func noopSubmit(context.Context, map[string]any) error { return nil }

func concatStrings(base, extra []string) []string {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}

func concatComputed(base, extra []ComputedField) []ComputedField {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	out := make([]ComputedField, 0, len(base)+len(extra))
	for _, computed := range append(append([]ComputedField(nil), base...), extra...) {
		computed.Dependencies = cloneStrings(computed.Dependencies)
		out = append(out, computed)
	}
	return out
}

func mergeValues(base, override map[string]any) map[string]any {
	out := cloneValues(base)
	if len(override) == 0 {
		return out
	}
	if out == nil {
		out = make(map[string]any, len(override))
	}
	for key, value := range override {
		out[key] = deepcopy.Copy(value)
	}
	return out
}

func cloneField(field FieldConfig) FieldConfig {
	out := field
	out.ValidationRules = append([]ValidationRule(nil), field.ValidationRules...)
	out.Props = cloneValues(field.Props)
	return out
}

func cloneLayout(layout LayoutConfig) LayoutConfig {
	if len(layout.Structure) == 0 {
		return LayoutConfig{}
	}
	rows := make([]LayoutRow, len(layout.Structure))
	for i, row := range layout.Structure {
		row.Items = cloneStrings(row.Items)
		rows[i] = row
	}
	return LayoutConfig{Structure: rows}
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func cloneValues(values map[string]any) map[string]any {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]any, len(values))
	for key, value := range values {
		out[key] = deepcopy.Copy(value)
	}
	return out
}
