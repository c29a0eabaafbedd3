// Package engine runs one form instance on top of a merged configuration:
// it tracks values, keeps field visibility current as values change, and
// validates and submits the visible fields.
package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/mohae/deepcopy"
	"go.uber.org/zap"

	"github.com/goliatone/go-formlogic/pkg/formconfig"
	"github.com/goliatone/go-formlogic/pkg/validation"
	"github.com/goliatone/go-formlogic/pkg/visibility"
)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithID overrides the generated session id.
func WithID(id uuid.UUID) Option {
	return func(s *Session) {
		if id != uuid.Nil {
			s.id = id
		}
	}
}

// Session is one running form. It is not safe for concurrent use.
type Session struct {
	id     uuid.UUID
	cfg    formconfig.MergedConfig
	schema *validation.Schema
	logger *zap.Logger

	index       visibility.Index
	values      map[string]any
	hidden      map[string]bool
	ruleResults []bool
	targeted    map[string][]int
	visible     map[string]bool
	computedBy  map[string][]int
}

// New starts a session for cfg. Values are seeded from the default values,
// every visibility rule is evaluated once and computed fields run once.
func New(cfg formconfig.MergedConfig, opts ...Option) (*Session, error) {
	s := &Session{
		id:     uuid.New(),
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	s.logger = s.logger.With(zap.String("session", s.id.String()))

	schema, err := validation.Build(cfg.FieldConfigs(), validation.WithLogger(s.logger))
	if err != nil {
		return nil, fmt.Errorf("engine: build schema: %w", err)
	}
	s.schema = schema

	s.values = make(map[string]any, len(cfg.Behavior.DefaultValues))
	for key, value := range cfg.Behavior.DefaultValues {
		s.values[key] = deepcopy.Copy(value)
	}
	s.hidden = make(map[string]bool, len(cfg.Behavior.InitiallyHiddenFields))
	for _, field := range cfg.Behavior.InitiallyHiddenFields {
		s.hidden[field] = true
	}

	rules := cfg.Behavior.VisibilityRules
	s.index = cfg.RuleIndex()
	if s.index.Len() != len(rules) {
		s.index = visibility.NewIndex(rules)
	}
	s.ruleResults = make([]bool, len(rules))
	s.targeted = make(map[string][]int)
	for pos, rule := range rules {
		s.targeted[rule.Field] = append(s.targeted[rule.Field], pos)
	}
	s.computedBy = make(map[string][]int)
	for pos, computed := range cfg.Behavior.ComputedFields {
		for _, dep := range computed.Dependencies {
			s.computedBy[dep] = append(s.computedBy[dep], pos)
		}
	}

	all := make([]int, len(cfg.Behavior.ComputedFields))
	for pos := range all {
		all[pos] = pos
	}
	s.runComputed(all, map[int]bool{})

	positions := make([]int, len(rules))
	for pos := range positions {
		positions[pos] = pos
	}
	s.evaluate(positions)

	s.visible = make(map[string]bool, len(cfg.Fields))
	for name := range cfg.Fields {
		s.visible[name] = s.resolve(name)
	}
	for name := range s.targeted {
		s.visible[name] = s.resolve(name)
	}

	s.logger.Debug("engine: session started",
		zap.Int("fields", len(cfg.Fields)),
		zap.Int("rules", len(rules)),
		zap.Strings("visible", s.VisibleFields()),
	)
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() uuid.UUID { return s.id }

// Config returns the merged configuration the session runs.
func (s *Session) Config() formconfig.MergedConfig { return s.cfg }

// Schema returns the validation schema built for the session.
func (s *Session) Schema() *validation.Schema { return s.schema }

// SetValue stores value for field, recomputes dependent computed fields and
// re-runs only the visibility rules that depend on a changed field. It
// returns the sorted names of fields whose visibility changed.
func (s *Session) SetValue(field string, value any) []string {
	s.values[field] = value

	changed := []string{field}
	done := map[int]bool{}
	queue := []string{field}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, name := range s.runComputed(s.computedBy[current], done) {
			changed = append(changed, name)
			queue = append(queue, name)
		}
	}

	affected := map[int]struct{}{}
	for _, name := range changed {
		for _, pos := range s.index.Affected(name) {
			affected[pos] = struct{}{}
		}
	}
	positions := make([]int, 0, len(affected))
	for pos := range affected {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	s.evaluate(positions)

	targets := map[string]struct{}{}
	for _, pos := range positions {
		targets[s.cfg.Behavior.VisibilityRules[pos].Field] = struct{}{}
	}
	var toggled []string
	for target := range targets {
		next := s.resolve(target)
		if prev, ok := s.visible[target]; !ok || prev != next {
			s.visible[target] = next
			toggled = append(toggled, target)
		}
	}
	sort.Strings(toggled)

	s.logger.Debug("engine: value set",
		zap.String("field", field),
		zap.Int("rules", len(positions)),
		zap.Strings("toggled", toggled),
	)
	return toggled
}

// runComputed recomputes the computed fields at positions, skipping those
// already in done, and returns the names it updated.
func (s *Session) runComputed(positions []int, done map[int]bool) []string {
	var updated []string
	for _, pos := range positions {
		if done[pos] {
			continue
		}
		done[pos] = true
		computed := s.cfg.Behavior.ComputedFields[pos]
		if computed.Compute == nil {
			continue
		}
		value, ok := s.compute(computed)
		if !ok {
			continue
		}
		s.values[computed.Field] = value
		updated = append(updated, computed.Field)
	}
	return updated
}

func (s *Session) compute(computed formconfig.ComputedField) (value any, ok bool) {
	defer func() {
		if recovered := recover(); recovered != nil {
			s.logger.Warn("engine: computed field panicked",
				zap.String("field", computed.Field),
				zap.String("panic", fmt.Sprint(recovered)),
			)
			value, ok = nil, false
		}
	}()
	return computed.Compute(s.snapshot()), true
}

func (s *Session) evaluate(positions []int) {
	values := s.snapshot()
	for _, pos := range positions {
		rule := s.cfg.Behavior.VisibilityRules[pos]
		ok, err := rule.Visible(values)
		if err != nil {
			s.logger.Warn("engine: visibility rule failed, hiding field",
				zap.String("field", rule.Field),
				zap.Error(err),
			)
		}
		s.ruleResults[pos] = ok
	}
}

// resolve combines the stored rule results for field. A field without
// rules is visible unless it starts hidden.
func (s *Session) resolve(field string) bool {
	positions, ok := s.targeted[field]
	if !ok {
		return !s.hidden[field]
	}
	for _, pos := range positions {
		if !s.ruleResults[pos] {
			return false
		}
	}
	return true
}

// Value returns the current value of field.
func (s *Session) Value(field string) (any, bool) {
	value, ok := s.values[field]
	return value, ok
}

// Values returns a copy of all current values.
func (s *Session) Values() map[string]any {
	return s.snapshot()
}

func (s *Session) snapshot() map[string]any {
	out := make(map[string]any, len(s.values))
	for key, value := range s.values {
		out[key] = deepcopy.Copy(value)
	}
	return out
}

// Visible reports whether field is currently shown.
func (s *Session) Visible(field string) bool {
	if visible, ok := s.visible[field]; ok {
		return visible
	}
	return s.resolve(field)
}

// VisibleFields returns the sorted names of configured fields currently
// shown.
func (s *Session) VisibleFields() []string {
	out := make([]string, 0, len(s.cfg.Fields))
	for name := range s.cfg.Fields {
		if s.Visible(name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// VisibleRows returns the layout rows restricted to fields that exist and
// are visible. Rows left empty are dropped.
func (s *Session) VisibleRows() []formconfig.LayoutRow {
	rows := make([]formconfig.LayoutRow, 0, len(s.cfg.Layout.Structure))
	for _, row := range s.cfg.Layout.Structure {
		items := make([]string, 0, len(row.Items))
		for _, item := range row.Items {
			if _, ok := s.cfg.Fields[item]; !ok {
				continue
			}
			if s.Visible(item) {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			continue
		}
		row.Items = items
		rows = append(rows, row)
	}
	return rows
}

// Validate checks the visible fields against the current values.
func (s *Session) Validate() validation.Result {
	return s.schema.ValidateFields(s.values, s.VisibleFields())
}

// Submit validates the visible fields and, when they pass, hands every
// current value to the configured submit handler. Validation failures are
// returned as *SubmitError.
func (s *Session) Submit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("engine: submit: %w", err)
	}
	result := s.Validate()
	if !result.Valid {
		s.logger.Debug("engine: submit rejected", zap.Strings("fields", result.Failed()))
		return &SubmitError{Fields: result.Fields}
	}
	submit := s.cfg.Behavior.OnSubmit
	if submit == nil {
		return nil
	}
	if err := submit(ctx, s.Values()); err != nil {
		return fmt.Errorf("engine: submit: %w", err)
	}
	s.logger.Debug("engine: submitted", zap.String("action", s.cfg.Behavior.SubmitAction))
	return nil
}
