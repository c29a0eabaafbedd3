// Package prompt fills a form session interactively, one visible field at a
// time, re-checking visibility after every answer.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formlogic/pkg/engine"
	"github.com/goliatone/go-formlogic/pkg/formconfig"
)

// DefaultMaxAttempts bounds how often a field is asked again after failing
// validation.
const DefaultMaxAttempts = 3

// Option configures Fill.
type Option func(*filler)

// WithMaxAttempts sets how many answers a field may get before Fill gives up.
func WithMaxAttempts(n int) Option {
	return func(f *filler) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

// WithLogger sets the logger used for skipped fields and retries.
func WithLogger(logger *zap.Logger) Option {
	return func(f *filler) {
		if logger != nil {
			f.logger = logger
		}
	}
}

type filler struct {
	session     *engine.Session
	driver      Driver
	maxAttempts int
	logger      *zap.Logger
}

// Fill prompts for every visible field in layout order and stores each answer
// on session. Fields that become visible because of an earlier answer are
// asked too; file and custom fields are skipped. An answer that keeps failing
// validation ends the fill with ErrTooManyAttempts.
func Fill(ctx context.Context, session *engine.Session, driver Driver, opts ...Option) error {
	if session == nil {
		return fmt.Errorf("prompt: session is nil")
	}
	if driver == nil {
		return fmt.Errorf("prompt: driver is nil")
	}
	f := &filler{
		session:     session,
		driver:      driver,
		maxAttempts: DefaultMaxAttempts,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(f)
	}

	asked := make(map[string]bool)
	for {
		name, ok := f.next(asked)
		if !ok {
			return nil
		}
		asked[name] = true
		if err := f.fillField(ctx, name); err != nil {
			return err
		}
	}
}

// next returns the first visible field in layout order that has not been
// asked yet. Without a layout every visible field is asked, sorted by name.
func (f *filler) next(asked map[string]bool) (string, bool) {
	var order []string
	if rows := f.session.VisibleRows(); len(f.session.Config().Layout.Structure) > 0 {
		for _, row := range rows {
			order = append(order, row.Items...)
		}
	} else {
		order = f.session.VisibleFields()
	}
	for _, name := range order {
		if !asked[name] {
			return name, true
		}
	}
	return "", false
}

func (f *filler) fillField(ctx context.Context, name string) error {
	field := f.session.Config().Fields[name]
	switch field.Type {
	case formconfig.FieldFile, formconfig.FieldCustom:
		f.logger.Debug("prompt: field skipped", zap.String("field", name), zap.String("type", string(field.Type)))
		return nil
	}

	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		value, err := f.ask(ctx, name, field.FieldConfig)
		if err != nil {
			return fmt.Errorf("prompt: field %q: %w", name, err)
		}

		values := f.session.Values()
		values[name] = value
		messages := f.session.Schema().ValidateField(name, value, values)
		if len(messages) == 0 {
			f.session.SetValue(name, value)
			return nil
		}

		f.logger.Debug("prompt: answer rejected",
			zap.String("field", name),
			zap.Int("attempt", attempt),
			zap.Strings("messages", messages),
		)
		for _, message := range messages {
			if err := f.driver.Info(ctx, fmt.Sprintf("%s: %s", labelFor(name, field.FieldConfig), message)); err != nil {
				return fmt.Errorf("prompt: field %q: %w", name, err)
			}
		}
	}
	return fmt.Errorf("%w: %s", ErrTooManyAttempts, name)
}

func (f *filler) ask(ctx context.Context, name string, field formconfig.FieldConfig) (any, error) {
	message := labelFor(name, field)
	current, _ := f.session.Value(name)
	options := optionsFor(field)
	help := helpFor(field)

	switch {
	case field.Type == formconfig.FieldTextarea:
		text, err := f.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: textOf(current), Help: help})
		if err != nil {
			return nil, err
		}
		return answer(text), nil

	case field.Type == formconfig.FieldSelect && len(options) > 0:
		idx, err := f.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      options,
			DefaultIndex: indexOf(options, textOf(current)),
			Help:         help,
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(options) {
			return nil, nil
		}
		return options[idx], nil

	case field.Type == formconfig.FieldMultiSelect && len(options) > 0:
		indices, err := f.driver.MultiSelect(ctx, SelectConfig{
			Message:  message,
			Options:  options,
			Defaults: indicesOf(options, textsOf(current)),
			Help:     help,
		})
		if err != nil {
			return nil, err
		}
		selected := make([]any, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(options) {
				selected = append(selected, options[idx])
			}
		}
		return selected, nil

	default:
		text, err := f.driver.Input(ctx, InputConfig{
			Message:   message,
			Default:   textOf(current),
			Help:      help,
			Validator: f.validator(name),
		})
		if err != nil {
			return nil, err
		}
		return answer(text), nil
	}
}

// validator checks typed text against the field rules before the driver
// accepts it.
func (f *filler) validator(name string) func(string) error {
	return func(text string) error {
		value := answer(text)
		values := f.session.Values()
		values[name] = value
		if messages := f.session.Schema().ValidateField(name, value, values); len(messages) > 0 {
			return errors.New(strings.Join(messages, "; "))
		}
		return nil
	}
}

// answer stores blank text as no value so optional fields stay unset.
func answer(text string) any {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return text
}

func labelFor(name string, field formconfig.FieldConfig) string {
	if field.Label != "" {
		return field.Label
	}
	return name
}

func helpFor(field formconfig.FieldConfig) string {
	help, _ := field.Props["help"].(string)
	return help
}

func optionsFor(field formconfig.FieldConfig) []string {
	switch raw := field.Props["options"].(type) {
	case []string:
		return raw
	case []any:
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return nil
	}
}

func textOf(value any) string {
	if text, ok := value.(string); ok {
		return text
	}
	return ""
}

func textsOf(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if text, ok := item.(string); ok {
				out = append(out, text)
			}
		}
		return out
	default:
		return nil
	}
}
