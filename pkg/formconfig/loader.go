package formconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formlogic/pkg/logic"
	"github.com/goliatone/go-formlogic/pkg/logic/expr"
)

// Load parses a JSON or YAML base configuration. source names the document
// in error messages. Labels and messages are reduced to plain text.
func Load(data []byte, source string) (BaseConfig, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return BaseConfig{}, fmt.Errorf("formconfig: %s is empty", source)
	}

	var cfg BaseConfig
	jsonErr := json.Unmarshal(data, &cfg)
	if jsonErr != nil {
		cfg = BaseConfig{}
		if yamlErr := yaml.Unmarshal(data, &cfg); yamlErr != nil {
			if isJSONDocument(data) {
				return BaseConfig{}, fmt.Errorf("formconfig: parse %s: %w", source, jsonErr)
			}
			return BaseConfig{}, fmt.Errorf("formconfig: parse %s: %w", source, yamlErr)
		}
	}

	if err := normalise(&cfg, source); err != nil {
		return BaseConfig{}, err
	}
	return cfg, nil
}

// LoadReader reads r fully and parses it with Load.
func LoadReader(r io.Reader, source string) (BaseConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return BaseConfig{}, fmt.Errorf("formconfig: read %s: %w", source, err)
	}
	return Load(data, source)
}

// LoadFile parses the configuration stored at path.
func LoadFile(path string) (BaseConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BaseConfig{}, fmt.Errorf("formconfig: read %s: %w", path, err)
	}
	return Load(data, filepath.Base(path))
}

// LoadFS parses the configuration stored at name within fsys.
func LoadFS(fsys fs.FS, name string) (BaseConfig, error) {
	if fsys == nil {
		return BaseConfig{}, fmt.Errorf("formconfig: filesystem is nil")
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return BaseConfig{}, fmt.Errorf("formconfig: read %s: %w", name, err)
	}
	return Load(data, name)
}

func isJSONDocument(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func normalise(cfg *BaseConfig, source string) error {
	for name, field := range cfg.Fields {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("formconfig: %s defines a field with an empty name", source)
		}
		field.Label = sanitizeText(field.Label)
		for idx, rule := range field.ValidationRules {
			if rule.Type == "" {
				return fmt.Errorf("formconfig: %s field %q rule %d has no type", source, name, idx)
			}
			rule.Message = sanitizeText(rule.Message)
			field.ValidationRules[idx] = rule
		}
		cfg.Fields[name] = field
	}
	for idx, rule := range cfg.Behavior.VisibilityRules {
		if strings.TrimSpace(rule.Field) == "" {
			return fmt.Errorf("formconfig: %s visibility rule %d has no field", source, idx)
		}
	}
	return nil
}

// UnmarshalJSON accepts the condition as a rule object or an expression
// string such as "plan == 'pro'".
func (r *VisibilityRule) UnmarshalJSON(data []byte) error {
	var wire struct {
		Field        string   `json:"field"`
		Condition    any      `json:"condition"`
		Dependencies []string `json:"dependencies"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	condition, err := decodeCondition(wire.Field, wire.Condition)
	if err != nil {
		return err
	}
	*r = VisibilityRule{Field: wire.Field, Condition: condition, Dependencies: wire.Dependencies}
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML documents.
func (r *VisibilityRule) UnmarshalYAML(node *yaml.Node) error {
	var wire struct {
		Field        string   `yaml:"field"`
		Condition    any      `yaml:"condition"`
		Dependencies []string `yaml:"dependencies"`
	}
	if err := node.Decode(&wire); err != nil {
		return err
	}
	condition, err := decodeCondition(wire.Field, wire.Condition)
	if err != nil {
		return err
	}
	*r = VisibilityRule{Field: wire.Field, Condition: condition, Dependencies: wire.Dependencies}
	return nil
}

func decodeCondition(field string, raw any) (logic.Rule, error) {
	switch v := raw.(type) {
	case nil:
		return logic.Rule{}, fmt.Errorf("formconfig: visibility rule for %q has no condition", field)
	case string:
		rule, err := expr.Compile(v)
		if err != nil {
			return logic.Rule{}, fmt.Errorf("formconfig: visibility rule for %q: %w", field, err)
		}
		return rule, nil
	default:
		rule, err := logic.Parse(v)
		if err != nil {
			return logic.Rule{}, fmt.Errorf("formconfig: visibility rule for %q: %w", field, err)
		}
		return rule, nil
	}
}
