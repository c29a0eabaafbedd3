package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formlogic/pkg/engine"
	"github.com/goliatone/go-formlogic/pkg/formconfig"
	"github.com/goliatone/go-formlogic/pkg/logic"
	"github.com/goliatone/go-formlogic/pkg/logic/expr"
	"github.com/goliatone/go-formlogic/pkg/prompt"
	"github.com/goliatone/go-formlogic/pkg/validation"
)

var errInvalidValues = errors.New("values are invalid")

type app struct {
	verbose bool
	logger  *zap.Logger
	driver  func(out io.Writer) prompt.Driver
}

func newApp() *app {
	return &app{driver: prompt.NewSurveyDriver}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "formlogic",
		Short:         "Evaluate form rules, merge form configs and validate values",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.logger != nil {
				return nil
			}
			config := zap.NewProductionConfig()
			if a.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(a.evalCmd(), a.mergeCmd(), a.schemaCmd(), a.validateCmd(), a.fillCmd())
	return root
}

func (a *app) evalCmd() *cobra.Command {
	var ruleSrc, dataSrc string
	var debug bool
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate a rule against a data record",
		Long: `Evaluate a rule given as a JSON object ({"operator":"equals","args":["plan","pro"]})
or as an expression (plan == 'pro' && seats > 5) and print the result as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rule, err := parseRule(ruleSrc)
			if err != nil {
				return err
			}
			data, err := decodeValues([]byte(dataSrc))
			if err != nil {
				return fmt.Errorf("decode --data: %w", err)
			}
			evaluator := logic.New(logic.WithLogger(a.logger), logic.WithDebug(debug))
			result, err := evaluator.Evaluate(rule, data)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&ruleSrc, "rule", "", "Rule as JSON or expression (required)")
	cmd.Flags().StringVar(&dataSrc, "data", "{}", "Data record as JSON")
	cmd.Flags().BoolVar(&debug, "debug", false, "Log every evaluation step")
	_ = cmd.MarkFlagRequired("rule")
	return cmd
}

func (a *app) mergeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Print the effective configuration of a form config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			merged, err := a.loadMerged(configPath)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), merged.View())
		},
	}
	addConfigFlag(cmd, &configPath)
	return cmd
}

func (a *app) schemaCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema derived from a form config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			merged, err := a.loadMerged(configPath)
			if err != nil {
				return err
			}
			schema, err := validation.Build(merged.FieldConfigs(), validation.WithLogger(a.logger))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), schema.JSONSchema())
		},
	}
	addConfigFlag(cmd, &configPath)
	return cmd
}

func (a *app) validateCmd() *cobra.Command {
	var configPath, valuesPath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a values file against the visible fields of a form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.newSession(configPath)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(valuesPath)
			if err != nil {
				return fmt.Errorf("read values: %w", err)
			}
			values, err := decodeValues(raw)
			if err != nil {
				return fmt.Errorf("decode %s: %w", valuesPath, err)
			}

			names := make([]string, 0, len(values))
			for name := range values {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				session.SetValue(name, values[name])
			}

			result := session.Validate()
			if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.Valid {
				return fmt.Errorf("%w: %s", errInvalidValues, strings.Join(result.Failed(), ", "))
			}
			return nil
		},
	}
	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&valuesPath, "values", "", "Path to a JSON or YAML values file (required)")
	_ = cmd.MarkFlagRequired("values")
	return cmd
}

func (a *app) fillCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill a form interactively and print the values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.newSession(configPath)
			if err != nil {
				return err
			}
			driver := a.driver(cmd.ErrOrStderr())
			if err := prompt.Fill(cmd.Context(), session, driver, prompt.WithLogger(a.logger)); err != nil {
				return err
			}
			if err := session.Submit(cmd.Context()); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), session.Values())
		},
	}
	addConfigFlag(cmd, &configPath)
	return cmd
}

func addConfigFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "config", "c", "", "Path to a JSON or YAML form config (required)")
	_ = cmd.MarkFlagRequired("config")
}

func (a *app) loadMerged(path string) (formconfig.MergedConfig, error) {
	base, err := formconfig.LoadFile(path)
	if err != nil {
		return formconfig.MergedConfig{}, err
	}
	return formconfig.Merge(base, formconfig.Overrides{}, formconfig.WithLogger(a.logger))
}

func (a *app) newSession(path string) (*engine.Session, error) {
	merged, err := a.loadMerged(path)
	if err != nil {
		return nil, err
	}
	return engine.New(merged, engine.WithLogger(a.logger))
}

func parseRule(src string) (logic.Rule, error) {
	trimmed := strings.TrimSpace(src)
	if strings.HasPrefix(trimmed, "{") {
		var raw any
		if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
			return logic.Rule{}, fmt.Errorf("decode --rule: %w", err)
		}
		return logic.Parse(raw)
	}
	return expr.Compile(trimmed)
}

// decodeValues reads a JSON or YAML object.
func decodeValues(data []byte) (map[string]any, error) {
	values := map[string]any{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err == nil {
		return values, nil
	}
	values = map[string]any{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
