package logic

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRule matches every *InvalidRuleError via errors.Is.
	ErrInvalidRule = errors.New("logic: invalid rule")
	// ErrUnknownOperator matches every *UnknownOperatorError via errors.Is.
	ErrUnknownOperator = errors.New("logic: unknown operator")
)

// InvalidRuleError reports a rule that is not an object, lacks an operator,
// or carries arguments of the wrong shape.
type InvalidRuleError struct {
	Operator Operator
	Reason   string
}

func (e *InvalidRuleError) Error() string {
	if e.Operator != "" {
		return fmt.Sprintf("logic: invalid %s rule: %s", e.Operator, e.Reason)
	}
	return "logic: invalid rule: " + e.Reason
}

// Is lets errors.Is match ErrInvalidRule.
func (e *InvalidRuleError) Is(target error) bool {
	return target == ErrInvalidRule
}

// UnknownOperatorError reports an operator name outside the supported set.
type UnknownOperatorError struct {
	Operator string
}

func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("logic: unknown operator %q", e.Operator)
}

// Is lets errors.Is match ErrUnknownOperator.
func (e *UnknownOperatorError) Is(target error) bool {
	return target == ErrUnknownOperator
}

func missingOperator() error {
	return &InvalidRuleError{Reason: "missing operator property"}
}
