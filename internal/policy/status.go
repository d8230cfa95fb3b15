// Package policy decides who may move an appointment between statuses.
package policy

import (
	"fmt"
	"strings"

	"cleverheal-api/internal/models"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// DefaultStatusRule lets admins set any status, doctors set the status of
// their own appointments, and patients cancel their own scheduled ones.
const DefaultStatusRule = `role == "admin" || (role == "doctor" && owner) || (role == "patient" && owner && current_status == "scheduled" && next_status == "cancelled")`

// StatusInput is the environment the rule is evaluated against.
type StatusInput struct {
	Role          models.Role
	Owner         bool
	CurrentStatus models.AppointmentStatus
	NextStatus    models.AppointmentStatus
}

func (in StatusInput) env() map[string]any {
	return map[string]any{
		"role":           string(in.Role),
		"owner":          in.Owner,
		"current_status": string(in.CurrentStatus),
		"next_status":    string(in.NextStatus),
	}
}

// StatusPolicy is a compiled status rule.
type StatusPolicy struct {
	source  string
	program *vm.Program
}

// NewStatusPolicy compiles rule, or DefaultStatusRule when rule is blank.
func NewStatusPolicy(rule string) (*StatusPolicy, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		rule = DefaultStatusRule
	}
	program, err := expr.Compile(rule, expr.Env(StatusInput{}.env()), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile status policy: %w", err)
	}
	return &StatusPolicy{source: rule, program: program}, nil
}

// Allow reports whether the transition described by in is permitted.
func (p *StatusPolicy) Allow(in StatusInput) (bool, error) {
	out, err := expr.Run(p.program, in.env())
	if err != nil {
		return false, fmt.Errorf("evaluate status policy: %w", err)
	}
	allowed, _ := out.(bool)
	return allowed, nil
}

func (p *StatusPolicy) String() string { return p.source }
