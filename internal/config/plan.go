// Package config holds ccgauge configuration, plan tiers, and model tables.
package config

import (
	"fmt"
	"strings"
)

// Plan identifies a Claude subscription tier. The tier governs the token
// ceiling one 5-hour session may contain before being considered over limit.
type Plan string

const (
	PlanPro   Plan = "pro"
	PlanMax5  Plan = "max5"
	PlanMax20 Plan = "max20"
	PlanAuto  Plan = "auto"
)

// Session token ceilings per plan tier.
const (
	LimitPro   int64 = 44_000
	LimitMax5  int64 = 220_000
	LimitMax20 int64 = 880_000
)

// ParsePlan validates a plan string from config or flags.
func ParsePlan(s string) (Plan, error) {
	switch p := Plan(strings.ToLower(s)); p {
	case PlanPro, PlanMax5, PlanMax20, PlanAuto:
		return p, nil
	case "":
		return PlanAuto, nil
	}
	return "", fmt.Errorf("unknown plan %q (expected pro, max5, max20, or auto)", s)
}

// TokenLimit returns the plan's fixed ceiling. ok is false for PlanAuto,
// whose ceiling must be inferred from observed usage instead.
func (p Plan) TokenLimit() (limit int64, ok bool) {
	switch p {
	case PlanPro:
		return LimitPro, true
	case PlanMax5:
		return LimitMax5, true
	case PlanMax20:
		return LimitMax20, true
	}
	return 0, false
}

// String implements fmt.Stringer for flag and config round-trips.
func (p Plan) String() string { return string(p) }
