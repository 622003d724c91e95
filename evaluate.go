package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-clef-settings/pkg/rules"
)

// Evaluate runs a boolean expression against the effective settings map,
// exposed to the expression as `settings`.
func (r *Resolver) Evaluate(expression string) (bool, error) {
	if expression == "" {
		return false, rules.ErrEmptyExpression
	}
	env := map[string]any{"settings": r.All()}
	start := time.Now()
	result, err := rules.EvalBool(r.cfg.engine, expression, env)
	r.log(LogEvent{
		Operation: "evaluate",
		Option:    r.cfg.optionName,
		Mode:      r.Mode(),
		Message:   fmt.Sprintf("%s: %s", r.cfg.engine.Name(), expression),
		Duration:  time.Since(start),
		Err:       err,
	})
	return result, err
}

// passwordRule evaluates the configured password rule. Failures are logged
// and count as false.
func (r *Resolver) passwordRule(ctx context.Context, user User, s Settings, clefID any, disabled bool) bool {
	roles := append([]string{}, user.Roles...)
	threshold := ""
	if s.RoleThresholdEnabled() {
		threshold = s.DisableCertainPasswords
	}
	env := map[string]any{
		"settings": r.All(),
		"user": map[string]any{
			"id":          user.ID,
			"roles":       roles,
			"super_admin": r.host.IsSuperAdmin(ctx, user.ID),
			"clef_id":     clefID,
		},
		"threshold": threshold,
		"disabled":  disabled,
	}
	start := time.Now()
	result, err := rules.EvalBool(r.cfg.engine, r.cfg.passwordRule, env)
	r.log(LogEvent{
		Operation: "password_rule",
		Option:    r.cfg.optionName,
		Mode:      r.Mode(),
		Message:   fmt.Sprintf("%s: %s", r.cfg.engine.Name(), r.cfg.passwordRule),
		Duration:  time.Since(start),
		Err:       err,
	})
	if err != nil {
		return false
	}
	return result
}
