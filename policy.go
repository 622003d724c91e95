package settings

import (
	"context"

	"github.com/goliatone/go-clef-settings/internal/hydrate"
)

// IsMultisiteEnabled reports whether the plugin is network activated and the
// network has switched on shared settings.
func (r *Resolver) IsMultisiteEnabled(ctx context.Context) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	return r.host.IsPluginActiveForNetwork(ctx, r.cfg.pluginFile) &&
		r.networkFlag(ctx, MultisiteEnabledOption)
}

// MultisiteDisallowSettingsOverride reports whether multisite is enabled and
// the network forbids sites from keeping their own settings.
func (r *Resolver) MultisiteDisallowSettingsOverride(ctx context.Context) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	return r.IsMultisiteEnabled(ctx) && !r.networkFlag(ctx, MultisiteAllowOverrideOption)
}

// IsConfigured reports whether both application credentials are set.
func (r *Resolver) IsConfigured() bool {
	return r.Settings().Configured()
}

// PasswordsDisabled reports whether passwords are disabled site-wide by any
// rule: forced, disabled for linked users, or disabled by role threshold.
func (r *Resolver) PasswordsDisabled() bool {
	return r.Settings().PasswordsDisabled()
}

// XMLPasswordsEnabled reports whether XML-RPC may still authenticate with a
// password.
func (r *Resolver) XMLPasswordsEnabled() bool {
	s := r.Settings()
	disabled := s.PasswordsDisabled()
	// Same as !disabled || s.XMLPasswordsAllowed.
	return !disabled || (disabled && s.XMLPasswordsAllowed)
}

// PasswordsAreDisabledForUser reports whether user must log in without a
// password. Nothing is disabled until the application credentials are set.
//
// A configured password rule is evaluated last with these inputs:
//
//	settings   the effective settings map
//	user       {id, roles, super_admin, clef_id}
//	threshold  the role threshold name, "" when off
//	disabled   the result of the built-in checks
func (r *Resolver) PasswordsAreDisabledForUser(ctx context.Context, user User) bool {
	if ctx == nil {
		ctx = context.Background()
	}

	r.mu.RLock()
	s := r.settings
	threshold := r.threshold
	r.mu.RUnlock()

	if !s.Configured() {
		return false
	}

	disabled := s.ForceDisablePasswords

	var clefID any
	if s.DisablePasswords || r.cfg.passwordRule != "" {
		clefID = r.userMeta(ctx, user.ID, UserMetaClefID)
	}
	if s.DisablePasswords && hydrate.Truthy(clefID) {
		disabled = true
	}

	if threshold.Known() {
		if exceedsThreshold(user.Roles, threshold) {
			disabled = true
		}
		if threshold == RoleSuperAdministrator && r.host.IsSuperAdmin(ctx, user.ID) {
			disabled = true
		}
	}

	if r.cfg.passwordRule != "" && r.passwordRule(ctx, user, s, clefID, disabled) {
		disabled = true
	}
	return disabled
}

// exceedsThreshold reports whether any ranked role other than subscriber is at
// or above threshold.
func exceedsThreshold(roles []string, threshold Role) bool {
	for _, name := range roles {
		rank := ParseRole(name)
		if !rank.Known() || rank == RoleSubscriber {
			continue
		}
		if rank >= threshold {
			return true
		}
	}
	return false
}

func (r *Resolver) userMeta(ctx context.Context, userID int64, key string) any {
	value, err := r.host.GetUserMeta(ctx, userID, key)
	if err != nil {
		r.log(LogEvent{Operation: "user_meta", Key: key, Mode: r.Mode(), Err: err})
		return nil
	}
	return value
}
