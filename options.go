package settings

import (
	"context"
	"strings"

	"github.com/goliatone/go-clef-settings/layering"
	"github.com/goliatone/go-clef-settings/pkg/activity"
	"github.com/goliatone/go-clef-settings/pkg/rules"
)

// Option configures a Resolver.
type Option func(*config)

type config struct {
	optionName   string
	pluginFile   string
	logger       Logger
	hooks        activity.Hooks
	activity     activity.Config
	activitySet  bool
	defaults     map[string]any
	engine       rules.Engine
	passwordRule string
}

func applyOptions(opts []Option) config {
	cfg := config{
		optionName: DefaultOptionName,
		pluginFile: DefaultPluginFile,
		logger:     noopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if !cfg.activitySet {
		cfg.activity.Enabled = len(cfg.hooks) > 0
	}
	if cfg.engine == nil {
		cfg.engine = rules.NewExprEngine()
	}
	return cfg
}

// WithOptionName overrides the option the settings map is stored under.
func WithOptionName(name string) Option {
	return func(cfg *config) {
		if name = strings.TrimSpace(name); name != "" {
			cfg.optionName = name
		}
	}
}

// WithPluginFile overrides the plugin identifier used for network checks.
func WithPluginFile(plugin string) Option {
	return func(cfg *config) {
		if plugin = strings.TrimSpace(plugin); plugin != "" {
			cfg.pluginFile = plugin
		}
	}
}

// WithActivityHooks emits setting mutations to hooks.
func WithActivityHooks(hooks ...activity.ActivityHook) Option {
	return func(cfg *config) {
		cfg.hooks = append(cfg.hooks, hooks...)
	}
}

// WithActivityConfig controls emission, the default channel and site ID.
func WithActivityConfig(activityCfg activity.Config) Option {
	return func(cfg *config) {
		cfg.activity = activityCfg
		cfg.activitySet = true
	}
}

// WithDefaults supplies values that fill keys missing from the stored map in
// All and Settings. Get reports stored values only. Defaults are never
// persisted.
func WithDefaults(defaults map[string]any) Option {
	return func(cfg *config) {
		cfg.defaults = layering.Clone(defaults)
	}
}

// WithRuleEngine replaces the expr engine used by Evaluate and password rules.
func WithRuleEngine(engine rules.Engine) Option {
	return func(cfg *config) {
		if engine != nil {
			cfg.engine = engine
		}
	}
}

// WithPasswordRule adds an expression that, when true, disables passwords for
// the user under evaluation. See PasswordsAreDisabledForUser for its inputs.
func WithPasswordRule(expression string) Option {
	return func(cfg *config) {
		cfg.passwordRule = strings.TrimSpace(expression)
	}
}

type actorKey struct{}

// ContextWithActor tags ctx with the ID of the user making changes so activity
// events can attribute them.
func ContextWithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

func actorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}
