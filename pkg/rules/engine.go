// Package rules evaluates boolean expressions over a settings environment.
//
// Three engines are available: expr (default), CEL, and JavaScript through goja
// (only when built with the js_eval tag). Compiled programs can be shared
// through a Cache keyed by engine and expression.
package rules

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

var (
	// ErrEmptyExpression is returned for blank expressions.
	ErrEmptyExpression = errors.New("rules: expression must not be empty")
	// ErrNotBoolean is returned by EvalBool when a rule yields a non-bool.
	ErrNotBoolean = errors.New("rules: result is not a boolean")
	// ErrUnknownEngine is returned by New for unrecognised engine names.
	ErrUnknownEngine = errors.New("rules: unknown engine")
)

// Engine evaluates an expression against env.
type Engine interface {
	Name() string
	Eval(expression string, env map[string]any) (any, error)
}

// Cache stores compiled programs.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// Option configures an engine.
type Option func(*engineConfig)

type engineConfig struct {
	cache Cache
}

// WithCache shares compiled programs through cache.
func WithCache(cache Cache) Option {
	return func(cfg *engineConfig) {
		cfg.cache = cache
	}
}

func applyOptions(opts []Option) engineConfig {
	cfg := engineConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// New returns the engine registered under name ("expr", "cel" or "js").
func New(name string, opts ...Option) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "expr":
		return NewExprEngine(opts...), nil
	case "cel":
		return NewCELEngine(opts...), nil
	case "js", "javascript":
		engine := NewJSEngine(opts...)
		if engine == nil {
			return nil, fmt.Errorf("%w: js requires the js_eval build tag", ErrUnknownEngine)
		}
		return engine, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}

// EvalBool runs expression and requires a boolean result.
func EvalBool(engine Engine, expression string, env map[string]any) (bool, error) {
	if engine == nil {
		return false, fmt.Errorf("rules: engine is nil")
	}
	out, err := engine.Eval(expression, env)
	if err != nil {
		return false, err
	}
	result, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s returned %T", ErrNotBoolean, engine.Name(), out)
	}
	return result, nil
}

// Error carries the engine and expression alongside the underlying failure.
type Error struct {
	Engine string
	Expr   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("rules: %s expr=%q: %v", e.Engine, e.Expr, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func wrap(engine, expression string, err error) error {
	if err == nil {
		return nil
	}
	var ruleErr *Error
	if errors.As(err, &ruleErr) {
		return err
	}
	return &Error{Engine: engine, Expr: expression, Err: err}
}

func cacheKey(engine, expression string, vars ...string) string {
	if len(vars) == 0 {
		return engine + "\x00" + expression
	}
	return engine + "\x00" + strings.Join(vars, ",") + "\x00" + expression
}

func envKeys(env map[string]any) []string {
	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// TTLCache is a Cache backed by ttlcache. Entries expire after ttl of disuse.
type TTLCache struct {
	cache *ttlcache.Cache[string, any]
}

// NewTTLCache builds a TTLCache. Call Start in a goroutine to purge expired
// entries in the background, and Stop when done.
func NewTTLCache(ttl time.Duration) *TTLCache {
	return &TTLCache{
		cache: ttlcache.New[string, any](
			ttlcache.WithTTL[string, any](ttl),
		),
	}
}

func (c *TTLCache) Get(key string) (any, bool) {
	item := c.cache.Get(key)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

func (c *TTLCache) Set(key string, value any) {
	c.cache.Set(key, value, ttlcache.DefaultTTL)
}

// Len reports the number of cached programs.
func (c *TTLCache) Len() int {
	return c.cache.Len()
}

func (c *TTLCache) Start() { c.cache.Start() }

func (c *TTLCache) Stop() { c.cache.Stop() }
