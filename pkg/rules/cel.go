package rules

import (
	celgo "github.com/google/cel-go/cel"
)

type celEngine struct {
	cache Cache
}

// NewCELEngine returns an Engine backed by cel-go. Every top-level env key is
// declared as a dynamic variable, so programs are cached per key set.
func NewCELEngine(opts ...Option) Engine {
	cfg := applyOptions(opts)
	return &celEngine{cache: cfg.cache}
}

func (e *celEngine) Name() string { return "cel" }

func (e *celEngine) Eval(expression string, env map[string]any) (any, error) {
	if expression == "" {
		return nil, ErrEmptyExpression
	}
	if env == nil {
		env = map[string]any{}
	}
	program, err := e.compile(expression, envKeys(env))
	if err != nil {
		return nil, err
	}
	out, _, err := program.Eval(env)
	if err != nil {
		return nil, wrap(e.Name(), expression, err)
	}
	return out.Value(), nil
}

func (e *celEngine) compile(expression string, vars []string) (celgo.Program, error) {
	key := cacheKey(e.Name(), expression, vars...)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(celgo.Program); ok {
				return program, nil
			}
		}
	}

	declarations := make([]celgo.EnvOption, 0, len(vars))
	for _, name := range vars {
		declarations = append(declarations, celgo.Variable(name, celgo.DynType))
	}
	env, err := celgo.NewEnv(declarations...)
	if err != nil {
		return nil, wrap(e.Name(), expression, err)
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, wrap(e.Name(), expression, issues.Err())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, wrap(e.Name(), expression, err)
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}
