package rules

import (
	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

type exprEngine struct {
	cache Cache
}

// NewExprEngine returns an Engine backed by expr-lang/expr.
func NewExprEngine(opts ...Option) Engine {
	cfg := applyOptions(opts)
	return &exprEngine{cache: cfg.cache}
}

func (e *exprEngine) Name() string { return "expr" }

func (e *exprEngine) Eval(expression string, env map[string]any) (any, error) {
	if expression == "" {
		return nil, ErrEmptyExpression
	}
	program, err := e.compile(expression)
	if err != nil {
		return nil, err
	}
	if env == nil {
		env = map[string]any{}
	}
	out, err := exprlang.Run(program, env)
	if err != nil {
		return nil, wrap(e.Name(), expression, err)
	}
	return out, nil
}

func (e *exprEngine) compile(expression string) (*exprvm.Program, error) {
	key := cacheKey(e.Name(), expression)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	program, err := exprlang.Compile(expression,
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, wrap(e.Name(), expression, err)
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}
