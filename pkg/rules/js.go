//go:build js_eval

package rules

import (
	"fmt"

	"github.com/dop251/goja"
)

type jsEngine struct {
	cache Cache
}

// NewJSEngine returns an Engine backed by goja.
func NewJSEngine(opts ...Option) Engine {
	cfg := applyOptions(opts)
	return &jsEngine{cache: cfg.cache}
}

func (e *jsEngine) Name() string { return "js" }

func (e *jsEngine) Eval(expression string, env map[string]any) (any, error) {
	if expression == "" {
		return nil, ErrEmptyExpression
	}
	program, err := e.compile(expression)
	if err != nil {
		return nil, err
	}
	vm := goja.New()
	for key, value := range env {
		if err := vm.Set(key, value); err != nil {
			return nil, wrap(e.Name(), expression, err)
		}
	}
	value, err := vm.RunProgram(program)
	if err != nil {
		return nil, wrap(e.Name(), expression, err)
	}
	return value.Export(), nil
}

func (e *jsEngine) compile(expression string) (*goja.Program, error) {
	key := cacheKey(e.Name(), expression)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("rule", fmt.Sprintf("(function(){ return (%s); })()", expression), true)
	if err != nil {
		return nil, wrap(e.Name(), expression, err)
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}
