//go:build !js_eval

package rules

// NewJSEngine is unavailable without the js_eval build tag and returns nil.
func NewJSEngine(opts ...Option) Engine {
	_ = applyOptions(opts)
	return nil
}
