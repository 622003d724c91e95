package hydrate

import (
	"fmt"
	"reflect"
	"strconv"
)

// Truthy reports whether a host-provided value counts as set. Hosts hand back
// checkbox state as "1"/"on", numbers, booleans or empty strings, so the rules
// follow the loose conversion WordPress option values were written under:
// nil, false, 0, "", "0" and empty collections are false.
func Truthy(value any) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		return typed != "" && typed != "0"
	case int:
		return typed != 0
	case int64:
		return typed != 0
	case float64:
		return typed != 0
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.String() != "" && rv.String() != "0"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return false
		}
		return Truthy(rv.Elem().Interface())
	}

	if s, ok := value.(fmt.Stringer); ok {
		return Truthy(s.String())
	}
	return true
}

// Text renders a scalar host value as a string. Non-scalars yield "".
func Text(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		if typed {
			return "1"
		}
		return ""
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case fmt.Stringer:
		return typed.String()
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		if rv.Bool() {
			return "1"
		}
		return ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return ""
		}
		return Text(rv.Elem().Interface())
	}
	return ""
}

// OnlyKeys returns a pre-hook that drops every key not named, so values the
// record does not declare never reach the encoder.
func OnlyKeys(keys ...string) PreHook {
	return func(_ Context, payload map[string]any) (map[string]any, error) {
		kept := make(map[string]any, len(keys))
		for _, key := range keys {
			if value, ok := payload[key]; ok {
				kept[key] = value
			}
		}
		return kept, nil
	}
}

// CoerceBools returns a pre-hook that rewrites each named key to a bool using
// Truthy. Missing keys are left absent.
func CoerceBools(keys ...string) PreHook {
	return func(_ Context, payload map[string]any) (map[string]any, error) {
		for _, key := range keys {
			if value, ok := payload[key]; ok {
				payload[key] = Truthy(value)
			}
		}
		return payload, nil
	}
}

// CoerceStrings returns a pre-hook that rewrites each named key to a string
// using Text. Missing keys are left absent.
func CoerceStrings(keys ...string) PreHook {
	return func(_ Context, payload map[string]any) (map[string]any, error) {
		for _, key := range keys {
			if value, ok := payload[key]; ok {
				payload[key] = Text(value)
			}
		}
		return payload, nil
	}
}
