package condition

import "strings"

// deniedSegments blocks path segments that would reach for object internals
// in the runtimes some flow definitions are authored against. Traversal of a
// denied segment resolves to nothing, never to an error.
var deniedSegments = map[string]struct{}{
	"__proto__":   {},
	"constructor": {},
	"prototype":   {},
}

// ResolveKey walks a dotted path through nested string-keyed maps and
// returns the value it lands on. The boolean result is false when the path
// is empty, contains a denied segment, or crosses a missing or non-map
// intermediate. Only keys explicitly present in each map are visible.
func ResolveKey(key string, ctx map[string]any) (any, bool) {
	if key == "" || ctx == nil {
		return nil, false
	}

	var current any = ctx
	for _, segment := range strings.Split(key, ".") {
		if segment == "" {
			return nil, false
		}
		if _, denied := deniedSegments[segment]; denied {
			return nil, false
		}

		m, ok := asStringMap(current)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// asStringMap views a value as a string-keyed map. JSON decoding yields
// map[string]any; YAML-sourced definitions may surface map[string]string.
func asStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out, true
	default:
		return nil, false
	}
}
