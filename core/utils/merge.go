package utils

import "reflect"

// MergeMaps deep-merges src into dst and returns dst.
// Nested maps are merged recursively; for conflicting scalar keys the
// src value wins. Named map types (e.g. identifier maps) are converted
// before merging, so the result never aliases a map owned by the caller.
func MergeMaps(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for key, value := range src {
		nested, ok := ToStringMap(value)
		if !ok {
			dst[key] = value
			continue
		}

		existing, ok := ToStringMap(dst[key])
		if !ok {
			existing = make(map[string]any, len(nested))
		}
		dst[key] = MergeMaps(existing, nested)
	}
	return dst
}

// ToStringMap reports whether v is a string-keyed map and returns it as a
// plain map[string]any. Named map types are converted via reflection.
func ToStringMap(v any) (map[string]any, bool) {
	if v == nil {
		return nil, false
	}
	if m, ok := v.(map[string]any); ok {
		return m, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}

	m := make(map[string]any, rv.Len())
	for _, key := range rv.MapKeys() {
		m[key.String()] = rv.MapIndex(key).Interface()
	}
	return m, true
}
