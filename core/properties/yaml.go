package properties

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLExtractor returns an extractor keeping the whitelisted top-level keys
// of a YAML object. Documents that are not objects are malformed.
func YAMLExtractor(fields []string) ExtractFunc {
	var allowed map[string]struct{}
	if len(fields) > 0 {
		allowed = make(map[string]struct{}, len(fields))
		for _, f := range fields {
			allowed[f] = struct{}{}
		}
	}

	return func(content []byte) (map[string]any, error) {
		var doc any
		if err := yaml.Unmarshal(content, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		obj, ok := sanitize(doc).(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: expected a YAML object, got %T", ErrMalformed, doc)
		}

		if allowed == nil {
			return obj, nil
		}

		props := make(map[string]any, len(allowed))
		for k, v := range obj {
			if _, ok := allowed[k]; ok {
				props[k] = v
			}
		}
		return props, nil
	}
}

// sanitize converts YAML mappings with non-string keys so that the
// result can be encoded as JSON.
func sanitize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = sanitize(item)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, item := range t {
			m[fmt.Sprint(k)] = sanitize(item)
		}
		return m
	case []any:
		for i, item := range t {
			t[i] = sanitize(item)
		}
		return t
	default:
		return v
	}
}
