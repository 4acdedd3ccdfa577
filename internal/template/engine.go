// Package template implements runtime argument substitution for capability
// responses and prompt text. Placeholders use the {{ name }} form, with or
// without spaces and with an optional leading dot, so descriptor authors can
// write whichever variant they are used to.
package template

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*\.?([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)

// Engine substitutes placeholder variables in strings, maps and slices.
type Engine struct {
	// lenient leaves unresolved placeholders in place instead of failing.
	// Prompt rendering uses this so load-time placeholders that a later
	// stage resolves survive untouched.
	lenient bool
}

// New creates a strict engine: unresolved placeholders are an error.
func New() *Engine {
	return &Engine{}
}

// NewLenient creates an engine that leaves unresolved placeholders in place.
func NewLenient() *Engine {
	return &Engine{lenient: true}
}

// Replace substitutes all placeholders in value with entries from vars.
// Strings are substituted directly; maps and slices are walked recursively.
// Other types pass through unchanged.
func (e *Engine) Replace(value interface{}, vars map[string]interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string:
		return e.replaceString(v, vars)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, val := range v {
			replaced, err := e.Replace(val, vars)
			if err != nil {
				return nil, fmt.Errorf("in key '%s': %w", key, err)
			}
			out[key] = replaced
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			replaced, err := e.Replace(val, vars)
			if err != nil {
				return nil, fmt.Errorf("at index %d: %w", i, err)
			}
			out[i] = replaced
		}
		return out, nil
	default:
		return value, nil
	}
}

// ReplaceString is Replace specialized to a string value.
func (e *Engine) ReplaceString(text string, vars map[string]interface{}) (string, error) {
	return e.replaceString(text, vars)
}

func (e *Engine) replaceString(text string, vars map[string]interface{}) (string, error) {
	matches := placeholderPattern.FindAllStringSubmatch(text, -1)

	var missing []string
	result := text
	for _, match := range matches {
		name := match[1]
		value, ok := vars[name]
		if !ok {
			if !e.lenient {
				missing = append(missing, name)
			}
			continue
		}
		result = SubstituteVariable(result, name, stringify(value))
	}

	if len(missing) > 0 {
		return "", fmt.Errorf("missing template variables: %s", strings.Join(missing, ", "))
	}
	return result, nil
}

// SubstituteVariable replaces every accepted spelling of one placeholder with
// a literal value. The schema injector uses this directly so it touches only
// its own placeholder and nothing else in the text.
func SubstituteVariable(text, name, value string) string {
	for _, placeholder := range []string{
		"{{ " + name + " }}",
		"{{ ." + name + " }}",
		"{{" + name + "}}",
		"{{." + name + "}}",
	} {
		text = strings.ReplaceAll(text, placeholder, value)
	}
	return text
}

// ContainsVariable reports whether text references the named placeholder in
// any accepted spelling.
func ContainsVariable(text, name string) bool {
	for _, match := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		if match[1] == name {
			return true
		}
	}
	return false
}

// ExtractVariables returns the distinct placeholder names referenced in value.
func (e *Engine) ExtractVariables(value interface{}) []string {
	seen := make(map[string]bool)
	e.extract(value, seen)

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	return out
}

func (e *Engine) extract(value interface{}, seen map[string]bool) {
	switch v := value.(type) {
	case string:
		for _, match := range placeholderPattern.FindAllStringSubmatch(v, -1) {
			seen[match[1]] = true
		}
	case map[string]interface{}:
		for _, val := range v {
			e.extract(val, seen)
		}
	case []interface{}:
		for _, val := range v {
			e.extract(val, seen)
		}
	}
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case int, int32, int64:
		return fmt.Sprintf("%d", v)
	case float32, float64:
		return fmt.Sprintf("%g", v)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
