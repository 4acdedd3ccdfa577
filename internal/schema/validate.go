// Package schema implements the declared-type language used by component
// descriptors and params files.
//
// Types are written in a compact form: scalars (str, int, float, bool, any),
// parameterized containers (dict[str, str], list[int], nesting allowed) and an
// optionality suffix "?" meaning the value may be absent (dict[str, str]?).
// Bare container types without parameters are rejected because the input
// schema generated for the serving layer would be untyped.
package schema

import (
	"fmt"
	"strings"
)

// OptionalSuffix marks a type whose value may be absent.
const OptionalSuffix = "?"

const (
	typeDict = "dict"
	typeList = "list"
)

// Validate checks a declared type for the constraints the serialization layer
// requires. It is a pure function; the reason string is empty when ok is true.
func Validate(declared string) (ok bool, reason string) {
	declared = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(declared), OptionalSuffix))
	if declared == "" {
		return false, "type must not be empty"
	}

	base, params, err := splitType(declared)
	if err != nil {
		return false, err.Error()
	}

	switch base {
	case typeDict:
		if params == nil {
			return false, "add type parameters to dict (e.g. dict[str, str])"
		}
		if len(params) != 2 {
			return false, fmt.Sprintf("dict takes exactly 2 type parameters, got %d", len(params))
		}
	case typeList:
		if params == nil {
			return false, "add a type parameter to list (e.g. list[int])"
		}
		if len(params) != 1 {
			return false, fmt.Sprintf("list takes exactly 1 type parameter, got %d", len(params))
		}
	default:
		// Scalars are accepted unconditionally, but a parameterized
		// non-container is a typo worth catching.
		if params != nil {
			return false, fmt.Sprintf("%s does not take type parameters", base)
		}
		return true, ""
	}

	for _, p := range params {
		if innerOK, innerReason := Validate(p); !innerOK {
			return false, fmt.Sprintf("in %s: %s", base, innerReason)
		}
	}
	return true, ""
}

// splitType splits "dict[str, list[int]]" into base "dict" and its top-level
// parameters. params is nil when no bracket is present.
func splitType(declared string) (base string, params []string, err error) {
	open := strings.IndexByte(declared, '[')
	if open < 0 {
		if strings.ContainsAny(declared, "],") {
			return "", nil, fmt.Errorf("malformed type %q", declared)
		}
		return declared, nil, nil
	}
	if !strings.HasSuffix(declared, "]") {
		return "", nil, fmt.Errorf("unclosed bracket in %q", declared)
	}

	base = strings.TrimSpace(declared[:open])
	if base == "" {
		return "", nil, fmt.Errorf("missing type name in %q", declared)
	}

	inner := declared[open+1 : len(declared)-1]
	if strings.TrimSpace(inner) == "" {
		return "", nil, fmt.Errorf("empty type parameters in %q", declared)
	}

	depth := 0
	start := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return "", nil, fmt.Errorf("unbalanced brackets in %q", declared)
			}
		case ',':
			if depth == 0 {
				params = append(params, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return "", nil, fmt.Errorf("unbalanced brackets in %q", declared)
	}
	params = append(params, strings.TrimSpace(inner[start:]))
	return base, params, nil
}
