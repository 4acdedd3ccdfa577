package schema

import "strings"

// Resolve derives the final type hint for a parameter. When the parameter is
// not required and the declared type does not already carry the optionality
// suffix, the suffix is appended. Resolving an already-resolved hint is a
// no-op, so the suffix never stacks.
func Resolve(param ParameterSpec) ResolvedParameter {
	hint := strings.TrimSpace(param.Type)
	if !param.Required && !strings.HasSuffix(hint, OptionalSuffix) {
		hint += OptionalSuffix
	}
	return ResolvedParameter{ParameterSpec: param, TypeHint: hint}
}

// IsOptional reports whether a type hint carries the optionality suffix.
func IsOptional(hint string) bool {
	return strings.HasSuffix(strings.TrimSpace(hint), OptionalSuffix)
}

// BaseType strips the optionality suffix from a type hint.
func BaseType(hint string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(hint), OptionalSuffix))
}
