package generator

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"loom/internal/schema"
	"loom/pkg/logging"
)

// LoadParams reads a parameter specification file: a YAML list of entries
// with name, type, description, required and default. Records missing a name
// or type abort with a per-record error.
func LoadParams(path string) ([]schema.ParameterSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read params file %s: %w", path, err)
	}

	var params []schema.ParameterSpec
	if err := yaml.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("failed to parse params file %s: %w", path, err)
	}

	for i, p := range params {
		if p.Name == "" {
			return nil, fmt.Errorf("params[%d] in %s: missing 'name'", i, path)
		}
		if p.Type == "" {
			return nil, fmt.Errorf("params[%d] (%s) in %s: missing 'type'", i, p.Name, path)
		}
		if !p.Required && p.Default == nil {
			// Allowed, but usually an oversight: callers see null for it.
			logging.Warn("Generator", "Parameter %q in %s is optional but has no default", p.Name, path)
		}
	}
	return params, nil
}

// validateParams runs the type validator over every parameter, failing fast
// on the first invalid one.
func validateParams(category string, params []schema.ParameterSpec) error {
	for i, p := range params {
		if ok, reason := schema.Validate(p.Type); !ok {
			return &InvalidParameterTypeError{
				Category: category,
				Param:    p.Name,
				Index:    i,
				Reason:   reason,
			}
		}
	}
	return nil
}

// resolveParams derives the final type hints for all parameters.
func resolveParams(params []schema.ParameterSpec) []schema.ResolvedParameter {
	resolved := make([]schema.ResolvedParameter, len(params))
	for i, p := range params {
		resolved[i] = schema.Resolve(p)
	}
	return resolved
}
