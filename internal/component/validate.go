package component

import (
	"fmt"
	"strings"

	"loom/internal/schema"
)

// ValidationError describes one problem found in a descriptor.
type ValidationError struct {
	Field   string
	Message string
}

func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors collects every problem in a descriptor so an author can
// fix a file in one pass.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}
	msgs := make([]string, len(ve))
	for i, err := range ve {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

func (ve *ValidationErrors) add(field, format string, args ...interface{}) {
	*ve = append(*ve, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// OrNil returns the collection as an error, or nil when empty.
func (ve ValidationErrors) OrNil() error {
	if len(ve) == 0 {
		return nil
	}
	return ve
}

func validateArgs(errs *ValidationErrors, args []schema.ParameterSpec) {
	seen := make(map[string]bool, len(args))
	for i, arg := range args {
		field := fmt.Sprintf("args[%d]", i)
		if arg.Name == "" {
			errs.add(field+".name", "is required")
		} else if seen[arg.Name] {
			errs.add(field+".name", "duplicate argument %q", arg.Name)
		} else {
			seen[arg.Name] = true
		}
		if arg.Type == "" {
			errs.add(field+".type", "is required")
			continue
		}
		if ok, reason := schema.Validate(arg.Type); !ok {
			errs.add(field+".type", "%s", reason)
		}
	}
}

// Validate checks a capability descriptor for structural problems.
func (s *CapabilitySpec) Validate() error {
	var errs ValidationErrors
	if s.Name == "" {
		errs.add("name", "is required")
	}
	hasHandler := s.Handler != ""
	hasResponse := s.Response != ""
	if hasHandler == hasResponse {
		errs.add("handler", "exactly one of 'handler' or 'response' must be set")
	}
	validateArgs(&errs, s.Args)
	return errs.OrNil()
}

// Validate checks a resource descriptor for structural problems.
func (s *ResourceSpec) Validate() error {
	var errs ValidationErrors
	if s.Name == "" {
		errs.add("name", "is required")
	}
	if s.URI == "" {
		errs.add("uri", "is required")
	}
	hasContent := s.Content != ""
	hasFile := s.File != ""
	if hasContent == hasFile {
		errs.add("content", "exactly one of 'content' or 'file' must be set")
	}
	return errs.OrNil()
}

// Validate checks a template descriptor for structural problems.
func (s *TemplateSpec) Validate() error {
	var errs ValidationErrors
	if s.Name == "" {
		errs.add("name", "is required")
	}
	if s.Prompt == "" {
		errs.add("prompt", "is required")
	}
	validateArgs(&errs, s.Args)
	return errs.OrNil()
}

// Validate checks an interceptor descriptor for structural problems.
func (s *InterceptorSpec) Validate() error {
	var errs ValidationErrors
	if s.Name == "" {
		errs.add("name", "is required")
	}
	known := false
	for _, k := range InterceptorKinds {
		if s.Kind == k {
			known = true
			break
		}
	}
	if !known {
		errs.add("kind", "must be one of: %s", strings.Join(InterceptorKinds, ", "))
	}
	return errs.OrNil()
}
