package loader

import "fmt"

// ImportError reports that one discovered module could not be imported. The
// loader logs these and carries on; one broken file must not blank out the
// registry.
type ImportError struct {
	ModuleID string
	Path     string
	Err      error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("failed to import module %s (%s): %v", e.ModuleID, e.Path, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// MissingSchemaWarning reports that a template references the output-schema
// placeholder but its sibling schema file does not exist. A warning by
// default; the strict flag promotes it to an import failure.
type MissingSchemaWarning struct {
	Path       string
	SchemaPath string
}

func (e *MissingSchemaWarning) Error() string {
	source := e.Path
	if source == "" {
		source = "template"
	}
	return fmt.Sprintf("%s uses the output-schema placeholder but %s does not exist", source, e.SchemaPath)
}
