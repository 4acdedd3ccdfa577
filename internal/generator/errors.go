package generator

import "fmt"

// InvalidParameterTypeError reports the first parameter whose declared type
// failed validation. Generation fails fast on it.
type InvalidParameterTypeError struct {
	Category string
	Param    string
	Index    int
	Reason   string
}

func (e *InvalidParameterTypeError) Error() string {
	return fmt.Sprintf("invalid type for %s parameter %q (index %d): %s", e.Category, e.Param, e.Index, e.Reason)
}

// TemplateNotFoundError reports a category with no scaffold template pair.
type TemplateNotFoundError struct {
	Template string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("scaffold template %q not found", e.Template)
}

// FileExistsError reports a write target that already exists when overwrite
// was not requested.
type FileExistsError struct {
	Path string
}

func (e *FileExistsError) Error() string {
	return fmt.Sprintf("%s already exists (pass --overwrite to replace it)", e.Path)
}
