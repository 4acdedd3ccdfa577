package generator

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"loom/internal/schema"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Binding is the variable set a scaffold template renders from. Category
// flags are precomputed here so the templates stay free of control flow
// beyond simple conditionals.
type Binding struct {
	Category    string
	Name        string
	Description string
	Params      []schema.ResolvedParameter

	// Capability behavioral hints.
	ReadOnly    bool
	Destructive bool
	Idempotent  bool

	// Resource addressing.
	URI string

	// Template scaffolds optionally carry the structured-output block.
	WithSchema bool

	// Interceptor builtin kind.
	Kind string
}

// HasAnnotations reports whether any behavioral hint is set.
func (b Binding) HasAnnotations() bool {
	return b.ReadOnly || b.Destructive || b.Idempotent
}

// RequiredParams returns only the required parameters, in declared order.
func (b Binding) RequiredParams() []schema.ResolvedParameter {
	var out []schema.ResolvedParameter
	for _, p := range b.Params {
		if p.Required {
			out = append(out, p)
		}
	}
	return out
}

// Renderer renders scaffold templates. Rendering is a pure function of the
// binding: identical bindings produce byte-identical output.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded scaffold templates.
func NewRenderer() (*Renderer, error) {
	funcs := sprig.TxtFuncMap()
	funcs["sample"] = sampleValue
	funcs["placeholder"] = func(name string) string { return "{{ " + name + " }}" }

	tmpl, err := template.New("scaffold").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse scaffold templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render executes one named template against a binding.
func (r *Renderer) Render(name string, binding Binding) (string, error) {
	if r.tmpl.Lookup(name) == nil {
		return "", &TemplateNotFoundError{Template: name}
	}
	var buf strings.Builder
	if err := r.tmpl.ExecuteTemplate(&buf, name, binding); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

// componentTemplate and checkTemplate name the template pair for a category.
func componentTemplate(category string) string {
	return category + ".yaml.tmpl"
}

func checkTemplate(category string) string {
	return category + "_check.yaml.tmpl"
}

// sampleValue produces an inline YAML sample literal for a declared type,
// used to scaffold conformance check arguments.
func sampleValue(hint string) string {
	base, params, err := schema.Split(hint)
	if err != nil {
		return `"example"`
	}
	switch base {
	case "str":
		return `"example"`
	case "int":
		return "1"
	case "float":
		return "1.5"
	case "bool":
		return "true"
	case "dict":
		if len(params) == 2 {
			return fmt.Sprintf("{key: %s}", sampleValue(params[1]))
		}
		return "{}"
	case "list":
		if len(params) == 1 {
			return fmt.Sprintf("[%s]", sampleValue(params[0]))
		}
		return "[]"
	default:
		return `"example"`
	}
}
