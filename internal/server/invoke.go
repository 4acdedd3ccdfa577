package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"loom/internal/component"
	"loom/internal/registry"
	"loom/internal/schema"
	"loom/internal/template"
)

// BuiltinHandler implements a capability whose descriptor names a handler
// instead of a templated response.
type BuiltinHandler func(ctx context.Context, inv *Invoker, args map[string]interface{}) (string, error)

// builtinHandlers maps handler references to implementations. An unknown
// reference surfaces as an invocation error, not an import error, so a
// descriptor written for a newer binary still registers.
var builtinHandlers = map[string]BuiltinHandler{
	"echo":           handleEcho,
	"current_time":   handleCurrentTime,
	"render_preview": handleRenderPreview,
}

// BuiltinHandlerNames returns the sorted set of valid handler references.
func BuiltinHandlerNames() []string {
	names := make([]string, 0, len(builtinHandlers))
	for name := range builtinHandlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoker executes registered components: capabilities, templates, and
// resources. It reads the registry on every call, so hot reloads take
// effect immediately.
type Invoker struct {
	registry *registry.Registry

	// strict engine for capability responses, lenient for prompts. A
	// prompt may legitimately mention a placeholder the caller omitted.
	strict  *template.Engine
	lenient *template.Engine
}

// NewInvoker creates an invoker over a registry.
func NewInvoker(reg *registry.Registry) *Invoker {
	return &Invoker{
		registry: reg,
		strict:   template.New(),
		lenient:  template.NewLenient(),
	}
}

// InvokeCapability executes a capability by name with the given arguments
// and returns its textual result.
func (inv *Invoker) InvokeCapability(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	rec, ok := inv.registry.Get(component.CategoryCapability, name)
	if !ok {
		return "", fmt.Errorf("capability %q is not registered", name)
	}
	spec := rec.Capability()
	if spec == nil {
		return "", fmt.Errorf("record %q is not a capability", name)
	}

	vars, err := bindArgs(spec.Args, args)
	if err != nil {
		return "", fmt.Errorf("invalid arguments for capability %q: %w", name, err)
	}

	if spec.Handler != "" {
		handler, ok := builtinHandlers[spec.Handler]
		if !ok {
			return "", fmt.Errorf("capability %q references unknown handler %q", name, spec.Handler)
		}
		return handler(ctx, inv, vars)
	}

	out, err := inv.strict.ReplaceString(spec.Response, vars)
	if err != nil {
		return "", fmt.Errorf("failed to render response for capability %q: %w", name, err)
	}
	return out, nil
}

// RenderTemplate renders a template's prompt text with the given arguments.
// Unbound placeholders are left intact rather than treated as errors.
func (inv *Invoker) RenderTemplate(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	rec, ok := inv.registry.Get(component.CategoryTemplate, name)
	if !ok {
		return "", fmt.Errorf("template %q is not registered", name)
	}
	spec := rec.Template()
	if spec == nil {
		return "", fmt.Errorf("record %q is not a template", name)
	}

	vars, err := bindArgs(spec.Args, args)
	if err != nil {
		return "", fmt.Errorf("invalid arguments for template %q: %w", name, err)
	}

	out, err := inv.lenient.ReplaceString(spec.Prompt, vars)
	if err != nil {
		return "", fmt.Errorf("failed to render template %q: %w", name, err)
	}
	return out, nil
}

// ReadResource returns a resource's content and MIME type. File-backed
// resources are read on every call so edits are visible without a reload.
func (inv *Invoker) ReadResource(ctx context.Context, name string) (string, string, error) {
	rec, ok := inv.registry.Get(component.CategoryResource, name)
	if !ok {
		return "", "", fmt.Errorf("resource %q is not registered", name)
	}
	spec := rec.Resource()
	if spec == nil {
		return "", "", fmt.Errorf("record %q is not a resource", name)
	}

	mimeType := spec.MIMEType
	if mimeType == "" {
		mimeType = "text/plain"
	}

	if spec.File != "" {
		path := spec.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(filepath.Dir(rec.SourcePath), path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", "", fmt.Errorf("failed to read resource %q: %w", name, err)
		}
		return string(data), mimeType, nil
	}

	return spec.Content, mimeType, nil
}

// bindArgs builds the variable map for rendering: declared defaults first,
// then caller-provided values. Missing required arguments are an error;
// missing optional arguments without a default render as empty strings.
func bindArgs(declared []schema.ParameterSpec, provided map[string]interface{}) (map[string]interface{}, error) {
	vars := make(map[string]interface{}, len(declared))
	for _, param := range declared {
		switch {
		case param.Default != nil:
			vars[param.Name] = param.Default
		case !param.Required:
			vars[param.Name] = ""
		}
	}
	for name, value := range provided {
		vars[name] = value
	}
	for _, param := range declared {
		if !param.Required {
			continue
		}
		if _, ok := vars[param.Name]; !ok {
			return nil, fmt.Errorf("missing required argument %q", param.Name)
		}
	}
	return vars, nil
}

func handleEcho(_ context.Context, _ *Invoker, args map[string]interface{}) (string, error) {
	if message, ok := args["message"].(string); ok && message != "" {
		return message, nil
	}
	// No message argument: echo the full argument set as YAML.
	data, err := yaml.Marshal(args)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func handleCurrentTime(_ context.Context, _ *Invoker, args map[string]interface{}) (string, error) {
	layout := time.RFC3339
	if format, ok := args["format"].(string); ok && format != "" {
		layout = format
	}
	return time.Now().UTC().Format(layout), nil
}

// handleRenderPreview renders a registered template with the supplied
// variables, exposing the template pipeline as a capability.
func handleRenderPreview(ctx context.Context, inv *Invoker, args map[string]interface{}) (string, error) {
	name, ok := args["template"].(string)
	if !ok || name == "" {
		return "", fmt.Errorf("missing required argument %q", "template")
	}
	vars, _ := args["vars"].(map[string]interface{})
	return inv.RenderTemplate(ctx, name, vars)
}
