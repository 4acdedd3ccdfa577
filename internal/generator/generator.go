// Package generator scaffolds new component descriptors. It loads a typed
// parameter specification, validates every declared type before rendering,
// and writes a component file plus a matching conformance check file to their
// conventional locations.
package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"loom/internal/component"
	"loom/internal/schema"
	"loom/pkg/logging"
)

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Options configure one generation call.
type Options struct {
	Category    component.Category
	Name        string
	Description string

	// SpecPath optionally names a params file; absent means no parameters.
	SpecPath string

	ComponentsRoot string
	// TestsRoot defaults to a "tests" directory next to the components root.
	TestsRoot string

	DryRun    bool
	Overwrite bool

	// Capability behavioral hints.
	ReadOnly    bool
	Destructive bool
	Idempotent  bool

	// Resource URI; defaults to resource://<name>.
	URI string

	// Template scaffolds get the structured-output placeholder block.
	WithSchema bool

	// Interceptor builtin kind; defaults to "logging".
	Kind string
}

// Result reports what a generation call produced. The rendered texts are
// always populated; paths are where they were (or would be) written.
type Result struct {
	ComponentPath string
	TestPath      string
	ComponentText string
	TestText      string
}

// Generate runs the full scaffolding pipeline for one component.
func Generate(opts Options) (*Result, error) {
	if !opts.Category.Valid() {
		return nil, fmt.Errorf("unknown category %q (valid: capability, resource, template, interceptor)", opts.Category)
	}
	if !namePattern.MatchString(opts.Name) {
		return nil, fmt.Errorf("invalid component name %q: use lower_snake_case starting with a letter", opts.Name)
	}

	var params []schema.ParameterSpec
	if opts.SpecPath != "" {
		var err error
		params, err = LoadParams(opts.SpecPath)
		if err != nil {
			return nil, err
		}
	}
	if err := validateParams(string(opts.Category), params); err != nil {
		return nil, err
	}

	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	binding := buildBinding(opts, resolveParams(params))

	componentText, err := renderer.Render(componentTemplate(string(opts.Category)), binding)
	if err != nil {
		return nil, err
	}
	testText, err := renderer.Render(checkTemplate(string(opts.Category)), binding)
	if err != nil {
		return nil, err
	}

	result := &Result{
		ComponentPath: filepath.Join(opts.ComponentsRoot, opts.Category.Directory(), opts.Name+".yaml"),
		TestPath:      filepath.Join(testsRoot(opts), opts.Category.Directory(), opts.Name+"_check.yaml"),
		ComponentText: componentText,
		TestText:      testText,
	}

	if opts.DryRun {
		return result, nil
	}

	// Check both targets before writing either, so a refused generation
	// leaves the filesystem untouched.
	if !opts.Overwrite {
		for _, path := range []string{result.ComponentPath, result.TestPath} {
			if _, err := os.Stat(path); err == nil {
				return nil, &FileExistsError{Path: path}
			}
		}
	}

	if err := writeFile(result.ComponentPath, componentText); err != nil {
		return nil, err
	}
	if err := writeFile(result.TestPath, testText); err != nil {
		return nil, err
	}

	logging.Info("Generator", "Generated %s %q: %s (check: %s)",
		opts.Category, opts.Name, result.ComponentPath, result.TestPath)
	return result, nil
}

func buildBinding(opts Options, params []schema.ResolvedParameter) Binding {
	description := opts.Description
	if description == "" {
		description = fmt.Sprintf("Generated %s %s.", opts.Category, opts.Name)
	}

	uri := opts.URI
	if uri == "" {
		uri = "resource://" + opts.Name
	}
	kind := opts.Kind
	if kind == "" {
		kind = "logging"
	}

	return Binding{
		Category:    string(opts.Category),
		Name:        opts.Name,
		Description: description,
		Params:      params,
		ReadOnly:    opts.ReadOnly,
		Destructive: opts.Destructive,
		Idempotent:  opts.Idempotent,
		URI:         uri,
		WithSchema:  opts.WithSchema,
		Kind:        kind,
	}
}

func testsRoot(opts Options) string {
	if opts.TestsRoot != "" {
		return opts.TestsRoot
	}
	return filepath.Join(filepath.Dir(filepath.Clean(opts.ComponentsRoot)), "tests")
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
