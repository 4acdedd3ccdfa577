// Package conformance runs check documents against a loaded registry. A
// check document names a component, optional invocation arguments, and the
// expectations to assert. The generator emits one such document alongside
// every scaffolded component.
package conformance

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"loom/internal/component"
	"loom/internal/registry"
	"loom/internal/server"
	"loom/pkg/logging"
)

// Expectation is the assertion block of a check document. Nil pointer
// fields are not asserted.
type Expectation struct {
	Registered *bool    `yaml:"registered,omitempty"`
	Success    *bool    `yaml:"success,omitempty"`
	Contains   []string `yaml:"contains,omitempty"`
}

// Doc is one parsed check document.
type Doc struct {
	// Target is "category/name", e.g. "capability/echo".
	Target string                 `yaml:"target"`
	Args   map[string]interface{} `yaml:"args,omitempty"`
	Expect Expectation            `yaml:"expect"`
}

// Result is the outcome of one check document.
type Result struct {
	File     string
	Target   string
	Failures []string
}

// Passed reports whether every expectation held.
func (r Result) Passed() bool {
	return len(r.Failures) == 0
}

// Runner executes check documents against a registry.
type Runner struct {
	registry *registry.Registry
	invoker  *server.Invoker
}

// NewRunner creates a runner over a loaded registry.
func NewRunner(reg *registry.Registry) *Runner {
	return &Runner{
		registry: reg,
		invoker:  server.NewInvoker(reg),
	}
}

// RunDir discovers and runs every check document under root. Files are
// processed in path order so output is stable.
func (r *Runner) RunDir(ctx context.Context, root string) ([]Result, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	sort.Strings(files)

	var results []Result
	for _, file := range files {
		fileResults, err := r.RunFile(ctx, file)
		if err != nil {
			return nil, err
		}
		results = append(results, fileResults...)
	}
	return results, nil
}

// RunFile runs every document in one check file.
func (r *Runner) RunFile(ctx context.Context, path string) ([]Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var results []Result
	decoder := yaml.NewDecoder(f)
	for {
		var doc Doc
		if err := decoder.Decode(&doc); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if doc.Target == "" {
			continue
		}
		result := r.run(ctx, doc)
		result.File = path
		results = append(results, result)
	}
	return results, nil
}

// run evaluates one document's expectations.
func (r *Runner) run(ctx context.Context, doc Doc) Result {
	result := Result{Target: doc.Target}
	fail := func(format string, args ...interface{}) {
		result.Failures = append(result.Failures, fmt.Sprintf(format, args...))
	}

	category, name, err := parseTarget(doc.Target)
	if err != nil {
		fail("%v", err)
		return result
	}

	_, registered := r.registry.Get(category, name)
	if doc.Expect.Registered != nil && registered != *doc.Expect.Registered {
		fail("expected registered=%v, component is registered=%v", *doc.Expect.Registered, registered)
	}

	needsInvocation := doc.Expect.Success != nil || len(doc.Expect.Contains) > 0
	if !needsInvocation {
		return result
	}
	if !registered {
		fail("cannot invoke unregistered component")
		return result
	}

	output, invokeErr := r.invoke(ctx, category, name, doc.Args)
	if doc.Expect.Success != nil {
		succeeded := invokeErr == nil
		if succeeded != *doc.Expect.Success {
			fail("expected success=%v, got success=%v (error: %v)", *doc.Expect.Success, succeeded, invokeErr)
		}
	} else if invokeErr != nil {
		fail("invocation failed: %v", invokeErr)
	}

	for _, want := range doc.Expect.Contains {
		if !strings.Contains(output, want) {
			fail("output does not contain %q", want)
		}
	}

	logging.Debug("Conformance", "Checked %s: %d failure(s)", doc.Target, len(result.Failures))
	return result
}

// invoke exercises the component the way a client would.
func (r *Runner) invoke(ctx context.Context, category component.Category, name string, args map[string]interface{}) (string, error) {
	switch category {
	case component.CategoryCapability:
		return r.invoker.InvokeCapability(ctx, name, args)
	case component.CategoryTemplate:
		return r.invoker.RenderTemplate(ctx, name, args)
	case component.CategoryResource:
		content, _, err := r.invoker.ReadResource(ctx, name)
		return content, err
	case component.CategoryInterceptor:
		// Interceptors have no direct invocation; registration is the
		// only observable fact.
		return "", nil
	default:
		return "", fmt.Errorf("unknown category %q", category)
	}
}

func parseTarget(target string) (component.Category, string, error) {
	parts := strings.SplitN(target, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("invalid target %q: expected category/name", target)
	}
	category, ok := component.ParseCategory(parts[0])
	if !ok {
		return "", "", fmt.Errorf("invalid target %q: unknown category %q", target, parts[0])
	}
	return category, parts[1], nil
}
