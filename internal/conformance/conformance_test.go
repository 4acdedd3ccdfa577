package conformance

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loom/internal/component"
	"loom/internal/registry"
	"loom/internal/schema"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New(registry.DefaultPolicy)

	records := []*component.Record{
		{
			Category: component.CategoryCapability,
			Name:     "greet",
			Spec: &component.CapabilitySpec{
				Name:     "greet",
				Args:     []schema.ParameterSpec{{Name: "who", Type: "str", Required: true}},
				Response: "Hello, {{ who }}!",
			},
		},
		{
			Category: component.CategoryTemplate,
			Name:     "summary",
			Spec: &component.TemplateSpec{
				Name:   "summary",
				Prompt: "Summarize {{ topic }}.",
			},
		},
		{
			Category: component.CategoryInterceptor,
			Name:     "audit",
			Spec:     &component.InterceptorSpec{Name: "audit", Kind: "logging"},
		},
	}
	for _, rec := range records {
		_, err := reg.Register(rec)
		require.NoError(t, err)
	}
	return reg
}

func writeCheck(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunFilePassing(t *testing.T) {
	runner := NewRunner(testRegistry(t))
	path := writeCheck(t, t.TempDir(), "greet_check.yaml", `
target: capability/greet
args:
  who: world
expect:
  registered: true
  success: true
  contains:
    - "Hello, world!"
`)

	results, err := runner.RunFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Passed(), "failures: %v", results[0].Failures)
	assert.Equal(t, "capability/greet", results[0].Target)
}

func TestRunFileFailsOnOutput(t *testing.T) {
	runner := NewRunner(testRegistry(t))
	path := writeCheck(t, t.TempDir(), "greet_check.yaml", `
target: capability/greet
args:
  who: world
expect:
  contains:
    - "Goodbye"
`)

	results, err := runner.RunFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Passed())
	assert.Contains(t, results[0].Failures[0], "Goodbye")
}

func TestRunFileUnregistered(t *testing.T) {
	runner := NewRunner(testRegistry(t))
	path := writeCheck(t, t.TempDir(), "missing_check.yaml", `
target: capability/missing
expect:
  registered: true
`)

	results, err := runner.RunFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Passed())
}

func TestRunFileExpectedFailure(t *testing.T) {
	runner := NewRunner(testRegistry(t))
	// Missing the required argument: success=false must hold.
	path := writeCheck(t, t.TempDir(), "greet_check.yaml", `
target: capability/greet
expect:
  success: false
`)

	results, err := runner.RunFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Passed(), "failures: %v", results[0].Failures)
}

func TestRunFileInterceptorRegistrationOnly(t *testing.T) {
	runner := NewRunner(testRegistry(t))
	path := writeCheck(t, t.TempDir(), "audit_check.yaml", `
target: interceptor/audit
expect:
  registered: true
`)

	results, err := runner.RunFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Passed())
}

func TestRunFileMultiDoc(t *testing.T) {
	runner := NewRunner(testRegistry(t))
	path := writeCheck(t, t.TempDir(), "suite_check.yaml", `
target: capability/greet
args:
  who: there
expect:
  success: true
---
target: template/summary
args:
  topic: caching
expect:
  contains:
    - "Summarize caching."
`)

	results, err := runner.RunFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, result := range results {
		assert.True(t, result.Passed(), "%s failures: %v", result.Target, result.Failures)
	}
}

func TestRunDir(t *testing.T) {
	runner := NewRunner(testRegistry(t))
	root := t.TempDir()
	writeCheck(t, root, "capabilities/greet_check.yaml", `
target: capability/greet
args:
  who: dir
expect:
  success: true
`)
	writeCheck(t, root, "templates/summary_check.yaml", `
target: template/summary
expect:
  registered: true
`)

	results, err := runner.RunDir(context.Background(), root)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestParseTarget(t *testing.T) {
	category, name, err := parseTarget("capability/echo")
	require.NoError(t, err)
	assert.Equal(t, component.CategoryCapability, category)
	assert.Equal(t, "echo", name)

	_, _, err = parseTarget("echo")
	assert.Error(t, err)

	_, _, err = parseTarget("widget/echo")
	assert.Error(t, err)

	_, _, err = parseTarget("capability/")
	assert.Error(t, err)
}
