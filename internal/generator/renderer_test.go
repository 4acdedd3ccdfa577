package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loom/internal/schema"
)

func resolved(name, declared string, required bool) schema.ResolvedParameter {
	return schema.Resolve(schema.ParameterSpec{Name: name, Type: declared, Required: required})
}

func TestRenderUnknownTemplate(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	_, err = r.Render("nonsense.yaml.tmpl", Binding{})
	var notFound *TemplateNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nonsense.yaml.tmpl", notFound.Template)
}

func TestRenderIsDeterministic(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	binding := Binding{
		Category:    "capability",
		Name:        "echo",
		Description: "Echo a message.",
		Params: []schema.ResolvedParameter{
			resolved("message", "str", true),
			resolved("count", "int", false),
		},
	}

	first, err := r.Render("capability.yaml.tmpl", binding)
	require.NoError(t, err)
	second, err := r.Render("capability.yaml.tmpl", binding)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRenderPlaceholdersSurviveScaffolding(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	binding := Binding{
		Category:    "template",
		Name:        "report",
		Description: "Produce a report.",
		Params:      []schema.ResolvedParameter{resolved("topic", "str", true)},
		WithSchema:  true,
	}

	out, err := r.Render("template.yaml.tmpl", binding)
	require.NoError(t, err)

	// Placeholders are emitted literally for the runtime engine, not
	// expanded by the scaffold renderer.
	assert.Contains(t, out, "topic: {{ topic }}")
	assert.Contains(t, out, "{{ output_schema }}")
}

func TestRenderCapabilityWithoutParams(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	out, err := r.Render("capability.yaml.tmpl", Binding{
		Category:    "capability",
		Name:        "ping",
		Description: "Liveness check.",
	})
	require.NoError(t, err)

	assert.NotContains(t, out, "args:")
	assert.Contains(t, out, `response: "ping completed."`)
}

func TestSampleValue(t *testing.T) {
	tests := []struct {
		hint string
		want string
	}{
		{"str", `"example"`},
		{"int", "1"},
		{"float", "1.5"},
		{"bool", "true"},
		{"any", `"example"`},
		{"dict[str, int]", "{key: 1}"},
		{"list[bool]", "[true]"},
		{"list[dict[str, str]]", `[{key: "example"}]`},
		{"str?", `"example"`},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, sampleValue(tc.hint), "hint %s", tc.hint)
	}
}
