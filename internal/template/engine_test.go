package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceStringVariants(t *testing.T) {
	vars := map[string]interface{}{"name": "world"}
	e := New()

	tests := []struct {
		in   string
		want string
	}{
		{"hello {{ name }}", "hello world"},
		{"hello {{name}}", "hello world"},
		{"hello {{ .name }}", "hello world"},
		{"hello {{.name}}", "hello world"},
		{"no placeholders", "no placeholders"},
	}
	for _, tt := range tests {
		got, err := e.ReplaceString(tt.in, vars)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestReplaceStringifiesValues(t *testing.T) {
	e := New()
	got, err := e.ReplaceString("n={{ n }} f={{ f }} b={{ b }}", map[string]interface{}{
		"n": 42,
		"f": 1.5,
		"b": true,
	})
	require.NoError(t, err)
	assert.Equal(t, "n=42 f=1.5 b=true", got)
}

func TestStrictReplaceFailsOnMissing(t *testing.T) {
	e := New()
	_, err := e.ReplaceString("hello {{ name }} from {{ place }}", map[string]interface{}{"name": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "place")
}

func TestLenientReplaceKeepsMissing(t *testing.T) {
	e := NewLenient()
	got, err := e.ReplaceString("{{ known }} and {{ unknown }}", map[string]interface{}{"known": "yes"})
	require.NoError(t, err)
	assert.Equal(t, "yes and {{ unknown }}", got)
}

func TestReplaceWalksMapsAndSlices(t *testing.T) {
	e := New()
	in := map[string]interface{}{
		"greeting": "hi {{ name }}",
		"list":     []interface{}{"{{ name }}", 7},
		"count":    3,
	}
	out, err := e.Replace(in, map[string]interface{}{"name": "ada"})
	require.NoError(t, err)

	m := out.(map[string]interface{})
	assert.Equal(t, "hi ada", m["greeting"])
	assert.Equal(t, []interface{}{"ada", 7}, m["list"])
	assert.Equal(t, 3, m["count"])
}

func TestSubstituteVariableOnlyTouchesItsOwnPlaceholder(t *testing.T) {
	text := "schema: {{ output_schema }}, doc: {{ document }}"
	got := SubstituteVariable(text, "output_schema", `{"a":1}`)
	assert.Equal(t, `schema: {"a":1}, doc: {{ document }}`, got)
}

func TestContainsVariable(t *testing.T) {
	assert.True(t, ContainsVariable("x {{output_schema}} y", "output_schema"))
	assert.True(t, ContainsVariable("x {{ .output_schema }} y", "output_schema"))
	assert.False(t, ContainsVariable("x {{ document }} y", "output_schema"))
}

func TestExtractVariables(t *testing.T) {
	e := New()
	vars := e.ExtractVariables(map[string]interface{}{
		"a": "{{ one }} {{ two }}",
		"b": []interface{}{"{{ two }}", "{{ three }}"},
	})
	assert.ElementsMatch(t, []string{"one", "two", "three"}, vars)
}
