package component

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"loom/internal/schema"
)

func TestCapabilitySpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    CapabilitySpec
		wantErr string
	}{
		{
			name: "valid with handler",
			spec: CapabilitySpec{
				Name:    "echo",
				Handler: "echo",
				Args:    []schema.ParameterSpec{{Name: "message", Type: "str", Required: true}},
			},
		},
		{
			name: "valid with response template",
			spec: CapabilitySpec{Name: "greet", Response: "hello {{ name }}"},
		},
		{
			name:    "handler and response both set",
			spec:    CapabilitySpec{Name: "x", Handler: "echo", Response: "hi"},
			wantErr: "exactly one of 'handler' or 'response'",
		},
		{
			name:    "neither handler nor response",
			spec:    CapabilitySpec{Name: "x"},
			wantErr: "exactly one of 'handler' or 'response'",
		},
		{
			name:    "missing name",
			spec:    CapabilitySpec{Handler: "echo"},
			wantErr: "field 'name': is required",
		},
		{
			name: "bare dict arg rejected",
			spec: CapabilitySpec{
				Name:    "x",
				Handler: "echo",
				Args:    []schema.ParameterSpec{{Name: "data", Type: "dict", Required: true}},
			},
			wantErr: "args[0].type",
		},
		{
			name: "duplicate arg names rejected",
			spec: CapabilitySpec{
				Name:    "x",
				Handler: "echo",
				Args: []schema.ParameterSpec{
					{Name: "a", Type: "str"},
					{Name: "a", Type: "int"},
				},
			},
			wantErr: "duplicate argument",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestResourceSpecValidate(t *testing.T) {
	valid := ResourceSpec{Name: "guide", URI: "resource://guide", Content: "hello"}
	assert.NoError(t, valid.Validate())

	missing := ResourceSpec{Name: "guide"}
	err := missing.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "uri")

	both := ResourceSpec{Name: "guide", URI: "resource://guide", Content: "x", File: "x.txt"}
	assert.Error(t, both.Validate())
}

func TestTemplateSpecValidate(t *testing.T) {
	valid := TemplateSpec{Name: "analysis", Prompt: "Analyze {{ document }}"}
	assert.NoError(t, valid.Validate())

	err := (&TemplateSpec{Name: "x"}).Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "prompt")
}

func TestInterceptorSpecValidate(t *testing.T) {
	for _, kind := range InterceptorKinds {
		spec := InterceptorSpec{Name: "i", Kind: kind}
		assert.NoError(t, spec.Validate(), "kind %s", kind)
	}

	err := (&InterceptorSpec{Name: "i", Kind: "tracing"}).Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "must be one of")
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"capability", CategoryCapability, true},
		{"capabilities", CategoryCapability, true},
		{"resource", CategoryResource, true},
		{"templates", CategoryTemplate, true},
		{"interceptor", CategoryInterceptor, true},
		{"widget", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseCategory(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestCategoryDirectory(t *testing.T) {
	assert.Equal(t, "capabilities", CategoryCapability.Directory())
	assert.Equal(t, "resources", CategoryResource.Directory())
	assert.Equal(t, "templates", CategoryTemplate.Directory())
	assert.Equal(t, "interceptors", CategoryInterceptor.Directory())
}
