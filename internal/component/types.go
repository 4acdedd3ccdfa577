// Package component defines the descriptor model for the four component
// categories and the registration record the registry stores. Descriptors are
// passive YAML documents; nothing registers itself at parse time. The loader
// builds Records from parsed descriptors and hands them to the registry.
package component

import (
	"time"

	"loom/internal/schema"
)

// Category identifies one of the four component kinds.
type Category string

const (
	CategoryCapability  Category = "capability"
	CategoryResource    Category = "resource"
	CategoryTemplate    Category = "template"
	CategoryInterceptor Category = "interceptor"
)

// Categories returns all categories in load order.
func Categories() []Category {
	return []Category{CategoryCapability, CategoryResource, CategoryTemplate, CategoryInterceptor}
}

// Directory returns the directory name a category's descriptors live in,
// relative to the components root.
func (c Category) Directory() string {
	switch c {
	case CategoryCapability:
		return "capabilities"
	case CategoryResource:
		return "resources"
	case CategoryTemplate:
		return "templates"
	case CategoryInterceptor:
		return "interceptors"
	default:
		return string(c)
	}
}

// Valid reports whether the category is one of the four known kinds.
func (c Category) Valid() bool {
	switch c {
	case CategoryCapability, CategoryResource, CategoryTemplate, CategoryInterceptor:
		return true
	}
	return false
}

// ParseCategory accepts both the singular kind name and the directory form.
func ParseCategory(s string) (Category, bool) {
	switch s {
	case "capability", "capabilities":
		return CategoryCapability, true
	case "resource", "resources":
		return CategoryResource, true
	case "template", "templates":
		return CategoryTemplate, true
	case "interceptor", "interceptors":
		return CategoryInterceptor, true
	}
	return "", false
}

// Annotations carries the behavioral hint flags exposed on capabilities.
type Annotations struct {
	ReadOnly    bool `yaml:"readOnly,omitempty" json:"readOnly,omitempty"`
	Destructive bool `yaml:"destructive,omitempty" json:"destructive,omitempty"`
	Idempotent  bool `yaml:"idempotent,omitempty" json:"idempotent,omitempty"`
}

// CapabilitySpec describes an invocable component. Exactly one of Handler
// (a builtin handler reference) or Response (a templated reply rendered with
// the call arguments) must be set.
type CapabilitySpec struct {
	Name        string                 `yaml:"name" json:"name"`
	Description string                 `yaml:"description,omitempty" json:"description,omitempty"`
	Args        []schema.ParameterSpec `yaml:"args,omitempty" json:"args,omitempty"`
	Handler     string                 `yaml:"handler,omitempty" json:"handler,omitempty"`
	Response    string                 `yaml:"response,omitempty" json:"response,omitempty"`
	Annotations Annotations            `yaml:"annotations,omitempty" json:"annotations,omitempty"`
}

// ResourceSpec describes a named piece of data addressed by URI. Exactly one
// of Content (inline) or File (path relative to the descriptor) must be set.
type ResourceSpec struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	URI         string `yaml:"uri" json:"uri"`
	MIMEType    string `yaml:"mimeType,omitempty" json:"mimeType,omitempty"`
	Content     string `yaml:"content,omitempty" json:"content,omitempty"`
	File        string `yaml:"file,omitempty" json:"file,omitempty"`
}

// TemplateSpec describes a parameterized prompt. The Prompt text may contain
// {{ var }} placeholders substituted at request time and an output-schema
// placeholder substituted at load time from a sibling schema file.
type TemplateSpec struct {
	Name        string                 `yaml:"name" json:"name"`
	Description string                 `yaml:"description,omitempty" json:"description,omitempty"`
	Args        []schema.ParameterSpec `yaml:"args,omitempty" json:"args,omitempty"`
	Prompt      string                 `yaml:"prompt" json:"prompt"`
	Tags        []string               `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// InterceptorSpec selects and configures one of the builtin request wrappers.
type InterceptorSpec struct {
	Name        string                 `yaml:"name" json:"name"`
	Description string                 `yaml:"description,omitempty" json:"description,omitempty"`
	Kind        string                 `yaml:"kind" json:"kind"`
	Order       int                    `yaml:"order,omitempty" json:"order,omitempty"`
	Settings    map[string]interface{} `yaml:"settings,omitempty" json:"settings,omitempty"`
}

// InterceptorKinds lists the builtin interceptor implementations.
var InterceptorKinds = []string{"logging", "timing", "recovery"}

// Record is one entry in the registry: a parsed descriptor plus its origin.
type Record struct {
	ID           string    // unique per registration
	Category     Category  //
	Name         string    // unique within a category at any instant
	Description  string    //
	Spec         any       // *CapabilitySpec, *ResourceSpec, *TemplateSpec or *InterceptorSpec
	ModuleID     string    // dotted module identifier from discovery
	SourcePath   string    // descriptor file the record came from
	RegisteredAt time.Time //
}

// Capability returns the typed spec, or nil if the record is another category.
func (r *Record) Capability() *CapabilitySpec {
	s, _ := r.Spec.(*CapabilitySpec)
	return s
}

func (r *Record) Resource() *ResourceSpec {
	s, _ := r.Spec.(*ResourceSpec)
	return s
}

func (r *Record) Template() *TemplateSpec {
	s, _ := r.Spec.(*TemplateSpec)
	return s
}

func (r *Record) Interceptor() *InterceptorSpec {
	s, _ := r.Spec.(*InterceptorSpec)
	return s
}
