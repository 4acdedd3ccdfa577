package schema

// ParameterSpec describes one declared parameter of a component, as authored
// in a params file or a component descriptor.
type ParameterSpec struct {
	Name        string      `yaml:"name" json:"name"`
	Type        string      `yaml:"type" json:"type"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	Required    bool        `yaml:"required" json:"required"`
	Default     interface{} `yaml:"default,omitempty" json:"default,omitempty"`
}

// ResolvedParameter is a ParameterSpec plus its final type hint. The hint is
// the declared type with the optionality suffix appended when the parameter is
// not required.
type ResolvedParameter struct {
	ParameterSpec
	TypeHint string
}
