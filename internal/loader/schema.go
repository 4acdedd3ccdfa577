package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sigsyaml "sigs.k8s.io/yaml"

	"loom/internal/template"
)

// OutputSchemaVariable is the placeholder name a template uses to have its
// structured-output schema inlined at load time.
const OutputSchemaVariable = "output_schema"

// SchemaPathFor returns the sibling schema file for a descriptor: same base
// name, .json extension.
func SchemaPathFor(descriptorPath string) string {
	ext := filepath.Ext(descriptorPath)
	return strings.TrimSuffix(descriptorPath, ext) + ".json"
}

// InjectOutputSchema substitutes the output-schema placeholder in raw with a
// minified serialization of the schema document at schemaPath. Text without
// the placeholder is returned unchanged. Runtime placeholders ({{ document }}
// and friends) are never touched; they belong to a later stage.
//
// The returned error is either a *MissingSchemaWarning (placeholder present,
// file absent) or a schema read/parse failure; in both cases the returned
// text is raw, unchanged, and still usable.
func InjectOutputSchema(raw, schemaPath string) (string, error) {
	if !template.ContainsVariable(raw, OutputSchemaVariable) {
		return raw, nil
	}

	data, err := os.ReadFile(schemaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return raw, &MissingSchemaWarning{SchemaPath: schemaPath}
		}
		return raw, fmt.Errorf("failed to read schema %s: %w", schemaPath, err)
	}

	minified, err := minifySchema(data)
	if err != nil {
		return raw, fmt.Errorf("failed to parse schema %s: %w", schemaPath, err)
	}

	return template.SubstituteVariable(raw, OutputSchemaVariable, minified), nil
}

// minifySchema canonicalizes a schema document: parsed (JSON, or YAML for
// hand-written schemas), then re-serialized as compact JSON with sorted keys.
func minifySchema(data []byte) (string, error) {
	jsonBytes, err := sigsyaml.YAMLToJSON(data)
	if err != nil {
		return "", err
	}

	var doc interface{}
	if err := json.Unmarshal(jsonBytes, &doc); err != nil {
		return "", err
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
