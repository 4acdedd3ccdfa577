package server

import (
	"github.com/mark3labs/mcp-go/mcp"

	"loom/internal/schema"
)

// inputSchemaFor converts declared capability parameters into the JSON
// input schema advertised to MCP clients.
func inputSchemaFor(params []schema.ParameterSpec) mcp.ToolInputSchema {
	properties := make(map[string]interface{})
	required := []string{}

	for _, param := range params {
		properties[param.Name] = schema.PropertySchema(schema.Resolve(param))
		if param.Required {
			required = append(required, param.Name)
		}
	}

	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}
