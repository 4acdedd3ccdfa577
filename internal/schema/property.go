package schema

// PropertySchema maps a declared type to a JSON-schema property definition for
// the serving layer's input schema. The declared type is assumed to have
// passed Validate; unknown scalars map to "string" so a typo degrades to a
// permissive schema rather than a broken one.
func PropertySchema(param ResolvedParameter) map[string]interface{} {
	prop := typeSchema(BaseType(param.TypeHint))
	if param.Description != "" {
		prop["description"] = param.Description
	}
	if param.Default != nil {
		prop["default"] = param.Default
	}
	return prop
}

func typeSchema(declared string) map[string]interface{} {
	base, params, err := splitType(declared)
	if err != nil {
		return map[string]interface{}{"type": "string"}
	}

	switch base {
	case "str":
		return map[string]interface{}{"type": "string"}
	case "int":
		return map[string]interface{}{"type": "integer"}
	case "float":
		return map[string]interface{}{"type": "number"}
	case "bool":
		return map[string]interface{}{"type": "boolean"}
	case "any":
		return map[string]interface{}{}
	case typeDict:
		schema := map[string]interface{}{"type": "object"}
		if len(params) == 2 {
			schema["additionalProperties"] = typeSchema(params[1])
		}
		return schema
	case typeList:
		schema := map[string]interface{}{"type": "array"}
		if len(params) == 1 {
			schema["items"] = typeSchema(params[0])
		}
		return schema
	default:
		return map[string]interface{}{"type": "string"}
	}
}
