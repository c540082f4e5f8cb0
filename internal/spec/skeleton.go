package spec

// withoutSchemas returns a copy of the document tree with every schema
// bearing node removed: top-level definitions, parameter schema and items,
// response schema, headers and examples. Only the objects on the way to a
// removed key are copied.
func withoutSchemas(tree map[string]any) map[string]any {
	out := copyWithout(tree, "definitions")
	if params, ok := tree["parameters"].(map[string]any); ok {
		out["parameters"] = mapValues(params, pruneParameter)
	}
	if responses, ok := tree["responses"].(map[string]any); ok {
		out["responses"] = mapValues(responses, pruneResponse)
	}
	if paths, ok := tree["paths"].(map[string]any); ok {
		out["paths"] = mapValues(paths, prunePathItem)
	}
	return out
}

func prunePathItem(v any) any {
	item, ok := v.(map[string]any)
	if !ok {
		return v
	}
	out := copyWithout(item)
	for key, value := range item {
		if key == "parameters" {
			out[key] = pruneParameterList(value)
			continue
		}
		if op, ok := value.(map[string]any); ok && key != "$ref" {
			out[key] = pruneOperation(op)
		}
	}
	return out
}

func pruneOperation(op map[string]any) map[string]any {
	out := copyWithout(op)
	if params, ok := op["parameters"]; ok {
		out["parameters"] = pruneParameterList(params)
	}
	if responses, ok := op["responses"].(map[string]any); ok {
		out["responses"] = mapValues(responses, pruneResponse)
	}
	return out
}

func pruneParameterList(v any) any {
	list, ok := v.([]any)
	if !ok {
		return v
	}
	out := make([]any, len(list))
	for i, p := range list {
		out[i] = pruneParameter(p)
	}
	return out
}

func pruneParameter(v any) any {
	if p, ok := v.(map[string]any); ok {
		return copyWithout(p, "schema", "items")
	}
	return v
}

func pruneResponse(v any) any {
	if r, ok := v.(map[string]any); ok {
		return copyWithout(r, "schema", "headers", "examples")
	}
	return v
}

func mapValues(m map[string]any, fn func(any) any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = fn(v)
	}
	return out
}

func copyWithout(m map[string]any, drop ...string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	for _, k := range drop {
		delete(out, k)
	}
	return out
}
