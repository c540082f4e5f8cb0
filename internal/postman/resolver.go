package postman

import (
	"log/slog"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/mark3labs/swagger2postman/internal/spec"
)

// Example is a synthesized placeholder object. Keys keep the order the
// properties were declared in.
type Example = orderedmap.OrderedMap[string, any]

const definitionsPrefix = "#/definitions/"

// DefaultExampleLimit caps the placeholder values generated for one body.
// Densely linked definitions otherwise expand every path through the graph.
const DefaultExampleLimit = 10000

// Resolver turns schemas into placeholder example values, following $ref
// entries into the document's definitions. Schemas are the untyped JSON
// nodes of the document, so a node of unexpected shape is skipped rather
// than rejected.
type Resolver struct {
	definitions map[string]any
	order       *spec.KeyOrder
	limit       int
}

func NewResolver(definitions map[string]any, order *spec.KeyOrder) *Resolver {
	return &Resolver{definitions: definitions, order: order, limit: DefaultExampleLimit}
}

// Resolve builds the placeholder object for schema. pointer is the schema's
// JSON pointer in the source document and only drives property ordering.
//
// Every property gets a fixed default by type: integer 0, string "string",
// boolean true, array a one-element list of the resolved items schema (or
// an empty list), object or $ref a nested object. Other types are dropped.
// A definition met again on the same branch resolves to {}. Once the value
// limit is spent, nested objects resolve to {}.
func (r *Resolver) Resolve(schema any, pointer string) *Example {
	run := &resolution{Resolver: r, left: r.limit}
	out := run.resolve(schema, pointer, nil)
	if run.truncated {
		slog.Warn("example body truncated", "pointer", pointer, "limit", r.limit)
	}
	return out
}

// resolution is the state of one Resolve call.
type resolution struct {
	*Resolver
	left      int
	truncated bool
}

func (r *resolution) spent() bool {
	return r.limit > 0 && r.left <= 0
}

func (r *resolution) resolve(node any, pointer string, seen visited) *Example {
	out := orderedmap.New[string, any]()
	if r.spent() {
		r.truncated = true
		return out
	}
	s, ok := node.(map[string]any)
	if !ok {
		return out
	}
	if raw, isRef := s["$ref"]; isRef {
		ref, _ := raw.(string)
		name := strings.TrimPrefix(ref, definitionsPrefix)
		if ref == "" || seen.has(name) {
			return out
		}
		seen = seen.with(name)
		if s, ok = r.definitions[name].(map[string]any); !ok {
			return out
		}
		pointer = spec.Pointer("/definitions", name)
	}

	props, _ := s["properties"].(map[string]any)
	for _, name := range spec.OrderedKeys(r.order, pointer+"/properties", props) {
		prop, ok := props[name].(map[string]any)
		if !ok {
			continue
		}
		propPointer := spec.Pointer(pointer, "properties", name)
		if _, isRef := prop["$ref"]; isRef {
			r.set(out, name, r.resolve(prop, propPointer, seen))
			continue
		}
		typ, _ := prop["type"].(string)
		switch typ {
		case "integer":
			r.set(out, name, 0)
		case "string":
			r.set(out, name, "string")
		case "boolean":
			r.set(out, name, true)
		case "array":
			items, ok := prop["items"]
			if !ok {
				r.set(out, name, []any{})
				continue
			}
			r.set(out, name, []any{r.resolve(items, propPointer+"/items", seen)})
		case "object":
			r.set(out, name, r.resolve(prop, propPointer, seen))
		}
	}
	return out
}

func (r *resolution) set(out *Example, name string, v any) {
	r.left--
	out.Set(name, v)
}

// visited holds the definition names entered on one resolution branch.
// Branches extend a copy, so siblings never see each other's entries.
type visited map[string]struct{}

func (v visited) has(name string) bool {
	_, ok := v[name]
	return ok
}

func (v visited) with(name string) visited {
	next := make(visited, len(v)+1)
	for k := range v {
		next[k] = struct{}{}
	}
	next[name] = struct{}{}
	return next
}
