package postman

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/mark3labs/swagger2postman/internal/spec"
)

const baseURLVar = "{{baseUrl}}"

// Operation locates one (path, method) pair of the source document.
type Operation struct {
	Path string
	// Method is the key the operation is stored under, e.g. "get".
	Method string
	Op     *openapi2.Operation
	// Shared holds path-level parameters; operation parameters override
	// them by (in, name).
	Shared openapi2.Parameters
}

func (o Operation) pointer() string {
	return spec.Pointer("/paths", o.Path, o.Method)
}

// BuildItem renders one request item, with one example response per
// documented status code.
func (t *Transcoder) BuildItem(folder string, op Operation) (*Item, error) {
	path := NormalizePath(op.Path)
	method := strings.ToUpper(op.Method)

	name := op.Op.Summary
	if strings.TrimSpace(name) == "" {
		segs := Segments(path)
		name = segs[len(segs)-1]
	}

	item := &Item{
		Name: name,
		Request: Request{
			Method:  method,
			Headers: []KeyValue{},
			URL: URL{
				Raw:   baseURLVar + path,
				Host:  []string{baseURLVar},
				Path:  Segments(path),
				Query: []KeyValue{},
			},
			Description: op.Op.Description,
		},
		Responses: []*Response{},
		Events:    eventsFor(folder, method),
	}

	for _, p := range t.parameters(op) {
		switch p.In {
		case "header":
			item.Request.Headers = append(item.Request.Headers, KeyValue{Key: p.Name, Description: p.Description})
		case "query":
			item.Request.URL.Query = append(item.Request.URL.Query, KeyValue{Key: p.Name, Description: p.Description})
		case "body", "formData":
			if _, ok := t.doc.Schemas(); !ok {
				return nil, &spec.SpecError{
					Code:        spec.StructureError,
					Message:     fmt.Sprintf("%s %s: parameter %q needs schema definitions but the document has none", method, op.Path, p.Name),
					Location:    t.doc.Location,
					JSONPointer: p.pointer,
				}
			}
			schema, _ := t.doc.Node(p.pointer + "/schema")
			example := t.resolver.Resolve(schema, p.pointer+"/schema")
			raw, err := marshalIndent(example)
			if err != nil {
				return nil, fmt.Errorf("encode body for %s %s: %w", method, op.Path, err)
			}
			item.Request.Body = Body{
				Mode:    "raw",
				Raw:     raw,
				Options: &BodyOptions{Raw: RawOptions{Language: "json"}},
			}
		}
	}

	respPointer := op.pointer() + "/responses"
	for _, status := range spec.OrderedKeys(t.doc.Order, respPointer, op.Op.Responses) {
		resp, pointer := t.response(op.Op.Responses[status], spec.Pointer(respPointer, status))
		if resp == nil {
			continue
		}
		code, err := strconv.Atoi(status)
		if err != nil {
			return nil, &spec.SpecError{
				Code:        spec.StructureError,
				Message:     fmt.Sprintf("%s %s: response status %q is not a numeric HTTP status code", method, op.Path, status),
				Location:    t.doc.Location,
				JSONPointer: spec.Pointer(respPointer, status),
				Cause:       err,
			}
		}
		content, ok := t.doc.Node(pointer + "/content")
		if !ok {
			content = map[string]any{}
		}
		body, err := marshalIndent(t.ordered(content, pointer+"/content"))
		if err != nil {
			return nil, fmt.Errorf("encode %s response for %s %s: %w", status, method, op.Path, err)
		}
		item.Responses = append(item.Responses, &Response{
			Name:            status + " response",
			OriginalRequest: item.Request,
			Status:          status,
			Code:            code,
			Body:            body,
			Headers:         []KeyValue{},
			Description:     resp.Description,
		})
	}

	return item, nil
}

type parameter struct {
	*openapi2.Parameter
	pointer string
}

// parameters merges path-level and operation-level parameters. Position is
// decided by first appearance, content by the last definition.
func (t *Transcoder) parameters(op Operation) []parameter {
	var merged []parameter
	index := make(map[string]int)
	add := func(list openapi2.Parameters, base string) {
		for i, p := range list {
			pointer := spec.Pointer(base, "parameters", strconv.Itoa(i))
			p, pointer = t.parameter(p, pointer)
			if p == nil {
				continue
			}
			key := p.In + ":" + p.Name
			if at, ok := index[key]; ok {
				merged[at] = parameter{Parameter: p, pointer: pointer}
				continue
			}
			index[key] = len(merged)
			merged = append(merged, parameter{Parameter: p, pointer: pointer})
		}
	}
	add(op.Shared, spec.Pointer("/paths", op.Path))
	add(op.Op.Parameters, op.pointer())
	return merged
}

// parameter follows a "#/parameters/<name>" reference. Unresolvable
// references are skipped.
func (t *Transcoder) parameter(p *openapi2.Parameter, pointer string) (*openapi2.Parameter, string) {
	if p == nil || p.Ref == "" {
		return p, pointer
	}
	name := strings.TrimPrefix(p.Ref, "#/parameters/")
	target, ok := t.doc.Parameters[name]
	if !ok || target == nil {
		slog.Debug("skipping unresolved parameter reference", "ref", p.Ref, "pointer", pointer)
		return nil, pointer
	}
	return target, spec.Pointer("/parameters", name)
}

// response follows a "#/responses/<name>" reference. Unresolvable
// references resolve to an empty response.
func (t *Transcoder) response(r *openapi2.Response, pointer string) (*openapi2.Response, string) {
	if r == nil || r.Ref == "" {
		return r, pointer
	}
	name := strings.TrimPrefix(r.Ref, "#/responses/")
	if target, ok := t.doc.Responses[name]; ok && target != nil {
		return target, spec.Pointer("/responses", name)
	}
	slog.Debug("unresolved response reference", "ref", r.Ref, "pointer", pointer)
	return &openapi2.Response{}, pointer
}

// ordered rebuilds decoded JSON so objects keep their document key order.
func (t *Transcoder) ordered(v any, pointer string) any {
	switch x := v.(type) {
	case map[string]any:
		om := orderedmap.New[string, any](len(x))
		for _, k := range spec.OrderedKeys(t.doc.Order, pointer, x) {
			om.Set(k, t.ordered(x[k], spec.Pointer(pointer, k)))
		}
		return om
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = t.ordered(x[i], pointer+"/"+strconv.Itoa(i))
		}
		return out
	default:
		return v
	}
}

// marshalIndent encodes v the way the collection file is written: four
// space indentation and no HTML escaping.
func marshalIndent(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
