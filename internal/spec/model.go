package spec

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/go-openapi/jsonpointer"
)

// Document is a fetched Swagger v2 document together with the context the
// transcoder needs: where it came from and the order its objects were
// written in.
type Document struct {
	*openapi2.T

	// Location is the URL or absolute file path the document was read from.
	Location string
	// Host is host[:port] of Location; empty for local files.
	Host    string
	Servers []Server
	Order   *KeyOrder

	// tree is the whole document decoded without types, numbers kept as
	// json.Number. Schemas and response content are read from here.
	tree map[string]any
}

type Server struct {
	URL         string
	Description string
}

// Title returns info.title, or an empty string.
func (d *Document) Title() string {
	if d == nil || d.T == nil {
		return ""
	}
	return strings.TrimSpace(d.Info.Title)
}

// Description returns info.description, or an empty string.
func (d *Document) Description() string {
	if d == nil || d.T == nil {
		return ""
	}
	return d.Info.Description
}

// Node returns the untyped value at pointer, or false when the pointer does
// not resolve.
func (d *Document) Node(pointer string) (any, bool) {
	if d == nil || d.tree == nil {
		return nil, false
	}
	p, err := jsonpointer.New(pointer)
	if err != nil {
		return nil, false
	}
	v, _, err := p.Get(d.tree)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Schemas returns the untyped definitions object. ok is false when the
// document has none, or when it is not an object.
func (d *Document) Schemas() (defs map[string]any, ok bool) {
	v, found := d.Node("/definitions")
	if !found {
		return nil, false
	}
	defs, ok = v.(map[string]any)
	return defs, ok
}

// serversFromExtensions reads the OpenAPI 3 style "servers" array, which the
// v2 model keeps in its extension map.
func serversFromExtensions(ext map[string]interface{}) []Server {
	raw, ok := ext["servers"].([]interface{})
	if !ok || len(raw) == 0 {
		return nil
	}
	out := make([]Server, 0, len(raw))
	for _, s := range raw {
		m, ok := s.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, Server{URL: asString(m["url"]), Description: asString(m["description"])})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
