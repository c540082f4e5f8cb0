package postman

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/swagger2postman/internal/spec"
)

const definitionsDoc = `{
  "swagger": "2.0",
  "info": {"title": "Schemas"},
  "paths": {},
  "definitions": {
    "User": {
      "type": "object",
      "properties": {
        "name": {"type": "string"},
        "age": {"type": "integer"}
      }
    },
    "Node": {
      "type": "object",
      "properties": {
        "value": {"type": "integer"},
        "next": {"$ref": "#/definitions/Node"}
      }
    },
    "Pair": {
      "type": "object",
      "properties": {
        "left": {"$ref": "#/definitions/User"},
        "right": {"$ref": "#/definitions/User"}
      }
    },
    "Kitchen": {
      "type": "object",
      "properties": {
        "zeta": {"type": "boolean"},
        "alpha": {"type": "number"},
        "members": {"type": "array", "items": {"$ref": "#/definitions/User"}},
        "labels": {"type": "array", "items": {"type": "string"}},
        "bare": {"type": "array"},
        "meta": {
          "type": "object",
          "properties": {
            "owner": {"$ref": "#/definitions/User"},
            "enabled": {"type": "boolean"}
          }
        },
        "ghost": {"$ref": "#/definitions/Missing"},
        "untyped": {"description": "no type"}
      }
    },
    "Loose": {
      "type": "object",
      "properties": {
        "nullable": {"type": ["string", "null"]},
        "name": {"type": "string", "required": true},
        "count": {"type": "integer", "minimum": "zero"},
        "weird": "not an object",
        "tags": {"type": "array", "items": "nope"}
      }
    }
  }
}`

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	doc, err := spec.Parse([]byte(definitionsDoc), "defs.json", "")
	require.NoError(t, err)
	defs, ok := doc.Schemas()
	require.True(t, ok)
	return NewResolver(defs, doc.Order)
}

func resolveRef(t *testing.T, r *Resolver, name string) string {
	t.Helper()
	ref := map[string]any{"$ref": "#/definitions/" + name}
	out, err := json.Marshal(r.Resolve(ref, "/paths/x/schema"))
	require.NoError(t, err)
	return string(out)
}

func TestResolve_User(t *testing.T) {
	r := newTestResolver(t)
	got := resolveRef(t, r, "User")
	assert.JSONEq(t, `{"name":"string","age":0}`, got)
	assert.Equal(t, `{"name":"string","age":0}`, got, "properties keep declaration order")
}

func TestResolve_Deterministic(t *testing.T) {
	r := newTestResolver(t)
	first := resolveRef(t, r, "Kitchen")
	for i := 0; i < 20; i++ {
		require.Equal(t, first, resolveRef(t, r, "Kitchen"))
	}
}

func TestResolve_SelfReferenceTerminates(t *testing.T) {
	r := newTestResolver(t)
	assert.JSONEq(t, `{"value":0,"next":{}}`, resolveRef(t, r, "Node"))
}

func TestResolve_SiblingReferencesBothResolve(t *testing.T) {
	r := newTestResolver(t)
	assert.JSONEq(t,
		`{"left":{"name":"string","age":0},"right":{"name":"string","age":0}}`,
		resolveRef(t, r, "Pair"))
}

func TestResolve_TypeDefaults(t *testing.T) {
	r := newTestResolver(t)
	got := resolveRef(t, r, "Kitchen")
	assert.Equal(t,
		`{"zeta":true,"members":[{"name":"string","age":0}],"labels":[{}],"bare":[],"meta":{"owner":{"name":"string","age":0},"enabled":true},"ghost":{}}`,
		got)
}

func TestResolve_NilAndUnknown(t *testing.T) {
	r := NewResolver(nil, nil)
	assert.Equal(t, 0, r.Resolve(nil, "").Len())
	assert.Equal(t, 0, r.Resolve(map[string]any{"$ref": "#/definitions/Nope"}, "").Len())
	assert.Equal(t, 0, r.Resolve("not a schema", "").Len())
	assert.Equal(t, 0, r.Resolve(map[string]any{"$ref": 42}, "").Len())
}

func TestVisited_WithCopies(t *testing.T) {
	var v visited
	a := v.with("A")
	b := a.with("B")
	assert.True(t, a.has("A"))
	assert.False(t, a.has("B"))
	assert.True(t, b.has("A"))
	assert.True(t, b.has("B"))
	assert.False(t, v.has("A"))
}

func TestResolve_MalformedPropertiesAreSkipped(t *testing.T) {
	r := newTestResolver(t)
	assert.Equal(t, `{"name":"string","count":0,"tags":[{}]}`, resolveRef(t, r, "Loose"))
}

func TestResolve_LimitBoundsDenseGraphs(t *testing.T) {
	// Every definition references every other one, so unbounded output
	// grows with the number of paths through the graph.
	const n = 8
	defs := make(map[string]any, n)
	for i := 0; i < n; i++ {
		props := make(map[string]any, n)
		for j := 0; j < n; j++ {
			props[fmt.Sprintf("d%d", j)] = map[string]any{"$ref": fmt.Sprintf("#/definitions/D%d", j)}
		}
		defs[fmt.Sprintf("D%d", i)] = map[string]any{"type": "object", "properties": props}
	}

	r := NewResolver(defs, nil)
	r.limit = 500
	out, err := json.Marshal(r.Resolve(map[string]any{"$ref": "#/definitions/D0"}, ""))
	require.NoError(t, err)
	assert.Less(t, len(out), 64*1024)
	assert.True(t, strings.HasPrefix(string(out), `{"d0":{},"d1":{"d0":{},"d1":{}`), string(out))
}

func TestResolve_ZeroLimitIsUnbounded(t *testing.T) {
	r := newTestResolver(t)
	r.limit = 0
	assert.JSONEq(t, `{"left":{"name":"string","age":0},"right":{"name":"string","age":0}}`, resolveRef(t, r, "Pair"))

	r.limit = 1
	assert.Equal(t, `{"left":{"name":"string","age":0},"right":{}}`, resolveRef(t, r, "Pair"))
}
