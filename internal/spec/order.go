package spec

import (
	"sort"
	"strconv"

	"github.com/go-openapi/jsonpointer"
	jsoniter "github.com/json-iterator/go"
)

// KeyOrder remembers the order object keys were written in the source
// document. Entries are indexed by JSON pointer; "" is the root object.
type KeyOrder struct {
	keys map[string][]string
}

// IndexKeyOrder walks a JSON document and records the key order of every
// object in it.
func IndexKeyOrder(data []byte) (*KeyOrder, error) {
	o := &KeyOrder{keys: make(map[string][]string)}
	iter := jsoniter.ParseBytes(jsoniter.ConfigCompatibleWithStandardLibrary, data)
	o.walk(iter, "")
	if iter.Error != nil {
		return nil, iter.Error
	}
	return o, nil
}

func (o *KeyOrder) walk(iter *jsoniter.Iterator, pointer string) {
	switch iter.WhatIsNext() {
	case jsoniter.ObjectValue:
		keys := []string{}
		iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
			keys = append(keys, key)
			o.walk(it, Pointer(pointer, key))
			return it.Error == nil
		})
		o.keys[pointer] = keys
	case jsoniter.ArrayValue:
		i := 0
		iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			o.walk(it, pointer+"/"+strconv.Itoa(i))
			i++
			return it.Error == nil
		})
	default:
		iter.Skip()
	}
}

// Keys returns the keys of the object at pointer in document order, or nil
// when the pointer is unknown.
func (o *KeyOrder) Keys(pointer string) []string {
	if o == nil {
		return nil
	}
	return o.keys[pointer]
}

// OrderedKeys returns the keys of m in the order they appear at pointer.
// Keys the index does not know about follow in lexical order, so a nil
// index degrades to sorted output.
func OrderedKeys[V any](o *KeyOrder, pointer string, m map[string]V) []string {
	out := make([]string, 0, len(m))
	seen := make(map[string]struct{}, len(m))
	for _, k := range o.Keys(pointer) {
		if _, ok := m[k]; !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	var rest []string
	for k := range m {
		if _, ok := seen[k]; !ok {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// Pointer appends escaped reference tokens to a JSON pointer.
func Pointer(base string, tokens ...string) string {
	for _, t := range tokens {
		base += "/" + jsonpointer.Escape(t)
	}
	return base
}
