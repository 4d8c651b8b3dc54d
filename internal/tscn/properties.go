package tscn

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"strings"

	"github.com/speakeasy-api/openapi/sequencedmap"
)

// Properties is an insertion-ordered map of property name to Value. Keys
// containing '/' address nested maps: Insert("a/b", v) stores v under key
// "b" of the map stored under "a".
type Properties struct {
	values *sequencedmap.Map[string, Value]
}

// NewProperties returns an empty property store.
func NewProperties() *Properties {
	return &Properties{values: sequencedmap.New[string, Value]()}
}

// Len returns the number of top-level keys.
func (p *Properties) Len() int {
	if p == nil || p.values == nil {
		return 0
	}
	return p.values.Len()
}

// Keys returns the top-level keys in insertion order.
func (p *Properties) Keys() []string {
	if p.Len() == 0 {
		return nil
	}
	out := make([]string, 0, p.values.Len())
	for k := range p.values.All() {
		out = append(out, k)
	}
	return out
}

// All iterates over the top-level entries in insertion order.
func (p *Properties) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if p.Len() == 0 {
			return
		}
		for k, v := range p.values.All() {
			if !yield(k, v) {
				return
			}
		}
	}
}

// Set stores v under a single key, replacing any previous value in place.
// The key is not split on '/'.
func (p *Properties) Set(key string, v Value) {
	if p.values == nil {
		p.values = sequencedmap.New[string, Value]()
	}
	p.values.Set(key, v)
}

func (p *Properties) lookup(key string) (Value, bool) {
	if p == nil || p.values == nil {
		return Value{}, false
	}
	return p.values.Get(key)
}

// Insert stores v at a slash-delimited path, creating intermediate maps as
// needed. The write is dropped when an intermediate segment already holds a
// value that is not a map. It reports whether the value was stored.
func (p *Properties) Insert(path string, v Value) bool {
	head, rest, nested := strings.Cut(path, "/")
	if !nested {
		p.Set(path, v)
		return true
	}

	existing, ok := p.lookup(head)
	if !ok {
		child := NewProperties()
		p.Set(head, Value{Kind: KindMap, Map: child, Raw: "{"})
		return child.Insert(rest, v)
	}
	if existing.Kind != KindMap || existing.Map == nil {
		return false
	}
	return existing.Map.Insert(rest, v)
}

// Get returns the value at a slash-delimited path. It reports false when any
// segment is missing or an intermediate segment is not a map.
func (p *Properties) Get(path string) (Value, bool) {
	head, rest, nested := strings.Cut(path, "/")
	v, ok := p.lookup(head)
	if !ok {
		return Value{}, false
	}
	if !nested {
		return v, true
	}
	if v.Kind != KindMap {
		return Value{}, false
	}
	return v.Map.Get(rest)
}

// GetMap returns the nested map stored at path. The returned store is shared,
// so writes through it are visible from p.
func (p *Properties) GetMap(path string) (*Properties, bool) {
	v, ok := p.Get(path)
	if !ok || v.Kind != KindMap || v.Map == nil {
		return nil, false
	}
	return v.Map, true
}

// MarshalJSON encodes the store as a JSON object with keys in insertion
// order.
func (p *Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for k, v := range p.All() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
