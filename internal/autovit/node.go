package autovit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Node is a read-only view over a decoded JSON value. Every lookup through a
// missing key, an out of range index or a value of the wrong type yields an
// absent Node instead of failing, so callers deal with absence once.
type Node struct {
	v any
}

// ParseNode decodes data keeping numbers as json.Number.
func ParseNode(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Node{}, fmt.Errorf("decode json: %w", err)
	}
	return Node{v: v}, nil
}

// Exists reports whether the node holds a non-null value.
func (n Node) Exists() bool { return n.v != nil }

// IsObject reports whether the node holds a JSON object.
func (n Node) IsObject() bool {
	_, ok := n.v.(map[string]any)
	return ok
}

// Get walks object keys.
func (n Node) Get(keys ...string) Node {
	cur := n.v
	for _, k := range keys {
		m, ok := cur.(map[string]any)
		if !ok {
			return Node{}
		}
		cur = m[k]
	}
	return Node{v: cur}
}

// Index returns the i-th array element.
func (n Node) Index(i int) Node {
	arr, ok := n.v.([]any)
	if !ok || i < 0 || i >= len(arr) {
		return Node{}
	}
	return Node{v: arr[i]}
}

// Array returns the elements of an array node, or nil.
func (n Node) Array() []Node {
	arr, ok := n.v.([]any)
	if !ok {
		return nil
	}
	out := make([]Node, len(arr))
	for i, v := range arr {
		out[i] = Node{v: v}
	}
	return out
}

// Text returns a string value, or a number rendered as in the source.
// Empty strings count as absent.
func (n Node) Text() (string, bool) {
	switch v := n.v.(type) {
	case string:
		return v, v != ""
	case json.Number:
		return v.String(), true
	}
	return "", false
}

// TextPtr is Text as a nullable value.
func (n Node) TextPtr() *string {
	if s, ok := n.Text(); ok {
		return &s
	}
	return nil
}

// Float returns a numeric value. Numeric strings are accepted.
func (n Node) Float() (float64, bool) {
	switch v := n.v.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

// FloatPtr is Float as a nullable value.
func (n Node) FloatPtr() *float64 {
	if f, ok := n.Float(); ok {
		return &f
	}
	return nil
}

// Bool is true only for a JSON true.
func (n Node) Bool() bool {
	b, _ := n.v.(bool)
	return b
}

// Raw re-encodes the node. Absent nodes encode as nil.
func (n Node) Raw() json.RawMessage {
	if n.v == nil {
		return nil
	}
	data, err := json.Marshal(n.v)
	if err != nil {
		return nil
	}
	return data
}
