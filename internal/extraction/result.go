package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
)

// Result is an ordered mapping from field name to extracted value. Keys keep
// the order in which they were first set; JSON encoding preserves it.
type Result struct {
	keys   []string
	values map[string]string
}

// NewResult returns a Result holding keys, all set to "".
func NewResult(keys ...string) *Result {
	r := &Result{values: make(map[string]string, len(keys))}
	for _, k := range keys {
		r.Set(k, "")
	}
	return r
}

// Set stores value under key, appending key if it is new.
func (r *Result) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value for key, "" if absent
func (r *Result) Get(key string) string {
	return r.values[key]
}

// Lookup returns the value for key and whether the key is present.
func (r *Result) Lookup(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the keys in order
func (r *Result) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len returns the number of keys
func (r *Result) Len() int {
	return len(r.keys)
}

// Filled counts keys with a non-empty value.
func (r *Result) Filled() int {
	n := 0
	for _, k := range r.keys {
		if r.values[k] != "" {
			n++
		}
	}
	return n
}

// All iterates key/value pairs in order.
func (r *Result) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, k := range r.keys {
			if !yield(k, r.values[k]) {
				return
			}
		}
	}
}

// Map returns an unordered copy.
func (r *Result) Map() map[string]string {
	m := make(map[string]string, len(r.keys))
	for _, k := range r.keys {
		m[k] = r.values[k]
	}
	return m
}

// MarshalJSON encodes the result as a JSON object in key order.
func (r *Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of strings, keeping its key order.
func (r *Result) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decoding result: %w", err)
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("decoding result: expected object, got %v", tok)
	}

	r.keys = nil
	r.values = make(map[string]string)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decoding result key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("decoding result: unexpected key %v", tok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decoding result value for %q: %w", key, err)
		}
		r.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decoding result: %w", err)
	}
	return nil
}
