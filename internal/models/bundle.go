// internal/models/bundle.go
package models

import (
	"bytes"
	"encoding/json"
)

// Context bundle keys.
const (
	KeyOrderInfo   = "order_info"
	KeyOrderError  = "order_error"
	KeyStockInfo   = "stock_info"
	KeyStockError  = "stock_error"
	KeyTopProducts = "top_products"
	KeyProducts    = "products"
)

type ContextEntry struct {
	Key   string
	Value interface{}
}

// ContextBundle is an insertion-ordered key/value set handed to text
// generation. The zero value is an empty bundle.
type ContextBundle struct {
	entries []ContextEntry
}

// Set stores value under key, replacing an existing entry in place.
func (b *ContextBundle) Set(key string, value interface{}) {
	for i := range b.entries {
		if b.entries[i].Key == key {
			b.entries[i].Value = value
			return
		}
	}
	b.entries = append(b.entries, ContextEntry{Key: key, Value: value})
}

func (b ContextBundle) Get(key string) (interface{}, bool) {
	for _, e := range b.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

func (b ContextBundle) Has(key string) bool {
	_, ok := b.Get(key)
	return ok
}

func (b ContextBundle) Len() int {
	return len(b.entries)
}

func (b ContextBundle) Keys() []string {
	keys := make([]string, len(b.entries))
	for i, e := range b.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the entries in insertion order.
func (b ContextBundle) Entries() []ContextEntry {
	out := make([]ContextEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

// MarshalJSON encodes the bundle as an object, keeping insertion order.
func (b ContextBundle) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range b.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
