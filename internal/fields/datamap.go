package fields

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// DataMap is a generated key->value mapping that keeps the insertion order
// of its keys, so matching scans are deterministic.
type DataMap struct {
	keys []string
	vals map[string]string
}

// NewDataMap creates an empty map.
func NewDataMap() *DataMap {
	return &DataMap{vals: map[string]string{}}
}

// DataMapOf builds a map from alternating key, value arguments.
func DataMapOf(kv ...string) *DataMap {
	m := NewDataMap()
	for i := 0; i+1 < len(kv); i += 2 {
		m.Set(kv[i], kv[i+1])
	}
	return m
}

// Set stores v under k. A repeated key keeps its first position.
func (m *DataMap) Set(k, v string) {
	if m.vals == nil {
		m.vals = map[string]string{}
	}
	if _, ok := m.vals[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.vals[k] = v
}

func (m *DataMap) Get(k string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.vals[k]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *DataMap) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

func (m *DataMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Values returns the values in key order.
func (m *DataMap) Values() []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.vals[k])
	}
	return out
}

// ParseDataMap decodes a JSON object. Strings are kept as-is, numbers and
// booleans as their JSON text, nested arrays and objects as raw JSON, and
// null members are dropped.
func ParseDataMap(raw string) (*DataMap, error) {
	if !gjson.Valid(raw) {
		return nil, errors.New("invalid JSON")
	}
	res := gjson.Parse(raw)
	if !res.IsObject() {
		return nil, fmt.Errorf("expected a JSON object, got %s", res.Type)
	}
	m := NewDataMap()
	res.ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.Null:
		case gjson.String:
			m.Set(key.String(), value.String())
		default:
			m.Set(key.String(), value.Raw)
		}
		return true
	})
	return m, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *DataMap) UnmarshalJSON(b []byte) error {
	parsed, err := ParseDataMap(string(b))
	if err != nil {
		return err
	}
	*m = *parsed
	return nil
}

// MarshalJSON writes the map as an object with keys in insertion order.
func (m DataMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(m.vals[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
