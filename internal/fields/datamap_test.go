package fields

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataMapKeepsOrderAndScalars(t *testing.T) {
	m, err := ParseDataMap(`{"zeta":"z","age":27,"agree":true,"gone":null,"tags":["a","b"],"alpha":"a","zeta":"z2"}`)
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "age", "agree", "tags", "alpha"}, m.Keys())
	v, _ := m.Get("zeta")
	assert.Equal(t, "z2", v)
	v, _ = m.Get("age")
	assert.Equal(t, "27", v)
	v, _ = m.Get("agree")
	assert.Equal(t, "true", v)
	v, _ = m.Get("tags")
	assert.Equal(t, `["a","b"]`, v)
	_, ok := m.Get("gone")
	assert.False(t, ok)
}

func TestParseDataMapRejectsNonObjects(t *testing.T) {
	_, err := ParseDataMap(`["a"]`)
	assert.Error(t, err)
	_, err = ParseDataMap(`{"a":`)
	assert.Error(t, err)
}

func TestDataMapJSON(t *testing.T) {
	var payload struct {
		Data *DataMap `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"data":{"b":"2","a":"1"}}`), &payload))
	require.NotNil(t, payload.Data)
	assert.Equal(t, []string{"b", "a"}, payload.Data.Keys())

	out, err := json.Marshal(payload.Data)
	require.NoError(t, err)
	assert.Equal(t, `{"b":"2","a":"1"}`, string(out))
}
