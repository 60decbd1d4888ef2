package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextBundle_PreservesInsertionOrder(t *testing.T) {
	var b ContextBundle
	b.Set(KeyTopProducts, []string{"a"})
	b.Set(KeyOrderError, "Order not found")
	b.Set(KeyTopProducts, []string{"b"})

	assert.Equal(t, []string{KeyTopProducts, KeyOrderError}, b.Keys())
	v, ok := b.Get(KeyTopProducts)
	require.True(t, ok)
	assert.Equal(t, []string{"b"}, v)
	assert.False(t, b.Has(KeyStockInfo))
}

func TestContextBundle_MarshalJSON(t *testing.T) {
	var b ContextBundle
	b.Set(KeyStockError, "Product not found")
	b.Set(KeyProducts, []ProductView{})

	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, `{"stock_error":"Product not found","products":[]}`, string(data))

	var empty ContextBundle
	data, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestContextBundle_EntriesIsACopy(t *testing.T) {
	var b ContextBundle
	b.Set(KeyOrderError, "x")
	entries := b.Entries()
	entries[0].Value = "mutated"

	v, _ := b.Get(KeyOrderError)
	assert.Equal(t, "x", v)
}

func TestCompletionRate(t *testing.T) {
	assert.Equal(t, 0.0, CompletionRate(0, 0))
	assert.InDelta(t, 25.0, CompletionRate(1, 4), 1e-9)
	assert.InDelta(t, 100.0, CompletionRate(7, 7), 1e-9)
}

func TestIntent_Valid(t *testing.T) {
	for _, i := range Intents {
		assert.True(t, i.Valid(), i)
	}
	assert.False(t, Intent("refund").Valid())
}
