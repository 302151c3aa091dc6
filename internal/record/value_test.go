package record

import (
	"encoding/json"
	"testing"

	orderedmap "github.com/elliotchance/orderedmap/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeContent(t *testing.T) {
	t.Run("preserves object key order", func(t *testing.T) {
		data := []byte(`{"zeta": 1, "alpha": 2, "mid": 3}`)

		value, err := DecodeContent(data)
		require.NoError(t, err)

		obj, ok := value.(*orderedmap.OrderedMap[string, interface{}])
		require.True(t, ok, "expected an ordered map, got %T", value)
		assert.Equal(t, []string{"zeta", "alpha", "mid"}, obj.Keys())
	})

	t.Run("numbers decode as json.Number", func(t *testing.T) {
		data := []byte(`{"count": 42, "ratio": 0.5}`)

		value, err := DecodeContent(data)
		require.NoError(t, err)

		obj := value.(*orderedmap.OrderedMap[string, interface{}])
		count, _ := obj.Get("count")
		assert.Equal(t, json.Number("42"), count)
		ratio, _ := obj.Get("ratio")
		assert.Equal(t, json.Number("0.5"), ratio)
	})

	t.Run("nested structures", func(t *testing.T) {
		data := []byte(`{"items": [{"name": "sword"}, {"name": "shield"}], "active": true, "missing": null}`)

		value, err := DecodeContent(data)
		require.NoError(t, err)

		obj := value.(*orderedmap.OrderedMap[string, interface{}])

		items, _ := obj.Get("items")
		arr, ok := items.([]interface{})
		require.True(t, ok)
		require.Len(t, arr, 2)

		first := arr[0].(*orderedmap.OrderedMap[string, interface{}])
		name, _ := first.Get("name")
		assert.Equal(t, "sword", name)

		active, _ := obj.Get("active")
		assert.Equal(t, true, active)

		missing, exists := obj.Get("missing")
		assert.True(t, exists)
		assert.Nil(t, missing)
	})

	t.Run("top-level array", func(t *testing.T) {
		data := []byte(`["a", "b"]`)

		value, err := DecodeContent(data)
		require.NoError(t, err)

		arr, ok := value.([]interface{})
		require.True(t, ok)
		assert.Equal(t, []interface{}{"a", "b"}, arr)
	})

	t.Run("top-level scalar", func(t *testing.T) {
		value, err := DecodeContent([]byte(`"hello"`))
		require.NoError(t, err)
		assert.Equal(t, "hello", value)
	})

	t.Run("empty object", func(t *testing.T) {
		value, err := DecodeContent([]byte(`{}`))
		require.NoError(t, err)

		obj, ok := value.(*orderedmap.OrderedMap[string, interface{}])
		require.True(t, ok)
		assert.Equal(t, 0, obj.Len())
	})

	t.Run("malformed input", func(t *testing.T) {
		_, err := DecodeContent([]byte(`{"unterminated": `))
		assert.Error(t, err)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := DecodeContent([]byte(``))
		assert.Error(t, err)
	})
}

func TestUnwrapTyped(t *testing.T) {
	wrap := func(typeName string, raw interface{}) *orderedmap.OrderedMap[string, interface{}] {
		obj := orderedmap.NewOrderedMap[string, interface{}]()
		obj.Set(WrapperTypeField, typeName)
		obj.Set(WrapperValueField, raw)
		return obj
	}

	t.Run("bool wrapper", func(t *testing.T) {
		typeName, raw, ok := UnwrapTyped(wrap("Bool", true))
		assert.True(t, ok)
		assert.Equal(t, "Bool", typeName)
		assert.Equal(t, true, raw)
	})

	t.Run("string wrapper", func(t *testing.T) {
		typeName, raw, ok := UnwrapTyped(wrap("LocKey", "ui.menu.start"))
		assert.True(t, ok)
		assert.Equal(t, "LocKey", typeName)
		assert.Equal(t, "ui.menu.start", raw)
	})

	t.Run("extra keys disqualify", func(t *testing.T) {
		obj := wrap("Bool", true)
		obj.Set("extra", 1)

		_, _, ok := UnwrapTyped(obj)
		assert.False(t, ok)
	})

	t.Run("wrong keys disqualify", func(t *testing.T) {
		obj := orderedmap.NewOrderedMap[string, interface{}]()
		obj.Set("kind", "Bool")
		obj.Set("value", true)

		_, _, ok := UnwrapTyped(obj)
		assert.False(t, ok)
	})

	t.Run("non-string type disqualifies", func(t *testing.T) {
		obj := orderedmap.NewOrderedMap[string, interface{}]()
		obj.Set(WrapperTypeField, 7)
		obj.Set(WrapperValueField, true)

		_, _, ok := UnwrapTyped(obj)
		assert.False(t, ok)
	})

	t.Run("non-object disqualifies", func(t *testing.T) {
		_, _, ok := UnwrapTyped("just a string")
		assert.False(t, ok)
	})
}
