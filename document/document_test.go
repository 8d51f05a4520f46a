package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_PreservesKeyOrder(t *testing.T) {
	data := []byte(`{"zebra":1,"alpha":{"b":2,"a":3},"mike":[1,"two",true,null]}`)

	doc, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"zebra", "alpha", "mike"}, doc.Keys())

	nested, ok := doc.GetObject("alpha")
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, nested.Keys())

	arr, ok := doc.GetArray("mike")
	require.True(t, ok)
	require.Len(t, arr, 4)
	assert.Equal(t, Number("1"), arr[0])
	assert.Equal(t, "two", arr[1])
	assert.Equal(t, true, arr[2])
	assert.Nil(t, arr[3])
}

func TestEncode_RoundTripStable(t *testing.T) {
	data := []byte(`{"paths":{"/b":{"get":{}},"/a":{"post":{}}},"info":{"version":"1.0","title":"t"}}`)

	doc, err := Decode(data)
	require.NoError(t, err)

	out, err := Encode(doc)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(out))
}

func TestEncode_NumberRepresentationPreserved(t *testing.T) {
	data := []byte(`{"int":600000,"float":0.8,"exp":1e3}`)

	doc, err := Decode(data)
	require.NoError(t, err)

	out, err := Encode(doc)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(out))
}

func TestObject_SetFirst(t *testing.T) {
	obj := NewObject()
	obj.Set("format", "int64")
	obj.Set("description", "d")
	obj.SetFirst("type", "integer")

	assert.Equal(t, []string{"type", "format", "description"}, obj.Keys())

	// Setting an existing key keeps its position.
	obj.SetFirst("description", "changed")
	assert.Equal(t, []string{"type", "format", "description"}, obj.Keys())
	s, _ := obj.GetString("description")
	assert.Equal(t, "changed", s)
}

func TestObject_Delete(t *testing.T) {
	obj := NewObject()
	obj.Set("a", 1)
	obj.Set("b", 2)
	obj.Set("c", 3)

	obj.Delete("b")
	assert.Equal(t, []string{"a", "c"}, obj.Keys())
	assert.False(t, obj.Has("b"))

	obj.Delete("missing")
	assert.Equal(t, []string{"a", "c"}, obj.Keys())
}

func TestObject_Clone_Independent(t *testing.T) {
	doc, err := Decode([]byte(`{"a":{"b":[1,2]},"c":"s"}`))
	require.NoError(t, err)

	clone := doc.Clone()
	nested, _ := clone.GetObject("a")
	nested.Set("b", "mutated")
	clone.Set("c", "mutated")

	original, _ := doc.GetObject("a")
	arr, ok := original.GetArray("b")
	require.True(t, ok)
	assert.Len(t, arr, 2)
	s, _ := doc.GetString("c")
	assert.Equal(t, "s", s)
}

func TestNumericHelpers(t *testing.T) {
	n, ok := Int(Number("42"))
	require.True(t, ok)
	assert.Equal(t, int64(42), n)

	_, ok = Int(Number("0.5"))
	assert.False(t, ok)

	f, ok := Float(Number("0.8"))
	require.True(t, ok)
	assert.InDelta(t, 0.8, f, 1e-9)

	_, ok = Float("not a number")
	assert.False(t, ok)
}

func TestEqual(t *testing.T) {
	a, err := Decode([]byte(`{"x":[1,{"y":2.0}],"s":"v"}`))
	require.NoError(t, err)
	b, err := Decode([]byte(`{"x":[1,{"y":2}],"s":"v"}`))
	require.NoError(t, err)

	assert.True(t, Equal(a, b))

	b.Set("s", "other")
	assert.False(t, Equal(a, b))
}

func TestDecode_RejectsNonObjectRoot(t *testing.T) {
	_, err := Decode([]byte(`[1,2,3]`))
	assert.Error(t, err)
}
