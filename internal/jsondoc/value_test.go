package jsondoc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeepsKeyOrder(t *testing.T) {
	doc, err := Parse([]byte(`{"zeta":1,"alpha":{"b":true,"a":null},"mid":[3,"x",1.50]}`))
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"zeta", "alpha", "mid"}, doc.Keys()); diff != "" {
		t.Fatalf("unexpected key order (-want +got):\n%s", diff)
	}
	nested, ok := doc.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, nested.Keys())

	out, err := Marshal(doc)
	require.NoError(t, err)
	if diff := cmp.Diff(`{"zeta":1,"alpha":{"b":true,"a":null},"mid":[3,"x",1.50]}`, string(out)); diff != "" {
		t.Fatalf("unexpected round trip (-want +got):\n%s", diff)
	}
}

func TestSetKeepsPositionOfExistingKey(t *testing.T) {
	doc := Object().
		Set("id", String("1.2.5")).
		Set("type", String("release"))
	doc.Set("id", String("1.2.5-vanilla"))
	doc.Set("extra", Int(18))

	assert.Equal(t, []string{"id", "type", "extra"}, doc.Keys())
	id, _ := doc.Get("id")
	value, _ := id.Str()
	assert.Equal(t, "1.2.5-vanilla", value)
}

func TestMarshalIndent(t *testing.T) {
	doc := Object().
		Set("name", String("Minecraft")).
		Set("traits", Strings("texturepacks")).
		Set("empty", Array())

	out, err := MarshalIndent(doc, "  ")
	require.NoError(t, err)
	want := "{\n  \"name\": \"Minecraft\",\n  \"traits\": [\n    \"texturepacks\"\n  ],\n  \"empty\": []\n}"
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("unexpected indent output (-want +got):\n%s", diff)
	}
}

func TestMarshalDoesNotEscapeHTML(t *testing.T) {
	out, err := Marshal(String("${lwjgl_version} <&>"))
	require.NoError(t, err)
	assert.Equal(t, `"${lwjgl_version} <&>"`, string(out))
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name  string
		left  string
		right string
		want  bool
	}{
		{name: "object order ignored", left: `{"a":1,"b":2}`, right: `{"b":2,"a":1}`, want: true},
		{name: "array order matters", left: `[1,2]`, right: `[2,1]`, want: false},
		{name: "number by value", left: `{"a":1.0}`, right: `{"a":1}`, want: true},
		{name: "kind mismatch", left: `{"a":"1"}`, right: `{"a":1}`, want: false},
		{name: "missing key", left: `{"a":1}`, right: `{"a":1,"b":null}`, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, err := Parse([]byte(tt.left))
			require.NoError(t, err)
			right, err := Parse([]byte(tt.right))
			require.NoError(t, err)
			assert.Equal(t, tt.want, left.Equal(right))
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc, err := Parse([]byte(`{"libraries":[{"name":"a:b:1"}]}`))
	require.NoError(t, err)
	copied := doc.Clone()

	libs, _ := copied.Get("libraries")
	libs.Items()[0].Set("name", String("c:d:2"))

	assert.Equal(t, `{"libraries":[{"name":"a:b:1"}]}`, doc.String())
	assert.Equal(t, `{"libraries":[{"name":"c:d:2"}]}`, copied.String())
}

func TestFilter(t *testing.T) {
	arr := Strings("keep", "drop", "keep-too")
	arr.Filter(func(item *Value) bool {
		value, _ := item.Str()
		return value != "drop"
	})
	assert.Equal(t, `["keep","keep-too"]`, arr.String())
}

func TestDecodeRejectsTrailingContent(t *testing.T) {
	_, err := Parse([]byte(`{"a":1} {"b":2}`))
	require.Error(t, err)

	_, err = Parse([]byte(`{"a":`))
	require.Error(t, err)
}
