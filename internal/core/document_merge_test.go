package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ornithe-installer/internal/jsondoc"
)

func mustParse(t *testing.T, raw string) *jsondoc.Value {
	t.Helper()
	doc, err := jsondoc.Parse([]byte(raw))
	require.NoError(t, err)
	return doc
}

func TestMergeDocuments(t *testing.T) {
	tests := []struct {
		name      string
		primary   string
		secondary string
		want      string
		conflicts []string
	}{
		{
			name:      "equal keys are a no-op",
			primary:   `{"a":1,"b":2}`,
			secondary: `{"a":1}`,
			want:      `{"a":1,"b":2}`,
		},
		{
			name:      "primary wins on conflicting scalar",
			primary:   `{"a":1}`,
			secondary: `{"a":2}`,
			want:      `{"a":1}`,
			conflicts: []string{"a"},
		},
		{
			name:      "nested objects are unioned",
			primary:   `{"a":{"y":2}}`,
			secondary: `{"a":{"x":1}}`,
			want:      `{"a":{"y":2,"x":1}}`,
		},
		{
			name:      "arrays are never merged element-wise",
			primary:   `{"a":[3]}`,
			secondary: `{"a":[1,2]}`,
			want:      `{"a":[3]}`,
			conflicts: []string{"a"},
		},
		{
			name:      "missing keys are appended in order",
			primary:   `{"id":"1.2.5","type":"release"}`,
			secondary: `{"minimumLauncherVersion":18,"assets":"pre-1.6"}`,
			want:      `{"id":"1.2.5","type":"release","minimumLauncherVersion":18,"assets":"pre-1.6"}`,
		},
		{
			name:      "object against scalar keeps primary",
			primary:   `{"downloads":{"client":{"url":"c"}}}`,
			secondary: `{"downloads":"none"}`,
			want:      `{"downloads":{"client":{"url":"c"}}}`,
			conflicts: []string{"downloads"},
		},
		{
			name:      "conflicts deep in nested objects report a path",
			primary:   `{"downloads":{"client":{"sha1":"aaa"}}}`,
			secondary: `{"downloads":{"client":{"sha1":"bbb","size":10}}}`,
			want:      `{"downloads":{"client":{"sha1":"aaa","size":10}}}`,
			conflicts: []string{"downloads.client.sha1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := mustParse(t, tt.primary)
			var conflicts []string
			merged := MergeDocuments(primary, mustParse(t, tt.secondary), func(conflict MergeConflict) {
				conflicts = append(conflicts, conflict.Path)
			})
			require.Same(t, primary, merged)
			if diff := cmp.Diff(tt.want, merged.String()); diff != "" {
				t.Fatalf("unexpected merge result (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.conflicts, conflicts)
		})
	}
}

func TestMergeDocumentsOrderMatters(t *testing.T) {
	first := mustParse(t, `{"assets":"legacy"}`)
	second := mustParse(t, `{"assets":"pre-1.6","extra":true}`)

	forward := MergeDocuments(mustParse(t, `{"id":"x"}`), first, nil)
	forward = MergeDocuments(forward, second, nil)
	backward := MergeDocuments(mustParse(t, `{"id":"x"}`), second, nil)
	backward = MergeDocuments(backward, first, nil)

	assert.Equal(t, `{"id":"x","assets":"legacy","extra":true}`, forward.String())
	assert.Equal(t, `{"id":"x","assets":"pre-1.6","extra":true}`, backward.String())
}

func TestMergeDocumentsCopiesSecondaryValues(t *testing.T) {
	secondary := mustParse(t, `{"libraries":[{"name":"a:b:1"}]}`)
	merged := MergeDocuments(mustParse(t, `{}`), secondary, nil)

	libs, _ := merged.Get("libraries")
	libs.Items()[0].Set("name", jsondoc.String("changed"))
	assert.Equal(t, `{"libraries":[{"name":"a:b:1"}]}`, secondary.String())
}
