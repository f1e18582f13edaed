package shared

import (
	"context"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "network", err: NetworkError("down", assert.AnError), want: KindNetwork},
		{name: "malformed", err: MalformedError("doc", "id", "string"), want: KindMalformed},
		{name: "unparseable", err: MalformedErrorWithCause("doc", assert.AnError), want: KindMalformed},
		{name: "lookup", err: LookupError("missing"), want: KindLookup},
		{name: "filesystem", err: FilesystemError("disk", assert.AnError), want: KindFilesystem},
		{name: "invalid", err: InvalidError("bad"), want: KindInvalid},
		{name: "canceled", err: context.Canceled, want: KindCanceled},
		{name: "other code", err: errbuilder.New().WithCode(errbuilder.CodeAborted).WithMsg("x"), want: KindUnknown},
		{name: "plain", err: assert.AnError, want: KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestDocumentErrorMessage(t *testing.T) {
	assert.Equal(t, `details 1.2.5: expected boolean at "sharedMappings"`,
		(&DocumentError{Document: "details 1.2.5", Key: "sharedMappings", Expected: "boolean"}).Error())
	assert.Equal(t, `manifest: invalid value at "versions[2]"`,
		(&DocumentError{Document: "manifest", Key: "versions[2]"}).Error())
}

func TestSplitMaven(t *testing.T) {
	parts, ok := SplitMaven("net.ornithemc:calamus-intermediary:1.2.5:v2")
	assert.True(t, ok)
	assert.Equal(t, []string{"net.ornithemc", "calamus-intermediary", "1.2.5", "v2"}, parts)

	_, ok = SplitMaven("org.lwjgl:lwjgl")
	assert.False(t, ok)
	_, ok = SplitMaven("org.lwjgl::2.9.0")
	assert.False(t, ok)
}

func TestIsLinuxLike(t *testing.T) {
	assert.True(t, IsLinuxLike("linux"))
	assert.True(t, IsLinuxLike("FreeBSD"))
	assert.False(t, IsLinuxLike("windows"))
	assert.False(t, IsLinuxLike(" darwin "))
}
