package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "simple", raw: "/global", wantErr: false},
		{name: "nested", raw: "/global/db/host", wantErr: false},
		{name: "empty", raw: "", wantErr: true},
		{name: "no leading slash", raw: "global/db", wantErr: true},
		{name: "consecutive slashes", raw: "/global//db", wantErr: true},
		{name: "trailing slash", raw: "/global/", wantErr: true},
		{name: "bare slash", raw: "/", wantErr: true},
		{name: "contains space", raw: "/global/my key", wantErr: true},
		{name: "contains tab", raw: "/global/a\tb", wantErr: true},
		{name: "case preserved", raw: "/Global/DB", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ParsePath(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				var pathErr *InvalidPathError
				assert.ErrorAs(t, err, &pathErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.raw, key.String())
			}
		})
	}
}

func TestUnderPrefix(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		prefix string
		want   bool
	}{
		{name: "equal", path: "/global/example", prefix: "/global/example", want: true},
		{name: "direct child", path: "/global/example/key", prefix: "/global/example", want: true},
		{name: "deep descendant", path: "/a/b/c/d", prefix: "/a", want: true},
		{name: "sibling with shared text", path: "/global/example2", prefix: "/global/example", want: false},
		{name: "unrelated", path: "/other/key", prefix: "/global", want: false},
		{name: "prefix longer than path", path: "/global", prefix: "/global/example", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PathKey(tt.path).UnderPrefix(PathKey(tt.prefix)))
		})
	}
}

func TestCommonPrefix(t *testing.T) {
	tests := []struct {
		name  string
		paths []PathKey
		want  PathKey
		ok    bool
	}{
		{name: "single path", paths: []PathKey{"/a/b/c"}, want: "/a/b/c", ok: true},
		{name: "shared two segments", paths: []PathKey{"/a/b/x", "/a/b/y"}, want: "/a/b", ok: true},
		{name: "shared one segment", paths: []PathKey{"/a/b", "/a/c/d"}, want: "/a", ok: true},
		{name: "segment-wise not textual", paths: []PathKey{"/app/db", "/app2/db"}, want: "", ok: false},
		{name: "nothing shared", paths: []PathKey{"/a/b", "/c/d"}, want: "", ok: false},
		{name: "empty input", paths: nil, want: "", ok: false},
		{name: "one under the other", paths: []PathKey{"/a/b", "/a/b/c"}, want: "/a/b", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CommonPrefix(tt.paths)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
