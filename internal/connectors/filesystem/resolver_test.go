package filesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want string
	}{
		{name: "file URI", uri: "file:///srv/docs/a.txt", want: "/srv/docs/a.txt"},
		{name: "file URI with spaces", uri: "file:///srv/my docs/a.txt", want: "/srv/my docs/a.txt"},
		{name: "bare path", uri: "/srv/docs", want: "/srv/docs"},
		{name: "relative path", uri: "docs/a.txt", want: "docs/a.txt"},
		{name: "empty", uri: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePath(tt.uri))
		})
	}
}
