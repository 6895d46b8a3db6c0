package workspace

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURIToPath(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"file:///proj/src/Main.qs", filepath.FromSlash("/proj/src/Main.qs")},
		{"file:///C:/proj/Main.qs", filepath.FromSlash("C:/proj/Main.qs")},
		{"untitled:Untitled-1", "untitled:Untitled-1"},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.want, URIToPath(tt.uri))
		})
	}
}

func TestPathToURI(t *testing.T) {
	assert.Equal(t, "file:///proj/src/Main.qs", PathToURI("/proj/src/Main.qs"))
	assert.Equal(t, "file:///C:/proj/Main.qs", PathToURI("C:/proj/Main.qs"))
}
