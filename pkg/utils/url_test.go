package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToAbsoluteURL(t *testing.T) {
	tests := []struct {
		base, ref, want string
	}{
		{"https://quiz.example.com/q/1", "/files/data.csv", "https://quiz.example.com/files/data.csv"},
		{"https://quiz.example.com/q/1", "data.csv", "https://quiz.example.com/q/data.csv"},
		{"https://quiz.example.com/q/1", "https://cdn.example.com/a.pdf", "https://cdn.example.com/a.pdf"},
		{"", "https://cdn.example.com/a.pdf", "https://cdn.example.com/a.pdf"},
	}
	for _, tt := range tests {
		got, err := ToAbsoluteURL(tt.base, tt.ref)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestIsHTTPURL(t *testing.T) {
	assert.True(t, IsHTTPURL("https://example.com/quiz-1"))
	assert.True(t, IsHTTPURL("http://localhost:8080/"))
	assert.False(t, IsHTTPURL("ftp://example.com"))
	assert.False(t, IsHTTPURL("example.com/quiz"))
	assert.False(t, IsHTTPURL(""))
}

func TestHashKey(t *testing.T) {
	assert.Equal(t, HashKey("a", "b"), HashKey("a", "b"))
	assert.NotEqual(t, HashKey("a", "b"), HashKey("ab"))
	assert.Len(t, HashKey("x"), 64)
}
