package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApproximate(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"ñññññññ", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Approximate(tt.text), tt.text)
	}
}

func TestCounter_Empty(t *testing.T) {
	assert.Zero(t, NewCounter("gpt-4o").Count(""))
}

func TestCounter_Count(t *testing.T) {
	c := NewCounter("cl100k_base")
	text := "ROW: Steel bolt M8 | 200 | pcs"

	n := c.Count(text)
	if !c.Exact() {
		// Encodings are fetched on first use and may be unavailable offline.
		assert.Equal(t, Approximate(text), n)
		return
	}
	assert.Positive(t, n)
	assert.Less(t, n, len(text))
}

func TestCounter_UnknownModelFallsBack(t *testing.T) {
	c := NewCounter("no-such-model")

	assert.Positive(t, c.Count("hello world"))
}
