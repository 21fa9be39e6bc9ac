package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "", TruncateRunes("hello", 0))
	assert.Equal(t, "…", TruncateRunes("hello", 1))
	assert.Equal(t, "hel…", TruncateRunes("hello!", 4))
	assert.Equal(t, "hello", TruncateRunes("hello", 5))
	assert.Equal(t, "héllo", TruncateRunes("héllo", 5))
}

func TestWrappedLineCount(t *testing.T) {
	assert.Equal(t, 1, WrappedLineCount("", 10))
	assert.Equal(t, 1, WrappedLineCount("short", 10))
	assert.Equal(t, 2, WrappedLineCount("exactly ten!", 10))
	assert.Equal(t, 3, WrappedLineCount("a\nb\nc", 10))
	assert.Equal(t, 1, WrappedLineCount("anything", 0))
}
