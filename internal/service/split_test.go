package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText_ShortTextSingleChunk(t *testing.T) {
	chunks := splitText("short enough", DefaultChunkConfig())

	require.Len(t, chunks, 1)
	assert.Equal(t, "short enough", chunks[0])
}

func TestSplitText_Empty(t *testing.T) {
	assert.Nil(t, splitText("   \n ", DefaultChunkConfig()))
}

func TestSplitText_CutsAtSentenceBoundary(t *testing.T) {
	cfg := ChunkConfig{MaxChunkSize: 100, MinChunkSize: 10, ChunkOverlap: 0}
	text := strings.Repeat("w", 80) + ". " + strings.Repeat("x", 80) + ". " + strings.Repeat("y", 30)

	chunks := splitText(text, cfg)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, strings.Repeat("w", 80)+".", chunks[0])
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), cfg.MaxChunkSize)
	}
}

func TestSplitText_HardCutWithoutBoundaries(t *testing.T) {
	cfg := ChunkConfig{MaxChunkSize: 50, MinChunkSize: 10, ChunkOverlap: 0}

	chunks := splitText(strings.Repeat("z", 120), cfg)

	require.Len(t, chunks, 3)
	assert.Equal(t, 50, len(chunks[0]))
	assert.Equal(t, 50, len(chunks[1]))
	assert.Equal(t, 20, len(chunks[2]))
}

func TestSplitText_OverlapRepeatsTail(t *testing.T) {
	cfg := ChunkConfig{MaxChunkSize: 50, MinChunkSize: 10, ChunkOverlap: 10}
	text := strings.Repeat("a", 50) + strings.Repeat("b", 50)

	chunks := splitText(text, cfg)

	require.GreaterOrEqual(t, len(chunks), 2)
	tail := chunks[0][len(chunks[0])-10:]
	assert.True(t, strings.HasPrefix(chunks[1], tail))
}

func TestSplitText_MultiByteSafe(t *testing.T) {
	cfg := ChunkConfig{MaxChunkSize: 10, MinChunkSize: 2, ChunkOverlap: 0}

	chunks := splitText(strings.Repeat("é", 25), cfg)

	require.Len(t, chunks, 3)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 10)
	}
}
