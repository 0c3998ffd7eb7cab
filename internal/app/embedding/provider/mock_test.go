package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProviderDeterministic(t *testing.T) {
	p := NewMockProvider(64)

	first, err := p.GenerateEmbedding(context.Background(), "some text")
	require.NoError(t, err)
	second, err := p.GenerateEmbedding(context.Background(), "some text")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)

	other, err := p.GenerateEmbedding(context.Background(), "different text")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestMockProviderRejectsEmptyText(t *testing.T) {
	p := NewMockProvider(8)
	_, err := p.GenerateEmbedding(context.Background(), "   ")
	assert.Error(t, err)
}

func TestMockProviderInfo(t *testing.T) {
	info := NewMockProvider(128).GetProviderInfo()
	assert.Equal(t, "mock", info.Name)
	assert.Equal(t, 128, info.Dimension)
}
