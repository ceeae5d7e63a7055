package resettoken

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	token, hash, err := Generate()
	require.NoError(t, err)

	assert.Len(t, token, Bytes*2)
	assert.Len(t, hash, 64)
	assert.NotEqual(t, token, hash)
	assert.Equal(t, Hash(token), hash)
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		token, _, err := Generate()
		require.NoError(t, err)
		_, dup := seen[token]
		require.False(t, dup)
		seen[token] = struct{}{}
	}
}
