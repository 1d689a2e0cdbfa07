package llm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptKeyStable(t *testing.T) {
	assert.Equal(t, promptKey("提示词"), promptKey("提示词"))
	assert.NotEqual(t, promptKey("a"), promptKey("b"))
	assert.Len(t, promptKey("a"), 32)
}

func TestResponseCacheRoundTrip(t *testing.T) {
	cache, err := newResponseCache(t.TempDir())
	require.NoError(t, err)

	key := promptKey("提示词")
	_, ok := cache.get(key)
	assert.False(t, ok)

	cache.put(key, "响应内容")
	got, ok := cache.get(key)
	require.True(t, ok)
	assert.Equal(t, "响应内容", got)
}

func TestResponseCacheIgnoresCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	cache, err := newResponseCache(dir)
	require.NoError(t, err)

	key := promptKey("p")
	require.NoError(t, os.WriteFile(filepath.Join(dir, key+".json"), []byte("{not json"), 0o640))

	_, ok := cache.get(key)
	assert.False(t, ok)
}

func TestResponseCacheCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	_, err := newResponseCache(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
