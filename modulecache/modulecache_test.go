package modulecache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.CacheModule("app/main", 42, []byte("payload")))

	data, ok := store.RetrieveFromCache("app/main", 42, time.Time{})
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), data)

	_, ok = store.RetrieveFromCache("app/main", 43, time.Time{})
	assert.False(t, ok)
}

func TestFileStoreRetrieveRespectsFreshness(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.CacheModule("app/main", 1, []byte("payload")))

	_, ok := store.RetrieveFromCache("app/main", 1, time.Now().Add(time.Hour))
	assert.False(t, ok, "a cache entry older than atLeastAsNewAs should miss")
}

func TestFileStoreErase(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.CacheModule("app/main", 1, []byte("payload")))

	require.NoError(t, store.EraseFromCache("app/main", 1))
	_, ok := store.RetrieveFromCache("app/main", 1, time.Time{})
	assert.False(t, ok)

	// Erasing an already-absent entry is not an error.
	require.NoError(t, store.EraseFromCache("app/main", 1))
}
