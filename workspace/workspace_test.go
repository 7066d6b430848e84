package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chigraph/common"
)

func TestFromChildPathFindsMarker(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, common.WorkspaceMarkerFile), nil, 0o644))

	child := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(child, 0o755))

	assert.Equal(t, root, FromChildPath(child))
}

func TestFromChildPathReturnsEmptyWhenNoMarker(t *testing.T) {
	assert.Equal(t, "", FromChildPath(t.TempDir()))
}

func TestLoadWithoutSidecarUsesDefaults(t *testing.T) {
	root := t.TempDir()
	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(root), cfg.Name)
	assert.Equal(t, root, cfg.Root)
}

func TestLoadParsesSidecar(t *testing.T) {
	root := t.TempDir()
	sidecar := "[workspace]\nname = \"myws\"\ncache-directory = \"cache\"\nchigraph-version = \"0.1.0\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, common.WorkspaceConfigFile), []byte(sidecar), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "myws", cfg.Name)
	assert.Equal(t, "cache", cfg.CacheDirectory)
}
