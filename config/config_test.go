package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFind_WalksUpToParentDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".jasmin-lsp.yaml"), []byte("root: main.jazz\n"), 0o644))

	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	found, err := Find(sub)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".jasmin-lsp.yaml"), found)
}

func TestFind_ReturnsErrNotFoundAtFilesystemRoot(t *testing.T) {
	dir := t.TempDir()
	_, err := Find(dir)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveRoot_RelativeToConfigDirectory(t *testing.T) {
	root := "main.jazz"
	cfg := &Config{Root: &root}
	got := ResolveRoot("/workspace/.jasmin-lsp.yaml", cfg)
	assert.Equal(t, filepath.Clean("/workspace/main.jazz"), got)
}

func TestResolveRoot_EmptyWhenUnset(t *testing.T) {
	assert.Equal(t, "", ResolveRoot("/workspace/.jasmin-lsp.yaml", &Config{}))
}
