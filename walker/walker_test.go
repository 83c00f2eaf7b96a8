package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalk_FindsJasminFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.jazz"), []byte("param int N = 1;\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib.jinc"), []byte("param int M = 2;\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("not jasmin"), 0o644))

	result, err := Walk(dir)
	require.NoError(t, err)
	assert.False(t, result.Truncated)
	assert.Len(t, result.Files, 2)
}

func TestReadFile_RejectsOversizedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.jazz")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	_, err := ReadFile(path, 4)
	assert.Error(t, err)
}

func TestReadFile_RejectsInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.jazz")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x00}, 0o644))

	_, err := ReadFile(path, 1<<20)
	assert.Error(t, err)
}
