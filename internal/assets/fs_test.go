// file: internal/assets/fs_test.go
// version: 1.1.0
// guid: 9d2c6b4a-8f17-4e35-a0bd-3e7c1f5d8092

package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFSCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "data")
	fs, err := NewFS(root)
	require.NoError(t, err)
	assert.Equal(t, root, fs.Root())
	_, err = os.Stat(root)
	assert.NoError(t, err)
}

func TestResolveRejectsEscapes(t *testing.T) {
	fs, err := NewFS(t.TempDir())
	require.NoError(t, err)

	for _, p := range []string{"../outside.png", "covers/../../x", "/etc/passwd", ".."} {
		err := fs.WriteFile(p, []byte("x"))
		assert.Error(t, err, "path %q must be rejected", p)
	}

	// Dot segments that stay inside the root are fine.
	assert.NoError(t, fs.WriteFile("covers/../gallery/ok.png", []byte("x")))
}

func TestWriteExistsRemove(t *testing.T) {
	fs, err := NewFS(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, fs.WriteFile("portraits/aria.png", []byte("img")))
	exists, err := fs.Exists("portraits/aria.png")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, fs.Remove("portraits/aria.png"))
	exists, err = fs.Exists("portraits/aria.png")
	require.NoError(t, err)
	assert.False(t, exists)

	// Removing a missing file is a no-op.
	assert.NoError(t, fs.Remove("portraits/aria.png"))
}

func TestCopyFile(t *testing.T) {
	fs, err := NewFS(t.TempDir())
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "upload.png")
	require.NoError(t, os.WriteFile(src, []byte("uploaded bytes"), 0o644))

	require.NoError(t, fs.CopyFile(src, "gallery/upload.png"))
	data, err := os.ReadFile(filepath.Join(fs.Root(), "gallery", "upload.png"))
	require.NoError(t, err)
	assert.Equal(t, "uploaded bytes", string(data))
}

func TestListFiles(t *testing.T) {
	fs, err := NewFS(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, fs.WriteFile("maps/a.png", []byte("a")))
	require.NoError(t, fs.WriteFile("maps/deep/b.png", []byte("b")))
	require.NoError(t, fs.WriteFile("covers/c.png", []byte("c")))

	files, err := fs.ListFiles("maps")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"maps/a.png", "maps/deep/b.png"}, files)

	// Missing subdirectory is empty, not an error.
	files, err = fs.ListFiles("emblems")
	require.NoError(t, err)
	assert.Empty(t, files)
}
