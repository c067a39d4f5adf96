package hostfs

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeOpenWriteReadRoundTrip(t *testing.T) {
	fs := NewFake()
	f, err := fs.Open("/a.txt", O_RDWR|O_CREATE, 0644)
	require.NoError(t, err)

	_, err = f.WriteAt([]byte("hello"), 0)
	require.NoError(t, err)

	buf := make([]byte, 5)
	n, err := f.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
}

func TestFakeReadAtEOF(t *testing.T) {
	fs := NewFake()
	fs.PutFile("/a.txt", []byte("hi"))
	f, err := fs.Open("/a.txt", O_RDONLY, 0)
	require.NoError(t, err)

	buf := make([]byte, 10)
	n, err := f.ReadAt(buf, 0)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "hi", string(buf[:n]))
}

func TestFakeReadDirListsDirectChildrenOnly(t *testing.T) {
	fs := NewFake()
	fs.PutDir("/docs")
	fs.PutFile("/docs/a.txt", []byte("a"))
	fs.PutFile("/docs/sub/b.txt", []byte("b"))
	fs.PutDir("/docs/sub")

	entries, err := fs.ReadDir("/docs")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a.txt", entries[0].Name)
	assert.Equal(t, "sub", entries[1].Name)
}

func TestFakeRenameAndRemove(t *testing.T) {
	fs := NewFake()
	fs.PutFile("/old.txt", []byte("x"))
	require.NoError(t, fs.Rename("/old.txt", "/new.txt"))

	_, err := fs.Stat("/old.txt")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = fs.Stat("/new.txt")
	require.NoError(t, err)

	require.NoError(t, fs.Remove("/new.txt"))
	_, err = fs.Stat("/new.txt")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFakeSymlinkReadlink(t *testing.T) {
	fs := NewFake()
	require.NoError(t, fs.Symlink("/real", "/link"))
	target, err := fs.Readlink("/link")
	require.NoError(t, err)
	assert.Equal(t, "/real", target)
}
