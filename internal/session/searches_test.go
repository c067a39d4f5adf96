package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artn/hgfsd/internal/hostfs"
	"github.com/artn/hgfsd/internal/shares"
)

func TestSearchOpenReadClose(t *testing.T) {
	fs := hostfs.NewFake()
	fs.PutDir("/srv/docs")
	fs.PutFile("/srv/docs/a.txt", []byte("a"))
	fs.PutFile("/srv/docs/b.txt", []byte("b"))

	st := NewSearchTable(0)
	s, err := st.Open("/srv/docs", "docs", shares.Info{Name: "docs"}, SearchTypeDir, NewDirEnumerator(fs, "/srv/docs"))
	require.NoError(t, err)

	e0, ok := s.Read(0)
	require.True(t, ok)
	e1, ok := s.Read(1)
	require.True(t, ok)
	names := []string{e0.Name, e1.Name}
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, names)

	_, ok = s.Read(2)
	assert.False(t, ok, "offset past the end is end-of-directory")

	require.NoError(t, st.Close(s.Handle()))
	_, err = st.Lookup(s.Handle())
	assert.ErrorIs(t, err, ErrInvalidSearch)
}

func TestSearchSnapshotIsStableAcrossDirectoryChanges(t *testing.T) {
	fs := hostfs.NewFake()
	fs.PutDir("/srv/docs")
	fs.PutFile("/srv/docs/a.txt", []byte("a"))

	st := NewSearchTable(0)
	s, err := st.Open("/srv/docs", "docs", shares.Info{Name: "docs"}, SearchTypeDir, NewDirEnumerator(fs, "/srv/docs"))
	require.NoError(t, err)

	fs.PutFile("/srv/docs/b.txt", []byte("b")) // added after snapshot

	_, ok := s.Read(1)
	assert.False(t, ok, "snapshot must not observe files added after search-open")
}

func TestSearchFiltersDotAndDotDot(t *testing.T) {
	enum := &fixedEnumerator{entries: []DirectoryEntry{
		{Name: "."}, {Name: ".."}, {Name: "real.txt"},
	}}
	st := NewSearchTable(0)
	s, err := st.Open("/x", "x", shares.Info{}, SearchTypeDir, enum)
	require.NoError(t, err)

	e, ok := s.Read(0)
	require.True(t, ok)
	assert.Equal(t, "real.txt", e.Name)

	_, ok = s.Read(1)
	assert.False(t, ok)
}

func TestShareEnumeratorListsShares(t *testing.T) {
	reg, err := shares.Build([]shares.Info{
		{Name: "b"}, {Name: "a"},
	})
	require.NoError(t, err)

	st := NewSearchTable(0)
	s, err := st.Open("", "", shares.Info{}, SearchTypeBase, NewShareEnumerator(reg))
	require.NoError(t, err)

	e0, _ := s.Read(0)
	e1, _ := s.Read(1)
	assert.Equal(t, "a", e0.Name)
	assert.Equal(t, "b", e1.Name)
}

type fixedEnumerator struct {
	entries []DirectoryEntry
	pos     int
}

func (f *fixedEnumerator) Open() error { return nil }
func (f *fixedEnumerator) Next() (DirectoryEntry, bool, error) {
	if f.pos >= len(f.entries) {
		return DirectoryEntry{}, false, nil
	}
	e := f.entries[f.pos]
	f.pos++
	return e, true, nil
}
func (f *fixedEnumerator) Close() {}
