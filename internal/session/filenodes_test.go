package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocLookupFree(t *testing.T) {
	ft := NewFileTable(0, 4)
	n, err := ft.Alloc()
	require.NoError(t, err)
	n.Name = "a.txt"

	got, err := ft.Lookup(n.Handle())
	require.NoError(t, err)
	assert.Same(t, n, got)

	require.NoError(t, ft.Free(n.Handle()))
	_, err = ft.Lookup(n.Handle())
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestFreeAlreadyUnusedIsInvalidHandle(t *testing.T) {
	ft := NewFileTable(0, 4)
	n, err := ft.Alloc()
	require.NoError(t, err)
	require.NoError(t, ft.Free(n.Handle()))

	err = ft.Free(n.Handle())
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestStaleHandleAfterReallocationRejected(t *testing.T) {
	ft := NewFileTable(0, 4)
	n1, err := ft.Alloc()
	require.NoError(t, err)
	oldHandle := n1.Handle()
	require.NoError(t, ft.Free(oldHandle))

	n2, err := ft.Alloc()
	require.NoError(t, err)
	assert.Equal(t, n1, n2, "reused the same freed slot")

	_, err = ft.Lookup(oldHandle)
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestTwoOpensOfSameFileGetDistinctHandles(t *testing.T) {
	ft := NewFileTable(0, 4)
	n1, err := ft.Alloc()
	require.NoError(t, err)
	n2, err := ft.Alloc()
	require.NoError(t, err)
	assert.NotEqual(t, n1.Handle(), n2.Handle())
}

func TestCacheEvictsLRUWhenCapExceeded(t *testing.T) {
	ft := NewFileTable(0, 2)
	n1, _ := ft.Alloc()
	n2, _ := ft.Alloc()
	n3, _ := ft.Alloc()

	assert.Nil(t, ft.Cache(n1))
	assert.Nil(t, ft.Cache(n2))

	evicted := ft.Cache(n3)
	require.NotNil(t, evicted)
	assert.Same(t, n1, evicted)
	assert.Equal(t, NodeUncached, n1.State)
}

func TestTouchMovesToMRU(t *testing.T) {
	ft := NewFileTable(0, 2)
	n1, _ := ft.Alloc()
	n2, _ := ft.Alloc()
	ft.Cache(n1)
	ft.Cache(n2)

	ft.Touch(n1) // n1 now MRU, n2 is LRU

	n3, _ := ft.Alloc()
	evicted := ft.Cache(n3)
	require.NotNil(t, evicted)
	assert.Same(t, n2, evicted)
}

func TestLockedNodeNeverCached(t *testing.T) {
	ft := NewFileTable(0, 2)
	n, _ := ft.Alloc()
	n.Lock = 1 // anything other than OplockNone(0)

	evicted := ft.Cache(n)
	assert.Nil(t, evicted)
	assert.Equal(t, NodeUncached, n.State)
}

func TestTableGrowsPastInitialCapacity(t *testing.T) {
	ft := NewFileTable(0, 100)
	handles := make(map[Handle]bool)
	for i := 0; i < 20; i++ {
		n, err := ft.Alloc()
		require.NoError(t, err)
		handles[n.Handle()] = true
	}
	assert.Len(t, handles, 20)
}

func TestTableRespectsHardCap(t *testing.T) {
	ft := NewFileTable(4, 100)
	for i := 0; i < 4; i++ {
		_, err := ft.Alloc()
		require.NoError(t, err)
	}
	_, err := ft.Alloc()
	assert.ErrorIs(t, err, ErrTooManyNodes)
}
