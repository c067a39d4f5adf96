// Package session implements the per-connection state the dispatcher
// operates on: the file-node handle table and open-file cache (spec.md
// §4.5), search state (§4.6), and the session manager that owns the lock
// ordering between them (§5). Field shapes are grounded on
// HgfsFileNode/HgfsSearch/HgfsSessionInfo in
// original_source/lib/hgfsServer/hgfsServerInt.h; the intrusive
// DblLnkLst_Links the original uses for free lists and the cached-node LRU
// are reimplemented with a slice-backed stack and container/list
// respectively, matching the teacher's own preference for stdlib
// containers over hand-rolled linked lists.
package session

import (
	"container/list"
	"errors"

	"github.com/artn/hgfsd/internal/hgfsproto"
	"github.com/artn/hgfsd/internal/hostfs"
	"github.com/artn/hgfsd/internal/metrics"
	"github.com/artn/hgfsd/internal/shares"
)

// ErrInvalidHandle is returned whenever a handle's generation doesn't
// match the live node's, or the slot is on the free list. Closing an
// already-Unused handle is InvalidHandle, not idempotent success
// (spec.md §4.5 "Tie-breaks and edge cases").
var ErrInvalidHandle = errors.New("session: invalid handle")

// ErrTooManyNodes is returned when the node array has grown to its hard
// cap and the free list is empty.
var ErrTooManyNodes = errors.New("session: too many open file nodes")

// FileNodeState mirrors FILENODE_STATE_{UNUSED,IN_USE_CACHED,IN_USE_NOT_CACHED}.
type FileNodeState int

const (
	NodeUnused FileNodeState = iota
	NodeCached
	NodeUncached
)

// FileNodeFlags mirrors the HGFS_FILE_NODE_*_FL bitmask.
type FileNodeFlags uint32

const (
	NodeFlagAppend           FileNodeFlags = 1 << 0
	NodeFlagSequential       FileNodeFlags = 1 << 1
	NodeFlagSharedFolderOpen FileNodeFlags = 1 << 2
)

// FileNode is one entry in a session's handle table: one host file opened
// by the guest, plus enough state to re-open it transparently after a
// cache eviction.
type FileNode struct {
	handle     Handle
	generation uint16
	slot       int

	Name      string
	ShareName string
	Share     shares.Info
	LocalID   hgfsproto.LocalId
	Mode      uint32
	Flags     FileNodeFlags
	Lock      hgfsproto.OplockKind
	State     FileNodeState

	file hostfs.File // nil when evicted (has-name-but-no-fd stub)

	lruElem *list.Element // valid only while State == NodeCached
}

// Handle returns the opaque handle the guest was given for this node.
func (n *FileNode) Handle() Handle { return n.handle }

// File returns the open descriptor, or nil if the node was evicted and
// must be re-opened by the dispatcher before use.
func (n *FileNode) File() hostfs.File { return n.file }

// FileTable is the per-session array of FileNode slots plus the free list
// and cached-node LRU described in spec.md §4.5. Callers (the session's
// owner) are responsible for holding the node-array lock (see
// Session.WithNodes) around every method
// call; FileTable itself does no locking so it can be driven directly by
// code that also needs to touch the free list and LRU atomically with a
// node mutation.
type FileTable struct {
	nodes    []*FileNode
	freeList []int // stack of free slot indices, LIFO (cache-friendly, per original)

	cached    *list.List // of *FileNode, front = LRU, back = MRU
	cacheCap  int
	numLocked int

	maxNodes int
}

// NewFileTable builds an empty table. maxNodes bounds how far the node
// array may grow (doubling on demand); cacheCap is MaxCachedOpenNodes.
func NewFileTable(maxNodes, cacheCap int) *FileTable {
	return &FileTable{
		cached:   list.New(),
		cacheCap: cacheCap,
		maxNodes: maxNodes,
	}
}

// Alloc takes the head of the free list, growing the array (doubling, up
// to maxNodes) if the free list is empty, and returns a fresh node with a
// bumped generation counter.
func (t *FileTable) Alloc() (*FileNode, error) {
	if len(t.freeList) == 0 {
		if err := t.grow(); err != nil {
			return nil, err
		}
	}
	idx := t.freeList[len(t.freeList)-1]
	t.freeList = t.freeList[:len(t.freeList)-1]

	n := t.nodes[idx]
	n.generation++
	n.handle = makeHandle(idx, n.generation)
	n.State = NodeUncached
	n.file = nil
	n.lruElem = nil
	return n, nil
}

func (t *FileTable) grow() error {
	oldLen := len(t.nodes)
	newLen := oldLen * 2
	if newLen == 0 {
		newLen = 16
	}
	if t.maxNodes > 0 && newLen > t.maxNodes {
		newLen = t.maxNodes
	}
	if newLen <= oldLen {
		return ErrTooManyNodes
	}
	for i := oldLen; i < newLen; i++ {
		t.nodes = append(t.nodes, &FileNode{slot: i, State: NodeUnused})
		t.freeList = append(t.freeList, i)
	}
	return nil
}

// Lookup resolves a handle to its live node, rejecting stale handles
// (generation mismatch) and handles pointing at a free slot.
func (t *FileTable) Lookup(h Handle) (*FileNode, error) {
	idx := int(h.slot())
	if idx < 0 || idx >= len(t.nodes) {
		return nil, ErrInvalidHandle
	}
	n := t.nodes[idx]
	if n.State == NodeUnused || n.generation != h.generation() {
		return nil, ErrInvalidHandle
	}
	return n, nil
}

// Free returns a node's slot to the free list and marks it unused, so any
// handle the guest still holds fails Lookup; the slot's generation is
// bumped when Alloc next hands the slot out. Freeing an unused slot is
// InvalidHandle, not success.
func (t *FileTable) Free(h Handle) error {
	n, err := t.Lookup(h)
	if err != nil {
		return err
	}
	if n.lruElem != nil {
		t.cached.Remove(n.lruElem)
		n.lruElem = nil
	}
	if n.Lock != hgfsproto.OplockNone && n.State == NodeCached {
		t.numLocked--
	}
	n.State = NodeUnused
	n.file = nil
	n.Name = ""
	t.freeList = append(t.freeList, n.slot)
	return nil
}

// Cache inserts n at the MRU end of the cached list, evicting the LRU
// entry first if the cap would otherwise be exceeded. Nodes holding an
// oplock are never placed on the cached list, so they are never evicted
// (spec.md §4.5).
func (t *FileTable) Cache(n *FileNode) (evicted *FileNode) {
	if n.Lock != hgfsproto.OplockNone {
		n.State = NodeUncached
		return nil
	}
	if n.lruElem != nil {
		t.cached.Remove(n.lruElem)
	} else if t.cacheCap > 0 && t.cached.Len() >= t.cacheCap {
		evicted = t.evictLRU()
	}
	n.State = NodeCached
	n.lruElem = t.cached.PushBack(n)
	return evicted
}

// evictLRU closes the least-recently-used cached node's descriptor and
// demotes it to a has-name-but-no-fd stub; the dispatcher re-opens it
// transparently on next use.
func (t *FileTable) evictLRU() *FileNode {
	front := t.cached.Front()
	if front == nil {
		return nil
	}
	n := front.Value.(*FileNode)
	t.cached.Remove(front)
	n.lruElem = nil
	if n.file != nil {
		n.file.Close()
		n.file = nil
	}
	n.State = NodeUncached
	metrics.CacheEvictionsTotal.Inc()
	return n
}

// Touch moves a cached node to the MRU end on use; uncached nodes are
// left alone (spec.md §4.5 "On every use of a handle...").
func (t *FileTable) Touch(n *FileNode) {
	if n.lruElem != nil {
		t.cached.MoveToBack(n.lruElem)
	}
}

// NumCachedLocked reports how many cached nodes currently hold a server
// lock, mirroring numCachedLockedNodes in the original session struct.
func (t *FileTable) NumCachedLocked() int { return t.numLocked }

// NumCached reports how many nodes are on the cached-open LRU list. A node
// re-opened after eviction holds a descriptor but is not on the list.
func (t *FileTable) NumCached() int { return t.cached.Len() }
