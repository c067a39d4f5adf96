package session

import (
	"errors"
	"sort"

	"github.com/artn/hgfsd/internal/hostfs"
	"github.com/artn/hgfsd/internal/shares"
)

// ErrInvalidSearch is returned by Lookup/Close for a stale or freed
// search handle.
var ErrInvalidSearch = errors.New("session: invalid search handle")

// DirectoryEntry is the stable, immutable record captured by a search at
// search-open time. Field-for-field grounded on the original DirectoryEntry
// (d_ino, d_type, d_name) minus d_off/d_reclen, which are not kept here
// and which the packet codec does not send.
type DirectoryEntry struct {
	Ino  uint64
	Type uint8
	Name string
}

// SearchType mirrors DIRECTORY_SEARCH_TYPE_{DIR,BASE,OTHER}: what kind of
// object set a search enumerates, which in turn determines what kind of
// stat the dispatcher performs for each entry it returns to the guest.
type SearchType int

const (
	SearchTypeDir SearchType = iota
	SearchTypeBase
	SearchTypeOther
)

// DirEnumerator is the injectable (init, next, cleanup) triple spec.md §4.6
// describes for virtual searches: a lazy, finite sequence of
// DirectoryEntry. A real directory search exhausts it once at search-open
// and discards it; the entries vector it produced is what's actually
// stored and served.
type DirEnumerator interface {
	Open() error
	Next() (DirectoryEntry, bool, error)
	Close()
}

// Search is one session's outstanding directory enumeration: a fixed,
// sorted-as-returned-by-host snapshot captured once and never refreshed,
// per spec.md §4.6.
type Search struct {
	handle     Handle
	generation uint16
	slot       int

	Dir       string
	ShareName string
	Share     shares.Info
	Type      SearchType

	entries []DirectoryEntry
	inUse   bool
}

func (s *Search) Handle() Handle { return s.handle }

// SearchTable is the per-session array of Search slots and free list,
// mirroring HgfsSessionInfo's searchArray/searchFreeList.
type SearchTable struct {
	searches []*Search
	freeList []int
	maxNodes int
}

func NewSearchTable(maxSearches int) *SearchTable {
	return &SearchTable{maxNodes: maxSearches}
}

// NumActive reports how many search handles are currently open.
func (t *SearchTable) NumActive() int { return len(t.searches) - len(t.freeList) }

func (t *SearchTable) grow() error {
	oldLen := len(t.searches)
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
		t.searches = append(t.searches, &Search{slot: i})
		t.freeList = append(t.freeList, i)
	}
	return nil
}

// Open captures entries via enum (a single pass: Open, repeated Next
// until exhausted, Close) and returns a new Search handle wrapping the
// fixed snapshot.
func (t *SearchTable) Open(dir, shareName string, share shares.Info, typ SearchType, enum DirEnumerator) (*Search, error) {
	if err := enum.Open(); err != nil {
		return nil, err
	}
	defer enum.Close()

	var entries []DirectoryEntry
	for {
		entry, ok, err := enum.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if entry.Name == "." || entry.Name == ".." {
			continue
		}
		entries = append(entries, entry)
	}

	if len(t.freeList) == 0 {
		if err := t.grow(); err != nil {
			return nil, err
		}
	}
	idx := t.freeList[len(t.freeList)-1]
	t.freeList = t.freeList[:len(t.freeList)-1]

	s := t.searches[idx]
	s.generation++
	s.handle = makeHandle(idx, s.generation)
	s.Dir = dir
	s.ShareName = shareName
	s.Share = share
	s.Type = typ
	s.entries = entries
	s.inUse = true
	return s, nil
}

func (t *SearchTable) Lookup(h Handle) (*Search, error) {
	idx := int(h.slot())
	if idx < 0 || idx >= len(t.searches) {
		return nil, ErrInvalidSearch
	}
	s := t.searches[idx]
	if !s.inUse || s.generation != h.generation() {
		return nil, ErrInvalidSearch
	}
	return s, nil
}

// Close frees a search's slot. Closing an already-free slot is
// ErrInvalidSearch, mirroring FileTable.Free's non-idempotent close.
func (t *SearchTable) Close(h Handle) error {
	s, err := t.Lookup(h)
	if err != nil {
		return err
	}
	s.inUse = false
	s.entries = nil
	t.freeList = append(t.freeList, s.slot)
	return nil
}

// Read returns entry offset n, or ok=false if n is past the end — the
// end-of-directory marker spec.md §4.6 specifies.
func (s *Search) Read(offset uint32) (DirectoryEntry, bool) {
	if int(offset) >= len(s.entries) {
		return DirectoryEntry{}, false
	}
	return s.entries[offset], true
}

// dirEnumerator walks a real host directory via one hostfs.ReadDir pass.
// Grounded on spec.md §4.6 "capture its entries via a single readdir
// pass... no re-sorting" — hostfs.OS.ReadDir already returns entries in
// the order os.ReadDir gives them, which this enumerator preserves.
type dirEnumerator struct {
	fs      hostfs.FS
	path    string
	entries []hostfs.DirEntry
	pos     int
}

func NewDirEnumerator(fs hostfs.FS, path string) DirEnumerator {
	return &dirEnumerator{fs: fs, path: path}
}

func (e *dirEnumerator) Open() error {
	entries, err := e.fs.ReadDir(e.path)
	if err != nil {
		return err
	}
	e.entries = entries
	return nil
}

func (e *dirEnumerator) Next() (DirectoryEntry, bool, error) {
	if e.pos >= len(e.entries) {
		return DirectoryEntry{}, false, nil
	}
	d := e.entries[e.pos]
	e.pos++
	return DirectoryEntry{Ino: d.Ino, Type: d.Type, Name: d.Name}, true, nil
}

func (e *dirEnumerator) Close() {}

// shareEnumerator is a virtual search over the Share Registry — the
// DIRECTORY_SEARCH_TYPE_BASE case, a search whose root is the synthetic
// "list of shares" pseudo-directory rather than a real host path.
type shareEnumerator struct {
	list []shares.Info
	pos  int
}

func NewShareEnumerator(reg *shares.Registry) DirEnumerator {
	list := reg.List()
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return &shareEnumerator{list: list}
}

func (e *shareEnumerator) Open() error { return nil }

func (e *shareEnumerator) Next() (DirectoryEntry, bool, error) {
	if e.pos >= len(e.list) {
		return DirectoryEntry{}, false, nil
	}
	share := e.list[e.pos]
	e.pos++
	return DirectoryEntry{Type: uint8(1), Name: share.Name}, true, nil
}

func (e *shareEnumerator) Close() {}

// rootEnumerator is DIRECTORY_SEARCH_TYPE_OTHER's empty stub: the original
// reserves this case for listing drive roots, a Windows-only concept with
// no analogue on this host. Kept, producing zero entries, because the
// search-type enum itself is part of the protocol surface even though
// nothing currently populates it.
type rootEnumerator struct{}

func NewRootEnumerator() DirEnumerator { return rootEnumerator{} }

func (rootEnumerator) Open() error                             { return nil }
func (rootEnumerator) Next() (DirectoryEntry, bool, error)      { return DirectoryEntry{}, false, nil }
func (rootEnumerator) Close()                                  {}
