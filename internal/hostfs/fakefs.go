package hostfs

import (
	"errors"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// Fake is an in-memory FS for dispatcher and name-resolver tests that
// don't want to touch a real disk. It supports the same path-based
// contract as OS, keyed by a cleaned, always-absolute path string.
type Fake struct {
	mu    sync.Mutex
	nodes map[string]*fakeNode
	nextID uint64
}

type fakeNode struct {
	mode    os.FileMode
	data    []byte
	target  string // symlink target
	modTime time.Time
	fileID  uint64
}

// NewFake builds an empty in-memory filesystem with just a root directory.
func NewFake() *Fake {
	f := &Fake{nodes: make(map[string]*fakeNode)}
	f.nodes["/"] = &fakeNode{mode: os.ModeDir | 0755, modTime: time.Now(), fileID: f.allocID()}
	return f
}

func (f *Fake) allocID() uint64 {
	f.nextID++
	return f.nextID
}

func clean(p string) string {
	p = path.Clean("/" + p)
	return p
}

// PutFile is a test helper that seeds a regular file directly.
func (f *Fake) PutFile(p string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nodes[clean(p)] = &fakeNode{mode: 0644, data: append([]byte(nil), data...), modTime: time.Now(), fileID: f.allocID()}
}

// PutDir is a test helper that seeds a directory directly.
func (f *Fake) PutDir(p string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nodes[clean(p)] = &fakeNode{mode: os.ModeDir | 0755, modTime: time.Now(), fileID: f.allocID()}
}

// PutSymlink is a test helper that seeds a symlink directly.
func (f *Fake) PutSymlink(p, target string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nodes[clean(p)] = &fakeNode{mode: os.ModeSymlink | 0777, target: target, modTime: time.Now(), fileID: f.allocID()}
}

func (f *Fake) Open(p string, flags int, perm os.FileMode) (File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p = clean(p)
	n, ok := f.nodes[p]
	if !ok {
		if flags&O_CREATE == 0 {
			return nil, os.ErrNotExist
		}
		n = &fakeNode{mode: perm, modTime: time.Now(), fileID: f.allocID()}
		f.nodes[p] = n
	} else if flags&O_EXCL != 0 && flags&O_CREATE != 0 {
		return nil, os.ErrExist
	}
	if flags&O_TRUNC != 0 {
		n.data = nil
	}
	return &fakeFile{fs: f, path: p}, nil
}

type fakeFile struct {
	fs   *Fake
	path string
}

func (ff *fakeFile) ReadAt(p []byte, off int64) (int, error) {
	ff.fs.mu.Lock()
	defer ff.fs.mu.Unlock()
	n, ok := ff.fs.nodes[ff.path]
	if !ok {
		return 0, os.ErrNotExist
	}
	if off >= int64(len(n.data)) {
		return 0, io.EOF
	}
	c := copy(p, n.data[off:])
	if c < len(p) {
		return c, io.EOF
	}
	return c, nil
}

func (ff *fakeFile) WriteAt(p []byte, off int64) (int, error) {
	ff.fs.mu.Lock()
	defer ff.fs.mu.Unlock()
	n, ok := ff.fs.nodes[ff.path]
	if !ok {
		return 0, os.ErrNotExist
	}
	end := off + int64(len(p))
	if end > int64(len(n.data)) {
		grown := make([]byte, end)
		copy(grown, n.data)
		n.data = grown
	}
	copy(n.data[off:], p)
	n.modTime = time.Now()
	return len(p), nil
}

func (ff *fakeFile) Close() error { return nil }

func (ff *fakeFile) Truncate(size int64) error {
	ff.fs.mu.Lock()
	defer ff.fs.mu.Unlock()
	n, ok := ff.fs.nodes[ff.path]
	if !ok {
		return os.ErrNotExist
	}
	if size <= int64(len(n.data)) {
		n.data = n.data[:size]
		return nil
	}
	grown := make([]byte, size)
	copy(grown, n.data)
	n.data = grown
	return nil
}

func (ff *fakeFile) Sync() error { return nil }

func (f *Fake) Stat(p string) (Info, error) { return f.lookup(p) }

func (f *Fake) Lstat(p string) (Info, error) { return f.lookup(p) }

func (f *Fake) lookup(p string) (Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.nodes[clean(p)]
	if !ok {
		return Info{}, os.ErrNotExist
	}
	return Info{
		Mode:      n.mode,
		Size:      int64(len(n.data)),
		ModTime:   n.modTime,
		IsDir:     n.mode.IsDir(),
		IsSymlink: n.mode&os.ModeSymlink != 0,
		FileID:    n.fileID,
	}, nil
}

func (f *Fake) ReadDir(p string) ([]DirEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p = clean(p)
	if _, ok := f.nodes[p]; !ok {
		return nil, os.ErrNotExist
	}
	prefix := p
	if prefix != "/" {
		prefix += "/"
	} else {
		prefix = "/"
	}
	var out []DirEntry
	for candidate, n := range f.nodes {
		if candidate == p {
			continue
		}
		if !strings.HasPrefix(candidate, prefix) {
			continue
		}
		rest := strings.TrimPrefix(candidate, prefix)
		if strings.Contains(rest, "/") {
			continue // not a direct child
		}
		out = append(out, DirEntry{Ino: n.fileID, Type: uint8(n.mode.Type() >> 24), Name: rest})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *Fake) Mkdir(p string, perm os.FileMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p = clean(p)
	if _, ok := f.nodes[p]; ok {
		return os.ErrExist
	}
	f.nodes[p] = &fakeNode{mode: os.ModeDir | perm, modTime: time.Now(), fileID: f.allocID()}
	return nil
}

func (f *Fake) Rmdir(p string) error { return f.Remove(p) }

func (f *Fake) Remove(p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p = clean(p)
	if _, ok := f.nodes[p]; !ok {
		return os.ErrNotExist
	}
	delete(f.nodes, p)
	return nil
}

func (f *Fake) Rename(oldPath, newPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	oldPath, newPath = clean(oldPath), clean(newPath)
	n, ok := f.nodes[oldPath]
	if !ok {
		return os.ErrNotExist
	}
	f.nodes[newPath] = n
	delete(f.nodes, oldPath)
	return nil
}

func (f *Fake) Chmod(p string, mode os.FileMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.nodes[clean(p)]
	if !ok {
		return os.ErrNotExist
	}
	n.mode = n.mode&os.ModeType | mode
	return nil
}

func (f *Fake) Utimes(p string, _, modTime time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.nodes[clean(p)]
	if !ok {
		return os.ErrNotExist
	}
	n.modTime = modTime
	return nil
}

func (f *Fake) Readlink(p string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.nodes[clean(p)]
	if !ok {
		return "", os.ErrNotExist
	}
	if n.mode&os.ModeSymlink == 0 {
		return "", errors.New("hostfs: not a symlink")
	}
	return n.target, nil
}

func (f *Fake) Symlink(target, p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p = clean(p)
	if _, ok := f.nodes[p]; ok {
		return os.ErrExist
	}
	f.nodes[p] = &fakeNode{mode: os.ModeSymlink | 0777, target: target, modTime: time.Now(), fileID: f.allocID()}
	return nil
}

func (f *Fake) Statfs(string) (freeBytes, totalBytes uint64, err error) {
	return 1 << 30, 1 << 31, nil
}
