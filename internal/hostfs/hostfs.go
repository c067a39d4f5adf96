// Package hostfs is the narrow interface the dispatcher uses to talk to
// the real host filesystem. spec.md §6 treats host-FS operations as an
// external collaborator, specified only by the interface the core
// requires; this package supplies that interface plus one production
// implementation (os + golang.org/x/sys/unix) and one in-memory fake used
// by dispatcher and name-resolver tests that don't want a real disk.
package hostfs

import (
	"io"
	"os"
	"time"
)

// DirEntry is the portable directory-entry shape returned by ReadDir,
// matching spec.md §3's DirectoryEntry: {inode-id, type byte, name}. The
// record-offset and record-length fields of the original format are not
// kept, and the packet codec does not send them.
type DirEntry struct {
	Ino  uint64
	Type uint8 // top byte of os.FileMode.Type(): 0x80 directory, 0x08 symlink, 0 regular
	Name string
}

// Info is the subset of host stat(2) results the dispatcher needs to build
// a protocol Attr record and a LocalId.
type Info struct {
	Mode       os.FileMode
	Size       int64
	ModTime    time.Time
	AccessTime time.Time
	ChangeTime time.Time
	VolumeID   uint64
	FileID     uint64
	UserID     uint32
	GroupID    uint32
	IsDir      bool
	IsSymlink  bool
}

// File is an open host file descriptor. Reads and writes are offset-based
// so the dispatcher and file-IO lock can serialize read-then-write
// sequences on one handle without relying on a shared file cursor
// (spec.md §5 "within one handle, read and write operations observe
// program order").
type File interface {
	io.ReaderAt
	io.WriterAt
	Close() error
	Truncate(size int64) error
	Sync() error
}

// FS is the complete host-filesystem contract spec.md §6 names:
// open/close/read/write/readdir/stat/lstat/statfs/rename/unlink/mkdir/
// rmdir/chmod/utimes/readlink/symlink.
type FS interface {
	Open(path string, flags int, perm os.FileMode) (File, error)
	Stat(path string) (Info, error)
	Lstat(path string) (Info, error)
	ReadDir(path string) ([]DirEntry, error)
	Mkdir(path string, perm os.FileMode) error
	Rmdir(path string) error
	Remove(path string) error
	Rename(oldPath, newPath string) error
	Chmod(path string, mode os.FileMode) error
	Utimes(path string, accessTime, modTime time.Time) error
	Readlink(path string) (string, error)
	Symlink(target, path string) error
	Statfs(path string) (freeBytes, totalBytes uint64, err error)
}

// Open flag bits, mirrored from os's so callers of this package never need
// to import os just to build an open call.
const (
	O_RDONLY = os.O_RDONLY
	O_WRONLY = os.O_WRONLY
	O_RDWR   = os.O_RDWR
	O_CREATE = os.O_CREATE
	O_EXCL   = os.O_EXCL
	O_TRUNC  = os.O_TRUNC
	O_APPEND = os.O_APPEND
)
