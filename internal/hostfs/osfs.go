package hostfs

import (
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// OS is the production FS implementation, backed directly by the local
// filesystem. Grounded on gcsfuse's pattern of hiding a backing store
// behind a narrow interface (internal/storage's gcs.Bucket played that
// role for GCS objects; OS plays it for a real directory tree).
type OS struct{}

// NewOS constructs the real, disk-backed FS.
func NewOS() *OS { return &OS{} }

func (OS) Open(path string, flags int, perm os.FileMode) (File, error) {
	f, err := os.OpenFile(path, flags, perm)
	if err != nil {
		return nil, err
	}
	return osFile{f}, nil
}

type osFile struct{ f *os.File }

func (o osFile) ReadAt(p []byte, off int64) (int, error)  { return o.f.ReadAt(p, off) }
func (o osFile) WriteAt(p []byte, off int64) (int, error) { return o.f.WriteAt(p, off) }
func (o osFile) Close() error                             { return o.f.Close() }
func (o osFile) Truncate(size int64) error                { return o.f.Truncate(size) }
func (o osFile) Sync() error                              { return o.f.Sync() }

func (OS) Stat(path string) (Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	return infoFromFileInfo(fi), nil
}

func (OS) Lstat(path string) (Info, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return Info{}, err
	}
	return infoFromFileInfo(fi), nil
}

// infoFromFileInfo extracts the LocalId (device, inode) pair from the
// platform-specific Sys() value, mirroring how the original hgfsServer
// builds a LocalId from struct stat's st_dev/st_ino.
func infoFromFileInfo(fi os.FileInfo) Info {
	info := Info{
		Mode:      fi.Mode(),
		Size:      fi.Size(),
		ModTime:   fi.ModTime(),
		IsDir:     fi.IsDir(),
		IsSymlink: fi.Mode()&os.ModeSymlink != 0,
	}
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		info.VolumeID = uint64(st.Dev)
		info.FileID = st.Ino
		info.UserID = st.Uid
		info.GroupID = st.Gid
		info.AccessTime = time.Unix(st.Atim.Sec, st.Atim.Nsec)
		info.ChangeTime = time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
	}
	return info
}

func (OS) ReadDir(path string) ([]DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	out := make([]DirEntry, 0, len(entries))
	for _, e := range entries {
		fi, err := e.Info()
		if err != nil {
			continue // entry vanished between readdir and stat; skip rather than fail the whole listing
		}
		var ino uint64
		if st, ok := fi.Sys().(*syscall.Stat_t); ok {
			ino = st.Ino
		}
		out = append(out, DirEntry{Ino: ino, Type: uint8(fi.Mode().Type() >> 24), Name: e.Name()})
	}
	return out, nil
}

func (OS) Mkdir(path string, perm os.FileMode) error { return os.Mkdir(path, perm) }
func (OS) Rmdir(path string) error                   { return os.Remove(path) }
func (OS) Remove(path string) error                  { return os.Remove(path) }
func (OS) Rename(oldPath, newPath string) error      { return os.Rename(oldPath, newPath) }
func (OS) Chmod(path string, mode os.FileMode) error { return os.Chmod(path, mode) }

func (OS) Utimes(path string, accessTime, modTime time.Time) error {
	return os.Chtimes(path, accessTime, modTime)
}

func (OS) Readlink(path string) (string, error) { return os.Readlink(path) }
func (OS) Symlink(target, path string) error     { return os.Symlink(target, path) }

func (OS) Statfs(path string) (freeBytes, totalBytes uint64, err error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, 0, err
	}
	bsize := uint64(st.Bsize)
	return st.Bfree * bsize, st.Blocks * bsize, nil
}
