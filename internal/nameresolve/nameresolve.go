// Package nameresolve implements the Name Resolver (spec.md §4.4): turning
// a share name plus a CP-encoded relative path into a host path that is
// guaranteed to stay inside the share's root, rejecting any component that
// would escape it through a symlink.
package nameresolve

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/artn/hgfsd/internal/hgfsproto/cpname"
	"github.com/artn/hgfsd/internal/hostfs"
	"github.com/artn/hgfsd/internal/shares"
)

// Sentinel errors the dispatcher's status-translation table (spec.md §7)
// maps onto the closed protocol Status set. Kept distinct from host errno
// so the dispatcher can tell "name resolution failed" from "host op
// failed" without inspecting error text.
var (
	ErrInvalidName   = errors.New("nameresolve: invalid name")
	ErrShareNotFound = errors.New("nameresolve: share not found")
	ErrAccessDenied  = errors.New("nameresolve: access denied")
	ErrNotFound      = errors.New("nameresolve: no such file or directory")
)

const maxSymlinkHops = 32

// Resolve implements spec.md §4.4 steps 1-5. cpBuf is the already
// NUL-decoded CP buffer (escape bytes removed by the caller via
// cpname.DecodeInPlace); the first component is the share name.
func Resolve(reg *shares.Registry, fs hostfs.FS, cpBuf []byte, wantRead, wantWrite bool) (string, shares.Info, error) {
	components := cpname.Split(cpBuf)
	if len(components) == 0 {
		return "", shares.Info{}, ErrInvalidName
	}

	share, err := reg.Get(string(components[0]))
	if err != nil {
		return "", shares.Info{}, ErrShareNotFound
	}

	if shares.CheckAccess(share, wantRead, wantWrite) == shares.Denied {
		return "", share, ErrAccessDenied
	}

	current := filepath.Clean(share.RootDir)
	for _, raw := range components[1:] {
		name := string(raw)
		if name == "" {
			continue
		}
		if name == ".." || name == "." || strings.ContainsRune(name, '/') {
			return "", share, ErrInvalidName
		}

		if !share.CaseSensitive {
			name = canonicalCase(fs, current, name)
		}

		next := filepath.Join(current, name)
		info, err := fs.Lstat(next)
		if err != nil {
			// Component doesn't exist yet (create path); nothing further to
			// validate below it, and nothing to resolve — hand the
			// caller the host-FS error on actual use.
			current = next
			continue
		}

		if info.IsSymlink {
			if !share.FollowSymlinks {
				return "", share, ErrAccessDenied
			}
			resolved, err := followSymlink(fs, next, share.RootDir, maxSymlinkHops)
			if err != nil {
				return "", share, err
			}
			next = resolved
		}

		if !withinRoot(fs, next, share.RootDir) {
			return "", share, ErrAccessDenied
		}
		current = next
	}

	if !withinRoot(fs, current, share.RootDir) {
		return "", share, ErrAccessDenied
	}
	return current, share, nil
}

// canonicalCase substitutes the real on-disk casing for name by listing
// dir and matching case-insensitively, per spec.md §4.4 step 4. If no
// entry matches, name is returned unchanged — the subsequent Lstat will
// report NotFound.
func canonicalCase(fs hostfs.FS, dir, name string) string {
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return name
	}
	for _, e := range entries {
		if strings.EqualFold(e.Name, name) {
			return e.Name
		}
	}
	return name
}

// followSymlink resolves path's target, re-joining relative targets
// against path's directory, and repeats while the result is itself a
// symlink, bounded by maxHops to avoid an infinite loop on a cyclic link.
func followSymlink(fs hostfs.FS, path, root string, maxHops int) (string, error) {
	for i := 0; i < maxHops; i++ {
		target, err := fs.Readlink(path)
		if err != nil {
			return "", ErrNotFound
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		} else {
			target = filepath.Clean(target)
		}
		if !withinRoot(fs, target, root) {
			return "", ErrAccessDenied
		}
		info, err := fs.Lstat(target)
		if err != nil {
			return target, nil // dangling symlink target is fine; caller Lstat's it again
		}
		if !info.IsSymlink {
			return target, nil
		}
		path = target
	}
	return "", ErrInvalidName
}

// withinRoot walks path's ancestor chain comparing (VolumeID, FileID)
// pairs against root's, rather than comparing path strings. This is the
// raw device/inode ancestor check spec.md §4.4 step 5 calls
// security-critical: a purely lexical containment check can be fooled by
// a symlink earlier in the chain that the lexical path never shows.
func withinRoot(fs hostfs.FS, path, root string) bool {
	rootInfo, err := fs.Lstat(root)
	if err != nil {
		return false
	}

	current := filepath.Clean(path)
	for {
		info, err := fs.Lstat(current)
		if err == nil && info.VolumeID == rootInfo.VolumeID && info.FileID == rootInfo.FileID {
			return true
		}
		parent := filepath.Dir(current)
		if parent == current {
			return false
		}
		current = parent
	}
}
