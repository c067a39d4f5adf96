// Package shares implements the read-only share registry: the table of
// administrator-configured shared folders that the name resolver and
// dispatcher consult, built once at startup and frozen for the lifetime of
// the server (spec.md §4.3).
package shares

import "fmt"

// Info is a read-only snapshot of one share's configuration. Carried by
// value inside every FileNode and Search so later operations never have
// to re-query the registry (spec.md §3 "ShareInfo").
type Info struct {
	Name string

	// RootDir is the absolute host path this share is rooted at.
	RootDir string

	ReadPermissions  bool
	WritePermissions bool

	// CaseSensitive mirrors the host filesystem's own case sensitivity for
	// this share. When false, the name resolver substitutes canonical
	// casing component by component (spec.md §4.4 step 4).
	CaseSensitive bool

	// FollowSymlinks: when false, the name resolver rejects any path
	// component that is itself a symlink, rather than just checking that
	// the final resolved path stays inside RootDir.
	FollowSymlinks bool
}

// Access describes whether a requested access mode is permitted against a
// share (spec.md §4.3 "check_access").
type Access int

const (
	Allowed Access = iota
	Denied
)

// Registry is a frozen, read-only map of share name to Info. It requires
// no locking: spec.md §5 calls it out as the one piece of process-wide
// state that is safe without synchronization because it never changes
// after Build.
type Registry struct {
	shares map[string]Info
}

// ErrNotFound is returned by Get when no share with the given name exists.
var ErrNotFound = fmt.Errorf("shares: not found")

// Build freezes a Registry from a list of share definitions. Two shares
// with the same name are rejected — the caller's configuration is buggy,
// not something the server should paper over.
func Build(infos []Info) (*Registry, error) {
	m := make(map[string]Info, len(infos))
	for _, info := range infos {
		if _, exists := m[info.Name]; exists {
			return nil, fmt.Errorf("shares: duplicate share name %q", info.Name)
		}
		m[info.Name] = info
	}
	return &Registry{shares: m}, nil
}

// List returns every configured share, in no particular order.
func (r *Registry) List() []Info {
	out := make([]Info, 0, len(r.shares))
	for _, info := range r.shares {
		out = append(out, info)
	}
	return out
}

// Get looks up a share by name.
func (r *Registry) Get(name string) (Info, error) {
	info, ok := r.shares[name]
	if !ok {
		return Info{}, ErrNotFound
	}
	return info, nil
}

// CheckAccess reports whether the share's permission flags satisfy the
// requested read/write combination.
func CheckAccess(info Info, wantRead, wantWrite bool) Access {
	if wantRead && !info.ReadPermissions {
		return Denied
	}
	if wantWrite && !info.WritePermissions {
		return Denied
	}
	return Allowed
}
