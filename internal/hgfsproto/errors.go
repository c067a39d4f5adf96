package hgfsproto

import "errors"

// Internal causes that have no host errno behind them. These sit alongside
// syscall.Errno in the internal error taxonomy described in spec.md §7;
// internal/dispatch maps both flavors into the closed Status enumeration.
var (
	ErrBufferTooSmall = errors.New("hgfsproto: buffer too small")
	ErrHandleGone     = errors.New("hgfsproto: handle gone")
	ErrNameEscape     = errors.New("hgfsproto: name escapes share root")
	ErrNameTooLong    = errors.New("hgfsproto: name too long")
	ErrUnsupported    = errors.New("hgfsproto: operation not supported")
)
