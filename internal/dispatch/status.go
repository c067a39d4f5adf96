// Package dispatch implements the operation dispatcher (spec.md §4.7):
// one handler function per opcode, selected by a switch on the opcode
// (versions are checked per request against a VersionTable),
// generalizing the teacher's one-method-per-fuse-op style
// (internal/fs/fs.go) because HGFS opcodes arrive as data on the wire,
// not as typed Go calls.
package dispatch

import (
	"errors"
	"os"
	"syscall"

	"github.com/artn/hgfsd/internal/hgfsproto"
	"github.com/artn/hgfsd/internal/nameresolve"
	"github.com/artn/hgfsd/internal/session"
)

// ToStatus implements the authoritative translation table from spec.md §7:
// internal causes (an os/syscall error, or one of hgfsproto's sentinel
// errors, or nameresolve's or session's) map onto the closed protocol Status
// enumeration. Unmapped causes fall through to GenericError.
func ToStatus(err error) hgfsproto.Status {
	if err == nil {
		return hgfsproto.StatusSuccess
	}

	switch {
	case errors.Is(err, hgfsproto.ErrBufferTooSmall):
		return hgfsproto.StatusProtocolError
	case errors.Is(err, hgfsproto.ErrHandleGone), errors.Is(err, session.ErrInvalidHandle), errors.Is(err, session.ErrInvalidSearch):
		return hgfsproto.StatusInvalidHandle
	case errors.Is(err, hgfsproto.ErrNameEscape):
		return hgfsproto.StatusAccessDenied
	case errors.Is(err, hgfsproto.ErrNameTooLong):
		return hgfsproto.StatusNameTooLong
	case errors.Is(err, hgfsproto.ErrUnsupported):
		return hgfsproto.StatusOperationNotSupported
	case errors.Is(err, nameresolve.ErrShareNotFound), errors.Is(err, nameresolve.ErrNotFound):
		return hgfsproto.StatusNoSuchFileOrDir
	case errors.Is(err, nameresolve.ErrAccessDenied):
		return hgfsproto.StatusAccessDenied
	case errors.Is(err, nameresolve.ErrInvalidName):
		return hgfsproto.StatusInvalidName
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errnoToStatus(errno)
	}
	if errors.Is(err, os.ErrNotExist) {
		return hgfsproto.StatusNoSuchFileOrDir
	}
	if errors.Is(err, os.ErrExist) {
		return hgfsproto.StatusFileExists
	}
	if errors.Is(err, os.ErrPermission) {
		return hgfsproto.StatusAccessDenied
	}

	return hgfsproto.StatusGenericError
}

func errnoToStatus(errno syscall.Errno) hgfsproto.Status {
	switch errno {
	case syscall.ENOENT:
		return hgfsproto.StatusNoSuchFileOrDir
	case syscall.EBADF:
		return hgfsproto.StatusInvalidHandle
	case syscall.EPERM:
		return hgfsproto.StatusOperationNotPermitted
	case syscall.EEXIST:
		return hgfsproto.StatusFileExists
	case syscall.ENOTDIR:
		return hgfsproto.StatusNotDirectory
	case syscall.ENOTEMPTY:
		return hgfsproto.StatusDirNotEmpty
	case syscall.EACCES:
		return hgfsproto.StatusAccessDenied
	case syscall.ETXTBSY, syscall.EBUSY:
		return hgfsproto.StatusSharingViolation
	case syscall.ENOSPC:
		return hgfsproto.StatusNoSpace
	case syscall.EOPNOTSUPP:
		return hgfsproto.StatusOperationNotSupported
	case syscall.ENAMETOOLONG:
		return hgfsproto.StatusNameTooLong
	default:
		return hgfsproto.StatusGenericError
	}
}
