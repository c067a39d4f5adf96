package dispatch

import (
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/artn/hgfsd/internal/hgfsproto"
	"github.com/artn/hgfsd/internal/nameresolve"
)

func TestToStatusMapsErrno(t *testing.T) {
	assert.Equal(t, hgfsproto.StatusNoSuchFileOrDir, ToStatus(syscall.ENOENT))
	assert.Equal(t, hgfsproto.StatusAccessDenied, ToStatus(syscall.EACCES))
	assert.Equal(t, hgfsproto.StatusDirNotEmpty, ToStatus(syscall.ENOTEMPTY))
	assert.Equal(t, hgfsproto.StatusNoSpace, ToStatus(syscall.ENOSPC))
}

func TestToStatusMapsSentinels(t *testing.T) {
	assert.Equal(t, hgfsproto.StatusProtocolError, ToStatus(hgfsproto.ErrBufferTooSmall))
	assert.Equal(t, hgfsproto.StatusInvalidHandle, ToStatus(hgfsproto.ErrHandleGone))
	assert.Equal(t, hgfsproto.StatusAccessDenied, ToStatus(nameresolve.ErrAccessDenied))
	assert.Equal(t, hgfsproto.StatusNoSuchFileOrDir, ToStatus(nameresolve.ErrShareNotFound))
}

func TestToStatusMapsOSSentinels(t *testing.T) {
	assert.Equal(t, hgfsproto.StatusNoSuchFileOrDir, ToStatus(os.ErrNotExist))
	assert.Equal(t, hgfsproto.StatusFileExists, ToStatus(os.ErrExist))
}

func TestToStatusSuccessOnNil(t *testing.T) {
	assert.Equal(t, hgfsproto.StatusSuccess, ToStatus(nil))
}
