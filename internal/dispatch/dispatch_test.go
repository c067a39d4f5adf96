package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artn/hgfsd/internal/hgfsproto"
	"github.com/artn/hgfsd/internal/hostfs"
	"github.com/artn/hgfsd/internal/session"
	"github.com/artn/hgfsd/internal/shares"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *session.Session) {
	t.Helper()
	fs := hostfs.NewFake()
	fs.PutDir("/srv")
	fs.PutDir("/srv/docs")
	fs.PutFile("/srv/docs/hello.txt", []byte("HELLO"))

	reg, err := shares.Build([]shares.Info{
		{Name: "docs", RootDir: "/srv/docs", ReadPermissions: true, WritePermissions: true, CaseSensitive: true, FollowSymlinks: true},
	})
	require.NoError(t, err)

	d := New(reg, fs, false)
	sess := session.New(session.Config{MaxFileNodes: 16, MaxCachedOpenNodes: 2, MaxSearches: 8})
	return d, sess
}

func TestOpenReadCloseRoundTrip(t *testing.T) {
	d, sess := newTestDispatcher(t)

	openReq := hgfsproto.PackOpenRequest(hgfsproto.OpenRequest{
		Version: hgfsproto.V2,
		Name:    []byte("docs\x00hello.txt"),
		Mode:    hgfsproto.OpenReadOnly,
	})
	packet := hgfsproto.PackHeader(hgfsproto.Header{Opcode: hgfsproto.OpOpen, ID: 1})
	packet = append(packet, openReq...)

	reply := d.Dispatch(sess, packet)
	replyHdr, rest, err := hgfsproto.UnpackReplyHeader(reply)
	require.NoError(t, err)
	require.Equal(t, hgfsproto.StatusSuccess, replyHdr.Status)

	openRep, err := hgfsproto.UnpackOpenReply(rest)
	require.NoError(t, err)
	handle := openRep.Handle

	readReq := hgfsproto.PackHeader(hgfsproto.Header{Opcode: hgfsproto.OpRead, ID: 2})
	readReq = append(readReq, hgfsproto.PackReadRequest(hgfsproto.ReadRequest{Handle: handle, Offset: 0, Length: 16})...)
	reply = d.Dispatch(sess, readReq)
	replyHdr, rest, err = hgfsproto.UnpackReplyHeader(reply)
	require.NoError(t, err)
	require.Equal(t, hgfsproto.StatusSuccess, replyHdr.Status)
	readRep, err := hgfsproto.UnpackReadReply(rest)
	require.NoError(t, err)
	assert.Equal(t, "HELLO", string(readRep.Data))

	closeReq := hgfsproto.PackHeader(hgfsproto.Header{Opcode: hgfsproto.OpClose, ID: 3})
	closeReq = append(closeReq, hgfsproto.PackCloseRequest(hgfsproto.CloseRequest{Handle: handle})...)
	reply = d.Dispatch(sess, closeReq)
	replyHdr, _, err = hgfsproto.UnpackReplyHeader(reply)
	require.NoError(t, err)
	assert.Equal(t, hgfsproto.StatusSuccess, replyHdr.Status)

	reply = d.Dispatch(sess, readReq)
	replyHdr, _, err = hgfsproto.UnpackReplyHeader(reply)
	require.NoError(t, err)
	assert.Equal(t, hgfsproto.StatusInvalidHandle, replyHdr.Status)
}

func TestSymlinkEscapeRejected(t *testing.T) {
	fs := hostfs.NewFake()
	fs.PutDir("/srv")
	fs.PutDir("/srv/safe")
	fs.PutDir("/etc")
	fs.PutFile("/etc/passwd", []byte("root:x:0:0"))
	fs.PutSymlink("/srv/safe/out", "/etc")

	reg, err := shares.Build([]shares.Info{
		{Name: "safe", RootDir: "/srv/safe", ReadPermissions: true, FollowSymlinks: true},
	})
	require.NoError(t, err)
	d := New(reg, fs, false)
	sess := session.New(session.Config{MaxFileNodes: 16, MaxCachedOpenNodes: 2, MaxSearches: 8})

	req := hgfsproto.PackHeader(hgfsproto.Header{Opcode: hgfsproto.OpGetattr, ID: 1})
	req = append(req, hgfsproto.PackGetattrRequest(hgfsproto.GetattrRequest{
		Version: hgfsproto.V2,
		Name:    []byte("safe\x00out\x00passwd"),
	})...)

	reply := d.Dispatch(sess, req)
	replyHdr, _, err := hgfsproto.UnpackReplyHeader(reply)
	require.NoError(t, err)
	assert.Equal(t, hgfsproto.StatusAccessDenied, replyHdr.Status)
}

func TestCacheEvictionTransparentReopen(t *testing.T) {
	fs := hostfs.NewFake()
	fs.PutDir("/srv")
	fs.PutDir("/srv/docs")
	fs.PutFile("/srv/docs/a.txt", []byte("a"))
	fs.PutFile("/srv/docs/b.txt", []byte("b"))
	fs.PutFile("/srv/docs/c.txt", []byte("c"))

	reg, err := shares.Build([]shares.Info{
		{Name: "docs", RootDir: "/srv/docs", ReadPermissions: true},
	})
	require.NoError(t, err)
	d := New(reg, fs, false)
	sess := session.New(session.Config{MaxFileNodes: 16, MaxCachedOpenNodes: 2, MaxSearches: 8})

	open := func(name string) uint32 {
		req := hgfsproto.PackHeader(hgfsproto.Header{Opcode: hgfsproto.OpOpen, ID: 1})
		req = append(req, hgfsproto.PackOpenRequest(hgfsproto.OpenRequest{
			Version: hgfsproto.V2, Name: []byte("docs\x00" + name), Mode: hgfsproto.OpenReadOnly,
		})...)
		reply := d.Dispatch(sess, req)
		_, rest, err := hgfsproto.UnpackReplyHeader(reply)
		require.NoError(t, err)
		rep, err := hgfsproto.UnpackOpenReply(rest)
		require.NoError(t, err)
		return rep.Handle
	}

	hA := open("a.txt")
	open("b.txt")
	open("c.txt") // evicts A, since cap is 2

	readReq := hgfsproto.PackHeader(hgfsproto.Header{Opcode: hgfsproto.OpRead, ID: 9})
	readReq = append(readReq, hgfsproto.PackReadRequest(hgfsproto.ReadRequest{Handle: hA, Offset: 0, Length: 4})...)
	reply := d.Dispatch(sess, readReq)
	replyHdr, rest, err := hgfsproto.UnpackReplyHeader(reply)
	require.NoError(t, err)
	require.Equal(t, hgfsproto.StatusSuccess, replyHdr.Status, "evicted handle must transparently re-open")
	readRep, err := hgfsproto.UnpackReadReply(rest)
	require.NoError(t, err)
	assert.Equal(t, "a", string(readRep.Data))
}

func TestAppendWritesAtEndOfFile(t *testing.T) {
	fs := hostfs.NewFake()
	fs.PutDir("/srv")
	fs.PutDir("/srv/docs")
	fs.PutFile("/srv/docs/f.txt", []byte("0123456789"))

	reg, err := shares.Build([]shares.Info{
		{Name: "docs", RootDir: "/srv/docs", ReadPermissions: true, WritePermissions: true},
	})
	require.NoError(t, err)
	d := New(reg, fs, false)
	sess := session.New(session.Config{MaxFileNodes: 16, MaxCachedOpenNodes: 4, MaxSearches: 8})

	openReq := hgfsproto.PackHeader(hgfsproto.Header{Opcode: hgfsproto.OpOpen, ID: 1})
	openReq = append(openReq, hgfsproto.PackOpenRequest(hgfsproto.OpenRequest{
		Version: hgfsproto.V2, Name: []byte("docs\x00f.txt"), Mode: hgfsproto.OpenReadWrite, Flags: hgfsproto.OpenFlagAppend,
	})...)
	reply := d.Dispatch(sess, openReq)
	_, rest, err := hgfsproto.UnpackReplyHeader(reply)
	require.NoError(t, err)
	openRep, err := hgfsproto.UnpackOpenReply(rest)
	require.NoError(t, err)

	writeReq := hgfsproto.PackHeader(hgfsproto.Header{Opcode: hgfsproto.OpWrite, ID: 2})
	writeReq = append(writeReq, hgfsproto.PackWriteRequest(hgfsproto.WriteRequest{
		Handle: openRep.Handle, Offset: 0, Data: []byte("XYZ"),
	})...)
	reply = d.Dispatch(sess, writeReq)
	replyHdr, rest, err := hgfsproto.UnpackReplyHeader(reply)
	require.NoError(t, err)
	require.Equal(t, hgfsproto.StatusSuccess, replyHdr.Status)

	info, err := fs.Stat("/srv/docs/f.txt")
	require.NoError(t, err)
	assert.EqualValues(t, 13, info.Size)
}

func TestSearchSnapshotStability(t *testing.T) {
	fs := hostfs.NewFake()
	fs.PutDir("/srv")
	fs.PutDir("/srv/docs")
	fs.PutFile("/srv/docs/a", []byte("a"))
	fs.PutFile("/srv/docs/b", []byte("b"))
	fs.PutFile("/srv/docs/c", []byte("c"))

	reg, err := shares.Build([]shares.Info{{Name: "docs", RootDir: "/srv/docs", ReadPermissions: true}})
	require.NoError(t, err)
	d := New(reg, fs, false)
	sess := session.New(session.Config{MaxFileNodes: 16, MaxCachedOpenNodes: 4, MaxSearches: 8})

	openReq := hgfsproto.PackHeader(hgfsproto.Header{Opcode: hgfsproto.OpSearchOpen, ID: 1})
	openReq = append(openReq, hgfsproto.PackSearchOpenRequest(hgfsproto.SearchOpenRequest{Name: []byte("docs")})...)
	reply := d.Dispatch(sess, openReq)
	_, rest, err := hgfsproto.UnpackReplyHeader(reply)
	require.NoError(t, err)
	openRep, err := hgfsproto.UnpackSearchOpenReply(rest)
	require.NoError(t, err)

	fs.PutFile("/srv/docs/d", []byte("d")) // added after snapshot

	readReq := hgfsproto.PackHeader(hgfsproto.Header{Opcode: hgfsproto.OpSearchRead, ID: 2})
	readReq = append(readReq, hgfsproto.PackSearchReadRequest(hgfsproto.SearchReadRequest{Handle: openRep.Handle, Offset: 3})...)
	reply = d.Dispatch(sess, readReq)
	_, rest, err = hgfsproto.UnpackReplyHeader(reply)
	require.NoError(t, err)
	readRep, err := hgfsproto.UnpackSearchReadReply(rest)
	require.NoError(t, err)
	assert.True(t, readRep.EndOfDir, "snapshot must not observe files added after search-open")
}
