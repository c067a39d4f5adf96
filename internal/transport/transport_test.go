package transport

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artn/hgfsd/internal/dispatch"
	"github.com/artn/hgfsd/internal/hgfsproto"
	"github.com/artn/hgfsd/internal/hostfs"
	"github.com/artn/hgfsd/internal/session"
	"github.com/artn/hgfsd/internal/shares"
)

func TestServeRoundTripsThroughLoopback(t *testing.T) {
	fs := hostfs.NewFake()
	fs.PutDir("/srv")
	fs.PutDir("/srv/docs")
	fs.PutFile("/srv/docs/hello.txt", []byte("HELLO"))

	reg, err := shares.Build([]shares.Info{
		{Name: "docs", RootDir: "/srv/docs", ReadPermissions: true, WritePermissions: true, CaseSensitive: true, FollowSymlinks: true},
	})
	require.NoError(t, err)

	d := dispatch.New(reg, fs, false)
	sessions := session.NewManager(session.Config{MaxFileNodes: 16, MaxCachedOpenNodes: 4, MaxSearches: 8})

	lb := NewLoopback()
	done := make(chan error, 1)
	go func() { done <- Serve(lb, d, sessions) }()

	ref := uuid.New()
	req := hgfsproto.PackHeader(hgfsproto.Header{Opcode: hgfsproto.OpOpen, ID: 1})
	req = append(req, hgfsproto.PackOpenRequest(hgfsproto.OpenRequest{
		Version: hgfsproto.V2, Name: []byte("docs\x00hello.txt"), Mode: hgfsproto.OpenReadOnly,
	})...)
	lb.Submit(ref, req)

	reply, gotRef, err := lb.Sent()
	require.NoError(t, err)
	assert.Equal(t, ref, gotRef)

	hdr, rest, err := hgfsproto.UnpackReplyHeader(reply)
	require.NoError(t, err)
	require.Equal(t, hgfsproto.StatusSuccess, hdr.Status)
	openRep, err := hgfsproto.UnpackOpenReply(rest)
	require.NoError(t, err)
	assert.NotZero(t, openRep.Handle)

	// A second packet under the same ref must hit the session the first
	// packet created, not a fresh one.
	readReq := hgfsproto.PackHeader(hgfsproto.Header{Opcode: hgfsproto.OpRead, ID: 2})
	readReq = append(readReq, hgfsproto.PackReadRequest(hgfsproto.ReadRequest{Handle: openRep.Handle, Offset: 0, Length: 16})...)
	lb.Submit(ref, readReq)

	reply, gotRef, err = lb.Sent()
	require.NoError(t, err)
	assert.Equal(t, ref, gotRef)
	hdr, rest, err = hgfsproto.UnpackReplyHeader(reply)
	require.NoError(t, err)
	require.Equal(t, hgfsproto.StatusSuccess, hdr.Status)
	readRep, err := hgfsproto.UnpackReadReply(rest)
	require.NoError(t, err)
	assert.Equal(t, "HELLO", string(readRep.Data))

	lb.Close()
	require.NoError(t, <-done)
}
