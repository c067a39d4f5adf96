package hgfsproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{Opcode: OpOpen, ID: 42}
	buf := PackHeader(h)
	got, rest, err := UnpackHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, h, got)
	assert.Empty(t, rest)
}

func TestUnpackHeaderTooSmall(t *testing.T) {
	_, _, err := UnpackHeader([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestOpenRequestRoundTrip(t *testing.T) {
	req := OpenRequest{
		Version:      V2,
		Name:         []byte("docs\x00hello.txt"),
		Mode:         OpenReadWrite,
		Flags:        OpenFlagCreateIfAbsent | OpenFlagTruncate,
		SpecialPerms: 0,
		OwnerPerms:   6,
		GroupPerms:   4,
		OtherPerms:   4,
		DesiredLock:  OplockNone,
	}
	buf := PackOpenRequest(req)
	got, err := UnpackOpenRequest(buf)
	require.NoError(t, err)
	assert.Equal(t, req, got)
}

func TestGetattrReplyRoundTrip(t *testing.T) {
	rep := GetattrReply{Attr: Attr{
		Mask:       AttrV1Mask,
		Type:       FileTypeRegular,
		Size:       1024,
		AccessTime: 1,
		WriteTime:  2,
		ChangeTime: 3,
		OwnerPerms: 6,
		GroupPerms: 4,
		OtherPerms: 4,
		UserID:     1000,
		GroupID:    1000,
		FileID:     99,
		VolumeID:   1,
	}}
	buf := PackGetattrReply(rep)
	got, err := UnpackGetattrReply(buf)
	require.NoError(t, err)
	assert.Equal(t, rep, got)
}

func TestSearchReadReplyEndOfDir(t *testing.T) {
	rep := SearchReadReply{EndOfDir: true}
	buf := PackSearchReadReply(rep)
	got, err := UnpackSearchReadReply(buf)
	require.NoError(t, err)
	assert.True(t, got.EndOfDir)
}

func TestSearchReadReplyEntry(t *testing.T) {
	rep := SearchReadReply{FileID: 7, Type: 1, Name: []byte("a.txt")}
	buf := PackSearchReadReply(rep)
	got, err := UnpackSearchReadReply(buf)
	require.NoError(t, err)
	assert.Equal(t, rep, got)
}

func TestStatusFromWireUnknown(t *testing.T) {
	assert.Equal(t, StatusGenericError, StatusFromWire(9999))
}

func TestReplyRoundTrip(t *testing.T) {
	h := Header{Opcode: OpGetattr, ID: 5}
	body := PackGetattrReply(GetattrReply{Attr: Attr{Size: 10}})
	packet := PackReply(h, StatusSuccess, body)

	gotHeader, rest, err := UnpackReplyHeader(packet)
	require.NoError(t, err)
	assert.Equal(t, h, gotHeader.Header)
	assert.Equal(t, StatusSuccess, gotHeader.Status)

	gotRep, err := UnpackGetattrReply(rest)
	require.NoError(t, err)
	assert.EqualValues(t, 10, gotRep.Attr.Size)
}

func TestVersionTableDowngrade(t *testing.T) {
	vt := NewVersionTable()
	assert.Equal(t, V2, vt.Current(OpGetattr))

	ok := vt.Downgrade(OpGetattr)
	assert.True(t, ok)
	assert.Equal(t, V1, vt.Current(OpGetattr))

	ok = vt.Downgrade(OpGetattr)
	assert.False(t, ok, "cannot downgrade below V1")
	assert.Equal(t, V1, vt.Current(OpGetattr))
}
