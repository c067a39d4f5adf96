package hgfsproto

// OpenMode is the access mode requested by Open: read-only, write-only, or
// read-write (spec.md §4.7's "flag matrix").
type OpenMode uint8

const (
	OpenReadOnly OpenMode = iota
	OpenWriteOnly
	OpenReadWrite
)

// OpenFlags captures the create-if-absent / truncate / exclusive /
// append / sequential matrix from spec.md §4.7.
type OpenFlags uint32

const (
	OpenFlagCreateIfAbsent OpenFlags = 1 << iota
	OpenFlagTruncate
	OpenFlagExclusive
	OpenFlagAppend
	OpenFlagSequential
)

type OpenRequest struct {
	Version    Version
	Name       []byte // CP-encoded "share\x00rel/path"
	Mode       OpenMode
	Flags      OpenFlags
	SpecialPerms, OwnerPerms, GroupPerms, OtherPerms uint8
	DesiredLock OplockKind
}

type OpenReply struct {
	Handle      uint32
	AcquiredLock OplockKind
}

func PackOpenRequest(req OpenRequest) []byte {
	w := &writer{}
	w.u32(uint32(req.Version))
	w.bytes(req.Name)
	w.u8(uint8(req.Mode))
	w.u32(uint32(req.Flags))
	w.u8(req.SpecialPerms)
	w.u8(req.OwnerPerms)
	w.u8(req.GroupPerms)
	w.u8(req.OtherPerms)
	w.u32(uint32(req.DesiredLock))
	return w.bytesOut()
}

func UnpackOpenRequest(buf []byte) (OpenRequest, error) {
	r := newReader(buf)
	version, ok := r.u32()
	name, ok2 := r.bytes()
	mode, ok3 := r.u8()
	flags, ok4 := r.u32()
	special, ok5 := r.u8()
	owner, ok6 := r.u8()
	group, ok7 := r.u8()
	other, ok8 := r.u8()
	lock, ok9 := r.u32()
	if !(ok && ok2 && ok3 && ok4 && ok5 && ok6 && ok7 && ok8 && ok9) {
		return OpenRequest{}, ErrBufferTooSmall
	}
	return OpenRequest{
		Version:      Version(version),
		Name:         name,
		Mode:         OpenMode(mode),
		Flags:        OpenFlags(flags),
		SpecialPerms: special,
		OwnerPerms:   owner,
		GroupPerms:   group,
		OtherPerms:   other,
		DesiredLock:  OplockKind(lock),
	}, nil
}

func PackOpenReply(rep OpenReply) []byte {
	w := &writer{}
	w.u32(rep.Handle)
	w.u32(uint32(rep.AcquiredLock))
	return w.bytesOut()
}

func UnpackOpenReply(buf []byte) (OpenReply, error) {
	r := newReader(buf)
	handle, ok := r.u32()
	lock, ok2 := r.u32()
	if !(ok && ok2) {
		return OpenReply{}, ErrBufferTooSmall
	}
	return OpenReply{Handle: handle, AcquiredLock: OplockKind(lock)}, nil
}
