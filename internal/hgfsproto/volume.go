package hgfsproto

// QueryVolumeRequest asks for free/total space on the filesystem hosting
// the resolved path (spec.md §4.7).
type QueryVolumeRequest struct {
	Name []byte
}

type QueryVolumeReply struct {
	FreeBytes  uint64
	TotalBytes uint64
}

func PackQueryVolumeRequest(req QueryVolumeRequest) []byte {
	w := &writer{}
	w.bytes(req.Name)
	return w.bytesOut()
}

func UnpackQueryVolumeRequest(buf []byte) (QueryVolumeRequest, error) {
	r := newReader(buf)
	name, ok := r.bytes()
	if !ok {
		return QueryVolumeRequest{}, ErrBufferTooSmall
	}
	return QueryVolumeRequest{Name: name}, nil
}

func PackQueryVolumeReply(rep QueryVolumeReply) []byte {
	w := &writer{}
	w.u64(rep.FreeBytes)
	w.u64(rep.TotalBytes)
	return w.bytesOut()
}

func UnpackQueryVolumeReply(buf []byte) (QueryVolumeReply, error) {
	r := newReader(buf)
	free, ok := r.u64()
	total, ok2 := r.u64()
	if !(ok && ok2) {
		return QueryVolumeReply{}, ErrBufferTooSmall
	}
	return QueryVolumeReply{FreeBytes: free, TotalBytes: total}, nil
}

// OplockChangeRequest asks the server to change the lock held on Handle.
// The implementation always replies StatusOperationNotSupported (spec.md
// §9 "Oplock stub").
type OplockChangeRequest struct {
	Handle    uint32
	Requested OplockKind
}

type OplockChangeReply struct {
	Granted OplockKind
}

func PackOplockChangeRequest(req OplockChangeRequest) []byte {
	w := &writer{}
	w.u32(req.Handle)
	w.u32(uint32(req.Requested))
	return w.bytesOut()
}

func UnpackOplockChangeRequest(buf []byte) (OplockChangeRequest, error) {
	r := newReader(buf)
	h, ok := r.u32()
	k, ok2 := r.u32()
	if !(ok && ok2) {
		return OplockChangeRequest{}, ErrBufferTooSmall
	}
	return OplockChangeRequest{Handle: h, Requested: OplockKind(k)}, nil
}

func PackOplockChangeReply(rep OplockChangeReply) []byte {
	w := &writer{}
	w.u32(uint32(rep.Granted))
	return w.bytesOut()
}

func UnpackOplockChangeReply(buf []byte) (OplockChangeReply, error) {
	r := newReader(buf)
	k, ok := r.u32()
	if !ok {
		return OplockChangeReply{}, ErrBufferTooSmall
	}
	return OplockChangeReply{Granted: OplockKind(k)}, nil
}
