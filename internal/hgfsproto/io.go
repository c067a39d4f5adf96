package hgfsproto

// ReadRequest asks for up to Length bytes starting at Offset from the file
// identified by Handle.
type ReadRequest struct {
	Handle uint32
	Offset uint64
	Length uint32
}

type ReadReply struct {
	Data []byte
}

func PackReadRequest(req ReadRequest) []byte {
	w := &writer{}
	w.u32(req.Handle)
	w.u64(req.Offset)
	w.u32(req.Length)
	return w.bytesOut()
}

func UnpackReadRequest(buf []byte) (ReadRequest, error) {
	r := newReader(buf)
	handle, ok := r.u32()
	offset, ok2 := r.u64()
	length, ok3 := r.u32()
	if !(ok && ok2 && ok3) {
		return ReadRequest{}, ErrBufferTooSmall
	}
	return ReadRequest{Handle: handle, Offset: offset, Length: length}, nil
}

func PackReadReply(rep ReadReply) []byte {
	w := &writer{}
	w.bytes(rep.Data)
	return w.bytesOut()
}

func UnpackReadReply(buf []byte) (ReadReply, error) {
	r := newReader(buf)
	data, ok := r.bytes()
	if !ok {
		return ReadReply{}, ErrBufferTooSmall
	}
	return ReadReply{Data: data}, nil
}

// WriteRequest writes Data at Offset to the file identified by Handle. If
// the node was opened with the append flag, the dispatcher ignores Offset
// and writes at end-of-file instead (spec.md §4.7 "Write").
type WriteRequest struct {
	Handle uint32
	Offset uint64
	Data   []byte
}

type WriteReply struct {
	Written uint32
}

func PackWriteRequest(req WriteRequest) []byte {
	w := &writer{}
	w.u32(req.Handle)
	w.u64(req.Offset)
	w.bytes(req.Data)
	return w.bytesOut()
}

func UnpackWriteRequest(buf []byte) (WriteRequest, error) {
	r := newReader(buf)
	handle, ok := r.u32()
	offset, ok2 := r.u64()
	data, ok3 := r.bytes()
	if !(ok && ok2 && ok3) {
		return WriteRequest{}, ErrBufferTooSmall
	}
	return WriteRequest{Handle: handle, Offset: offset, Data: data}, nil
}

func PackWriteReply(rep WriteReply) []byte {
	w := &writer{}
	w.u32(rep.Written)
	return w.bytesOut()
}

func UnpackWriteReply(buf []byte) (WriteReply, error) {
	r := newReader(buf)
	written, ok := r.u32()
	if !ok {
		return WriteReply{}, ErrBufferTooSmall
	}
	return WriteReply{Written: written}, nil
}

// StreamWriteRequest is identical in shape to WriteRequest; it exists as a
// distinct opcode because streaming writes (large sequential transfers) are
// negotiated and accounted separately from the common write path, matching
// spec.md §2's inclusion of "stream-write" as its own operation.
type StreamWriteRequest = WriteRequest
type StreamWriteReply = WriteReply

func PackStreamWriteRequest(req StreamWriteRequest) []byte  { return PackWriteRequest(req) }
func UnpackStreamWriteRequest(buf []byte) (StreamWriteRequest, error) {
	return UnpackWriteRequest(buf)
}
func PackStreamWriteReply(rep StreamWriteReply) []byte { return PackWriteReply(rep) }
func UnpackStreamWriteReply(buf []byte) (StreamWriteReply, error) {
	return UnpackWriteReply(buf)
}
