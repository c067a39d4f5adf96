package hgfsproto

type SearchOpenRequest struct {
	Name []byte
}

type SearchOpenReply struct {
	Handle uint32
}

func PackSearchOpenRequest(req SearchOpenRequest) []byte {
	w := &writer{}
	w.bytes(req.Name)
	return w.bytesOut()
}

func UnpackSearchOpenRequest(buf []byte) (SearchOpenRequest, error) {
	r := newReader(buf)
	name, ok := r.bytes()
	if !ok {
		return SearchOpenRequest{}, ErrBufferTooSmall
	}
	return SearchOpenRequest{Name: name}, nil
}

func PackSearchOpenReply(rep SearchOpenReply) []byte {
	w := &writer{}
	w.u32(rep.Handle)
	return w.bytesOut()
}

func UnpackSearchOpenReply(buf []byte) (SearchOpenReply, error) {
	r := newReader(buf)
	h, ok := r.u32()
	if !ok {
		return SearchOpenReply{}, ErrBufferTooSmall
	}
	return SearchOpenReply{Handle: h}, nil
}

type SearchReadRequest struct {
	Handle uint32
	Offset uint32
}

// SearchReadReply carries EndOfDir=true (and a zeroed entry) once Offset
// runs past the end of the snapshot captured at search-open time (spec.md
// §4.6, testable property S1).
type SearchReadReply struct {
	EndOfDir bool
	FileID   uint64
	Type     uint8
	Name     []byte
}

func PackSearchReadRequest(req SearchReadRequest) []byte {
	w := &writer{}
	w.u32(req.Handle)
	w.u32(req.Offset)
	return w.bytesOut()
}

func UnpackSearchReadRequest(buf []byte) (SearchReadRequest, error) {
	r := newReader(buf)
	h, ok := r.u32()
	o, ok2 := r.u32()
	if !(ok && ok2) {
		return SearchReadRequest{}, ErrBufferTooSmall
	}
	return SearchReadRequest{Handle: h, Offset: o}, nil
}

func PackSearchReadReply(rep SearchReadReply) []byte {
	w := &writer{}
	if rep.EndOfDir {
		w.u8(1)
		return w.bytesOut()
	}
	w.u8(0)
	w.u64(rep.FileID)
	w.u8(rep.Type)
	w.bytes(rep.Name)
	return w.bytesOut()
}

func UnpackSearchReadReply(buf []byte) (SearchReadReply, error) {
	r := newReader(buf)
	eof, ok := r.u8()
	if !ok {
		return SearchReadReply{}, ErrBufferTooSmall
	}
	if eof != 0 {
		return SearchReadReply{EndOfDir: true}, nil
	}
	fileID, ok2 := r.u64()
	typ, ok3 := r.u8()
	name, ok4 := r.bytes()
	if !(ok2 && ok3 && ok4) {
		return SearchReadReply{}, ErrBufferTooSmall
	}
	return SearchReadReply{FileID: fileID, Type: typ, Name: name}, nil
}

type SearchCloseRequest struct {
	Handle uint32
}

type SearchCloseReply struct{}

func PackSearchCloseRequest(req SearchCloseRequest) []byte {
	w := &writer{}
	w.u32(req.Handle)
	return w.bytesOut()
}

func UnpackSearchCloseRequest(buf []byte) (SearchCloseRequest, error) {
	r := newReader(buf)
	h, ok := r.u32()
	if !ok {
		return SearchCloseRequest{}, ErrBufferTooSmall
	}
	return SearchCloseRequest{Handle: h}, nil
}

func PackSearchCloseReply(SearchCloseReply) []byte { return nil }

func UnpackSearchCloseReply([]byte) (SearchCloseReply, error) { return SearchCloseReply{}, nil }
