package hgfsproto

import "encoding/binary"

// reader walks a byte slice, tracking bounds so every read can be checked
// against the packet's declared size instead of panicking on a malformed
// or truncated buffer (spec.md §4.2: "overflow yields ProtocolError and
// the request is rejected without side effects").
type reader struct {
	buf []byte
	pos int
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) u32() (uint32, bool) {
	if r.pos+4 > len(r.buf) {
		return 0, false
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, true
}

func (r *reader) u64() (uint64, bool) {
	if r.pos+8 > len(r.buf) {
		return 0, false
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, true
}

func (r *reader) u8() (uint8, bool) {
	if r.pos+1 > len(r.buf) {
		return 0, false
	}
	v := r.buf[r.pos]
	r.pos++
	return v, true
}

// bytes reads a u32 length prefix followed by that many bytes. A declared
// length that would run past the buffer fails rather than reading out of
// bounds.
func (r *reader) bytes() ([]byte, bool) {
	n, ok := r.u32()
	if !ok {
		return nil, false
	}
	if r.pos+int(n) > len(r.buf) {
		return nil, false
	}
	v := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return v, true
}

func (r *reader) done() bool {
	return r.pos == len(r.buf)
}

type writer struct {
	buf []byte
}

func (w *writer) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) u8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *writer) bytes(v []byte) {
	w.u32(uint32(len(v)))
	w.buf = append(w.buf, v...)
}

func (w *writer) bytesOut() []byte {
	return w.buf
}
