package hgfsproto

// Header is the fixed-size request/reply prefix: {u32 opcode, u32 id}.
// Lengths on the wire are little-endian throughout (spec.md §6).
type Header struct {
	Opcode Opcode
	ID     uint32
}

const headerSize = 8

// UnpackHeader reads the fixed header from the front of a packet. It is
// the first thing the dispatcher does with any inbound buffer.
func UnpackHeader(buf []byte) (Header, []byte, error) {
	if len(buf) < headerSize {
		return Header{}, nil, ErrBufferTooSmall
	}
	r := newReader(buf[:headerSize])
	opcode, _ := r.u32()
	id, _ := r.u32()
	return Header{Opcode: Opcode(opcode), ID: id}, buf[headerSize:], nil
}

// PackHeader serializes a header to its wire form.
func PackHeader(h Header) []byte {
	w := &writer{}
	w.u32(uint32(h.Opcode))
	w.u32(h.ID)
	return w.bytesOut()
}

// ReplyHeader is the header shared by every reply: the request header plus
// a status code from the closed Status enumeration (spec.md §4.2).
type ReplyHeader struct {
	Header
	Status Status
}

func PackReplyHeader(h ReplyHeader) []byte {
	w := &writer{}
	w.u32(uint32(h.Opcode))
	w.u32(h.ID)
	w.u32(uint32(h.Status))
	return w.bytesOut()
}

func UnpackReplyHeader(buf []byte) (ReplyHeader, []byte, error) {
	if len(buf) < headerSize+4 {
		return ReplyHeader{}, nil, ErrBufferTooSmall
	}
	r := newReader(buf[:headerSize+4])
	opcode, _ := r.u32()
	id, _ := r.u32()
	status, _ := r.u32()
	return ReplyHeader{
		Header: Header{Opcode: Opcode(opcode), ID: id},
		Status: StatusFromWire(status),
	}, buf[headerSize+4:], nil
}

// PackReply builds a complete reply packet: header, status, and an
// already-packed opcode-specific body (empty for error replies).
func PackReply(h Header, status Status, body []byte) []byte {
	out := PackReplyHeader(ReplyHeader{Header: h, Status: status})
	return append(out, body...)
}
