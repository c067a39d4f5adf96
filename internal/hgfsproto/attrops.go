package hgfsproto

// GetattrRequest supports lookup either by an already-open Handle or by
// Name. A ByHandle request carries no Name, and the dispatcher does not
// retry a failed handle lookup by name.
type GetattrRequest struct {
	Version  Version
	ByHandle bool
	Handle   uint32
	Name     []byte
}

type GetattrReply struct {
	Attr Attr
}

func packAttr(w *writer, a Attr) {
	w.u32(uint32(a.Mask))
	w.u32(uint32(a.Type))
	w.u64(a.Size)
	w.u64(a.AccessTime)
	w.u64(a.WriteTime)
	w.u64(a.ChangeTime)
	w.u8(a.SpecialPerms)
	w.u8(a.OwnerPerms)
	w.u8(a.GroupPerms)
	w.u8(a.OtherPerms)
	w.u32(a.UserID)
	w.u32(a.GroupID)
	w.u64(a.FileID)
	w.u32(a.VolumeID)
}

func unpackAttr(r *reader) (Attr, bool) {
	var a Attr
	var ok [13]bool
	var mask, typ, userID, groupID, volumeID uint32
	mask, ok[0] = r.u32()
	typ, ok[1] = r.u32()
	a.Size, ok[2] = r.u64()
	a.AccessTime, ok[3] = r.u64()
	a.WriteTime, ok[4] = r.u64()
	a.ChangeTime, ok[5] = r.u64()
	a.SpecialPerms, ok[6] = r.u8()
	a.OwnerPerms, ok[7] = r.u8()
	a.GroupPerms, ok[8] = r.u8()
	a.OtherPerms, ok[9] = r.u8()
	userID, ok[10] = r.u32()
	groupID, ok[11] = r.u32()
	a.FileID, ok[12] = r.u64()
	volumeID, okVol := r.u32()
	for _, v := range ok {
		if !v {
			return Attr{}, false
		}
	}
	if !okVol {
		return Attr{}, false
	}
	a.Mask = AttrMask(mask)
	a.Type = FileType(typ)
	a.UserID = userID
	a.GroupID = groupID
	a.VolumeID = volumeID
	return a, true
}

func PackGetattrRequest(req GetattrRequest) []byte {
	w := &writer{}
	w.u32(uint32(req.Version))
	if req.ByHandle {
		w.u8(1)
		w.u32(req.Handle)
	} else {
		w.u8(0)
		w.bytes(req.Name)
	}
	return w.bytesOut()
}

func UnpackGetattrRequest(buf []byte) (GetattrRequest, error) {
	r := newReader(buf)
	version, ok := r.u32()
	byHandle, ok2 := r.u8()
	if !(ok && ok2) {
		return GetattrRequest{}, ErrBufferTooSmall
	}
	req := GetattrRequest{Version: Version(version), ByHandle: byHandle != 0}
	if req.ByHandle {
		h, ok3 := r.u32()
		if !ok3 {
			return GetattrRequest{}, ErrBufferTooSmall
		}
		req.Handle = h
	} else {
		name, ok3 := r.bytes()
		if !ok3 {
			return GetattrRequest{}, ErrBufferTooSmall
		}
		req.Name = name
	}
	return req, nil
}

func PackGetattrReply(rep GetattrReply) []byte {
	w := &writer{}
	packAttr(w, rep.Attr)
	return w.bytesOut()
}

func UnpackGetattrReply(buf []byte) (GetattrReply, error) {
	r := newReader(buf)
	a, ok := unpackAttr(r)
	if !ok {
		return GetattrReply{}, ErrBufferTooSmall
	}
	return GetattrReply{Attr: a}, nil
}

// SetattrRequest mirrors GetattrRequest's by-handle/by-name duality and
// additionally carries the new Attr plus AlwaysUseHostTime's effect is
// applied by the dispatcher, not encoded on the wire.
type SetattrRequest struct {
	Version  Version
	ByHandle bool
	Handle   uint32
	Name     []byte
	Attr     Attr
}

type SetattrReply struct{}

func PackSetattrRequest(req SetattrRequest) []byte {
	w := &writer{}
	w.u32(uint32(req.Version))
	if req.ByHandle {
		w.u8(1)
		w.u32(req.Handle)
	} else {
		w.u8(0)
		w.bytes(req.Name)
	}
	packAttr(w, req.Attr)
	return w.bytesOut()
}

func UnpackSetattrRequest(buf []byte) (SetattrRequest, error) {
	r := newReader(buf)
	version, ok := r.u32()
	byHandle, ok2 := r.u8()
	if !(ok && ok2) {
		return SetattrRequest{}, ErrBufferTooSmall
	}
	req := SetattrRequest{Version: Version(version), ByHandle: byHandle != 0}
	if req.ByHandle {
		h, ok3 := r.u32()
		if !ok3 {
			return SetattrRequest{}, ErrBufferTooSmall
		}
		req.Handle = h
	} else {
		name, ok3 := r.bytes()
		if !ok3 {
			return SetattrRequest{}, ErrBufferTooSmall
		}
		req.Name = name
	}
	a, ok3 := unpackAttr(r)
	if !ok3 {
		return SetattrRequest{}, ErrBufferTooSmall
	}
	req.Attr = a
	return req, nil
}

func PackSetattrReply(SetattrReply) []byte { return nil }

func UnpackSetattrReply([]byte) (SetattrReply, error) { return SetattrReply{}, nil }
