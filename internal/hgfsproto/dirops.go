package hgfsproto

type CreateDirRequest struct {
	Name                                             []byte
	SpecialPerms, OwnerPerms, GroupPerms, OtherPerms uint8
}

type CreateDirReply struct{}

func PackCreateDirRequest(req CreateDirRequest) []byte {
	w := &writer{}
	w.bytes(req.Name)
	w.u8(req.SpecialPerms)
	w.u8(req.OwnerPerms)
	w.u8(req.GroupPerms)
	w.u8(req.OtherPerms)
	return w.bytesOut()
}

func UnpackCreateDirRequest(buf []byte) (CreateDirRequest, error) {
	r := newReader(buf)
	name, ok := r.bytes()
	special, ok2 := r.u8()
	owner, ok3 := r.u8()
	group, ok4 := r.u8()
	other, ok5 := r.u8()
	if !(ok && ok2 && ok3 && ok4 && ok5) {
		return CreateDirRequest{}, ErrBufferTooSmall
	}
	return CreateDirRequest{
		Name:         name,
		SpecialPerms: special,
		OwnerPerms:   owner,
		GroupPerms:   group,
		OtherPerms:   other,
	}, nil
}

func PackCreateDirReply(CreateDirReply) []byte { return nil }

func UnpackCreateDirReply([]byte) (CreateDirReply, error) { return CreateDirReply{}, nil }

// DeleteRequest removes a file or (if IsDir) a directory. Deleting a
// non-empty directory translates to StatusDirNotEmpty (spec.md §4.7).
type DeleteRequest struct {
	Name  []byte
	IsDir bool
}

type DeleteReply struct{}

func PackDeleteRequest(req DeleteRequest) []byte {
	w := &writer{}
	w.bytes(req.Name)
	if req.IsDir {
		w.u8(1)
	} else {
		w.u8(0)
	}
	return w.bytesOut()
}

func UnpackDeleteRequest(buf []byte) (DeleteRequest, error) {
	r := newReader(buf)
	name, ok := r.bytes()
	isDir, ok2 := r.u8()
	if !(ok && ok2) {
		return DeleteRequest{}, ErrBufferTooSmall
	}
	return DeleteRequest{Name: name, IsDir: isDir != 0}, nil
}

func PackDeleteReply(DeleteReply) []byte { return nil }

func UnpackDeleteReply([]byte) (DeleteReply, error) { return DeleteReply{}, nil }

// RenameRequest moves OldName to NewName. Renaming a currently-open file is
// permitted (spec.md §4.7); the dispatcher updates every FileNode whose
// stored name exactly matches OldName.
type RenameRequest struct {
	OldName []byte
	NewName []byte
}

type RenameReply struct{}

func PackRenameRequest(req RenameRequest) []byte {
	w := &writer{}
	w.bytes(req.OldName)
	w.bytes(req.NewName)
	return w.bytesOut()
}

func UnpackRenameRequest(buf []byte) (RenameRequest, error) {
	r := newReader(buf)
	oldName, ok := r.bytes()
	newName, ok2 := r.bytes()
	if !(ok && ok2) {
		return RenameRequest{}, ErrBufferTooSmall
	}
	return RenameRequest{OldName: oldName, NewName: newName}, nil
}

func PackRenameReply(RenameReply) []byte { return nil }

func UnpackRenameReply([]byte) (RenameReply, error) { return RenameReply{}, nil }

type SymlinkCreateRequest struct {
	Name   []byte
	Target []byte
}

type SymlinkCreateReply struct{}

func PackSymlinkCreateRequest(req SymlinkCreateRequest) []byte {
	w := &writer{}
	w.bytes(req.Name)
	w.bytes(req.Target)
	return w.bytesOut()
}

func UnpackSymlinkCreateRequest(buf []byte) (SymlinkCreateRequest, error) {
	r := newReader(buf)
	name, ok := r.bytes()
	target, ok2 := r.bytes()
	if !(ok && ok2) {
		return SymlinkCreateRequest{}, ErrBufferTooSmall
	}
	return SymlinkCreateRequest{Name: name, Target: target}, nil
}

func PackSymlinkCreateReply(SymlinkCreateReply) []byte { return nil }

func UnpackSymlinkCreateReply([]byte) (SymlinkCreateReply, error) {
	return SymlinkCreateReply{}, nil
}

type CloseRequest struct {
	Handle uint32
}

type CloseReply struct{}

func PackCloseRequest(req CloseRequest) []byte {
	w := &writer{}
	w.u32(req.Handle)
	return w.bytesOut()
}

func UnpackCloseRequest(buf []byte) (CloseRequest, error) {
	r := newReader(buf)
	h, ok := r.u32()
	if !ok {
		return CloseRequest{}, ErrBufferTooSmall
	}
	return CloseRequest{Handle: h}, nil
}

func PackCloseReply(CloseReply) []byte { return nil }

func UnpackCloseReply([]byte) (CloseReply, error) { return CloseReply{}, nil }
