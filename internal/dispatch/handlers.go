package dispatch

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/artn/hgfsd/internal/hgfsproto"
	"github.com/artn/hgfsd/internal/hgfsproto/cpname"
	"github.com/artn/hgfsd/internal/hostfs"
	"github.com/artn/hgfsd/internal/nameresolve"
	"github.com/artn/hgfsd/internal/perms"
	"github.com/artn/hgfsd/internal/session"
	"github.com/artn/hgfsd/internal/shares"
)

func unixToTime(sec uint64) time.Time { return time.Unix(int64(sec), 0) }

func decodeName(raw []byte) []byte {
	buf := append([]byte(nil), raw...)
	n := cpname.DecodeInPlace(buf, cpname.DefaultEscapeByte)
	return buf[:n]
}

func openFlags(mode hgfsproto.OpenMode, flags hgfsproto.OpenFlags) int {
	f := 0
	switch mode {
	case hgfsproto.OpenReadOnly:
		f |= hostfs.O_RDONLY
	case hgfsproto.OpenWriteOnly:
		f |= hostfs.O_WRONLY
	case hgfsproto.OpenReadWrite:
		f |= hostfs.O_RDWR
	}
	if flags&hgfsproto.OpenFlagCreateIfAbsent != 0 {
		f |= hostfs.O_CREATE
	}
	if flags&hgfsproto.OpenFlagTruncate != 0 {
		f |= hostfs.O_TRUNC
	}
	if flags&hgfsproto.OpenFlagExclusive != 0 {
		f |= hostfs.O_EXCL
	}
	return f
}

func permFromBits(owner, group, other uint8) os.FileMode {
	return os.FileMode(owner&7)<<6 | os.FileMode(group&7)<<3 | os.FileMode(other&7)
}

func (d *Dispatcher) handleOpen(sess *session.Session, body []byte) (hgfsproto.Status, []byte) {
	req, err := hgfsproto.UnpackOpenRequest(body)
	if err != nil {
		return hgfsproto.StatusProtocolError, nil
	}
	if !d.checkVersion(hgfsproto.OpOpen, req.Version) {
		return hgfsproto.StatusProtocolError, nil
	}

	wantRead := req.Mode != hgfsproto.OpenWriteOnly
	wantWrite := req.Mode != hgfsproto.OpenReadOnly

	path, share, err := nameresolve.Resolve(d.Shares, d.FS, decodeName(req.Name), wantRead, wantWrite)
	if err != nil {
		return ToStatus(err), nil
	}

	perm := permFromBits(req.OwnerPerms, req.GroupPerms, req.OtherPerms)
	f, err := d.FS.Open(path, openFlags(req.Mode, req.Flags), perm)
	if err != nil {
		return ToStatus(err), nil
	}

	var localID hgfsproto.LocalId
	if info, statErr := d.FS.Stat(path); statErr == nil {
		localID = hgfsproto.LocalId{VolumeID: info.VolumeID, FileID: info.FileID}
	}

	var node *session.FileNode
	var evicted *session.FileNode
	var allocErr error
	sess.WithNodes(func(ft *session.FileTable) {
		node, allocErr = ft.Alloc()
		if allocErr != nil {
			return
		}
		node.Name = path
		node.ShareName = share.Name
		node.Share = share
		node.LocalID = localID
		node.Mode = uint32(req.Mode)
		node.Flags = 0
		if req.Flags&hgfsproto.OpenFlagAppend != 0 {
			node.Flags |= session.NodeFlagAppend
		}
		if req.Flags&hgfsproto.OpenFlagSequential != 0 {
			node.Flags |= session.NodeFlagSequential
		}
		node.Attach(f)
		evicted = ft.Cache(node)
	})
	if allocErr != nil {
		f.Close()
		return ToStatus(allocErr), nil
	}
	_ = evicted // descriptor already closed by FileTable.Cache's eviction path

	return hgfsproto.StatusSuccess, hgfsproto.PackOpenReply(hgfsproto.OpenReply{
		Handle:       uint32(node.Handle()),
		AcquiredLock: hgfsproto.OplockNone,
	})
}

func (d *Dispatcher) lookupNode(sess *session.Session, handle uint32) (*session.FileNode, error) {
	var node *session.FileNode
	var err error
	sess.WithNodes(func(ft *session.FileTable) {
		node, err = ft.Lookup(session.Handle(handle))
	})
	return node, err
}

// ensureOpen transparently re-opens a node's descriptor if it was evicted
// from the cache since the guest last used its handle (spec.md §4.5).
func (d *Dispatcher) ensureOpen(node *session.FileNode) error {
	if node.File() != nil {
		return nil
	}
	f, err := d.FS.Open(node.Name, openFlags(hgfsproto.OpenMode(node.Mode), 0), 0)
	if err != nil {
		return err
	}
	node.Attach(f)
	return nil
}

func (d *Dispatcher) handleRead(sess *session.Session, body []byte) (hgfsproto.Status, []byte) {
	req, err := hgfsproto.UnpackReadRequest(body)
	if err != nil {
		return hgfsproto.StatusProtocolError, nil
	}

	sess.FileIOLock.Lock()
	defer sess.FileIOLock.Unlock()

	node, err := d.lookupNode(sess, req.Handle)
	if err != nil {
		return ToStatus(err), nil
	}
	if err := d.ensureOpen(node); err != nil {
		return ToStatus(err), nil
	}

	buf := make([]byte, req.Length)
	n, err := node.File().ReadAt(buf, int64(req.Offset))
	if err != nil && !errors.Is(err, io.EOF) {
		return ToStatus(err), nil
	}

	sess.WithNodes(func(ft *session.FileTable) { ft.Touch(node) })

	return hgfsproto.StatusSuccess, hgfsproto.PackReadReply(hgfsproto.ReadReply{Data: buf[:n]})
}

func (d *Dispatcher) handleWrite(sess *session.Session, body []byte) (hgfsproto.Status, []byte) {
	req, err := hgfsproto.UnpackWriteRequest(body)
	if err != nil {
		return hgfsproto.StatusProtocolError, nil
	}

	sess.FileIOLock.Lock()
	defer sess.FileIOLock.Unlock()

	node, err := d.lookupNode(sess, req.Handle)
	if err != nil {
		return ToStatus(err), nil
	}
	if err := d.ensureOpen(node); err != nil {
		return ToStatus(err), nil
	}

	offset := int64(req.Offset)
	if node.Flags&session.NodeFlagAppend != 0 {
		if info, err := d.FS.Stat(node.Name); err == nil {
			offset = info.Size
		}
	}

	n, err := node.File().WriteAt(req.Data, offset)
	if err != nil {
		return ToStatus(err), nil
	}

	sess.WithNodes(func(ft *session.FileTable) { ft.Touch(node) })

	return hgfsproto.StatusSuccess, hgfsproto.PackWriteReply(hgfsproto.WriteReply{Written: uint32(n)})
}

func attrFromInfo(info hostfs.Info) hgfsproto.Attr {
	typ := hgfsproto.FileTypeRegular
	switch {
	case info.IsDir:
		typ = hgfsproto.FileTypeDirectory
	case info.IsSymlink:
		typ = hgfsproto.FileTypeSymlink
	}
	perm := info.Mode.Perm()
	uid, gid := info.UserID, info.GroupID
	if uid == 0 && gid == 0 {
		uid, gid = perms.FallbackOwner()
	}
	return hgfsproto.Attr{
		Mask:         hgfsproto.AttrV1Mask,
		Type:         typ,
		Size:         uint64(info.Size),
		AccessTime:   uint64(info.AccessTime.Unix()),
		WriteTime:    uint64(info.ModTime.Unix()),
		ChangeTime:   uint64(info.ChangeTime.Unix()),
		OwnerPerms:   uint8(perm>>6) & 7,
		GroupPerms:   uint8(perm>>3) & 7,
		OtherPerms:   uint8(perm) & 7,
		UserID:       uid,
		GroupID:      gid,
		FileID:       info.FileID,
		VolumeID:     uint32(info.VolumeID),
	}
}

func (d *Dispatcher) handleGetattr(sess *session.Session, body []byte) (hgfsproto.Status, []byte) {
	req, err := hgfsproto.UnpackGetattrRequest(body)
	if err != nil {
		return hgfsproto.StatusProtocolError, nil
	}
	if !d.checkVersion(hgfsproto.OpGetattr, req.Version) {
		return hgfsproto.StatusProtocolError, nil
	}

	var path string
	if req.ByHandle {
		node, err := d.lookupNode(sess, req.Handle)
		if err != nil {
			return ToStatus(err), nil
		}
		path = node.Name
	} else {
		p, _, err := nameresolve.Resolve(d.Shares, d.FS, decodeName(req.Name), true, false)
		if err != nil {
			return ToStatus(err), nil
		}
		path = p
	}

	info, err := d.FS.Lstat(path)
	if err != nil {
		return ToStatus(err), nil
	}

	attr := attrFromInfo(info)
	if d.AlwaysUseHostTime {
		now := uint64(time.Now().Unix())
		attr.AccessTime, attr.WriteTime, attr.ChangeTime = now, now, now
	}
	return hgfsproto.StatusSuccess, hgfsproto.PackGetattrReply(hgfsproto.GetattrReply{Attr: attr})
}

func (d *Dispatcher) handleSetattr(sess *session.Session, body []byte) (hgfsproto.Status, []byte) {
	req, err := hgfsproto.UnpackSetattrRequest(body)
	if err != nil {
		return hgfsproto.StatusProtocolError, nil
	}
	if !d.checkVersion(hgfsproto.OpSetattr, req.Version) {
		return hgfsproto.StatusProtocolError, nil
	}

	var path string
	if req.ByHandle {
		node, err := d.lookupNode(sess, req.Handle)
		if err != nil {
			return ToStatus(err), nil
		}
		path = node.Name
	} else {
		p, _, err := nameresolve.Resolve(d.Shares, d.FS, decodeName(req.Name), true, true)
		if err != nil {
			return ToStatus(err), nil
		}
		path = p
	}

	a := req.Attr
	if a.Mask&hgfsproto.AttrSize != 0 {
		f, err := d.FS.Open(path, hostfs.O_WRONLY, 0)
		if err != nil {
			return ToStatus(err), nil
		}
		err = f.Truncate(int64(a.Size))
		f.Close()
		if err != nil {
			return ToStatus(err), nil
		}
	}
	if a.Mask&(hgfsproto.AttrOwnerPerms|hgfsproto.AttrGroupPerms|hgfsproto.AttrOtherPerms) != 0 {
		if err := d.FS.Chmod(path, permFromBits(a.OwnerPerms, a.GroupPerms, a.OtherPerms)); err != nil {
			return ToStatus(err), nil
		}
	}
	if !d.AlwaysUseHostTime && a.Mask&(hgfsproto.AttrAccessTime|hgfsproto.AttrWriteTime) != 0 {
		accessTime := unixToTime(a.AccessTime)
		writeTime := unixToTime(a.WriteTime)
		if err := d.FS.Utimes(path, accessTime, writeTime); err != nil {
			return ToStatus(err), nil
		}
	}

	return hgfsproto.StatusSuccess, nil
}

func (d *Dispatcher) handleSearchOpen(sess *session.Session, body []byte) (hgfsproto.Status, []byte) {
	req, err := hgfsproto.UnpackSearchOpenRequest(body)
	if err != nil {
		return hgfsproto.StatusProtocolError, nil
	}

	decoded := decodeName(req.Name)
	components := cpname.Split(decoded)

	var dir, shareName string
	var share shares.Info
	var enum session.DirEnumerator
	typ := session.SearchTypeDir

	if len(components) == 0 || len(components[0]) == 0 {
		enum = session.NewShareEnumerator(d.Shares)
		typ = session.SearchTypeBase
	} else {
		path, resolvedShare, rerr := nameresolve.Resolve(d.Shares, d.FS, decoded, true, false)
		if rerr != nil {
			return ToStatus(rerr), nil
		}
		dir = path
		share = resolvedShare
		shareName = resolvedShare.Name
		enum = session.NewDirEnumerator(d.FS, path)
	}

	var search *session.Search
	var openErr error
	sess.WithSearches(func(st *session.SearchTable) {
		search, openErr = st.Open(dir, shareName, share, typ, enum)
	})
	if openErr != nil {
		return ToStatus(openErr), nil
	}

	return hgfsproto.StatusSuccess, hgfsproto.PackSearchOpenReply(hgfsproto.SearchOpenReply{Handle: uint32(search.Handle())})
}

func (d *Dispatcher) handleSearchRead(sess *session.Session, body []byte) (hgfsproto.Status, []byte) {
	req, err := hgfsproto.UnpackSearchReadRequest(body)
	if err != nil {
		return hgfsproto.StatusProtocolError, nil
	}

	var search *session.Search
	var lookupErr error
	sess.WithSearches(func(st *session.SearchTable) {
		search, lookupErr = st.Lookup(session.Handle(req.Handle))
	})
	if lookupErr != nil {
		return ToStatus(lookupErr), nil
	}

	entry, ok := search.Read(req.Offset)
	if !ok {
		return hgfsproto.StatusSuccess, hgfsproto.PackSearchReadReply(hgfsproto.SearchReadReply{EndOfDir: true})
	}

	return hgfsproto.StatusSuccess, hgfsproto.PackSearchReadReply(hgfsproto.SearchReadReply{
		FileID: entry.Ino,
		Type:   entry.Type,
		Name:   []byte(entry.Name),
	})
}

func (d *Dispatcher) handleSearchClose(sess *session.Session, body []byte) (hgfsproto.Status, []byte) {
	req, err := hgfsproto.UnpackSearchCloseRequest(body)
	if err != nil {
		return hgfsproto.StatusProtocolError, nil
	}
	var closeErr error
	sess.WithSearches(func(st *session.SearchTable) {
		closeErr = st.Close(session.Handle(req.Handle))
	})
	if closeErr != nil {
		return ToStatus(closeErr), nil
	}
	return hgfsproto.StatusSuccess, nil
}

func (d *Dispatcher) handleCreateDir(sess *session.Session, body []byte) (hgfsproto.Status, []byte) {
	req, err := hgfsproto.UnpackCreateDirRequest(body)
	if err != nil {
		return hgfsproto.StatusProtocolError, nil
	}
	path, _, err := nameresolve.Resolve(d.Shares, d.FS, decodeName(req.Name), false, true)
	if err != nil {
		return ToStatus(err), nil
	}
	perm := permFromBits(req.OwnerPerms, req.GroupPerms, req.OtherPerms)
	if err := d.FS.Mkdir(path, perm); err != nil {
		return ToStatus(err), nil
	}
	return hgfsproto.StatusSuccess, nil
}

func (d *Dispatcher) handleDelete(sess *session.Session, body []byte) (hgfsproto.Status, []byte) {
	req, err := hgfsproto.UnpackDeleteRequest(body)
	if err != nil {
		return hgfsproto.StatusProtocolError, nil
	}
	path, _, err := nameresolve.Resolve(d.Shares, d.FS, decodeName(req.Name), false, true)
	if err != nil {
		return ToStatus(err), nil
	}
	if req.IsDir {
		err = d.FS.Rmdir(path)
	} else {
		err = d.FS.Remove(path)
	}
	if err != nil {
		return ToStatus(err), nil
	}
	return hgfsproto.StatusSuccess, nil
}

func (d *Dispatcher) handleRename(sess *session.Session, body []byte) (hgfsproto.Status, []byte) {
	req, err := hgfsproto.UnpackRenameRequest(body)
	if err != nil {
		return hgfsproto.StatusProtocolError, nil
	}
	oldPath, _, err := nameresolve.Resolve(d.Shares, d.FS, decodeName(req.OldName), false, true)
	if err != nil {
		return ToStatus(err), nil
	}
	newPath, _, err := nameresolve.Resolve(d.Shares, d.FS, decodeName(req.NewName), false, true)
	if err != nil {
		return ToStatus(err), nil
	}
	if err := d.FS.Rename(oldPath, newPath); err != nil {
		return ToStatus(err), nil
	}
	sess.WithNodes(func(ft *session.FileTable) { ft.RenameAll(oldPath, newPath) })
	return hgfsproto.StatusSuccess, nil
}

func (d *Dispatcher) handleClose(sess *session.Session, body []byte) (hgfsproto.Status, []byte) {
	req, err := hgfsproto.UnpackCloseRequest(body)
	if err != nil {
		return hgfsproto.StatusProtocolError, nil
	}

	var closeErr error
	sess.WithNodes(func(ft *session.FileTable) {
		node, lookupErr := ft.Lookup(session.Handle(req.Handle))
		if lookupErr != nil {
			closeErr = lookupErr
			return
		}
		node.Close()
		closeErr = ft.Free(session.Handle(req.Handle))
	})
	if closeErr != nil {
		return ToStatus(closeErr), nil
	}
	return hgfsproto.StatusSuccess, nil
}

func (d *Dispatcher) handleQueryVolume(sess *session.Session, body []byte) (hgfsproto.Status, []byte) {
	req, err := hgfsproto.UnpackQueryVolumeRequest(body)
	if err != nil {
		return hgfsproto.StatusProtocolError, nil
	}
	path, _, err := nameresolve.Resolve(d.Shares, d.FS, decodeName(req.Name), true, false)
	if err != nil {
		return ToStatus(err), nil
	}
	free, total, err := d.FS.Statfs(path)
	if err != nil {
		return ToStatus(err), nil
	}
	return hgfsproto.StatusSuccess, hgfsproto.PackQueryVolumeReply(hgfsproto.QueryVolumeReply{FreeBytes: free, TotalBytes: total})
}

func (d *Dispatcher) handleSymlinkCreate(sess *session.Session, body []byte) (hgfsproto.Status, []byte) {
	req, err := hgfsproto.UnpackSymlinkCreateRequest(body)
	if err != nil {
		return hgfsproto.StatusProtocolError, nil
	}
	path, _, err := nameresolve.Resolve(d.Shares, d.FS, decodeName(req.Name), false, true)
	if err != nil {
		return ToStatus(err), nil
	}
	if err := d.FS.Symlink(string(decodeName(req.Target)), path); err != nil {
		return ToStatus(err), nil
	}
	return hgfsproto.StatusSuccess, nil
}

// handleOplockChange always refuses: the oplock machinery is reserved
// fields only (spec.md §9 "Oplock stub").
func (d *Dispatcher) handleOplockChange(sess *session.Session, body []byte) (hgfsproto.Status, []byte) {
	if _, err := hgfsproto.UnpackOplockChangeRequest(body); err != nil {
		return hgfsproto.StatusProtocolError, nil
	}
	return hgfsproto.StatusOperationNotSupported, nil
}
