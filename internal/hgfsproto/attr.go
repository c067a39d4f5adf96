package hgfsproto

// AttrMask declares which fields of an Attr are meaningful in a given
// message. This package's codec writes the mask on the wire for every
// version, V1 included.
type AttrMask uint32

const (
	AttrType AttrMask = 1 << iota
	AttrSize
	AttrAccessTime
	AttrWriteTime
	AttrChangeTime
	AttrSpecialPerms
	AttrOwnerPerms
	AttrGroupPerms
	AttrOtherPerms
	AttrUserID
	AttrGroupID
	AttrFileID
)

// AttrV1Mask is the fixed set of fields of a V1 getattr/setattr. The codec
// does not apply it; the mask a message carries is the one on the wire.
const AttrV1Mask = AttrType | AttrSize | AttrAccessTime | AttrWriteTime |
	AttrChangeTime | AttrOwnerPerms | AttrGroupPerms | AttrOtherPerms

// FileType enumerates the cross-platform file type reported in Attr.
type FileType uint32

const (
	FileTypeRegular FileType = iota
	FileTypeDirectory
	FileTypeSymlink
)

// LocalId identifies a host file across requests: used to detect whether
// two names, or a name and a handle, refer to the same underlying file.
type LocalId struct {
	VolumeID uint64
	FileID   uint64
}

// Attr is the mask-plus-fields attribute record exchanged on Getattr and
// Setattr, mirroring spec.md §3 "Attribute record".
type Attr struct {
	Mask AttrMask

	Type FileType
	Size uint64

	AccessTime uint64
	WriteTime  uint64
	ChangeTime uint64

	SpecialPerms uint8
	OwnerPerms   uint8
	GroupPerms   uint8
	OtherPerms   uint8

	UserID  uint32
	GroupID uint32

	FileID   uint64
	VolumeID uint32
}

// OplockKind is the reserved opportunistic-lock state. Only OplockNone is
// ever granted in this implementation; the remaining values are kept so
// the wire format and FileNode layout match what a future implementation
// of the opportunistic-lock protocol would need (spec.md §9 "Oplock stub").
type OplockKind uint32

const (
	OplockNone OplockKind = iota
	OplockExclusive
	OplockBatch
	OplockLevelII
)
