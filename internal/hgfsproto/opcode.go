package hgfsproto

// Opcode identifies both the operation and, together with a Version,
// which wire layout its payload uses.
type Opcode uint32

const (
	OpOpen Opcode = iota
	OpRead
	OpWrite
	OpGetattr
	OpSetattr
	OpSearchOpen
	OpSearchRead
	OpSearchClose
	OpCreateDir
	OpDelete
	OpRename
	OpClose
	OpQueryVolume
	OpSymlinkCreate
	OpOplockChange
	OpStreamWrite
)

var opcodeNames = map[Opcode]string{
	OpOpen:          "Open",
	OpRead:          "Read",
	OpWrite:         "Write",
	OpGetattr:       "Getattr",
	OpSetattr:       "Setattr",
	OpSearchOpen:    "SearchOpen",
	OpSearchRead:    "SearchRead",
	OpSearchClose:   "SearchClose",
	OpCreateDir:     "CreateDir",
	OpDelete:        "Delete",
	OpRename:        "Rename",
	OpClose:         "Close",
	OpQueryVolume:   "QueryVolume",
	OpSymlinkCreate: "SymlinkCreate",
	OpOplockChange:  "OplockChange",
	OpStreamWrite:   "StreamWrite",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "Unknown"
}

// Version identifies the wire layout revision of an opcode's payload.
// Versions start at 1; version negotiation (see VersionTable) only ever
// walks backwards from whatever the dispatcher's current cell holds.
type Version uint32

const (
	V1 Version = 1
	V2 Version = 2
)
