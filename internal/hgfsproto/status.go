package hgfsproto

// Status is the closed, cross-platform reply status enumeration. It is
// distinct from any host OS errno; internal causes are translated into one
// of these values at the dispatcher boundary (see internal/dispatch).
type Status uint32

const (
	StatusSuccess Status = iota
	StatusNoSuchFileOrDir
	StatusInvalidHandle
	StatusOperationNotPermitted
	StatusFileExists
	StatusNotDirectory
	StatusDirNotEmpty
	StatusProtocolError
	StatusAccessDenied
	StatusSharingViolation
	StatusNoSpace
	StatusOperationNotSupported
	StatusNameTooLong
	StatusInvalidName
	StatusGenericError
)

var statusNames = map[Status]string{
	StatusSuccess:               "Success",
	StatusNoSuchFileOrDir:       "NoSuchFileOrDir",
	StatusInvalidHandle:         "InvalidHandle",
	StatusOperationNotPermitted: "OperationNotPermitted",
	StatusFileExists:            "FileExists",
	StatusNotDirectory:          "NotDirectory",
	StatusDirNotEmpty:           "DirNotEmpty",
	StatusProtocolError:         "ProtocolError",
	StatusAccessDenied:          "AccessDenied",
	StatusSharingViolation:      "SharingViolation",
	StatusNoSpace:               "NoSpace",
	StatusOperationNotSupported: "OperationNotSupported",
	StatusNameTooLong:           "NameTooLong",
	StatusInvalidName:           "InvalidName",
	StatusGenericError:          "GenericError",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "GenericError"
}

// StatusFromWire translates a status value that arrived on the wire from a
// peer. Unknown codes — e.g. from a newer protocol version we don't fully
// understand — translate to GenericError rather than being rejected.
func StatusFromWire(code uint32) Status {
	s := Status(code)
	if _, ok := statusNames[s]; !ok {
		return StatusGenericError
	}
	return s
}
