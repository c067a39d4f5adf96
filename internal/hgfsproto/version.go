package hgfsproto

import "sync/atomic"

// VersionTable tracks the negotiated "current version" per opcode family,
// generalizing the atomic handle/inode counters the teacher keeps in
// fs.go (nextInodeID, nextHandleID) to a per-opcode atomic cell. When a
// request declares a version newer than its opcode's cell, the dispatcher
// calls Downgrade to drop that cell one step and rejects the request with
// ProtocolError; the dispatcher makes no retry of its own.
type VersionTable struct {
	cells map[Opcode]*atomic.Uint32
}

func NewVersionTable() *VersionTable {
	t := &VersionTable{cells: make(map[Opcode]*atomic.Uint32)}
	for op := range opcodeNames {
		cell := &atomic.Uint32{}
		cell.Store(uint32(V2))
		t.cells[op] = cell
	}
	return t
}

// Current returns the version currently negotiated for op.
func (t *VersionTable) Current(op Opcode) Version {
	cell, ok := t.cells[op]
	if !ok {
		return V1
	}
	return Version(cell.Load())
}

// Downgrade atomically lowers op's current version by one, never going
// below V1. It reports whether a downgrade actually happened — a caller
// that already sits at V1 has nowhere further to fall and should treat the
// ProtocolError as a real failure instead of retrying.
func (t *VersionTable) Downgrade(op Opcode) bool {
	cell, ok := t.cells[op]
	if !ok {
		return false
	}
	for {
		cur := Version(cell.Load())
		if cur <= V1 {
			return false
		}
		if cell.CompareAndSwap(uint32(cur), uint32(cur-1)) {
			return true
		}
	}
}
