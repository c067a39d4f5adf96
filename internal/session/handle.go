package session

// Handle is the opaque 32-bit token the guest sees for a FileNode or
// Search: the low 16 bits are the slot index, the high 16 bits are the
// slot's generation at allocation time. A stale handle (wrong generation,
// e.g. from a since-freed-and-reallocated slot) is rejected by Lookup
// rather than silently resolving to the wrong node.
type Handle uint32

func makeHandle(slot int, generation uint16) Handle {
	return Handle(uint32(generation)<<16 | uint32(uint16(slot)))
}

func (h Handle) slot() uint16      { return uint16(h) }
func (h Handle) generation() uint16 { return uint16(h >> 16) }
