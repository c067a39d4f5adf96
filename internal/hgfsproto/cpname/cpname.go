// Package cpname implements the cross-platform (CP) path encoding used on
// the wire between guest and host: path components separated by a single
// NUL byte, with an escape byte protecting any byte in a caller-supplied
// "must escape" set.
package cpname

import "fmt"

// DefaultEscapeByte is the escape byte used unless a caller overrides it.
const DefaultEscapeByte = '%'

// ErrBufferTooSmall is returned by Encode when the destination capacity is
// smaller than the encoded form requires.
var ErrBufferTooSmall = fmt.Errorf("cpname: buffer too small")

// Encode copies input into a buffer of at most capacity bytes, replacing
// every byte present in mustEscape with a two-byte sequence {escape, byte}.
// It returns ErrBufferTooSmall without partial output if the encoded form
// would not fit in capacity bytes.
func Encode(input []byte, mustEscape [256]bool, escape byte, capacity int) ([]byte, error) {
	need := 0
	for _, b := range input {
		if mustEscape[b] || b == escape {
			need += 2
		} else {
			need++
		}
	}
	if need > capacity {
		return nil, ErrBufferTooSmall
	}

	out := make([]byte, 0, need)
	for _, b := range input {
		if mustEscape[b] || b == escape {
			out = append(out, escape, b)
		} else {
			out = append(out, b)
		}
	}
	return out, nil
}

// DecodeInPlace reverses Encode: it collapses every {escape, byte} pair back
// into a single byte, and returns the new length of buf. Decode never
// fails; a trailing escape byte with nothing after it is dropped, matching
// the tolerant parsing spec.md §4.1 requires of guest input we don't fully
// trust.
func DecodeInPlace(buf []byte, escape byte) int {
	w := 0
	for r := 0; r < len(buf); r++ {
		b := buf[r]
		if b == escape {
			if r+1 >= len(buf) {
				// Truncated escape sequence at end of buffer: drop it.
				break
			}
			r++
			b = buf[r]
		}
		buf[w] = b
		w++
	}
	return w
}

// Split breaks a CP-encoded buffer into its NUL-separated components. The
// returned slices alias buf; callers must not retain them past buf's
// lifetime if buf is reused.
func Split(buf []byte) [][]byte {
	if len(buf) == 0 {
		return nil
	}
	var parts [][]byte
	start := 0
	for i, b := range buf {
		if b == 0 {
			parts = append(parts, buf[start:i])
			start = i + 1
		}
	}
	parts = append(parts, buf[start:])
	return parts
}

// Join reassembles components into a CP-encoded buffer, separating each
// with a single NUL byte.
func Join(components [][]byte) []byte {
	if len(components) == 0 {
		return nil
	}
	n := len(components) - 1
	for _, c := range components {
		n += len(c)
	}
	out := make([]byte, 0, n)
	for i, c := range components {
		if i > 0 {
			out = append(out, 0)
		}
		out = append(out, c...)
	}
	return out
}

// MustEscapeSet builds a [256]bool lookup table from a set of raw bytes
// that must be escaped on the wire. Platform code constructs this once at
// startup from the characters illegal on the host filesystem.
func MustEscapeSet(bytes ...byte) (set [256]bool) {
	for _, b := range bytes {
		set[b] = true
	}
	return
}
