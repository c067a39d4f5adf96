package cpname

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	mustEscape := MustEscapeSet('\\', ':')

	cases := [][]byte{
		[]byte(""),
		[]byte("hello.txt"),
		[]byte("a\\b:c"),
		[]byte("%already-has-escape"),
		{0x01, 0x02, '%', 'x'},
	}

	for _, in := range cases {
		encoded, err := Encode(in, mustEscape, DefaultEscapeByte, len(in)*2)
		require.NoError(t, err)

		buf := make([]byte, len(encoded))
		copy(buf, encoded)
		n := DecodeInPlace(buf, DefaultEscapeByte)
		assert.Equal(t, in, buf[:n])
	}
}

func TestEncodeBufferTooSmall(t *testing.T) {
	mustEscape := MustEscapeSet(':')
	_, err := Encode([]byte("a:b"), mustEscape, DefaultEscapeByte, 3)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestDecodeInPlaceTruncatedEscape(t *testing.T) {
	buf := []byte("abc%")
	n := DecodeInPlace(buf, '%')
	assert.Equal(t, "abc", string(buf[:n]))
}

func TestSplitJoinRoundTrip(t *testing.T) {
	joined := Join([][]byte{[]byte("docs"), []byte("sub"), []byte("hello.txt")})
	assert.Equal(t, "docs\x00sub\x00hello.txt", string(joined))

	parts := Split(joined)
	require.Len(t, parts, 3)
	assert.Equal(t, "docs", string(parts[0]))
	assert.Equal(t, "sub", string(parts[1]))
	assert.Equal(t, "hello.txt", string(parts[2]))
}

func TestSplitSingleComponent(t *testing.T) {
	parts := Split([]byte("share"))
	require.Len(t, parts, 1)
	assert.Equal(t, "share", string(parts[0]))
}
