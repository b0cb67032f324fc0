package godbf

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharset_Fill(t *testing.T) {
	cs, err := newCharset("UTF-8")
	require.NoError(t, err)

	cases := []struct {
		value     string
		width     int
		want      []byte
		truncated bool
	}{
		{"abc", 5, []byte("abc  "), false},
		{"abcdef", 3, []byte("abc"), true},
		{"", 2, []byte("  "), false},
		{"aé", 2, []byte("a "), true},
		{"日本", 4, []byte("日 "), true},
		{"日本", 6, []byte("日本"), false},
	}
	for _, c := range cases {
		dst := make([]byte, c.width)
		truncated, err := cs.fill(dst, c.value, SPACE)
		require.NoError(t, err)
		assert.Equal(t, c.want, dst, c.value)
		assert.Equal(t, c.truncated, truncated, c.value)
	}
}

func TestCharset_FillNul(t *testing.T) {
	cs, err := newCharset(DefaultEncoding)
	require.NoError(t, err)

	dst := bytes.Repeat([]byte{'x'}, 11)
	_, err = cs.fill(dst, "名称", NUL)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 7), dst[4:])

	name, err := cs.decode(bytes.TrimRight(dst, "\x00"))
	require.NoError(t, err)
	assert.Equal(t, "名称", name)
}

func TestCharset_Decode(t *testing.T) {
	cs, err := newCharset("UTF-8")
	require.NoError(t, err)

	s, err := cs.decode([]byte("héllo"))
	require.NoError(t, err)
	assert.Equal(t, "héllo", s)

	_, err = cs.decode([]byte{'a', 0xFF})
	assert.True(t, errors.Is(err, ErrDecode), "%v", err)

	// a multi-byte sequence cut off at the end of the slot
	_, err = cs.decode([]byte{'a', 0xE6, 0x97})
	assert.True(t, errors.Is(err, ErrDecode), "%v", err)
}

func TestCharset_Unknown(t *testing.T) {
	_, err := newCharset("EBCDIC-XYZ")
	assert.True(t, errors.Is(err, ErrUnknownEncoding), "%v", err)
}

func TestCharset_FillInvalidUTF8(t *testing.T) {
	cs, err := newCharset(DefaultEncoding)
	require.NoError(t, err)

	dst := make([]byte, 5)
	_, err = cs.fill(dst, "a\xffb", SPACE)
	assert.True(t, errors.Is(err, ErrEncode), "%v", err)

	_, err = cs.fill(dst, "a张b", SPACE)
	assert.NoError(t, err)
}
