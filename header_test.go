package godbf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeader_FieldCount(t *testing.T) {
	assert.Equal(t, 0, Header{HeaderLength: 0}.FieldCount())
	assert.Equal(t, 0, Header{HeaderLength: 32}.FieldCount())
	assert.Equal(t, 0, Header{HeaderLength: 33}.FieldCount())
	assert.Equal(t, 1, Header{HeaderLength: 65}.FieldCount())
	assert.Equal(t, 13, Header{HeaderLength: 33 + 32*13}.FieldCount())
}

func TestHeader_EncodeDecode(t *testing.T) {
	cs, err := newCharset(DefaultEncoding)
	require.NoError(t, err)

	fields := NewFieldSizes(
		Field{Name: "order_type", Size: 2},
		Field{Name: "stock_code", Size: 6},
		Field{Name: "account_id_long", Size: 20},
	)
	var buf bytes.Buffer
	truncated, err := encodeHeader(&buf, fields, 7, fixedTime, cs)
	require.NoError(t, err)
	assert.Equal(t, []string{"account_id_long"}, truncated)
	assert.Equal(t, 33+32*3, buf.Len())

	header, err := decodeHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, byte(Version), header.Version)
	assert.Equal(t, uint32(7), header.NumRecords)
	assert.Equal(t, uint16(fields.HeaderLength()), header.HeaderLength)
	assert.Equal(t, uint16(1+2+6+20), header.RecordLength)
	assert.Equal(t, 3, header.FieldCount())

	decoded, err := decodeFields(&buf, header, cs)
	require.NoError(t, err)
	assert.Equal(t, []Field{
		{Name: "order_type", Size: 2, Type: Character},
		{Name: "stock_code", Size: 6, Type: Character},
		{Name: "account_id_", Size: 20, Type: Character},
	}, decoded)
	assert.Equal(t, []byte{TERMINATOR}, buf.Bytes())
}

func TestHeader_TooWide(t *testing.T) {
	cs, err := newCharset(DefaultEncoding)
	require.NoError(t, err)

	fields := NewFieldSizes()
	for i := 0; i < 300; i++ {
		fields.Set(string(rune('A'+i%26))+string(rune('a'+i/26)), 255)
	}
	_, err = encodeHeader(&bytes.Buffer{}, fields, 0, fixedTime, cs)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestFieldSizes_Set(t *testing.T) {
	fields := NewFieldSizes(
		Field{Name: "B", Size: 1},
		Field{Name: "A", Size: 2},
		Field{Name: "B", Size: 3},
	)
	assert.Equal(t, []string{"B", "A"}, fields.Names())
	size, ok := fields.Get("B")
	assert.True(t, ok)
	assert.Equal(t, uint8(3), size)
	_, ok = fields.Get("C")
	assert.False(t, ok)
	assert.Equal(t, 1+3+2, fields.RecordLength())

	var zero FieldSizes
	zero.Set("X", 4)
	assert.Equal(t, 1, zero.Len())
}
