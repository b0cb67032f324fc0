// Package godbf reads and writes dBASE III (DBF) files with character
// fields. Field widths are always counted in bytes of the selected text
// encoding, GB18030 unless configured otherwise.
package godbf

import (
	"github.com/pkg/errors"
)

const (
	SPACE      = 0x20
	DELETED    = 0x2A
	EOF        = 0x1A
	NUL        = 0x00
	TERMINATOR = 0x0D

	// Version is the dBASE III marker written in the first header byte.
	Version = 0x03

	headerSize      = 32
	descriptorSize  = 32
	minHeaderLength = headerSize + 1
)

var (
	// ErrFormat reports header geometry that does not match the field table.
	ErrFormat = errors.New("dbf: inconsistent header geometry")
	// ErrDecode reports bytes that are not valid in the selected encoding.
	ErrDecode = errors.New("dbf: invalid byte sequence")
	// ErrEncode reports a character the selected encoding cannot represent.
	ErrEncode = errors.New("dbf: character not representable")
	// ErrUnknownEncoding reports an encoding name with no known charset.
	ErrUnknownEncoding = errors.New("dbf: unknown encoding")
)

// trailer closes the record area.
var trailer = []byte{TERMINATOR, EOF}
