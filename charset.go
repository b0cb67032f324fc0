package godbf

import (
	"strings"
	"unicode/utf8"

	"github.com/axgle/mahonia"
	"github.com/pkg/errors"
)

// charset converts between strings and fixed-width byte slots. Widths are
// counted in encoded bytes, never in characters.
type charset struct {
	name    string
	encoder mahonia.Encoder
	decoder mahonia.Decoder
}

func newCharset(name string) (*charset, error) {
	encoder := mahonia.NewEncoder(name)
	decoder := mahonia.NewDecoder(name)
	if encoder == nil || decoder == nil {
		return nil, errors.Wrapf(ErrUnknownEncoding, "%q", name)
	}
	return &charset{name: name, encoder: encoder, decoder: decoder}, nil
}

// decode converts b to a string, failing on the first invalid or
// incomplete sequence instead of substituting a replacement character.
func (cs *charset) decode(b []byte) (string, error) {
	var sb strings.Builder
	sb.Grow(len(b))
	for pos := 0; pos < len(b); {
		c, size, status := cs.decoder(b[pos:])
		switch {
		case status == mahonia.SUCCESS && size > 0:
			sb.WriteRune(c)
		case status == mahonia.STATE_ONLY && size > 0:
		default:
			return "", errors.Wrapf(ErrDecode, "%s at byte %d of % x", cs.name, pos, b)
		}
		pos += size
	}
	return sb.String(), nil
}

// fill encodes s into dst and pads the remainder with pad. Characters are
// written while they fit whole, so a multi-byte sequence is never split;
// truncated reports whether any of s was dropped.
func (cs *charset) fill(dst []byte, s string, pad byte) (truncated bool, err error) {
	n := 0
	for i, c := range s {
		if n == len(dst) {
			truncated = true
			break
		}
		if c == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(s[i:]); size == 1 {
				return false, errors.Wrapf(ErrEncode, "invalid UTF-8 byte %#x at %d", s[i], i)
			}
		}
		size, status := cs.encoder(dst[n:], c)
		if status == mahonia.NO_ROOM {
			truncated = true
			break
		}
		if status != mahonia.SUCCESS {
			return false, errors.Wrapf(ErrEncode, "%q in %s", c, cs.name)
		}
		n += size
	}
	for i := n; i < len(dst); i++ {
		dst[i] = pad
	}
	return truncated, nil
}
