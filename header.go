package godbf

import (
	"bytes"
	"encoding/binary"
	"io"
	"time"

	"github.com/pkg/errors"
)

func decodeHeader(r io.Reader) (Header, error) {
	var header Header
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return header, errors.Wrap(err, "read header")
	}
	return header, nil
}

// decodeFields reads the descriptor table that follows the header. Names
// are trimmed of trailing NUL bytes before decoding.
func decodeFields(r io.Reader, header Header, cs *charset) ([]Field, error) {
	fieldNum := header.FieldCount()
	data := make([]byte, fieldNum*descriptorSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, errors.Wrapf(err, "read %d field descriptors", fieldNum)
	}

	fields := make([]Field, fieldNum)
	src := bytes.NewReader(data)
	for i := 0; i < fieldNum; i++ {
		var descriptor FieldDescriptor
		if err := binary.Read(src, binary.LittleEndian, &descriptor); err != nil {
			return nil, errors.Wrapf(err, "field descriptor %d", i)
		}
		name, err := cs.decode(bytes.TrimRight(descriptor.Name[:], "\x00"))
		if err != nil {
			return nil, errors.Wrapf(err, "field descriptor %d name", i)
		}
		fields[i] = Field{
			Name: name,
			Size: descriptor.Length,
			Type: FieldType(descriptor.Type),
		}
	}
	return fields, nil
}

// encodeHeader writes the header, one descriptor per field and the table
// terminator. Lengths are derived from fields.
func encodeHeader(w io.Writer, fields *FieldSizes, numRecords uint32, now time.Time, cs *charset) (truncatedNames []string, err error) {
	if err := checkGeometry(fields); err != nil {
		return nil, err
	}
	header := Header{
		Version:      Version,
		NumRecords:   numRecords,
		HeaderLength: uint16(fields.HeaderLength()),
		RecordLength: uint16(fields.RecordLength()),
	}
	if err := header.setLastUpdate(now); err != nil {
		return nil, err
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return nil, errors.Wrap(err, "write header")
	}

	for _, field := range fields.fields {
		descriptor := FieldDescriptor{
			Type:   byte(Character),
			Length: field.Size,
		}
		truncated, err := cs.fill(descriptor.Name[:], field.Name, NUL)
		if err != nil {
			return nil, errors.Wrapf(err, "field name %q", field.Name)
		}
		if truncated {
			truncatedNames = append(truncatedNames, field.Name)
		}
		if err := binary.Write(w, binary.LittleEndian, &descriptor); err != nil {
			return nil, errors.Wrapf(err, "write field descriptor %q", field.Name)
		}
	}

	if _, err := w.Write([]byte{TERMINATOR}); err != nil {
		return nil, errors.Wrap(err, "write descriptor terminator")
	}
	return truncatedNames, nil
}

// checkGeometry rejects field tables whose lengths do not fit the uint16
// header fields.
func checkGeometry(fields *FieldSizes) error {
	headerLength, recordLength := fields.HeaderLength(), fields.RecordLength()
	if headerLength > 0xFFFF || recordLength > 0xFFFF {
		return errors.Wrapf(ErrFormat, "header length %d, record length %d exceed 65535", headerLength, recordLength)
	}
	return nil
}

// setLastUpdate stores the date of t. The year is kept as an offset from
// 1900 in one byte, so only 1900 through 2155 can be represented.
func (h *Header) setLastUpdate(t time.Time) error {
	year, month, day := t.Date()
	if year < 1900 || year > 1900+0xFF {
		return errors.Wrapf(ErrFormat, "last update year %d outside 1900-2155", year)
	}
	h.LastUpdateYear = byte(year - 1900)
	h.LastUpdateMonth = byte(month)
	h.LastUpdateDay = byte(day)
	return nil
}

// writeHeaderAt overwrites the 32-byte header in place.
func writeHeaderAt(w io.WriterAt, header Header) error {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, &header); err != nil {
		return errors.Wrap(err, "encode header")
	}
	if _, err := w.WriteAt(buf.Bytes(), 0); err != nil {
		return errors.Wrap(err, "write header")
	}
	return nil
}
