package godbf

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// recordDecoder splits fixed-width records into decoded slots. Excluded
// fields keep their width but are neither decoded nor returned.
type recordDecoder struct {
	fields   []Field
	selected []bool
	columns  []string
	cs       *charset
}

func newRecordDecoder(fields []Field, include map[string]struct{}, cs *charset) *recordDecoder {
	rd := &recordDecoder{
		fields:   fields,
		selected: make([]bool, len(fields)),
		columns:  make([]string, 0, len(fields)),
		cs:       cs,
	}
	for i, field := range fields {
		if include != nil {
			if _, ok := include[field.Name]; !ok {
				continue
			}
		}
		rd.selected[i] = true
		rd.columns = append(rd.columns, field.Name)
	}
	return rd
}

// decode returns the values of an active record. ok is false for a record
// whose deletion flag is anything but a space.
func (rd *recordDecoder) decode(data []byte) (values []string, ok bool, err error) {
	if data[0] != SPACE {
		return nil, false, nil
	}
	values = make([]string, 0, len(rd.columns))
	// +1 skips the deletion flag
	pos := 1
	for i, field := range rd.fields {
		nextPos := pos + int(field.Size)
		if rd.selected[i] {
			val, err := rd.cs.decode(bytes.TrimRight(data[pos:nextPos], " "))
			if err != nil {
				return nil, false, errors.Wrapf(err, "column %q", field.Name)
			}
			values = append(values, val)
		}
		pos = nextPos
	}
	return values, true, nil
}

// ReadFieldSizes returns the column names and widths of the file at path
// in on-disk order.
func ReadFieldSizes(path string, opts ...Option) (*FieldSizes, error) {
	o := newOptions(opts)
	cs, err := newCharset(o.encoding)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	header, err := decodeHeader(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	fields, err := decodeFields(f, header, cs)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}

	o.logger.WithFields(logrus.Fields{
		"path":   path,
		"fields": len(fields),
	}).Debug("read dbf field sizes")
	return NewFieldSizes(fields...), nil
}

// ReadTable reads every active record of the file at path. Deleted records
// are dropped, so the number of rows may be below the header's count.
func ReadTable(path string, opts ...Option) (*Table, error) {
	o := newOptions(opts)
	cs, err := newCharset(o.encoding)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	table, deleted, err := readTable(f, o.include, cs)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}

	o.logger.WithFields(logrus.Fields{
		"path":    path,
		"columns": len(table.Columns),
		"records": len(table.Rows),
		"deleted": deleted,
	}).Debug("read dbf table")
	return table, nil
}

func readTable(f io.ReadSeeker, include map[string]struct{}, cs *charset) (*Table, int, error) {
	header, fields, err := readLayout(f, cs)
	if err != nil {
		return nil, 0, err
	}
	if _, err := f.Seek(int64(header.HeaderLength), io.SeekStart); err != nil {
		return nil, 0, errors.Wrap(err, "seek to records")
	}

	rd := newRecordDecoder(fields, include, cs)
	table := &Table{Columns: rd.columns, Rows: make([][]string, 0)}
	r := bufio.NewReader(f)
	data := make([]byte, header.RecordLength)
	deleted := 0
	for i := uint32(0); i < header.NumRecords; i++ {
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, 0, errors.Wrapf(err, "read record %d", i)
		}
		values, ok, err := rd.decode(data)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "record %d", i)
		}
		if !ok {
			deleted++
			continue
		}
		table.Rows = append(table.Rows, values)
	}
	return table, deleted, nil
}

// readLayout decodes header and descriptors and checks that the header
// lengths agree with the field table.
func readLayout(r io.Reader, cs *charset) (Header, []Field, error) {
	header, err := decodeHeader(r)
	if err != nil {
		return header, nil, err
	}
	if header.HeaderLength < minHeaderLength {
		return header, nil, errors.Wrapf(ErrFormat, "header length %d below %d", header.HeaderLength, minHeaderLength)
	}
	fields, err := decodeFields(r, header, cs)
	if err != nil {
		return header, nil, err
	}
	if recordLength := recordLengthOf(fields); int(header.RecordLength) != recordLength {
		return header, nil, errors.Wrapf(ErrFormat, "record length %d, fields need %d", header.RecordLength, recordLength)
	}
	return header, fields, nil
}
