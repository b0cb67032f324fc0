package godbf

import (
	"bufio"
	"bytes"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// recordEncoder packs rows into fixed-width records, reusing one buffer.
type recordEncoder struct {
	fields []Field
	cs     *charset
	buf    []byte
}

func newRecordEncoder(fields []Field, cs *charset) *recordEncoder {
	return &recordEncoder{
		fields: fields,
		cs:     cs,
		buf:    make([]byte, recordLengthOf(fields)),
	}
}

// encode returns the record for row, valid until the next call. Values
// longer than their field are cut at the last whole character that fits;
// missing values are left blank.
func (re *recordEncoder) encode(row Row) (data []byte, truncated []string, err error) {
	// 第一个字节是删除标识，空格为未删除
	re.buf[0] = SPACE
	pos := 1
	for _, field := range re.fields {
		nextPos := pos + int(field.Size)
		slot := re.buf[pos:nextPos]
		cut, err := re.cs.fill(slot, row[field.Name], SPACE)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "column %q", field.Name)
		}
		if cut {
			truncated = append(truncated, field.Name)
		}
		pos = nextPos
	}
	return re.buf, truncated, nil
}

// WriteTable creates or truncates the file at path and writes the header,
// one record per row and the trailer.
func WriteTable(path string, fields *FieldSizes, rows []Row, opts ...Option) (err error) {
	o := newOptions(opts)
	cs, err := newCharset(o.encoding)
	if err != nil {
		return err
	}
	if fields == nil {
		fields = NewFieldSizes()
	}
	if uint64(len(rows)) > math.MaxUint32 {
		return errors.Wrapf(ErrFormat, "%d rows exceed the record count limit", len(rows))
	}
	if err := checkGeometry(fields); err != nil {
		return errors.Wrap(err, path)
	}
	now := o.clock()
	if err := (&Header{}).setLastUpdate(now); err != nil {
		return errors.Wrap(err, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.WithStack(cerr)
		}
	}()

	w := bufio.NewWriter(f)
	truncatedNames, err := encodeHeader(w, fields, uint32(len(rows)), now, cs)
	if err != nil {
		return errors.Wrap(err, path)
	}
	truncated, err := writeRecords(w, fields.fields, rows, cs)
	if err != nil {
		return errors.Wrap(err, path)
	}
	if _, err := w.Write(trailer); err != nil {
		return errors.Wrapf(err, "%s: write trailer", path)
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, path)
	}

	o.logger.WithFields(logrus.Fields{
		"path":      path,
		"fields":    fields.Len(),
		"records":   len(rows),
		"truncated": truncated,
	}).Debug("wrote dbf table")
	if len(truncatedNames) > 0 {
		o.logger.WithField("names", truncatedNames).Debug("truncated dbf field names")
	}
	return nil
}

// writeRecords encodes every row and returns how many values were cut to
// fit their field.
func writeRecords(w io.Writer, fields []Field, rows []Row, cs *charset) (int, error) {
	re := newRecordEncoder(fields, cs)
	truncated := 0
	for i, row := range rows {
		data, cut, err := re.encode(row)
		if err != nil {
			return truncated, errors.Wrapf(err, "row %d", i)
		}
		truncated += len(cut)
		if _, err := w.Write(data); err != nil {
			return truncated, errors.Wrapf(err, "write row %d", i)
		}
	}
	return truncated, nil
}

// AppendRows adds rows to the end of an existing file, using the field
// layout already on disk. Record count and last-update date are rewritten.
// If writing fails the file is truncated back and the old header restored.
func AppendRows(path string, rows []Row, opts ...Option) (err error) {
	o := newOptions(opts)
	cs, err := newCharset(o.encoding)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return errors.WithStack(err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.WithStack(cerr)
		}
	}()

	header, fields, err := readLayout(f, cs)
	if err != nil {
		return errors.Wrap(err, path)
	}
	if uint64(header.NumRecords)+uint64(len(rows)) > math.MaxUint32 {
		return errors.Wrapf(ErrFormat, "%s: %d rows exceed the record count limit", path, len(rows))
	}
	fileStat, err := f.Stat()
	if err != nil {
		return errors.WithStack(err)
	}
	end := int64(header.HeaderLength) + int64(header.RecordLength)*int64(header.NumRecords)
	if fileStat.Size() < end {
		return errors.Wrapf(ErrFormat, "%s: size %d, records end at %d", path, fileStat.Size(), end)
	}

	updated := header
	updated.NumRecords += uint32(len(rows))
	if err := updated.setLastUpdate(o.clock()); err != nil {
		return errors.Wrap(err, path)
	}

	// 先生成buffer，编码失败时不改动文件
	var buf bytes.Buffer
	truncated, err := writeRecords(&buf, fields, rows, cs)
	if err != nil {
		return errors.Wrap(err, path)
	}
	buf.Write(trailer)

	tail := make([]byte, fileStat.Size()-end)
	if _, err := f.ReadAt(tail, end); err != nil {
		return errors.Wrapf(err, "%s: read trailer", path)
	}

	if err := saveAppend(f, end, buf.Bytes(), updated); err != nil {
		if rerr := rollbackAppend(f, end, tail, header); rerr != nil {
			o.logger.WithError(rerr).WithField("path", path).Error("rollback dbf append")
		}
		return errors.Wrap(err, path)
	}

	o.logger.WithFields(logrus.Fields{
		"path":      path,
		"appended":  len(rows),
		"records":   updated.NumRecords,
		"truncated": truncated,
	}).Debug("appended dbf rows")
	return nil
}

// saveAppend overwrites the old trailer with data, cuts anything beyond it
// and rewrites the header.
func saveAppend(f *os.File, end int64, data []byte, header Header) error {
	if _, err := f.WriteAt(data, end); err != nil {
		return errors.Wrap(err, "write records")
	}
	if err := f.Truncate(end + int64(len(data))); err != nil {
		return errors.Wrap(err, "truncate")
	}
	if err := writeHeaderAt(f, header); err != nil {
		return err
	}
	// 调用sync更新到磁盘
	return errors.Wrap(f.Sync(), "sync")
}

func rollbackAppend(f *os.File, end int64, tail []byte, header Header) error {
	if err := f.Truncate(end); err != nil {
		return errors.Wrap(err, "truncate")
	}
	if _, err := f.WriteAt(tail, end); err != nil {
		return errors.Wrap(err, "restore trailer")
	}
	return writeHeaderAt(f, header)
}
