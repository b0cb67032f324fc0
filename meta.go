package godbf

// Header represents the 32-byte header at the start of a DBF file.
type Header struct {
	Version          byte
	LastUpdateYear   byte
	LastUpdateMonth  byte
	LastUpdateDay    byte
	NumRecords       uint32
	HeaderLength     uint16
	RecordLength     uint16
	Reserved         [2]byte
	Flag             byte
	EncryptFlag      byte
	Reserved2        [12]byte
	MDXFlag          byte
	LanguageDriverID byte
	Reserved3        [2]byte
}

// FieldCount derives the number of field descriptors from HeaderLength.
// A header shorter than the minimum yields zero fields.
func (h Header) FieldCount() int {
	if h.HeaderLength < minHeaderLength {
		return 0
	}
	return int(h.HeaderLength-minHeaderLength) / descriptorSize
}

// FieldDescriptor represents the structure of a field descriptor in a DBF file.
type FieldDescriptor struct {
	Name    [11]byte
	Type    byte
	_       [4]byte
	Length  byte
	Decimal byte
	_       [14]byte
}

// FieldType is the dBASE type marker of a column. Only character fields
// are produced by this package.
type FieldType byte

const (
	Character FieldType = 'C'
)

func (t FieldType) String() string {
	switch t {
	case Character:
		return "Character"
	}
	return "FieldType(" + string(rune(t)) + ")"
}

// Field is one decoded column: name, width in bytes and type marker.
type Field struct {
	Name string
	Size uint8
	Type FieldType
}

// FieldSizes is an ordered name to width mapping. Iteration order is
// insertion order and defines the on-disk column layout.
type FieldSizes struct {
	fields []Field
	index  map[string]int
}

// NewFieldSizes builds a mapping from fields in order. A repeated name
// overwrites the size of its first occurrence.
func NewFieldSizes(fields ...Field) *FieldSizes {
	fs := &FieldSizes{index: make(map[string]int, len(fields))}
	for _, f := range fields {
		fs.Set(f.Name, f.Size)
	}
	return fs
}

// Set adds name with the given width, or updates the width in place if the
// name is already present.
func (fs *FieldSizes) Set(name string, size uint8) {
	if fs.index == nil {
		fs.index = make(map[string]int)
	}
	if i, ok := fs.index[name]; ok {
		fs.fields[i].Size = size
		return
	}
	fs.index[name] = len(fs.fields)
	fs.fields = append(fs.fields, Field{Name: name, Size: size, Type: Character})
}

func (fs *FieldSizes) Get(name string) (uint8, bool) {
	i, ok := fs.index[name]
	if !ok {
		return 0, false
	}
	return fs.fields[i].Size, true
}

func (fs *FieldSizes) Len() int {
	return len(fs.fields)
}

// Fields returns a copy of the fields in order.
func (fs *FieldSizes) Fields() []Field {
	out := make([]Field, len(fs.fields))
	copy(out, fs.fields)
	return out
}

func (fs *FieldSizes) Names() []string {
	names := make([]string, len(fs.fields))
	for i, f := range fs.fields {
		names[i] = f.Name
	}
	return names
}

// HeaderLength is 33 + 32 bytes per field.
func (fs *FieldSizes) HeaderLength() int {
	return len(fs.fields)*descriptorSize + minHeaderLength
}

// RecordLength is the deletion flag plus the sum of all widths.
func (fs *FieldSizes) RecordLength() int {
	return recordLengthOf(fs.fields)
}

func recordLengthOf(fields []Field) int {
	n := 1
	for _, f := range fields {
		n += int(f.Size)
	}
	return n
}

// Row holds the values of one record keyed by column name.
type Row map[string]string

// Table is the in-memory result of a full read. Rows keep on-disk order,
// deleted records are not included.
type Table struct {
	Columns []string
	Rows    [][]string
}
