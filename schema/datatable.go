package schema

import (
	"strings"

	"github.com/dot5enko/repak/bits"
)

const (
	DataTableHeaderSize = 40
	DataTableColumnSize = 16

	DataTableHeaderColumnsOffset = 8
	DataTableHeaderRowsOffset    = 16
	DataTableColumnNameOffset    = 0
)

type DataTableColumnType uint32

const (
	BoolColumnType DataTableColumnType = iota
	IntColumnType
	FloatColumnType
	VectorColumnType
	StringColumnType
	AssetColumnType
	AssetNoPrecacheColumnType
)

var columnTypeNames = map[string]DataTableColumnType{
	"bool":            BoolColumnType,
	"int":             IntColumnType,
	"float":           FloatColumnType,
	"vector":          VectorColumnType,
	"string":          StringColumnType,
	"asset":           AssetColumnType,
	"assetnoprecache": AssetNoPrecacheColumnType,
}

// ParseColumnType matches case-insensitively, unknown names are treated as string.
func ParseColumnType(name string) DataTableColumnType {
	if typ, found := columnTypeNames[strings.ToLower(strings.TrimSpace(name))]; found {
		return typ
	}
	return StringColumnType
}

func (c DataTableColumnType) String() string {
	for name, typ := range columnTypeNames {
		if typ == c {
			return name
		}
	}
	return ""
}

// IsPooled is true for cells stored in the string pool behind a PagePtr.
func (c DataTableColumnType) IsPooled() bool {
	return c == StringColumnType || c == AssetColumnType || c == AssetNoPrecacheColumnType
}

// Size is the width of one cell inside a row.
func (c DataTableColumnType) Size() uint32 {
	switch c {
	case BoolColumnType, IntColumnType, FloatColumnType:
		return 4
	case VectorColumnType:
		return 4 * 3
	case StringColumnType, AssetColumnType, AssetNoPrecacheColumnType:
		return PagePtrSize
	default:
		panic("unknown column type")
	}
}

type DataTableHeader struct {
	ColumnCount uint32
	RowCount    uint32

	ColumnHeaders PagePtr
	Rows          PagePtr
	UnkHash       uint32

	Unknown1 uint16
	Unknown2 uint16

	// bytes per row
	RowStride uint32
	Padding   uint32
}

func (h *DataTableHeader) Encode(bw *bits.BitWriter) {
	bw.PutUint32(h.ColumnCount)
	bw.PutUint32(h.RowCount)
	h.ColumnHeaders.Encode(bw)
	h.Rows.Encode(bw)
	bw.PutUint32(h.UnkHash)
	bw.PutUint16(h.Unknown1)
	bw.PutUint16(h.Unknown2)
	bw.PutUint32(h.RowStride)
	bw.PutUint32(h.Padding)
}

func (h *DataTableHeader) FromBytes(reader *bits.BitsReader) error {
	h.ColumnCount = reader.MustReadU32()
	h.RowCount = reader.MustReadU32()
	if err := h.ColumnHeaders.FromBytes(reader); err != nil {
		return err
	}
	if err := h.Rows.FromBytes(reader); err != nil {
		return err
	}
	h.UnkHash = reader.MustReadU32()
	h.Unknown1 = reader.MustReadU16()
	h.Unknown2 = reader.MustReadU16()
	h.RowStride = reader.MustReadU32()

	var err error
	h.Padding, err = reader.ReadU32()
	return err
}

type DataTableColumn struct {
	Name      PagePtr
	Type      DataTableColumnType
	RowOffset uint32
}

func (c *DataTableColumn) Encode(bw *bits.BitWriter) {
	c.Name.Encode(bw)
	bw.PutUint32(uint32(c.Type))
	bw.PutUint32(c.RowOffset)
}

func (c *DataTableColumn) FromBytes(reader *bits.BitsReader) error {
	if err := c.Name.FromBytes(reader); err != nil {
		return err
	}
	c.Type = DataTableColumnType(reader.MustReadU32())

	var err error
	c.RowOffset, err = reader.ReadU32()
	return err
}
