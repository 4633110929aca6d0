package assets

import (
	"encoding/binary"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/dot5enko/repak/bits"
	"github.com/dot5enko/repak/builder"
	"github.com/dot5enko/repak/errdefs"
	"github.com/dot5enko/repak/guid"
	rio "github.com/dot5enko/repak/io"
	"github.com/dot5enko/repak/manifest"
	"github.com/dot5enko/repak/schema"
)

const (
	DataTableExtension = ".csv"

	dataTableAlignment     = 8
	dataTableBaseAlignment = 64
)

var vectorCellPattern = regexp.MustCompile(`<([^,]*),([^,]*),([^,]*)>`)

type dataTableColumn struct {
	name       string
	typ        schema.DataTableColumnType
	rowOffset  uint32
	nameOffset uint32
}

// pooledCell is a string or asset cell, stored in the string page behind a pointer.
type pooledCell struct {
	row    int
	column int
	value  string
}

type DataTable struct {
	name string
	guid uint64

	columns   []dataTableColumn
	rowCount  int
	rowStride uint32

	// fixed width cells, pooled cells are left zeroed until Encode knows the page indices
	rowData []byte
	pooled  []pooledCell

	nameBytes   int
	stringBytes int
}

// LoadDataTable reads <assetsDir>/<path>.csv. The first line names the
// columns, the last line holds their types, every line in between is a row.
func LoadDataTable(env *Env, asset manifest.Asset) (Source, error) {

	path := filepath.Join(env.AssetsDir, asset.Path+DataTableExtension)

	fr := rio.NewFileReader(path)
	if !fr.Exists() {
		return nil, errdefs.WrapIO(os.ErrNotExist, "datatable source %s", path)
	}

	if err := fr.Open(); err != nil {
		return nil, errdefs.WrapIO(err, "unable to open datatable source %s", path)
	}
	defer fr.Close()

	records, err := csv.NewReader(fr.Reader()).ReadAll()
	if err != nil {
		return nil, errdefs.WrapValidation(err, "unable to parse datatable %s", asset.Path)
	}

	return parseDataTable(asset.Path, records)
}

func parseDataTable(name string, records [][]string) (*DataTable, error) {

	if len(records) == 0 || len(records[0]) == 0 {
		return nil, errdefs.Schemaf("datatable %s has no columns", name)
	}

	// rows below the column names, the type row included
	if len(records)-1 < 2 {
		return nil, errdefs.Schemaf("datatable %s has %d rows, it needs at least one row of data and a trailing row of column types", name, len(records)-1)
	}

	names := records[0]
	types := records[len(records)-1]

	dt := &DataTable{
		name:     name,
		guid:     guid.FromAssetPath(name),
		columns:  make([]dataTableColumn, len(names)),
		rowCount: len(records) - 2,
	}

	for idx, colName := range names {
		col := dataTableColumn{
			name:       colName,
			typ:        schema.ParseColumnType(types[idx]),
			rowOffset:  dt.rowStride,
			nameOffset: uint32(dt.nameBytes),
		}
		dt.columns[idx] = col

		dt.rowStride += col.typ.Size()
		dt.nameBytes += len(colName) + 1
	}

	dt.rowData = make([]byte, int(dt.rowStride)*dt.rowCount)

	for rowIdx, row := range records[1 : len(records)-1] {
		for colIdx, col := range dt.columns {

			cell := row[colIdx]
			at := int(dt.rowStride)*rowIdx + int(col.rowOffset)
			bw := bits.NewEncodeBuffer(dt.rowData[at:at+int(col.typ.Size())], binary.LittleEndian)

			if col.typ.IsPooled() {
				dt.pooled = append(dt.pooled, pooledCell{row: rowIdx, column: colIdx, value: cell})
				dt.stringBytes += len(cell) + 1
				continue
			}

			if err := encodeCell(&bw, col.typ, cell); err != nil {
				return nil, errdefs.WrapValidation(err, "datatable %s row %d column %q", name, rowIdx, col.name)
			}
		}
	}

	return dt, nil
}

func encodeCell(bw *bits.BitWriter, typ schema.DataTableColumnType, cell string) error {
	switch typ {
	case schema.BoolColumnType:
		if strings.EqualFold(strings.TrimSpace(cell), "true") {
			bw.PutUint32(1)
		} else {
			bw.PutUint32(0)
		}

	case schema.IntColumnType:
		v, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 64)
		if err != nil {
			return err
		}
		if v < math.MinInt32 || v > math.MaxUint32 {
			return strconv.ErrRange
		}
		bw.PutUint32(uint32(v))

	case schema.FloatColumnType:
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 32)
		if err != nil {
			return err
		}
		bw.PutFloat32(float32(v))

	case schema.VectorColumnType:
		m := vectorCellPattern.FindStringSubmatch(cell)
		if m == nil {
			// not a vector literal, the cell stays zeroed
			return nil
		}
		for _, component := range m[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(component), 32)
			if err != nil {
				return err
			}
			bw.PutFloat32(float32(v))
		}
	}

	return nil
}

func (dt *DataTable) Name() string {
	return dt.name
}

func (dt *DataTable) Type() schema.AssetType {
	return schema.DataTableAssetType
}

// Encode lays the table out over five pages: header, column records,
// column names, rows and the string pool.
func (dt *DataTable) Encode(b *builder.Builder, env *Env) (schema.AssetEntry, error) {

	headerSeg := b.CreateSegment(schema.DataTableHeaderSize, schema.SegmentTypeHeader, dataTableAlignment, 0)
	columnSeg := b.CreateSegment(uint64(schema.DataTableColumnSize*len(dt.columns)), schema.SegmentTypeCpu, dataTableAlignment, dataTableBaseAlignment)
	nameSeg := b.CreateSegment(uint64(dt.nameBytes), schema.SegmentTypeCpu, dataTableAlignment, dataTableBaseAlignment)

	header := schema.DataTableHeader{
		ColumnCount:   uint32(len(dt.columns)),
		RowCount:      uint32(dt.rowCount),
		ColumnHeaders: schema.PagePtr{Index: columnSeg.Index},
		RowStride:     dt.rowStride,
	}
	b.RegisterDescriptor(headerSeg.Index, schema.DataTableHeaderColumnsOffset)

	columnPage := newPage(columnSeg)
	namePage := newPage(nameSeg)
	columns := bits.NewEncodeBuffer(columnPage, binary.LittleEndian)

	for idx, col := range dt.columns {
		copy(namePage[col.nameOffset:], col.name)

		record := schema.DataTableColumn{
			Name:      schema.PagePtr{Index: nameSeg.Index, Offset: col.nameOffset},
			Type:      col.typ,
			RowOffset: col.rowOffset,
		}
		record.Encode(&columns)

		b.RegisterDescriptor(columnSeg.Index, uint32(schema.DataTableColumnSize*idx+schema.DataTableColumnNameOffset))
	}

	rowSeg := b.CreateSegment(uint64(len(dt.rowData)), schema.SegmentTypeCpu, dataTableAlignment, dataTableBaseAlignment)
	stringSeg := b.CreateSegment(uint64(dt.stringBytes), schema.SegmentTypeCpu, dataTableAlignment, dataTableBaseAlignment)

	rowPage := newPage(rowSeg)
	copy(rowPage, dt.rowData)
	stringPage := newPage(stringSeg)

	// string pool cursor, scoped to this table
	var cursor uint32

	for _, cell := range dt.pooled {
		at := dt.rowStride*uint32(cell.row) + dt.columns[cell.column].rowOffset

		ptr := schema.PagePtr{Index: stringSeg.Index, Offset: cursor}
		bw := bits.NewEncodeBuffer(rowPage[at:at+schema.PagePtrSize], binary.LittleEndian)
		ptr.Encode(&bw)

		b.RegisterDescriptor(rowSeg.Index, at)

		copy(stringPage[cursor:], cell.value)
		cursor += uint32(len(cell.value)) + 1
	}

	header.Rows = schema.PagePtr{Index: rowSeg.Index}
	b.RegisterDescriptor(headerSeg.Index, schema.DataTableHeaderRowsOffset)

	headerPage := newPage(headerSeg)
	hw := bits.NewEncodeBuffer(headerPage, binary.LittleEndian)
	header.Encode(&hw)

	blocks := []struct {
		seg  builder.SegmentInfo
		data []byte
	}{
		{headerSeg, headerPage},
		{columnSeg, columnPage},
		{nameSeg, namePage},
		{rowSeg, rowPage},
		{stringSeg, stringPage},
	}
	for _, block := range blocks {
		if err := b.AddRawDataBlock(block.seg.Index, block.seg.Size, block.data); err != nil {
			return schema.AssetEntry{}, err
		}
	}

	entry := newEntry(dt.guid, schema.DataTableAssetType, schema.DataTableAssetVersion, headerSeg, schema.DataTableHeaderSize)
	entry.DataPage = rowSeg.Index

	env.logger().WithField("asset", dt.name).Debugf("dtbl %d columns, %d rows, stride %d", len(dt.columns), dt.rowCount, dt.rowStride)

	return entry, nil
}
