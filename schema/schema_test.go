package schema

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dot5enko/repak/bits"
)

func newReader(data []byte) *bits.BitsReader {
	return bits.NewReader(bytes.NewReader(data), binary.LittleEndian)
}

func TestRecordsArePacked(t *testing.T) {
	cases := []struct {
		name   string
		record any
		size   uintptr
	}{
		{"page ptr", PagePtr{}, PagePtrSize},
		{"descriptor", Descriptor{}, DescriptorSize},
		{"relation", Relation{}, RelationSize},
		{"segment", VirtualSegment{}, VirtualSegmentSize},
		{"page", PageInfo{}, PageInfoSize},
		{"texture header", TextureHeader{}, TextureHeaderSize},
		{"datatable header", DataTableHeader{}, DataTableHeaderSize},
		{"datatable column", DataTableColumn{}, DataTableColumnSize},
		{"patch header", PatchHeader{}, PatchHeaderSize},
	}

	for _, c := range cases {
		report := GetPackingReport(c.record)
		assert.Equal(t, c.size, report.PackedSize, c.name)
		assert.True(t, report.IsPacked, "%s wastes %d bytes", c.name, report.WastedBytes)
	}
}

func TestEncodedRecordSizes(t *testing.T) {
	bw := bits.NewGrowingBuffer(256)

	encoders := []struct {
		name   string
		encode func()
		size   int
	}{
		{"segment", func() { (&VirtualSegment{}).Encode(&bw) }, VirtualSegmentSize},
		{"page", func() { (&PageInfo{}).Encode(&bw) }, PageInfoSize},
		{"descriptor", func() { (&Descriptor{}).Encode(&bw) }, DescriptorSize},
		{"relation", func() { (&Relation{}).Encode(&bw) }, RelationSize},
		{"texture header", func() { (&TextureHeader{}).Encode(&bw) }, TextureHeaderSize},
		{"datatable header", func() { (&DataTableHeader{}).Encode(&bw) }, DataTableHeaderSize},
		{"datatable column", func() { (&DataTableColumn{}).Encode(&bw) }, DataTableColumnSize},
		{"patch header", func() { (&PatchHeader{}).Encode(&bw) }, PatchHeaderSize},
	}

	for _, e := range encoders {
		bw.Reset()
		e.encode()
		assert.Equal(t, e.size, bw.Position(), e.name)
	}
}

func TestFileHeaderSizes(t *testing.T) {
	for _, profile := range []Profile{ProfileCurrent, ProfileLegacy} {
		bw := bits.NewGrowingBuffer(256)
		header := FileHeader{Profile: profile, SegmentCount: 3, PageCount: 3}

		n, err := header.Encode(&bw)
		require.NoError(t, err)
		assert.Equal(t, profile.HeaderSize(), n, profile.String())
	}
}

func TestFileHeaderRoundTrip(t *testing.T) {
	for _, profile := range []Profile{ProfileCurrent, ProfileLegacy} {
		header := FileHeader{
			Profile:          profile,
			Flags:            FlagLZ4Compressed,
			CreatedTime:      133000000000000000,
			CompressedSize:   4096,
			DecompressedSize: 8192,
			StarpakRefSize:   24,
			SegmentCount:     5,
			PageCount:        5,
			DescriptorCount:  7,
			AssetEntryCount:  2,
			RelationCount:    1,
		}
		if profile.HasGuidDescriptors() {
			header.GuidDescriptorCount = 3
			header.StarpakOptRefSize = 8
		}

		bw := bits.NewGrowingBuffer(256)
		_, err := header.Encode(&bw)
		require.NoError(t, err)

		assert.Equal(t, Magic, binary.LittleEndian.Uint32(bw.Bytes()))
		assert.Equal(t, uint16(profile), binary.LittleEndian.Uint16(bw.Bytes()[4:]))

		decoded := FileHeader{}
		require.NoError(t, decoded.FromBytes(newReader(bw.Bytes())))
		assert.Equal(t, header, decoded, profile.String())
	}
}

func TestLegacyHeaderRejectsCurrentOnlyFields(t *testing.T) {
	bw := bits.NewGrowingBuffer(256)

	header := FileHeader{Profile: ProfileLegacy, GuidDescriptorCount: 1}
	_, err := header.Encode(&bw)
	assert.Error(t, err)

	header = FileHeader{Profile: ProfileLegacy, StarpakOptRefSize: 4}
	_, err = header.Encode(&bw)
	assert.Error(t, err)
}

func TestFileHeaderRejectsBadMagicAndVersion(t *testing.T) {
	data := make([]byte, FileHeaderV8Size)
	assert.Error(t, (&FileHeader{}).FromBytes(newReader(data)))

	binary.LittleEndian.PutUint32(data, Magic)
	binary.LittleEndian.PutUint16(data[4:], 6)
	assert.Error(t, (&FileHeader{}).FromBytes(newReader(data)))
}

func TestAssetEntryRoundTrip(t *testing.T) {
	entry := AssetEntry{
		GUID:             0xdeadbeefcafe,
		HeaderPage:       1,
		HeaderOffset:     0,
		DataPage:         3,
		DataOffset:       16,
		StarpakOffset:    0x1000,
		OptStarpakOffset: NoStarpakOffset,
		PageEnd:          5,
		Unknown2:         1,
		RelationsStart:   2,
		UsesStart:        4,
		RelationsCount:   1,
		UsesCount:        2,
		HeaderSize:       TextureHeaderSize,
		Version:          TextureAssetVersion,
		Type:             TextureAssetType,
	}

	for _, profile := range []Profile{ProfileCurrent, ProfileLegacy} {
		bw := bits.NewGrowingBuffer(128)
		n, err := entry.Encode(&bw, profile)
		require.NoError(t, err)
		assert.Equal(t, profile.AssetEntrySize(), n)

		decoded := AssetEntry{}
		require.NoError(t, decoded.FromBytes(newReader(bw.Bytes()), profile))
		assert.Equal(t, entry, decoded)
	}
}

func TestLegacyAssetEntryRejectsOptionalStarpak(t *testing.T) {
	bw := bits.NewGrowingBuffer(128)
	entry := AssetEntry{OptStarpakOffset: 0x2000}

	_, err := entry.Encode(&bw, ProfileLegacy)
	assert.Error(t, err)
}

func TestParseProfile(t *testing.T) {
	p, err := ParseProfile(7)
	require.NoError(t, err)
	assert.Equal(t, ProfileLegacy, p)
	assert.Equal(t, FileHeaderV7Size, p.HeaderSize())
	assert.False(t, p.HasGuidDescriptors())

	p, err = ParseProfile(8)
	require.NoError(t, err)
	assert.Equal(t, ProfileCurrent, p)
	assert.Equal(t, AssetEntryV8Size, p.AssetEntrySize())

	_, err = ParseProfile(9)
	assert.Error(t, err)
}

func TestParseColumnType(t *testing.T) {
	assert.Equal(t, BoolColumnType, ParseColumnType("BOOL"))
	assert.Equal(t, VectorColumnType, ParseColumnType(" Vector "))
	assert.Equal(t, AssetNoPrecacheColumnType, ParseColumnType("assetNoPrecache"))
	assert.Equal(t, StringColumnType, ParseColumnType("color"))

	assert.Equal(t, uint32(4), IntColumnType.Size())
	assert.Equal(t, uint32(12), VectorColumnType.Size())
	assert.Equal(t, uint32(PagePtrSize), AssetColumnType.Size())

	assert.True(t, AssetColumnType.IsPooled())
	assert.False(t, FloatColumnType.IsPooled())
	assert.Equal(t, "float", FloatColumnType.String())
}

func TestAssetTypeTags(t *testing.T) {
	for _, tag := range []string{"txtr", "dtbl", "Ptch", "matl", "uimg", "mdl_"} {
		typ, ok := ParseAssetType(tag)
		require.True(t, ok, tag)

		raw := make([]byte, 4)
		binary.LittleEndian.PutUint32(raw, uint32(typ))
		assert.Equal(t, tag, string(raw))
	}

	_, ok := ParseAssetType("ptch")
	assert.False(t, ok)
}
