package reader_test

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dot5enko/repak/builder"
	"github.com/dot5enko/repak/errdefs"
	"github.com/dot5enko/repak/reader"
	"github.com/dot5enko/repak/schema"
)

const testGUID = 0x1122334455667788

// container with one asset: a header page pointing at a string in a data page
func sample(t *testing.T, opts ...builder.Option) []byte {
	b := builder.New(append([]builder.Option{builder.WithTimestamp(time.Unix(1700000000, 0))}, opts...)...)

	b.BeginAsset()

	header := b.CreateSegment(16, schema.SegmentTypeHeader, 8, 0)
	data := b.CreateSegment(6, schema.SegmentTypeCpu, 8, 0)

	headerPage := make([]byte, header.Size)
	binary.LittleEndian.PutUint32(headerPage[0:], data.Index)
	binary.LittleEndian.PutUint32(headerPage[4:], 0)
	require.NoError(t, b.AddRawDataBlock(header.Index, header.Size, headerPage))

	dataPage := make([]byte, data.Size)
	copy(dataPage, "hello")
	require.NoError(t, b.AddRawDataBlock(data.Index, data.Size, dataPage))

	b.RegisterDescriptor(header.Index, 0)

	_, err := b.AddAssetEntry(schema.AssetEntry{
		GUID:             testGUID,
		HeaderPage:       header.Index,
		DataPage:         data.Index,
		StarpakOffset:    schema.NoStarpakOffset,
		OptStarpakOffset: schema.NoStarpakOffset,
		Unknown2:         1,
		HeaderSize:       uint32(header.Size),
		Version:          1,
		Type:             schema.DataTableAssetType,
	})
	require.NoError(t, err)

	buf := bytes.Buffer{}
	_, err = b.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParse(t *testing.T) {
	c, err := reader.Parse(sample(t))
	require.NoError(t, err)

	assert.Equal(t, schema.ProfileCurrent, c.Header.Profile)
	require.Len(t, c.Pages, 2)
	require.Len(t, c.Descriptors, 1)

	ptr, err := c.ReadPagePtr(c.Descriptors[0].PageIndex, c.Descriptors[0].PageOffset)
	require.NoError(t, err)
	str, err := c.CString(ptr)
	require.NoError(t, err)
	assert.Equal(t, "hello", str)

	idx, found := c.FindAsset(testGUID)
	assert.True(t, found)
	assert.Equal(t, 0, idx)

	_, found = c.FindAsset(1)
	assert.False(t, found)
}

func TestParseCompressedLegacy(t *testing.T) {
	c, err := reader.Parse(sample(t, builder.WithProfile(schema.ProfileLegacy), builder.WithCompression(true)))
	require.NoError(t, err)

	assert.Equal(t, schema.ProfileLegacy, c.Header.Profile)
	assert.Equal(t, "hello", string(c.PageData[1][:5]))
}

func TestPointerBounds(t *testing.T) {
	c, err := reader.Parse(sample(t))
	require.NoError(t, err)

	_, err = c.ReadPagePtr(5, 0)
	assert.Error(t, err)
	_, err = c.ReadPagePtr(0, 12)
	assert.Error(t, err)

	_, err = c.CString(schema.PagePtr{Index: 1, Offset: 100})
	assert.Error(t, err)
}

func TestParseRejectsDamagedInput(t *testing.T) {
	valid := sample(t)

	truncated := valid[:len(valid)-3]

	garbage := bytes.Repeat([]byte{0xAB}, len(valid))

	badSegment := bytes.Clone(valid)
	c, err := reader.Parse(valid)
	require.NoError(t, err)
	// first page record follows the header, the path blocks and the segment table
	pageOffset := schema.ProfileCurrent.HeaderSize() + len(c.Segments)*schema.VirtualSegmentSize
	binary.LittleEndian.PutUint32(badSegment[pageOffset:], 7)

	cases := map[string][]byte{
		"empty":       nil,
		"truncated":   truncated,
		"garbage":     garbage,
		"bad segment": badSegment,
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := reader.Parse(data)
			require.Error(t, err)
			assert.True(t, errdefs.IsValidation(err), "%v", err)
			assert.Equal(t, 2, errdefs.Code(err))
		})
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.rpak")
	require.NoError(t, os.WriteFile(path, sample(t), 0o644))

	c, err := reader.Open(path)
	require.NoError(t, err)
	assert.Len(t, c.Assets, 1)

	_, err = reader.Open(filepath.Join(t.TempDir(), "missing.rpak"))
	assert.True(t, errdefs.IsIO(err))
}
