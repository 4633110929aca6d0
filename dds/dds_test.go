package dds

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dot5enko/repak/bits"
)

func image(fourCC uint32, dx10 DXGIFormat, payload []byte) []byte {
	bw := bits.NewGrowingBuffer(256)
	WriteHeader(&bw, 256, 128, uint32(len(payload)), fourCC, dx10)
	bw.Write(payload)
	return bw.Bytes()
}

func TestReadHeaderLegacyFourCC(t *testing.T) {
	payload := bytes.Repeat([]byte{0x5A}, 32)
	input := bytes.NewReader(image(FourCCBC5U, FormatUnknown, payload))

	h, err := ReadHeader(input)
	require.NoError(t, err)

	assert.Equal(t, uint32(256), h.Width)
	assert.Equal(t, uint32(128), h.Height)
	assert.Equal(t, uint32(32), h.PitchOrLinearSize)
	assert.Nil(t, h.DX10)

	format, err := h.Format()
	require.NoError(t, err)
	assert.Equal(t, FormatBC5Unorm, format)

	// positioned at the pixel data
	rest, err := io.ReadAll(input)
	require.NoError(t, err)
	assert.Equal(t, payload, rest)
}

func TestReadHeaderDX10(t *testing.T) {
	payload := []byte{1, 2, 3, 4}
	input := bytes.NewReader(image(FourCCDX10, FormatBC7UnormSrgb, payload))

	h, err := ReadHeader(input)
	require.NoError(t, err)
	require.NotNil(t, h.DX10)

	format, err := h.Format()
	require.NoError(t, err)
	assert.Equal(t, FormatBC7UnormSrgb, format)

	rest, err := io.ReadAll(input)
	require.NoError(t, err)
	assert.Equal(t, payload, rest)
}

func TestDXT1MapsToSrgb(t *testing.T) {
	h, err := ReadHeader(bytes.NewReader(image(FourCCDXT1, FormatUnknown, nil)))
	require.NoError(t, err)

	format, err := h.Format()
	require.NoError(t, err)
	assert.Equal(t, FormatBC1UnormSrgb, format)
	assert.Equal(t, 128, h.EncodedSize())
}

func TestEncodedSizeWithExtension(t *testing.T) {
	h, err := ReadHeader(bytes.NewReader(image(FourCCDX10, FormatBC7Unorm, nil)))
	require.NoError(t, err)
	assert.Equal(t, 148, h.EncodedSize())
}

func TestReadHeaderInvalidMagic(t *testing.T) {
	data := image(FourCCDXT1, FormatUnknown, nil)
	copy(data, "PNG!")

	_, err := ReadHeader(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestUnsupportedFourCC(t *testing.T) {
	h, err := ReadHeader(bytes.NewReader(image(0x35545844, FormatUnknown, nil)))
	require.NoError(t, err)

	_, err = h.Format()
	assert.ErrorIs(t, err, ErrUnsupportedFourCC)
	assert.Contains(t, err.Error(), "DXT5")
}

func TestTruncatedHeader(t *testing.T) {
	data := image(FourCCDXT1, FormatUnknown, nil)

	_, err := ReadHeader(bytes.NewReader(data[:60]))
	assert.Error(t, err)
}

func TestFourCCString(t *testing.T) {
	assert.Equal(t, "DX10", FourCCString(FourCCDX10))
	assert.Equal(t, "BC4U", FourCCString(FourCCBC4U))
}
