package schema

import (
	"github.com/dot5enko/repak/bits"
	"github.com/dot5enko/repak/dds"
)

const (
	TextureHeaderSize = 56

	TextureHeaderDebugNameOffset = 8
)

type TextureHeader struct {
	AssetGuid uint64
	DebugName PagePtr

	Width  uint16
	Height uint16

	Unknown1 uint16
	Format   uint16

	// total data size across all mips
	DataLength           uint32
	Unknown2             uint8
	OptStreamedMipLevels uint8

	ArraySize  uint8
	LayerCount uint8

	Unknown3           uint8
	PermanentMipLevels uint8
	StreamedMipLevels  uint8
	Unknown4           [21]uint8
}

func (h *TextureHeader) Encode(bw *bits.BitWriter) {
	bw.PutUint64(h.AssetGuid)
	h.DebugName.Encode(bw)

	bw.PutUint16(h.Width)
	bw.PutUint16(h.Height)
	bw.PutUint16(h.Unknown1)
	bw.PutUint16(h.Format)

	bw.PutUint32(h.DataLength)
	bw.PutUint8(h.Unknown2)
	bw.PutUint8(h.OptStreamedMipLevels)
	bw.PutUint8(h.ArraySize)
	bw.PutUint8(h.LayerCount)
	bw.PutUint8(h.Unknown3)
	bw.PutUint8(h.PermanentMipLevels)
	bw.PutUint8(h.StreamedMipLevels)
	bw.Write(h.Unknown4[:])
}

func (h *TextureHeader) FromBytes(reader *bits.BitsReader) error {
	h.AssetGuid = reader.MustReadU64()
	if err := h.DebugName.FromBytes(reader); err != nil {
		return err
	}

	h.Width = reader.MustReadU16()
	h.Height = reader.MustReadU16()
	h.Unknown1 = reader.MustReadU16()
	h.Format = reader.MustReadU16()

	h.DataLength = reader.MustReadU32()
	h.Unknown2 = reader.MustReadU8()
	h.OptStreamedMipLevels = reader.MustReadU8()
	h.ArraySize = reader.MustReadU8()
	h.LayerCount = reader.MustReadU8()
	h.Unknown3 = reader.MustReadU8()
	h.PermanentMipLevels = reader.MustReadU8()
	h.StreamedMipLevels = reader.MustReadU8()

	return reader.ReadBytes(len(h.Unknown4), h.Unknown4[:])
}

// TextureFormatCodes maps pixel formats to the numeric code stored in TextureHeader.Format.
var TextureFormatCodes = map[dds.DXGIFormat]uint16{
	dds.FormatBC1Unorm:               0,
	dds.FormatBC1UnormSrgb:           1,
	dds.FormatBC2Unorm:               2,
	dds.FormatBC2UnormSrgb:           3,
	dds.FormatBC3Unorm:               4,
	dds.FormatBC3UnormSrgb:           5,
	dds.FormatBC4Unorm:               6,
	dds.FormatBC4Snorm:               7,
	dds.FormatBC5Unorm:               8,
	dds.FormatBC5Snorm:               9,
	dds.FormatBC6HUF16:               10,
	dds.FormatBC6HSF16:               11,
	dds.FormatBC7Unorm:               12,
	dds.FormatBC7UnormSrgb:           13,
	dds.FormatR32G32B32A32Float:      14,
	dds.FormatR32G32B32A32Uint:       15,
	dds.FormatR32G32B32A32Sint:       16,
	dds.FormatR32G32B32Float:         17,
	dds.FormatR32G32B32Uint:          18,
	dds.FormatR32G32B32Sint:          19,
	dds.FormatR16G16B16A16Float:      20,
	dds.FormatR16G16B16A16Unorm:      21,
	dds.FormatR16G16B16A16Uint:       22,
	dds.FormatR16G16B16A16Snorm:      23,
	dds.FormatR16G16B16A16Sint:       24,
	dds.FormatR32G32Float:            25,
	dds.FormatR32G32Uint:             26,
	dds.FormatR32G32Sint:             27,
	dds.FormatR10G10B10A2Unorm:       28,
	dds.FormatR10G10B10A2Uint:        29,
	dds.FormatR11G11B10Float:         30,
	dds.FormatR8G8B8A8Unorm:          31,
	dds.FormatR8G8B8A8UnormSrgb:      32,
	dds.FormatR8G8B8A8Uint:           33,
	dds.FormatR8G8B8A8Snorm:          34,
	dds.FormatR8G8B8A8Sint:           35,
	dds.FormatR16G16Float:            36,
	dds.FormatR16G16Unorm:            37,
	dds.FormatR16G16Uint:             38,
	dds.FormatR16G16Snorm:            39,
	dds.FormatR16G16Sint:             40,
	dds.FormatR32Float:               41,
	dds.FormatR32Uint:                42,
	dds.FormatR32Sint:                43,
	dds.FormatR8G8Unorm:              44,
	dds.FormatR8G8Uint:               45,
	dds.FormatR8G8Snorm:              46,
	dds.FormatR8G8Sint:               47,
	dds.FormatR16Float:               48,
	dds.FormatR16Unorm:               49,
	dds.FormatR16Uint:                50,
	dds.FormatR16Snorm:               51,
	dds.FormatR16Sint:                52,
	dds.FormatR8Unorm:                53,
	dds.FormatR8Uint:                 54,
	dds.FormatR8Snorm:                55,
	dds.FormatR8Sint:                 56,
	dds.FormatA8Unorm:                57,
	dds.FormatR9G9B9E5SharedExp:      58,
	dds.FormatR10G10B10XRBiasA2Unorm: 59,
	dds.FormatD32Float:               60,
	dds.FormatD16Unorm:               61,
}
