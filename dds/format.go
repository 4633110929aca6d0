package dds

// DXGIFormat is the numeric DXGI_FORMAT value.
type DXGIFormat uint32

const (
	FormatUnknown                DXGIFormat = 0
	FormatR32G32B32A32Float      DXGIFormat = 2
	FormatR32G32B32A32Uint       DXGIFormat = 3
	FormatR32G32B32A32Sint       DXGIFormat = 4
	FormatR32G32B32Float         DXGIFormat = 6
	FormatR32G32B32Uint          DXGIFormat = 7
	FormatR32G32B32Sint          DXGIFormat = 8
	FormatR16G16B16A16Float      DXGIFormat = 10
	FormatR16G16B16A16Unorm      DXGIFormat = 11
	FormatR16G16B16A16Uint       DXGIFormat = 12
	FormatR16G16B16A16Snorm      DXGIFormat = 13
	FormatR16G16B16A16Sint       DXGIFormat = 14
	FormatR32G32Float            DXGIFormat = 16
	FormatR32G32Uint             DXGIFormat = 17
	FormatR32G32Sint             DXGIFormat = 18
	FormatR10G10B10A2Unorm       DXGIFormat = 24
	FormatR10G10B10A2Uint        DXGIFormat = 25
	FormatR11G11B10Float         DXGIFormat = 26
	FormatR8G8B8A8Unorm          DXGIFormat = 28
	FormatR8G8B8A8UnormSrgb      DXGIFormat = 29
	FormatR8G8B8A8Uint           DXGIFormat = 30
	FormatR8G8B8A8Snorm          DXGIFormat = 31
	FormatR8G8B8A8Sint           DXGIFormat = 32
	FormatR16G16Float            DXGIFormat = 34
	FormatR16G16Unorm            DXGIFormat = 35
	FormatR16G16Uint             DXGIFormat = 36
	FormatR16G16Snorm            DXGIFormat = 37
	FormatR16G16Sint             DXGIFormat = 38
	FormatD32Float               DXGIFormat = 40
	FormatR32Float               DXGIFormat = 41
	FormatR32Uint                DXGIFormat = 42
	FormatR32Sint                DXGIFormat = 43
	FormatR8G8Unorm              DXGIFormat = 49
	FormatR8G8Uint               DXGIFormat = 50
	FormatR8G8Snorm              DXGIFormat = 51
	FormatR8G8Sint               DXGIFormat = 52
	FormatR16Float               DXGIFormat = 54
	FormatD16Unorm               DXGIFormat = 55
	FormatR16Unorm               DXGIFormat = 56
	FormatR16Uint                DXGIFormat = 57
	FormatR16Snorm               DXGIFormat = 58
	FormatR16Sint                DXGIFormat = 59
	FormatR8Unorm                DXGIFormat = 61
	FormatR8Uint                 DXGIFormat = 62
	FormatR8Snorm                DXGIFormat = 63
	FormatR8Sint                 DXGIFormat = 64
	FormatA8Unorm                DXGIFormat = 65
	FormatR9G9B9E5SharedExp      DXGIFormat = 67
	FormatBC1Unorm               DXGIFormat = 71
	FormatBC1UnormSrgb           DXGIFormat = 72
	FormatBC2Unorm               DXGIFormat = 74
	FormatBC2UnormSrgb           DXGIFormat = 75
	FormatBC3Unorm               DXGIFormat = 77
	FormatBC3UnormSrgb           DXGIFormat = 78
	FormatBC4Unorm               DXGIFormat = 80
	FormatBC4Snorm               DXGIFormat = 81
	FormatBC5Unorm               DXGIFormat = 83
	FormatBC5Snorm               DXGIFormat = 84
	FormatR10G10B10XRBiasA2Unorm DXGIFormat = 89
	FormatBC6HUF16               DXGIFormat = 95
	FormatBC6HSF16               DXGIFormat = 96
	FormatBC7Unorm               DXGIFormat = 98
	FormatBC7UnormSrgb           DXGIFormat = 99
)

// FourCC codes as read little-endian from the pixel format block.
const (
	FourCCDXT1 uint32 = 0x31545844 // "DXT1"
	FourCCBC4U uint32 = 0x55344342 // "BC4U"
	FourCCBC5U uint32 = 0x55354342 // "BC5U"
	FourCCDX10 uint32 = 0x30315844 // "DX10"
)

// legacy FourCC -> format. DX10 is resolved from the extension header instead.
var fourCCFormats = map[uint32]DXGIFormat{
	FourCCDXT1: FormatBC1UnormSrgb,
	FourCCBC4U: FormatBC4Unorm,
	FourCCBC5U: FormatBC5Unorm,
}

func FourCCString(code uint32) string {
	return string([]byte{byte(code), byte(code >> 8), byte(code >> 16), byte(code >> 24)})
}
