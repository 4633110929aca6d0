package dds

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/dot5enko/repak/bits"
)

// Magic is "DDS " read as a little-endian u32.
const Magic uint32 = 0x20534444

const (
	HeaderSize      = 124
	DX10HeaderSize  = 20
	pixelFormatSize = 32
)

var (
	ErrInvalidMagic      = errors.New("not a DDS file (invalid magic)")
	ErrUnsupportedFourCC = errors.New("unsupported DDS pixel format")
)

type PixelFormat struct {
	Size        uint32
	Flags       uint32
	FourCC      uint32
	RGBBitCount uint32
	RBitMask    uint32
	GBitMask    uint32
	BBitMask    uint32
	ABitMask    uint32
}

type DX10Header struct {
	Format            DXGIFormat
	ResourceDimension uint32
	MiscFlag          uint32
	ArraySize         uint32
	MiscFlags2        uint32
}

// Header is the part of a DDS file the texture encoder needs.
type Header struct {
	Size              uint32
	Flags             uint32
	Height            uint32
	Width             uint32
	PitchOrLinearSize uint32
	Depth             uint32
	MipMapCount       uint32
	PixelFormat       PixelFormat
	Caps              [4]uint32

	DX10 *DX10Header
}

// Format resolves the DXGI format from either the FourCC or the DX10 extension.
func (h *Header) Format() (DXGIFormat, error) {
	if h.PixelFormat.FourCC == FourCCDX10 {
		if h.DX10 == nil {
			return FormatUnknown, fmt.Errorf("%w: DX10 without extension header", ErrUnsupportedFourCC)
		}
		return h.DX10.Format, nil
	}

	format, found := fourCCFormats[h.PixelFormat.FourCC]
	if !found {
		return FormatUnknown, fmt.Errorf("%w: %q", ErrUnsupportedFourCC, FourCCString(h.PixelFormat.FourCC))
	}
	return format, nil
}

// EncodedSize is the number of bytes ReadHeader consumed, magic included.
func (h *Header) EncodedSize() int {
	size := 4 + HeaderSize
	if h.DX10 != nil {
		size += DX10HeaderSize
	}
	return size
}

// ReadHeader consumes the magic, the main header and, when present, the DX10
// header. On return input is positioned at the first byte of pixel data.
func ReadHeader(input io.Reader) (*Header, error) {

	reader := bits.NewReader(input, binary.LittleEndian)

	magic, err := reader.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("unable to read dds magic: %w", err)
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}

	header := &Header{}

	fields := []*uint32{
		&header.Size, &header.Flags, &header.Height, &header.Width,
		&header.PitchOrLinearSize, &header.Depth, &header.MipMapCount,
	}
	for _, f := range fields {
		if *f, err = reader.ReadU32(); err != nil {
			return nil, fmt.Errorf("unable to read dds header: %w", err)
		}
	}

	if header.Size != HeaderSize {
		return nil, fmt.Errorf("unexpected dds header size %d", header.Size)
	}

	// reserved1[11]
	if err = reader.Skip(11 * 4); err != nil {
		return nil, fmt.Errorf("unable to read dds header: %w", err)
	}

	pf := &header.PixelFormat
	for _, f := range []*uint32{&pf.Size, &pf.Flags, &pf.FourCC, &pf.RGBBitCount, &pf.RBitMask, &pf.GBitMask, &pf.BBitMask, &pf.ABitMask} {
		if *f, err = reader.ReadU32(); err != nil {
			return nil, fmt.Errorf("unable to read dds pixel format: %w", err)
		}
	}

	for i := range header.Caps {
		if header.Caps[i], err = reader.ReadU32(); err != nil {
			return nil, fmt.Errorf("unable to read dds caps: %w", err)
		}
	}

	// reserved2
	if err = reader.Skip(4); err != nil {
		return nil, fmt.Errorf("unable to read dds header: %w", err)
	}

	if pf.FourCC == FourCCDX10 {
		ext := &DX10Header{}
		format, extErr := reader.ReadU32()
		if extErr != nil {
			return nil, fmt.Errorf("unable to read dx10 header: %w", extErr)
		}
		ext.Format = DXGIFormat(format)
		for _, f := range []*uint32{&ext.ResourceDimension, &ext.MiscFlag, &ext.ArraySize, &ext.MiscFlags2} {
			if *f, err = reader.ReadU32(); err != nil {
				return nil, fmt.Errorf("unable to read dx10 header: %w", err)
			}
		}
		header.DX10 = ext
	}

	return header, nil
}

// WriteHeader emits a minimal DDS header, used by tooling and tests that need source images.
func WriteHeader(bw *bits.BitWriter, width, height, linearSize uint32, fourCC uint32, dx10Format DXGIFormat) {
	bw.PutUint32(Magic)
	bw.PutUint32(HeaderSize)
	bw.PutUint32(0x1 | 0x2 | 0x4 | 0x1000 | 0x80000)
	bw.PutUint32(height)
	bw.PutUint32(width)
	bw.PutUint32(linearSize)
	bw.PutUint32(0)
	bw.PutUint32(1)
	bw.EmptyBytes(11 * 4)

	bw.PutUint32(pixelFormatSize)
	bw.PutUint32(0x4)
	bw.PutUint32(fourCC)
	bw.EmptyBytes(5 * 4)

	bw.PutUint32(0x1000)
	bw.EmptyBytes(3 * 4)
	bw.EmptyBytes(4)

	if fourCC == FourCCDX10 {
		bw.PutUint32(uint32(dx10Format))
		bw.PutUint32(3)
		bw.PutUint32(0)
		bw.PutUint32(1)
		bw.PutUint32(0)
	}
}
