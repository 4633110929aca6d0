package schema

import (
	"fmt"

	"github.com/dot5enko/repak/bits"
)

const (
	FileHeaderV8Size = 128
	FileHeaderV7Size = 88

	fileHeaderV8Reserved = 0x1c
)

const (
	// FlagLZ4Compressed marks a container whose bytes after the header went through the lz4 stage.
	FlagLZ4Compressed uint16 = 0x0200
)

// FileHeader is the profile independent model of the container header.
// Only Encode and FromBytes look at Profile.
type FileHeader struct {
	Profile Profile
	Flags   uint16

	// Windows FILETIME: 100ns ticks since 1601-01-01 UTC
	CreatedTime uint64

	CompressedSize   uint64
	DecompressedSize uint64

	EmbeddedStarpakOffset uint64
	EmbeddedStarpakSize   uint64

	StarpakRefSize    uint16
	StarpakOptRefSize uint16

	SegmentCount uint16
	PageCount    uint16
	PatchIndex   uint16

	DescriptorCount     uint32
	AssetEntryCount     uint32
	GuidDescriptorCount uint32
	RelationCount       uint32
}

func (header *FileHeader) Encode(bw *bits.BitWriter) (int, error) {

	start := bw.Position()

	bw.PutUint32(Magic)
	bw.PutUint16(uint16(header.Profile))
	bw.PutUint16(header.Flags)
	bw.PutUint64(header.CreatedTime)
	bw.PutUint64(0)

	switch header.Profile {
	case ProfileCurrent:
		bw.PutUint64(header.CompressedSize)
		bw.PutUint64(header.EmbeddedStarpakOffset)
		bw.PutUint64(0)
		bw.PutUint64(header.DecompressedSize)
		bw.PutUint64(header.EmbeddedStarpakSize)
		bw.PutUint64(0)

		bw.PutUint16(header.StarpakRefSize)
		bw.PutUint16(header.StarpakOptRefSize)
		bw.PutUint16(header.SegmentCount)
		bw.PutUint16(header.PageCount)
		bw.PutUint32(uint32(header.PatchIndex))

		bw.PutUint32(header.DescriptorCount)
		bw.PutUint32(header.AssetEntryCount)
		bw.PutUint32(header.GuidDescriptorCount)
		bw.PutUint32(header.RelationCount)

		bw.EmptyBytes(fileHeaderV8Reserved)

	case ProfileLegacy:
		if header.StarpakOptRefSize != 0 || header.GuidDescriptorCount != 0 || header.EmbeddedStarpakSize != 0 {
			return 0, fmt.Errorf("%s header has no room for optional starpak, embedded starpak or guid descriptors", header.Profile)
		}

		bw.PutUint64(header.CompressedSize)
		bw.PutUint64(0)
		bw.PutUint64(header.DecompressedSize)
		bw.PutUint64(0)

		bw.PutUint16(header.StarpakRefSize)
		bw.PutUint16(header.SegmentCount)
		bw.PutUint16(header.PageCount)
		bw.PutUint16(header.PatchIndex)

		bw.PutUint32(header.DescriptorCount)
		bw.PutUint32(header.AssetEntryCount)
		// guid descriptor slot, unused by this layout
		bw.PutUint32(0)
		bw.PutUint32(header.RelationCount)
		bw.PutUint32(0)
		bw.PutUint32(0)

	default:
		return 0, fmt.Errorf("unable to encode header for %s", header.Profile)
	}

	return bw.Position() - start, nil
}

func (header *FileHeader) FromBytes(reader *bits.BitsReader) (topErr error) {

	magic, topErr := reader.ReadU32()
	if topErr != nil {
		return fmt.Errorf("unable to decode header magic: %s", topErr.Error())
	}
	if magic != Magic {
		return fmt.Errorf("invalid magic 0x%08x", magic)
	}

	version := reader.MustReadU16()
	header.Profile, topErr = ParseProfile(int(version))
	if topErr != nil {
		return topErr
	}

	header.Flags = reader.MustReadU16()
	header.CreatedTime = reader.MustReadU64()
	reader.MustReadU64()

	switch header.Profile {
	case ProfileCurrent:
		header.CompressedSize = reader.MustReadU64()
		header.EmbeddedStarpakOffset = reader.MustReadU64()
		reader.MustReadU64()
		header.DecompressedSize = reader.MustReadU64()
		header.EmbeddedStarpakSize = reader.MustReadU64()
		reader.MustReadU64()

		header.StarpakRefSize = reader.MustReadU16()
		header.StarpakOptRefSize = reader.MustReadU16()
		header.SegmentCount = reader.MustReadU16()
		header.PageCount = reader.MustReadU16()
		header.PatchIndex = uint16(reader.MustReadU32())

		header.DescriptorCount = reader.MustReadU32()
		header.AssetEntryCount = reader.MustReadU32()
		header.GuidDescriptorCount = reader.MustReadU32()
		header.RelationCount = reader.MustReadU32()

		return reader.Skip(fileHeaderV8Reserved)

	default:
		header.CompressedSize = reader.MustReadU64()
		reader.MustReadU64()
		header.DecompressedSize = reader.MustReadU64()
		reader.MustReadU64()

		header.StarpakRefSize = reader.MustReadU16()
		header.SegmentCount = reader.MustReadU16()
		header.PageCount = reader.MustReadU16()
		header.PatchIndex = reader.MustReadU16()

		header.DescriptorCount = reader.MustReadU32()
		header.AssetEntryCount = reader.MustReadU32()
		reader.MustReadU32()
		header.RelationCount = reader.MustReadU32()
		reader.MustReadU32()
		reader.MustReadU32()
	}

	return nil
}
