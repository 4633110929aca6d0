package schema

import (
	"fmt"
	"math"

	"github.com/dot5enko/repak/bits"
)

const (
	AssetEntryV8Size = 80
	AssetEntryV7Size = 72
)

// NoStarpakOffset is stored when an asset has nothing in a streaming file.
const NoStarpakOffset uint64 = math.MaxUint64

// AssetEntry locates one asset's header and data pages and carries its
// dependency bookkeeping.
type AssetEntry struct {
	// hash of the asset path, see guid.FromAssetPath
	GUID uint64

	HeaderPage   uint32
	HeaderOffset uint32

	DataPage   uint32
	DataOffset uint32

	StarpakOffset    uint64
	OptStarpakOffset uint64

	// highest page index used by the asset + 1
	PageEnd  uint16
	Unknown2 uint16

	RelationsStart uint32
	UsesStart      uint32
	RelationsCount uint32
	UsesCount      uint32

	HeaderSize uint32
	Version    uint32
	Type       AssetType
}

func (e *AssetEntry) Encode(bw *bits.BitWriter, profile Profile) (int, error) {

	if profile == ProfileLegacy && e.OptStarpakOffset != NoStarpakOffset {
		return 0, fmt.Errorf("asset 0x%016x has an optional starpak offset, %s entries cannot store it", e.GUID, profile)
	}

	start := bw.Position()

	bw.PutUint64(e.GUID)
	bw.PutUint64(0)

	bw.PutUint32(e.HeaderPage)
	bw.PutUint32(e.HeaderOffset)
	bw.PutUint32(e.DataPage)
	bw.PutUint32(e.DataOffset)

	bw.PutUint64(e.StarpakOffset)
	if profile.HasOptionalStarpak() {
		bw.PutUint64(e.OptStarpakOffset)
	}

	bw.PutUint16(e.PageEnd)
	bw.PutUint16(e.Unknown2)

	bw.PutUint32(e.RelationsStart)
	bw.PutUint32(e.UsesStart)
	bw.PutUint32(e.RelationsCount)
	bw.PutUint32(e.UsesCount)

	bw.PutUint32(e.HeaderSize)
	bw.PutUint32(e.Version)
	bw.PutUint32(uint32(e.Type))

	return bw.Position() - start, nil
}

func (e *AssetEntry) FromBytes(reader *bits.BitsReader, profile Profile) error {

	var err error
	if e.GUID, err = reader.ReadU64(); err != nil {
		return fmt.Errorf("unable to decode asset entry guid: %s", err.Error())
	}
	reader.MustReadU64()

	e.HeaderPage = reader.MustReadU32()
	e.HeaderOffset = reader.MustReadU32()
	e.DataPage = reader.MustReadU32()
	e.DataOffset = reader.MustReadU32()

	e.StarpakOffset = reader.MustReadU64()
	e.OptStarpakOffset = NoStarpakOffset
	if profile.HasOptionalStarpak() {
		e.OptStarpakOffset = reader.MustReadU64()
	}

	e.PageEnd = reader.MustReadU16()
	e.Unknown2 = reader.MustReadU16()

	e.RelationsStart = reader.MustReadU32()
	e.UsesStart = reader.MustReadU32()
	e.RelationsCount = reader.MustReadU32()
	e.UsesCount = reader.MustReadU32()

	e.HeaderSize = reader.MustReadU32()
	e.Version = reader.MustReadU32()

	typ, err := reader.ReadU32()
	e.Type = AssetType(typ)

	return err
}
