package assets

import (
	"encoding/binary"

	"github.com/dot5enko/repak/bits"
	"github.com/dot5enko/repak/builder"
	"github.com/dot5enko/repak/errdefs"
	"github.com/dot5enko/repak/guid"
	"github.com/dot5enko/repak/manifest"
	"github.com/dot5enko/repak/schema"
)

// Patch lists the containers this one patches, with their patch numbers.
// There is at most one per build and it is always named patch_master.
type Patch struct {
	entries []manifest.PatchEntry
}

func LoadPatch(env *Env, asset manifest.Asset) (Source, error) {
	if len(asset.Entries) == 0 {
		return nil, errdefs.Schemaf("patch asset %s lists no patched containers", asset.Path)
	}

	for idx, entry := range asset.Entries {
		if entry.Path == "" {
			return nil, errdefs.Validationf("patch asset %s entry %d has an empty path", asset.Path, idx)
		}
	}

	return &Patch{entries: asset.Entries}, nil
}

func (p *Patch) Name() string {
	return schema.PatchMasterAssetPath
}

func (p *Patch) Type() schema.AssetType {
	return schema.PatchAssetType
}

// Encode writes the header page and one data page holding the name pointer
// array, the patch numbers and the names, in that order.
func (p *Patch) Encode(b *builder.Builder, env *Env) (schema.AssetEntry, error) {

	count := len(p.entries)

	numsOffset := uint32(count * schema.PagePtrSize)
	namesOffset := bits.AlignUp(numsOffset+uint32(count), 8)

	dataSize := uint64(namesOffset)
	for _, entry := range p.entries {
		dataSize += uint64(len(entry.Path)) + 1
	}

	headerSeg := b.CreateSegment(schema.PatchHeaderSize, schema.SegmentTypeHeader, 8, 0)
	dataSeg := b.CreateSegment(dataSize, schema.SegmentTypeCpu, 8, 0)

	dataPage := newPage(dataSeg)
	dw := bits.NewEncodeBuffer(dataPage, binary.LittleEndian)

	nameAt := namesOffset
	for idx, entry := range p.entries {
		ptr := schema.PagePtr{Index: dataSeg.Index, Offset: nameAt}
		ptr.Encode(&dw)
		b.RegisterDescriptor(dataSeg.Index, uint32(idx*schema.PagePtrSize))

		copy(dataPage[nameAt:], entry.Path)
		nameAt += uint32(len(entry.Path)) + 1
	}

	for idx, entry := range p.entries {
		dataPage[numsOffset+uint32(idx)] = entry.Version
	}

	header := schema.PatchHeader{
		Unknown1:        schema.PatchHeaderDefaultUnknown1,
		PatchedPakCount: uint32(count),
		PakNames:        schema.PagePtr{Index: dataSeg.Index},
		PakPatchNums:    schema.PagePtr{Index: dataSeg.Index, Offset: numsOffset},
	}

	headerPage := newPage(headerSeg)
	hw := bits.NewEncodeBuffer(headerPage, binary.LittleEndian)
	header.Encode(&hw)

	b.RegisterDescriptor(headerSeg.Index, schema.PatchHeaderNamesOffset)
	b.RegisterDescriptor(headerSeg.Index, schema.PatchHeaderPatchNumsOffset)

	if err := b.AddRawDataBlock(headerSeg.Index, headerSeg.Size, headerPage); err != nil {
		return schema.AssetEntry{}, err
	}
	if err := b.AddRawDataBlock(dataSeg.Index, dataSeg.Size, dataPage); err != nil {
		return schema.AssetEntry{}, err
	}

	entry := newEntry(guid.FromAssetPath(schema.PatchMasterAssetPath), schema.PatchAssetType, schema.PatchAssetVersion, headerSeg, schema.PatchHeaderSize)
	entry.DataPage = dataSeg.Index

	return entry, nil
}
