package builder

import (
	"github.com/dot5enko/repak/errdefs"
	"github.com/dot5enko/repak/schema"
)

// AddAssetEntry closes the current asset scope and appends its entry. PageEnd
// and the uses range are derived from what the scope touched, any value the
// caller put there is overwritten. Returns the index of the entry.
func (b *Builder) AddAssetEntry(entry schema.AssetEntry) (int, error) {
	b.mutate("AddAssetEntry")

	scope := b.scope
	if scope == nil {
		return 0, errdefs.Consistencyf("asset 0x%016x added without BeginAsset", entry.GUID)
	}

	first := uint32(scope.mark.segments)
	last := uint32(len(b.segments))

	if entry.HeaderPage < first || entry.HeaderPage >= last {
		return 0, errdefs.Consistencyf("asset 0x%016x header page %d was not created for this asset (pages %d..%d)", entry.GUID, entry.HeaderPage, first, last)
	}
	if entry.DataPage < first || entry.DataPage >= last {
		return 0, errdefs.Consistencyf("asset 0x%016x data page %d was not created for this asset (pages %d..%d)", entry.GUID, entry.DataPage, first, last)
	}

	if idx, taken := b.guidIndex[entry.GUID]; taken {
		return 0, errdefs.Consistencyf("asset 0x%016x already added as entry %d", entry.GUID, idx)
	}

	scope.touch(entry.HeaderPage)
	scope.touch(entry.DataPage)

	if scope.maxPage+1 > 0xFFFF {
		return 0, errdefs.Consistencyf("asset 0x%016x touches page %d, past the u16 page end range", entry.GUID, scope.maxPage)
	}

	entry.PageEnd = uint16(scope.maxPage + 1)
	entry.UsesStart = uint32(scope.mark.guidDescriptors)
	entry.UsesCount = uint32(len(b.guidDescriptors) - scope.mark.guidDescriptors)

	// derived at serialization time
	entry.RelationsStart = 0
	entry.RelationsCount = 0

	index := len(b.assets)
	b.assets = append(b.assets, entry)
	b.guidIndex[entry.GUID] = index
	b.scope = nil

	return index, nil
}

func (b *Builder) AssetCount() int {
	return len(b.assets)
}

// AssetEntries returns a copy of the entry table.
func (b *Builder) AssetEntries() []schema.AssetEntry {
	out := make([]schema.AssetEntry, len(b.assets))
	copy(out, b.assets)
	return out
}
