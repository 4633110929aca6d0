// Package assets turns manifest entries into pages, descriptors and asset
// entries.
//
// Every encoder works in two steps. Load reads and validates the source
// without touching the builder, so it is safe to run for many assets at
// once. Encode lays the loaded asset out and must run in manifest order.
package assets

import (
	"github.com/sirupsen/logrus"

	"github.com/dot5enko/repak/builder"
	"github.com/dot5enko/repak/manifest"
	"github.com/dot5enko/repak/schema"
	"github.com/dot5enko/repak/starpak"
)

// Env is shared by every asset of one build.
type Env struct {
	AssetsDir string

	// nil when the manifest declares no streaming file
	Starpak     *starpak.Writer
	StarpakPath string

	Logger *logrus.Entry
}

func (e *Env) logger() *logrus.Entry {
	if e.Logger == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return e.Logger
}

// Source is a loaded and validated asset.
type Source interface {
	Name() string
	Type() schema.AssetType

	// Encode creates the asset's pages and descriptors inside the open asset
	// scope and returns the entry to add.
	Encode(b *builder.Builder, env *Env) (schema.AssetEntry, error)
}

type Loader func(env *Env, asset manifest.Asset) (Source, error)

var loaders = map[schema.AssetType]Loader{
	schema.TextureAssetType:   LoadTexture,
	schema.DataTableAssetType: LoadDataTable,
	schema.PatchAssetType:     LoadPatch,
}

// LoaderFor returns the loader of an asset type, false when the type has no encoder.
func LoaderFor(t schema.AssetType) (Loader, bool) {
	l, found := loaders[t]
	return l, found
}

// newEntry fills what every asset entry shares.
func newEntry(guid uint64, t schema.AssetType, version uint32, header builder.SegmentInfo, headerSize uint32) schema.AssetEntry {
	return schema.AssetEntry{
		GUID:             guid,
		HeaderPage:       header.Index,
		DataPage:         header.Index,
		StarpakOffset:    schema.NoStarpakOffset,
		OptStarpakOffset: schema.NoStarpakOffset,
		Unknown2:         1,
		HeaderSize:       headerSize,
		Version:          version,
		Type:             t,
	}
}

// newPage returns a zeroed page buffer sized to the rounded segment.
func newPage(seg builder.SegmentInfo) []byte {
	return make([]byte, seg.Size)
}
