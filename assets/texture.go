package assets

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/dot5enko/repak/bits"
	"github.com/dot5enko/repak/builder"
	"github.com/dot5enko/repak/dds"
	"github.com/dot5enko/repak/errdefs"
	"github.com/dot5enko/repak/guid"
	rio "github.com/dot5enko/repak/io"
	"github.com/dot5enko/repak/manifest"
	"github.com/dot5enko/repak/schema"
)

const (
	TextureExtension = ".dds"

	textureHeaderAlignment = 8
	textureDataAlignment   = 16
)

type Texture struct {
	name     string
	guid     uint64
	width    uint16
	height   uint16
	format   uint16
	pixels   []byte
	debug    bool
	streamed bool
}

// LoadTexture reads <assetsDir>/<path>.dds. A missing file is an IO error, a
// file the loader cannot use is a validation error. Both abort the build.
func LoadTexture(env *Env, asset manifest.Asset) (Source, error) {

	path := filepath.Join(env.AssetsDir, asset.Path+TextureExtension)

	fr := rio.NewFileReader(path)
	if !fr.Exists() {
		return nil, errdefs.WrapIO(os.ErrNotExist, "texture source %s", path)
	}

	if err := fr.Open(); err != nil {
		return nil, errdefs.WrapIO(err, "unable to open texture source %s", path)
	}
	defer fr.Close()

	header, err := dds.ReadHeader(fr.Reader())
	if err != nil {
		if errors.Is(err, dds.ErrInvalidMagic) || errors.Is(err, dds.ErrUnsupportedFourCC) {
			return nil, errdefs.WrapValidation(err, "texture %s", asset.Path)
		}
		return nil, errdefs.WrapValidation(err, "unable to parse texture %s", asset.Path)
	}

	dxgi, err := header.Format()
	if err != nil {
		return nil, errdefs.WrapValidation(err, "texture %s", asset.Path)
	}

	code, known := schema.TextureFormatCodes[dxgi]
	if !known {
		return nil, errdefs.Validationf("texture %s uses pixel format %d which has no texture format code", asset.Path, dxgi)
	}

	if header.Width == 0 || header.Height == 0 || header.Width > math.MaxUint16 || header.Height > math.MaxUint16 {
		return nil, errdefs.Validationf("texture %s has unsupported dimensions %dx%d", asset.Path, header.Width, header.Height)
	}

	if asset.Streamed && env.Starpak == nil {
		return nil, errdefs.Validationf("texture %s is streamed but no starpak path is configured", asset.Path)
	}

	if available := fr.Size() - int64(header.EncodedSize()); int64(header.PitchOrLinearSize) > available {
		return nil, errdefs.Validationf("texture %s declares %d bytes of pixel data, the file holds %d", asset.Path, header.PitchOrLinearSize, max(available, 0))
	}

	pixels := make([]byte, header.PitchOrLinearSize)
	reader := bits.NewReader(fr.Reader(), binary.LittleEndian)
	if err = reader.ReadBytes(len(pixels), pixels); err != nil {
		return nil, errdefs.WrapValidation(err, "texture %s declares %d bytes of pixel data", asset.Path, len(pixels))
	}

	env.logger().WithField("asset", asset.Path).Debugf("txtr %dx%d format %d (%s), %d bytes", header.Width, header.Height, code, dds.FourCCString(header.PixelFormat.FourCC), len(pixels))

	return &Texture{
		name:     asset.Path,
		guid:     guid.FromAssetPath(asset.Path),
		width:    uint16(header.Width),
		height:   uint16(header.Height),
		format:   code,
		pixels:   pixels,
		debug:    asset.SaveDebugName,
		streamed: asset.Streamed,
	}, nil
}

func (t *Texture) Name() string {
	return t.name
}

func (t *Texture) Type() schema.AssetType {
	return schema.TextureAssetType
}

func (t *Texture) Encode(b *builder.Builder, env *Env) (schema.AssetEntry, error) {

	header := schema.TextureHeader{
		AssetGuid:          t.guid,
		Width:              t.width,
		Height:             t.height,
		Format:             t.format,
		DataLength:         uint32(len(t.pixels)),
		PermanentMipLevels: 1,
	}

	headerSeg := b.CreateSegment(schema.TextureHeaderSize, schema.SegmentTypeHeader, textureHeaderAlignment, 0)

	if t.debug {
		nameSeg := b.CreateSegment(uint64(len(t.name)+1), schema.SegmentTypeDebugName, 1, 0)

		namePage := newPage(nameSeg)
		copy(namePage, t.name)

		if err := b.AddRawDataBlock(nameSeg.Index, nameSeg.Size, namePage); err != nil {
			return schema.AssetEntry{}, err
		}

		header.DebugName = schema.PagePtr{Index: nameSeg.Index}
		// the pointer lives in the header page
		b.RegisterDescriptor(headerSeg.Index, schema.TextureHeaderDebugNameOffset)
	}

	entry := newEntry(t.guid, schema.TextureAssetType, schema.TextureAssetVersion, headerSeg, schema.TextureHeaderSize)

	if t.streamed {
		header.PermanentMipLevels = 0
		header.StreamedMipLevels = 1

		b.AddStarpakPath(env.StarpakPath)
		entry.StarpakOffset = env.Starpak.Add(t.pixels)
	} else {
		dataSeg := b.CreateSegment(uint64(len(t.pixels)), schema.SegmentTypeTexture, textureDataAlignment, 0)

		dataPage := newPage(dataSeg)
		copy(dataPage, t.pixels)

		if err := b.AddRawDataBlock(dataSeg.Index, dataSeg.Size, dataPage); err != nil {
			return schema.AssetEntry{}, err
		}
		entry.DataPage = dataSeg.Index
	}

	headerPage := newPage(headerSeg)
	bw := bits.NewEncodeBuffer(headerPage, binary.LittleEndian)
	header.Encode(&bw)

	if err := b.AddRawDataBlock(headerSeg.Index, headerSeg.Size, headerPage); err != nil {
		return schema.AssetEntry{}, err
	}

	return entry, nil
}
