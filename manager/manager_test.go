package manager

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dot5enko/repak/bits"
	"github.com/dot5enko/repak/dds"
	"github.com/dot5enko/repak/errdefs"
	"github.com/dot5enko/repak/guid"
	"github.com/dot5enko/repak/manifest"
	"github.com/dot5enko/repak/reader"
	"github.com/dot5enko/repak/schema"
	"github.com/dot5enko/repak/starpak"
)

type workspace struct {
	assets string
	out    string
}

func newWorkspace(t *testing.T) workspace {
	root := t.TempDir()
	ws := workspace{assets: filepath.Join(root, "assets"), out: filepath.Join(root, "build")}
	require.NoError(t, os.MkdirAll(ws.assets, 0o755))
	return ws
}

func (ws workspace) file(t *testing.T, name string, data []byte) {
	path := filepath.Join(ws.assets, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func (ws workspace) texture(t *testing.T, name string, size int) {
	bw := bits.NewGrowingBuffer(256 + size)
	dds.WriteHeader(&bw, 64, 64, uint32(size), dds.FourCCDXT1, 0)
	bw.EmptyBytes(size)
	ws.file(t, name+".dds", bw.Bytes())
}

func (ws workspace) manifest(assets ...manifest.Asset) *manifest.Manifest {
	return &manifest.Manifest{
		Name:      "test",
		AssetsDir: ws.assets,
		OutputDir: ws.out,
		Assets:    assets,
	}
}

func newManager(opts ...func(*ManagerConfig)) *Manager {
	cfg := ManagerConfig{
		Timestamp:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		PreloadWorkers: 4,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return New(cfg)
}

func TestBuildSkipsRecoverableAssets(t *testing.T) {
	ws := newWorkspace(t)
	ws.texture(t, "texture/a", 2048)
	ws.file(t, "datatable/b.csv", []byte("name,value\nx,1\nstring,int\n"))
	ws.file(t, "datatable/empty.csv", nil)
	ws.file(t, "datatable/short.csv", []byte("name\nstring\n"))

	mf := ws.manifest(
		manifest.Asset{Type: "txtr", Path: "texture/a", SaveDebugName: true},
		manifest.Asset{Type: "dtbl", Path: "datatable/empty"},
		manifest.Asset{Type: "matl", Path: "material/unsupported"},
		manifest.Asset{Type: "dtbl", Path: "datatable/b"},
		manifest.Asset{Type: "dtbl", Path: "datatable/short"},
	)

	result, err := newManager().Build(context.Background(), mf)
	require.NoError(t, err)

	assert.Equal(t, []string{"texture/a", "datatable/b"}, result.Encoded)
	assert.ElementsMatch(t, []string{"datatable/empty", "material/unsupported", "datatable/short"}, result.Skipped)
	assert.Len(t, result.Digest, 32)
	assert.Equal(t, filepath.Join(ws.out, "test.rpak"), result.OutputPath)

	c, err := reader.Open(result.OutputPath)
	require.NoError(t, err)

	require.Len(t, c.Assets, 2)
	assert.Equal(t, guid.FromAssetPath("texture/a"), c.Assets[0].GUID)
	assert.Equal(t, guid.FromAssetPath("datatable/b"), c.Assets[1].GUID)
	// texture pages 0..2, datatable pages 3..7
	assert.Equal(t, uint32(3), c.Assets[1].HeaderPage)
	assert.Equal(t, uint16(8), c.Assets[1].PageEnd)
	assert.Equal(t, schema.ProfileCurrent, c.Header.Profile)

	stat, err := os.Stat(result.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, result.Size, stat.Size())
}

func TestMissingTextureAbortsBuild(t *testing.T) {
	ws := newWorkspace(t)
	ws.file(t, "datatable/b.csv", []byte("name\nx\nstring\n"))

	mf := ws.manifest(
		manifest.Asset{Type: "dtbl", Path: "datatable/b"},
		manifest.Asset{Type: "txtr", Path: "texture/missing"},
	)

	_, err := newManager().Build(context.Background(), mf)
	require.Error(t, err)
	assert.True(t, errdefs.IsIO(err))
	assert.NotZero(t, errdefs.Code(err))

	_, statErr := os.Stat(filepath.Join(ws.out, "test.rpak"))
	assert.True(t, os.IsNotExist(statErr), "no container may be written")
}

func TestFailedBuildKeepsPreviousOutput(t *testing.T) {
	ws := newWorkspace(t)
	ws.file(t, "texture/bad.dds", []byte("not a dds file at all"))

	previous := filepath.Join(ws.out, "test.rpak")
	require.NoError(t, os.MkdirAll(ws.out, 0o755))
	require.NoError(t, os.WriteFile(previous, []byte("previous build"), 0o644))

	_, err := newManager().Build(context.Background(), ws.manifest(manifest.Asset{Type: "txtr", Path: "texture/bad"}))
	require.Error(t, err)
	assert.True(t, errdefs.IsValidation(err))

	data, err := os.ReadFile(previous)
	require.NoError(t, err)
	assert.Equal(t, "previous build", string(data))

	entries, err := os.ReadDir(ws.out)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestStreamedTextureWritesStarpak(t *testing.T) {
	ws := newWorkspace(t)
	ws.texture(t, "texture/streamed", 8192)

	mf := ws.manifest(manifest.Asset{Type: "txtr", Path: "texture/streamed", Streamed: true})
	mf.StarpakPath = "paks/Win64/test.starpak"

	result, err := newManager().Build(context.Background(), mf)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(ws.out, "test.starpak"), result.StarpakPath)

	image, err := os.ReadFile(result.StarpakPath)
	require.NoError(t, err)
	entries, err := starpak.ReadEntries(image)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(8192), entries[0].Size)

	c, err := reader.Open(result.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, entries[0].Offset, c.Assets[0].StarpakOffset)
	assert.Equal(t, []string{"paks/Win64/test.starpak"}, c.StarpakPaths)
}

func TestProfileAndCompressionOverrides(t *testing.T) {
	ws := newWorkspace(t)
	ws.texture(t, "texture/a", 1024)

	mf := ws.manifest(manifest.Asset{Type: "txtr", Path: "texture/a"})
	mf.Version = 8

	result, err := newManager(func(c *ManagerConfig) {
		c.Profile = schema.ProfileLegacy
		c.Compress = true
	}).Build(context.Background(), mf)
	require.NoError(t, err)

	assert.Equal(t, schema.ProfileLegacy, result.Stats.Profile)
	assert.Less(t, result.Stats.CompressedSize, result.Stats.DecompressedSize)

	c, err := reader.Open(result.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, schema.ProfileLegacy, c.Header.Profile)
	assert.NotZero(t, c.Header.Flags&schema.FlagLZ4Compressed)
}

func TestPinnedTimestampIsReproducible(t *testing.T) {
	var digests [][]byte

	for i := 0; i < 2; i++ {
		ws := newWorkspace(t)
		ws.texture(t, "texture/a", 512)
		ws.file(t, "datatable/b.csv", []byte("name,pos\nx,\"<1,2,3>\"\nstring,vector\n"))

		result, err := newManager().Build(context.Background(), ws.manifest(
			manifest.Asset{Type: "txtr", Path: "texture/a"},
			manifest.Asset{Type: "dtbl", Path: "datatable/b"},
		))
		require.NoError(t, err)
		digests = append(digests, result.Digest)
	}

	assert.Equal(t, digests[0], digests[1])
}

func TestCancelledPreload(t *testing.T) {
	ws := newWorkspace(t)
	ws.texture(t, "texture/a", 512)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newManager().Build(ctx, ws.manifest(manifest.Asset{Type: "txtr", Path: "texture/a"}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStarpakFailureKeepsPreviousOutputs(t *testing.T) {
	ws := newWorkspace(t)
	ws.texture(t, "texture/streamed", 4096)

	previous := filepath.Join(ws.out, "test.rpak")
	require.NoError(t, os.MkdirAll(ws.out, 0o755))
	require.NoError(t, os.WriteFile(previous, []byte("previous build"), 0o644))

	// a directory where the streaming file goes cannot be replaced
	blocker := filepath.Join(ws.out, "test.starpak")
	require.NoError(t, os.MkdirAll(filepath.Join(blocker, "keep"), 0o755))

	mf := ws.manifest(manifest.Asset{Type: "txtr", Path: "texture/streamed", Streamed: true})
	mf.StarpakPath = "paks/Win64/test.starpak"

	_, err := newManager().Build(context.Background(), mf)
	require.Error(t, err)
	assert.True(t, errdefs.IsIO(err))

	data, err := os.ReadFile(previous)
	require.NoError(t, err)
	assert.Equal(t, "previous build", string(data))

	stat, err := os.Stat(blocker)
	require.NoError(t, err)
	assert.True(t, stat.IsDir())

	entries, err := os.ReadDir(ws.out)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temporary files left behind")
}
