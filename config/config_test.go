package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dot5enko/repak/errdefs"
)

func TestLoadOptionalMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), DefaultFile), true)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, runtime.NumCPU(), cfg.PreloadWorkers)

	_, err = Load(filepath.Join(t.TempDir(), DefaultFile), false)
	assert.True(t, errdefs.IsIO(err))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(`
profile = 7
compress = true
output-dir = "out"
log-level = "debug"
timestamp = 1700000000
`), 0o644))

	cfg, err := Load(path, false)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Profile)
	assert.True(t, cfg.Compress)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, int64(1700000000), cfg.Timestamp)
	assert.Equal(t, runtime.NumCPU(), cfg.PreloadWorkers, "unset keys keep their defaults")
}

func TestLoadInvalid(t *testing.T) {
	cases := map[string]string{
		"profile":   "profile = 6\n",
		"log level": "log-level = \"loud\"\n",
		"workers":   "preload-workers = 0\n",
		"syntax":    "profile = \n",
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultFile)
			require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

			_, err := Load(path, false)
			require.Error(t, err)
			assert.True(t, errdefs.IsValidation(err), "%v", err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)

	cfg := Default()
	cfg.Profile = 8
	cfg.Compress = true
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
