// Package config holds the build settings that are not part of a manifest.
package config

import (
	"os"
	"runtime"

	"github.com/pelletier/go-toml"
	"github.com/sirupsen/logrus"

	"github.com/dot5enko/repak/errdefs"
	"github.com/dot5enko/repak/schema"
)

const DefaultFile = "repak.toml"

type Config struct {
	// container version, 0 keeps what the manifest says
	Profile   int    `toml:"profile"`
	Compress  bool   `toml:"compress"`
	OutputDir string `toml:"output-dir"`
	LogLevel  string `toml:"log-level"`
	// unix seconds written as the creation time, 0 means build time
	Timestamp int64 `toml:"timestamp"`

	PreloadWorkers int `toml:"preload-workers"`
}

func Default() Config {
	return Config{
		LogLevel:       logrus.InfoLevel.String(),
		PreloadWorkers: runtime.NumCPU(),
	}
}

// Load reads path on top of the defaults. A missing file is not an error when
// optional is set, the defaults are returned as is.
func Load(path string, optional bool) (Config, error) {

	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errdefs.WrapIO(err, "unable to read config %s", path)
	}

	if err = toml.Unmarshal(raw, &cfg); err != nil {
		return cfg, errdefs.WrapValidation(err, "unable to decode config %s", path)
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Profile != 0 {
		if _, err := schema.ParseProfile(c.Profile); err != nil {
			return errdefs.WrapValidation(err, "config profile")
		}
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errdefs.WrapValidation(err, "config log-level")
	}
	if c.PreloadWorkers < 1 {
		return errdefs.Validationf("preload-workers must be at least 1, got %d", c.PreloadWorkers)
	}
	return nil
}

func (c Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errdefs.WrapIO(err, "unable to create config %s", path)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}
