// Package manifest loads the build description: which assets go into the
// container, where their sources live and where the output is written.
package manifest

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dot5enko/repak/errdefs"
	"github.com/dot5enko/repak/schema"
)

type Manifest struct {
	Name        string  `json:"name" yaml:"name"`
	Version     int     `json:"version" yaml:"version"`
	AssetsDir   string  `json:"assetsDir" yaml:"assetsDir"`
	OutputDir   string  `json:"outputDir" yaml:"outputDir"`
	StarpakPath string  `json:"starpakPath" yaml:"starpakPath"`
	Assets      []Asset `json:"assets" yaml:"assets"`
}

type Asset struct {
	Type          string       `json:"$type" yaml:"$type"`
	Path          string       `json:"path" yaml:"path"`
	SaveDebugName bool         `json:"saveDebugName" yaml:"saveDebugName"`
	Streamed      bool         `json:"streamed" yaml:"streamed"`
	Entries       []PatchEntry `json:"entries" yaml:"entries"`
}

// PatchEntry names one container patched by a Ptch asset.
type PatchEntry struct {
	Path    string `json:"path" yaml:"path"`
	Version uint8  `json:"version" yaml:"version"`
}

// Load reads a manifest, choosing the decoder by extension. Relative
// directories are resolved against the manifest's own directory.
func Load(path string) (*Manifest, error) {

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errdefs.WrapIO(err, "unable to read manifest %s", path)
	}

	var m *Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		m, err = DecodeYAML(raw)
	default:
		m, err = DecodeJSON(raw)
	}
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	m.AssetsDir = resolve(base, m.AssetsDir)
	m.OutputDir = resolve(base, m.OutputDir)

	return m, nil
}

func DecodeJSON(raw []byte) (*Manifest, error) {
	m := &Manifest{}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(m); err != nil {
		return nil, errdefs.WrapValidation(err, "unable to decode json manifest")
	}

	return m, m.Validate()
}

func DecodeYAML(raw []byte) (*Manifest, error) {
	m := &Manifest{}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(m); err != nil {
		return nil, errdefs.WrapValidation(err, "unable to decode yaml manifest")
	}

	return m, m.Validate()
}

func (m *Manifest) Validate() error {
	if m.Name == "" {
		return errdefs.Validationf("manifest has no name")
	}
	if m.Version != 0 {
		if _, err := schema.ParseProfile(m.Version); err != nil {
			return errdefs.WrapValidation(err, "manifest version")
		}
	}

	for idx, asset := range m.Assets {
		if _, known := schema.ParseAssetType(asset.Type); !known {
			return errdefs.Validationf("asset %d: unknown type %q", idx, asset.Type)
		}
		if asset.Path == "" {
			return errdefs.Validationf("asset %d: empty path", idx)
		}
	}

	return nil
}

// OutputPath is where the container is written.
func (m *Manifest) OutputPath() string {
	return filepath.Join(m.OutputDir, m.Name+".rpak")
}

func resolve(base, dir string) string {
	if dir == "" {
		return base
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}
