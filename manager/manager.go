// Package manager drives one build: it preloads every source the manifest
// names, runs the encoders in manifest order against a single builder and
// writes the container and its streaming file.
package manager

import (
	"context"
	"fmt"
	goio "io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"lukechampine.com/blake3"

	"github.com/dot5enko/repak/assets"
	"github.com/dot5enko/repak/builder"
	"github.com/dot5enko/repak/errdefs"
	rio "github.com/dot5enko/repak/io"
	"github.com/dot5enko/repak/manifest"
	"github.com/dot5enko/repak/schema"
	"github.com/dot5enko/repak/starpak"
)

type ManagerConfig struct {
	// zero keeps the manifest's version, which defaults to the current layout
	Profile   schema.Profile
	Compress  bool
	Timestamp time.Time
	// overrides the manifest's output directory when set
	OutputDir string

	PreloadWorkers int

	Logger *logrus.Entry
}

type Manager struct {
	config ManagerConfig
	logger *logrus.Entry
}

// Result describes a successful build.
type Result struct {
	BuildID uuid.UUID

	OutputPath  string
	StarpakPath string

	Stats  builder.Stats
	Size   int64
	Digest []byte

	Encoded []string
	Skipped []string
}

func New(config ManagerConfig) *Manager {

	if config.PreloadWorkers < 1 {
		config.PreloadWorkers = 1
	}

	logger := config.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Manager{
		config: config,
		logger: logger,
	}
}

func (m *Manager) profileFor(mf *manifest.Manifest) schema.Profile {
	if m.config.Profile != 0 {
		return m.config.Profile
	}
	if mf.Version != 0 {
		return schema.Profile(mf.Version)
	}
	return schema.ProfileCurrent
}

// Build compiles mf into a container. Nothing is written unless every asset
// was either encoded or skipped as recoverable, on error the previous container
// and streaming file, if any, are left untouched.
func (m *Manager) Build(ctx context.Context, mf *manifest.Manifest) (result *Result, topErr error) {

	buildID := uuid.New()
	profile := m.profileFor(mf)

	logger := m.logger.WithFields(logrus.Fields{
		"build_id":  buildID.String(),
		"container": mf.Name,
		"profile":   profile.String(),
	})

	outputDir := mf.OutputDir
	if m.config.OutputDir != "" {
		outputDir = m.config.OutputDir
	}

	env := &assets.Env{
		AssetsDir: mf.AssetsDir,
		Logger:    logger,
	}
	if mf.StarpakPath != "" {
		env.Starpak = starpak.NewWriter()
		env.StarpakPath = mf.StarpakPath
	}

	result = &Result{
		BuildID:    buildID,
		OutputPath: filepath.Join(outputDir, mf.Name+".rpak"),
	}

	sources, skipped, err := m.preload(ctx, env, mf.Assets)
	if err != nil {
		return nil, err
	}
	result.Skipped = append(result.Skipped, skipped...)

	b := builder.New(
		builder.WithProfile(profile),
		builder.WithTimestamp(m.config.Timestamp),
		builder.WithCompression(m.config.Compress),
		builder.WithLogger(logger),
	)

	// builder misuse panics with a consistency error, report it like any other failure
	defer func() {
		if r := recover(); r != nil {
			b.Fail()

			if err, ok := r.(error); ok && errdefs.IsConsistency(err) {
				result, topErr = nil, err
				return
			}
			panic(r)
		}
	}()

	for _, src := range sources {
		if src == nil {
			continue
		}

		encoded, err := encodeAsset(b, env, src)
		if err != nil {
			b.Fail()
			return nil, errors.Wrapf(err, "unable to encode %s asset %s", src.Type(), src.Name())
		}

		if !encoded {
			logger.WithField("asset", src.Name()).Warn("asset skipped")
			result.Skipped = append(result.Skipped, src.Name())
			continue
		}

		result.Encoded = append(result.Encoded, src.Name())
	}

	if err := m.write(b, env, result, outputDir, logger); err != nil {
		return nil, err
	}

	return result, nil
}

// encodeAsset runs one encoder inside its own asset scope. A schema error
// discards the scope and reports the asset as not encoded.
func encodeAsset(b *builder.Builder, env *assets.Env, src assets.Source) (bool, error) {

	b.BeginAsset()

	entry, err := src.Encode(b, env)
	if err != nil {
		if errdefs.IsSchema(err) {
			b.DiscardAsset()
			env.Logger.WithField("asset", src.Name()).WithError(err).Warn("asset has an unusable structure")
			return false, nil
		}
		return false, err
	}

	if _, err = b.AddAssetEntry(entry); err != nil {
		return false, err
	}

	return true, nil
}

func (m *Manager) write(b *builder.Builder, env *assets.Env, result *Result, outputDir string, logger *logrus.Entry) error {

	hasher := blake3.New(32, nil)

	container, err := rio.Stage(result.OutputPath, 0o644, func(w goio.Writer) error {
		n, err := b.WriteTo(goio.MultiWriter(w, hasher))
		result.Size = n
		return err
	})
	if err != nil {
		b.Fail()
		if errdefs.IsConsistency(err) || errdefs.IsValidation(err) {
			return err
		}
		return errdefs.WrapIO(err, "unable to write container %s", result.OutputPath)
	}

	result.Stats = b.Stats()
	result.Digest = hasher.Sum(nil)

	staged := []*rio.StagedFile{container}

	// the container references offsets in the streaming file, both land together or neither does
	if env.Starpak != nil && env.Starpak.Len() > 0 {
		result.StarpakPath = filepath.Join(outputDir, filepath.Base(env.StarpakPath))

		streaming, err := rio.Stage(result.StarpakPath, 0o644, func(w goio.Writer) error {
			_, err := env.Starpak.WriteTo(w)
			return err
		})
		if err != nil {
			container.Abort()
			return errdefs.WrapIO(err, "unable to write starpak %s", result.StarpakPath)
		}
		staged = append(staged, streaming)
	}

	if err = rio.Commit(staged...); err != nil {
		return errdefs.WrapIO(err, "unable to replace build outputs in %s", outputDir)
	}

	logger.WithFields(logrus.Fields{
		"assets":  result.Stats.Assets,
		"pages":   result.Stats.Segments,
		"size":    result.Size,
		"skipped": len(result.Skipped),
		"digest":  fmt.Sprintf("%x", result.Digest),
	}).Info("container written")

	return nil
}
