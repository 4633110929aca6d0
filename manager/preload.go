package manager

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/dot5enko/repak/assets"
	"github.com/dot5enko/repak/errdefs"
	"github.com/dot5enko/repak/manifest"
	"github.com/dot5enko/repak/schema"
)

// preload runs every loader before the first page is allocated. The returned
// slice is index aligned with list, nil marks a skipped asset.
func (m *Manager) preload(ctx context.Context, env *assets.Env, list []manifest.Asset) ([]assets.Source, []string, error) {

	sources := make([]assets.Source, len(list))
	skipped := make([]bool, len(list))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(m.config.PreloadWorkers)

	for idx := range list {
		asset := list[idx]

		assetType, _ := schema.ParseAssetType(asset.Type)
		load, supported := assets.LoaderFor(assetType)
		if !supported {
			env.Logger.WithField("asset", asset.Path).Warnf("no encoder for asset type %s", asset.Type)
			skipped[idx] = true
			continue
		}

		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}

			src, err := load(env, asset)
			if err != nil {
				if errdefs.IsSchema(err) {
					env.Logger.WithField("asset", asset.Path).WithError(err).Warn("asset has an unusable structure")
					skipped[idx] = true
					return nil
				}
				return errors.Wrapf(err, "unable to load %s asset %s", asset.Type, asset.Path)
			}

			sources[idx] = src
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	var names []string
	for idx, skip := range skipped {
		if skip {
			names = append(names, list[idx].Path)
		}
	}

	return sources, names, nil
}
