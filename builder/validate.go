package builder

import (
	"math"

	"github.com/dot5enko/repak/errdefs"
	"github.com/dot5enko/repak/schema"
)

const maxTableCount = math.MaxUint16

// validate checks every bookkeeping invariant the loader relies on. Any
// failure is an encoder defect, nothing is patched up.
func (b *Builder) validate() error {

	if b.scope != nil {
		return errdefs.Consistencyf("asset scope still open at finalization (opened at page %d)", b.scope.mark.segments)
	}

	if len(b.segments) > maxTableCount {
		return errdefs.Consistencyf("%d segments, the header can count at most %d", len(b.segments), maxTableCount)
	}

	if missing := b.blockPresent.FirstUnset(len(b.segments)); missing >= 0 {
		return errdefs.Consistencyf("segment %d has no raw data block", missing)
	}

	for idx, seg := range b.segments {
		block := b.blocks[idx]
		if block.segmentIndex != seg.index || block.size != seg.size || uint64(len(block.data)) != seg.size {
			return errdefs.Consistencyf("segment %d (%d bytes) does not match its raw block (%d bytes)", idx, seg.size, block.size)
		}
		if seg.size > math.MaxUint32 {
			return errdefs.Consistencyf("segment %d is %d bytes, past the u32 page size range", idx, seg.size)
		}
	}

	profile := b.opts.profile

	if !profile.HasGuidDescriptors() && len(b.guidDescriptors) != 0 {
		return errdefs.Consistencyf("%d guid descriptors registered, the %s layout cannot store them", len(b.guidDescriptors), profile)
	}
	if !profile.HasOptionalStarpak() && len(b.optStarpakPaths) != 0 {
		return errdefs.Consistencyf("optional starpak paths registered, the %s layout cannot store them", profile)
	}

	seen := make(map[schema.Descriptor]string, len(b.descriptors)+len(b.guidDescriptors))

	if err := b.validateDescriptors("descriptor", b.descriptors, schema.PagePtrSize, seen); err != nil {
		return err
	}
	if err := b.validateDescriptors("guid descriptor", b.guidDescriptors, schema.GuidSize, seen); err != nil {
		return err
	}

	for idx, entry := range b.assets {
		if !profile.HasOptionalStarpak() && entry.OptStarpakOffset != schema.NoStarpakOffset {
			return errdefs.Consistencyf("asset %d has an optional starpak offset, the %s layout cannot store it", idx, profile)
		}
		if entry.StarpakOffset != schema.NoStarpakOffset && len(b.starpakPaths) == 0 {
			return errdefs.Consistencyf("asset %d has a starpak offset but no starpak path was registered", idx)
		}
	}

	return nil
}

func (b *Builder) validateDescriptors(kind string, list []schema.Descriptor, width uint64, seen map[schema.Descriptor]string) error {
	for idx, d := range list {
		if int(d.PageIndex) >= len(b.segments) {
			return errdefs.Consistencyf("%s %d points at page %d, only %d pages exist", kind, idx, d.PageIndex, len(b.segments))
		}

		size := b.segments[d.PageIndex].size
		if uint64(d.PageOffset)+width > size {
			return errdefs.Consistencyf("%s %d at page %d offset %d runs past the page end (%d bytes)", kind, idx, d.PageIndex, d.PageOffset, size)
		}

		if other, dup := seen[d]; dup {
			return errdefs.Consistencyf("%s %d at page %d offset %d is already registered as a %s", kind, idx, d.PageIndex, d.PageOffset, other)
		}
		seen[d] = kind
	}
	return nil
}
