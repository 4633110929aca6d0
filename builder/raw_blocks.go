package builder

import (
	"github.com/dot5enko/repak/errdefs"
)

type rawDataBlock struct {
	segmentIndex uint32
	size         uint64
	data         []byte
}

// AddRawDataBlock hands the bytes of one page to the builder. The builder owns
// data from here on: the caller must not keep writing into it.
func (b *Builder) AddRawDataBlock(segmentIndex uint32, size uint64, data []byte) error {
	b.mutate("AddRawDataBlock")

	if int(segmentIndex) >= len(b.segments) {
		return errdefs.Consistencyf("raw block for unknown segment %d (have %d)", segmentIndex, len(b.segments))
	}

	if b.blockPresent.Get(int(segmentIndex)) {
		return errdefs.Consistencyf("segment %d already has a raw block", segmentIndex)
	}

	seg := b.segments[segmentIndex]
	if size != seg.size {
		return errdefs.Consistencyf("raw block size %d does not match segment %d size %d", size, segmentIndex, seg.size)
	}

	if uint64(len(data)) != size {
		return errdefs.Consistencyf("raw block for segment %d declares %d bytes but holds %d", segmentIndex, size, len(data))
	}

	b.blocks[segmentIndex] = rawDataBlock{
		segmentIndex: segmentIndex,
		size:         size,
		data:         data,
	}
	b.blockPresent.Set(int(segmentIndex))

	return nil
}

// release drops every page buffer once the container has been written.
func (b *Builder) release() {
	for i := range b.blocks {
		b.blocks[i].data = nil
	}
}
