package builder

import (
	"github.com/dot5enko/repak/bits"
)

type segment struct {
	index     uint32
	typeTag   uint32
	alignment uint32
	// alignment of the whole segment when the page holds an array of records
	baseAlignment uint32
	size          uint64
}

// SegmentInfo is what CreateSegment hands back to the encoder.
type SegmentInfo struct {
	Index uint32
	// size after rounding, the raw block for this segment must have exactly this length
	Size uint64
}

// CreateSegment allocates a brand new page. size is rounded up to alignment,
// and additionally to baseAlignment when it is non-zero. Pages are never
// merged, indices start at 0 and follow call order.
func (b *Builder) CreateSegment(size uint64, typeTag uint32, alignment uint32, baseAlignment uint32) SegmentInfo {
	b.mutate("CreateSegment")

	if alignment == 0 {
		alignment = 1
	}

	rounded := bits.AlignUp(size, uint64(alignment))
	if baseAlignment != 0 {
		rounded = bits.AlignUp(rounded, uint64(baseAlignment))
	}

	seg := segment{
		index:         uint32(len(b.segments)),
		typeTag:       typeTag,
		alignment:     alignment,
		baseAlignment: baseAlignment,
		size:          rounded,
	}

	b.segments = append(b.segments, seg)
	b.blocks = append(b.blocks, rawDataBlock{})

	if b.scope != nil {
		b.scope.touch(seg.index)
	}

	return SegmentInfo{Index: seg.index, Size: seg.size}
}

func (b *Builder) SegmentCount() int {
	return len(b.segments)
}

// SegmentSize returns the rounded size of a page, or false when the index is unknown.
func (b *Builder) SegmentSize(index uint32) (uint64, bool) {
	if int(index) >= len(b.segments) {
		return 0, false
	}
	return b.segments[index].size, true
}
