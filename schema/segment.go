package schema

import "github.com/dot5enko/repak/bits"

const (
	VirtualSegmentSize = 4 + 4 + 8
	PageInfoSize       = 4 + 4 + 4
)

// Segment type tags used by the encoders.
const (
	SegmentTypeHeader    uint32 = 0
	SegmentTypeCpu       uint32 = 1
	SegmentTypeTexture   uint32 = 3
	SegmentTypeDebugName uint32 = 129
)

// VirtualSegment is one entry of the segment table.
type VirtualSegment struct {
	TypeTag uint32
	// alignment the loader uses for the whole segment
	SubType uint32
	Size    uint64
}

func (s *VirtualSegment) Encode(bw *bits.BitWriter) {
	bw.PutUint32(s.TypeTag)
	bw.PutUint32(s.SubType)
	bw.PutUint64(s.Size)
}

func (s *VirtualSegment) FromBytes(reader *bits.BitsReader) (err error) {
	if s.TypeTag, err = reader.ReadU32(); err != nil {
		return err
	}
	if s.SubType, err = reader.ReadU32(); err != nil {
		return err
	}
	s.Size, err = reader.ReadU64()
	return err
}

// PageInfo is one entry of the page table, 1:1 with VirtualSegment.
type PageInfo struct {
	SegmentIndex uint32
	// alignment of the page start
	SubType uint32
	Size    uint32
}

func (p *PageInfo) Encode(bw *bits.BitWriter) {
	bw.PutUint32(p.SegmentIndex)
	bw.PutUint32(p.SubType)
	bw.PutUint32(p.Size)
}

func (p *PageInfo) FromBytes(reader *bits.BitsReader) (err error) {
	if p.SegmentIndex, err = reader.ReadU32(); err != nil {
		return err
	}
	if p.SubType, err = reader.ReadU32(); err != nil {
		return err
	}
	p.Size, err = reader.ReadU32()
	return err
}
