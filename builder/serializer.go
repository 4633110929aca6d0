package builder

import (
	"bytes"
	"io"
	"math"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dot5enko/repak/bits"
	"github.com/dot5enko/repak/compression"
	"github.com/dot5enko/repak/errdefs"
	"github.com/dot5enko/repak/schema"
)

// ticks between 1601-01-01 and 1970-01-01
const filetimeUnixEpoch = 116444736000000000

// Stats summarizes a written container.
type Stats struct {
	Profile         schema.Profile
	Segments        int
	Descriptors     int
	GuidDescriptors int
	Relations       int
	Assets          int

	PageBytes        uint64
	DecompressedSize uint64
	CompressedSize   uint64
}

// WriteTo finalizes the builder and writes the whole container to w. The
// builder is frozen from here on; after a successful write the page buffers
// are released.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {

	data, err := b.serialize()
	if err != nil {
		return 0, err
	}

	n, err := w.Write(data)
	if err != nil {
		b.state = StateError
		return int64(n), errors.Wrap(err, "unable to write container")
	}

	b.release()
	b.state = StateWritten

	return int64(n), nil
}

// Stats is only populated once the container has been serialized.
func (b *Builder) Stats() Stats {
	return b.stats
}

// Fail moves the builder to its terminal error state.
func (b *Builder) Fail() {
	b.state = StateError
}

func (b *Builder) serialize() ([]byte, error) {

	switch b.state {
	case StateInit, StateAccumulating:
	default:
		return nil, errdefs.Consistencyf("builder cannot be finalized in state %s", b.state)
	}

	b.state = StateFinalizing

	out, stats, err := b.emit()
	if err != nil {
		b.state = StateError
		return nil, err
	}

	b.stats = stats

	return out, nil
}

func (b *Builder) emit() ([]byte, Stats, error) {

	if err := b.validate(); err != nil {
		return nil, Stats{}, err
	}

	profile := b.opts.profile
	logger := b.opts.logger

	relations := b.computeRelations()

	starpakBlock := pathBlock(b.starpakPaths)
	optStarpakBlock := pathBlock(b.optStarpakPaths)

	if len(starpakBlock) > math.MaxUint16 || len(optStarpakBlock) > math.MaxUint16 {
		return nil, Stats{}, errdefs.Consistencyf("starpak path blocks (%d, %d bytes) do not fit the u16 header fields", len(starpakBlock), len(optStarpakBlock))
	}

	var pageBytes uint64
	for _, seg := range b.segments {
		pageBytes += seg.size
	}

	header := schema.FileHeader{
		Profile:     profile,
		CreatedTime: filetime(b.opts.timestamp),

		StarpakRefSize:    uint16(len(starpakBlock)),
		StarpakOptRefSize: uint16(len(optStarpakBlock)),

		SegmentCount: uint16(len(b.segments)),
		PageCount:    uint16(len(b.segments)),

		DescriptorCount:     uint32(len(b.descriptors)),
		AssetEntryCount:     uint32(len(b.assets)),
		GuidDescriptorCount: uint32(len(b.guidDescriptors)),
		RelationCount:       uint32(len(relations.relations)),
	}

	tablesSize := len(starpakBlock) + len(optStarpakBlock) +
		len(b.segments)*(schema.VirtualSegmentSize+schema.PageInfoSize) +
		(len(b.descriptors)+len(b.guidDescriptors))*schema.DescriptorSize +
		len(relations.relations)*schema.RelationSize +
		len(b.assets)*profile.AssetEntrySize()

	body := bits.NewGrowingBuffer(tablesSize + int(pageBytes))

	body.Write(starpakBlock)
	if profile.HasOptionalStarpak() {
		body.Write(optStarpakBlock)
	}

	for _, seg := range b.segments {
		record := schema.VirtualSegment{TypeTag: seg.typeTag, SubType: seg.alignment, Size: seg.size}
		if seg.baseAlignment != 0 {
			record.SubType = seg.baseAlignment
		}
		record.Encode(&body)
	}

	for _, seg := range b.segments {
		page := schema.PageInfo{SegmentIndex: seg.index, SubType: seg.alignment, Size: uint32(seg.size)}
		page.Encode(&body)
	}

	for i := range b.descriptors {
		b.descriptors[i].Encode(&body)
	}

	if profile.HasGuidDescriptors() {
		for i := range b.guidDescriptors {
			b.guidDescriptors[i].Encode(&body)
		}
	}

	for i := range relations.relations {
		relations.relations[i].Encode(&body)
	}

	for idx, entry := range b.assets {
		entry.RelationsStart = relations.starts[idx]
		entry.RelationsCount = relations.counts[idx]

		if _, err := entry.Encode(&body, profile); err != nil {
			return nil, Stats{}, errdefs.Consistencyf("unable to encode asset entry %d: %s", idx, err.Error())
		}
	}

	if body.Position() != tablesSize {
		return nil, Stats{}, errdefs.Consistencyf("table section is %d bytes, expected %d", body.Position(), tablesSize)
	}

	for _, block := range b.blocks {
		body.Write(block.data)
	}

	decompressedSize := uint64(profile.HeaderSize() + body.Position())
	header.DecompressedSize = decompressedSize
	header.CompressedSize = decompressedSize

	payload := body.Bytes()

	if b.opts.compress {
		compressed := bytes.Buffer{}
		if err := compression.CompressLz4(payload, &compressed); err != nil {
			return nil, Stats{}, errors.Wrap(err, "unable to compress container")
		}

		payload = compressed.Bytes()
		header.Flags |= schema.FlagLZ4Compressed
		header.CompressedSize = uint64(profile.HeaderSize() + len(payload))
	}

	out := bits.NewEncodeBuffer(make([]byte, profile.HeaderSize()+len(payload)), body.Order())

	headerSize, err := header.Encode(&out)
	if err != nil {
		return nil, Stats{}, errdefs.Consistencyf("unable to encode header: %s", err.Error())
	}
	if headerSize != profile.HeaderSize() {
		return nil, Stats{}, errdefs.Consistencyf("%s header encoded to %d bytes, expected %d", profile, headerSize, profile.HeaderSize())
	}

	out.Write(payload)

	if logger.Logger.IsLevelEnabled(logrus.DebugLevel) {
		logger.Debugf("container header:\n%s", spew.Sdump(header))
	}

	stats := Stats{
		Profile:          profile,
		Segments:         len(b.segments),
		Descriptors:      len(b.descriptors),
		GuidDescriptors:  len(b.guidDescriptors),
		Relations:        len(relations.relations),
		Assets:           len(b.assets),
		PageBytes:        pageBytes,
		DecompressedSize: header.DecompressedSize,
		CompressedSize:   header.CompressedSize,
	}

	return out.Bytes(), stats, nil
}

// pathBlock lays out NUL terminated paths, padded to 4 bytes.
func pathBlock(paths []string) []byte {
	if len(paths) == 0 {
		return nil
	}

	bw := bits.NewGrowingBuffer(64)
	for _, p := range paths {
		bw.WriteCString(p)
	}
	bw.AlignTo(4)

	return bw.Bytes()
}

func filetime(ts time.Time) uint64 {
	if ts.IsZero() {
		ts = time.Now()
	}
	return uint64(ts.UnixNano()/100) + filetimeUnixEpoch
}
