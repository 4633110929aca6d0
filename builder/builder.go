// Package builder accumulates the pages, pointer descriptors and asset entries
// of one container and serializes them into the on-disk layout.
//
// A Builder is used from a single goroutine. Page indices are handed out in
// call order and every descriptor is only meaningful against that exact
// order, so encoders must run one after another.
package builder

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dot5enko/repak/bits"
	"github.com/dot5enko/repak/errdefs"
	"github.com/dot5enko/repak/schema"
)

type State uint8

const (
	StateInit State = iota
	StateAccumulating
	StateFinalizing
	StateWritten
	StateError
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateAccumulating:
		return "accumulating"
	case StateFinalizing:
		return "finalizing"
	case StateWritten:
		return "written"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

type options struct {
	profile   schema.Profile
	timestamp time.Time
	compress  bool
	logger    *logrus.Entry
}

type Option func(*options)

func WithProfile(profile schema.Profile) Option {
	return func(o *options) {
		o.profile = profile
	}
}

// WithTimestamp pins the creation time written into the header.
func WithTimestamp(ts time.Time) Option {
	return func(o *options) {
		o.timestamp = ts
	}
}

// WithCompression enables the lz4 stage over everything after the header.
func WithCompression(enabled bool) Option {
	return func(o *options) {
		o.compress = enabled
	}
}

func WithLogger(logger *logrus.Entry) Option {
	return func(o *options) {
		o.logger = logger
	}
}

type tableMark struct {
	segments        int
	descriptors     int
	guidDescriptors int
}

// assetScope tracks everything one encoder touched between BeginAsset and
// AddAssetEntry/DiscardAsset.
type assetScope struct {
	mark    tableMark
	maxPage int64
}

func (s *assetScope) touch(page uint32) {
	if int64(page) > s.maxPage {
		s.maxPage = int64(page)
	}
}

type Builder struct {
	state State
	opts  options

	segments []segment

	// indexed by segment index, presence tracked in blockPresent
	blocks       []rawDataBlock
	blockPresent bits.Bitfield

	descriptors     []schema.Descriptor
	guidDescriptors []schema.Descriptor

	assets    []schema.AssetEntry
	guidIndex map[uint64]int

	starpakPaths    []string
	optStarpakPaths []string

	scope *assetScope
	stats Stats
}

func New(opts ...Option) *Builder {
	o := options{
		profile: schema.ProfileCurrent,
		logger:  logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Builder{
		state:     StateInit,
		opts:      o,
		guidIndex: map[uint64]int{},
	}
}

func (b *Builder) State() State {
	return b.state
}

func (b *Builder) Profile() schema.Profile {
	return b.opts.profile
}

// mutate guards every table mutation. Mutating a frozen builder is a programming error.
func (b *Builder) mutate(op string) {
	switch b.state {
	case StateInit:
		b.state = StateAccumulating
	case StateAccumulating:
	default:
		panic(errdefs.Consistencyf("%s called on a builder in state %s", op, b.state))
	}
}

// BeginAsset opens the scope of one asset. Every page and descriptor created
// until AddAssetEntry or DiscardAsset is attributed to it.
func (b *Builder) BeginAsset() {
	b.mutate("BeginAsset")

	if b.scope != nil {
		panic(errdefs.Consistencyf("BeginAsset called while another asset is open"))
	}

	b.scope = &assetScope{
		mark:    b.mark(),
		maxPage: -1,
	}
}

// DiscardAsset drops everything created since BeginAsset, as if the asset was never started.
func (b *Builder) DiscardAsset() {
	b.mutate("DiscardAsset")

	if b.scope == nil {
		return
	}

	mark := b.scope.mark
	b.scope = nil

	b.segments = b.segments[:mark.segments]
	b.blocks = b.blocks[:mark.segments]
	b.blockPresent.TruncateFrom(mark.segments)
	b.descriptors = b.descriptors[:mark.descriptors]
	b.guidDescriptors = b.guidDescriptors[:mark.guidDescriptors]
}

func (b *Builder) mark() tableMark {
	return tableMark{
		segments:        len(b.segments),
		descriptors:     len(b.descriptors),
		guidDescriptors: len(b.guidDescriptors),
	}
}

// AddStarpakPath registers a mandatory streaming file path, returning its index.
func (b *Builder) AddStarpakPath(path string) int {
	b.mutate("AddStarpakPath")
	return addUnique(&b.starpakPaths, path)
}

// AddOptStarpakPath registers an optional streaming file path, returning its index.
func (b *Builder) AddOptStarpakPath(path string) int {
	b.mutate("AddOptStarpakPath")
	return addUnique(&b.optStarpakPaths, path)
}

func addUnique(list *[]string, value string) int {
	for idx, it := range *list {
		if it == value {
			return idx
		}
	}
	*list = append(*list, value)
	return len(*list) - 1
}
