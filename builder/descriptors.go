package builder

import (
	"github.com/dot5enko/repak/schema"
)

// RegisterDescriptor marks pageOffset inside page pageIndex as a PagePtr the
// loader has to relocate. The pointer must already be written into the page's
// buffer. Nothing scans buffers for pointers: a field without a descriptor is
// read by the loader as plain bytes.
func (b *Builder) RegisterDescriptor(pageIndex uint32, pageOffset uint32) {
	b.mutate("RegisterDescriptor")

	b.descriptors = append(b.descriptors, schema.Descriptor{PageIndex: pageIndex, PageOffset: pageOffset})

	if b.scope != nil {
		b.scope.touch(pageIndex)
	}
}

// RegisterGuidDescriptor marks pageOffset inside page pageIndex as holding an
// asset guid the loader resolves against the asset table.
func (b *Builder) RegisterGuidDescriptor(pageIndex uint32, pageOffset uint32) {
	b.mutate("RegisterGuidDescriptor")

	b.guidDescriptors = append(b.guidDescriptors, schema.Descriptor{PageIndex: pageIndex, PageOffset: pageOffset})

	if b.scope != nil {
		b.scope.touch(pageIndex)
	}
}

func (b *Builder) DescriptorCount() int {
	return len(b.descriptors)
}

func (b *Builder) GuidDescriptorCount() int {
	return len(b.guidDescriptors)
}
