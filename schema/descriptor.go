package schema

import "github.com/dot5enko/repak/bits"

const (
	PagePtrSize    = 4 + 4
	DescriptorSize = 4 + 4
	RelationSize   = 4
	GuidSize       = 8
)

// PagePtr is a pointer-shaped field inside a page: the loader replaces the
// (index, offset) pair with the in-memory address of that location.
type PagePtr struct {
	Index  uint32
	Offset uint32
}

func (p PagePtr) Encode(bw *bits.BitWriter) {
	bw.PutUint32(p.Index)
	bw.PutUint32(p.Offset)
}

func (p *PagePtr) FromBytes(reader *bits.BitsReader) (err error) {
	if p.Index, err = reader.ReadU32(); err != nil {
		return err
	}
	p.Offset, err = reader.ReadU32()
	return err
}

// Descriptor marks a byte location inside a page that holds either a PagePtr
// or, in the guid descriptor table, an asset guid.
type Descriptor struct {
	PageIndex  uint32
	PageOffset uint32
}

func (d *Descriptor) Encode(bw *bits.BitWriter) {
	bw.PutUint32(d.PageIndex)
	bw.PutUint32(d.PageOffset)
}

func (d *Descriptor) FromBytes(reader *bits.BitsReader) (err error) {
	if d.PageIndex, err = reader.ReadU32(); err != nil {
		return err
	}
	d.PageOffset, err = reader.ReadU32()
	return err
}

// Relation is one entry of the relation table: the index of an asset entry
// that uses the owning asset.
type Relation struct {
	FileID uint32
}

func (r *Relation) Encode(bw *bits.BitWriter) {
	bw.PutUint32(r.FileID)
}

func (r *Relation) FromBytes(reader *bits.BitsReader) (err error) {
	r.FileID, err = reader.ReadU32()
	return err
}
