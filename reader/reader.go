// Package reader parses a container back into its tables and pages. It is
// the inverse of the builder's serializer and backs the info command.
package reader

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"

	"github.com/dot5enko/repak/bits"
	"github.com/dot5enko/repak/compression"
	"github.com/dot5enko/repak/errdefs"
	rio "github.com/dot5enko/repak/io"
	"github.com/dot5enko/repak/schema"
)

type Container struct {
	Header schema.FileHeader

	StarpakPaths    []string
	OptStarpakPaths []string

	Segments        []schema.VirtualSegment
	Pages           []schema.PageInfo
	Descriptors     []schema.Descriptor
	GuidDescriptors []schema.Descriptor
	Relations       []schema.Relation
	Assets          []schema.AssetEntry

	// page bytes, indexed like Pages
	PageData [][]byte
}

// Open reads and parses the container at path.
func Open(path string) (*Container, error) {

	fr := rio.NewFileReader(path)
	if !fr.Exists() {
		return nil, errdefs.WrapIO(fmt.Errorf("file not found"), "unable to open container %s", path)
	}

	if err := fr.Open(); err != nil {
		return nil, errdefs.WrapIO(err, "unable to open container %s", path)
	}
	defer fr.Close()

	data, err := fr.ReadAll()
	if err != nil {
		return nil, errdefs.WrapIO(err, "unable to read container %s", path)
	}

	return Parse(data)
}

// Parse decodes a complete container image.
func Parse(data []byte) (c *Container, topErr error) {

	defer func() {
		if r := recover(); r != nil {
			c = nil
			topErr = errdefs.Validationf("truncated container: %v", r)
		}
	}()

	c = &Container{}

	headerReader := bits.NewReader(bytes.NewReader(data), binary.LittleEndian)
	if err := c.Header.FromBytes(headerReader); err != nil {
		return nil, errdefs.Validationf("unable to decode header: %s", err.Error())
	}

	profile := c.Header.Profile
	headerSize := profile.HeaderSize()

	if uint64(len(data)) != c.Header.CompressedSize {
		return nil, errdefs.Validationf("container is %d bytes, header says %d", len(data), c.Header.CompressedSize)
	}

	if c.Header.DecompressedSize < uint64(headerSize) {
		return nil, errdefs.Validationf("decompressed size %d is smaller than the header", c.Header.DecompressedSize)
	}

	body := data[headerSize:]
	if c.Header.Flags&schema.FlagLZ4Compressed != 0 {
		var err error
		body, err = compression.DecompressLz4(body, int(c.Header.DecompressedSize)-headerSize)
		if err != nil {
			return nil, errdefs.Validationf("unable to decompress container body: %s", err.Error())
		}
	} else if c.Header.CompressedSize != c.Header.DecompressedSize {
		return nil, errdefs.Validationf("uncompressed container with differing sizes (%d, %d)", c.Header.CompressedSize, c.Header.DecompressedSize)
	}

	r := bits.NewReader(bytes.NewReader(body), binary.LittleEndian)

	c.StarpakPaths = readPathBlock(r, int(c.Header.StarpakRefSize))
	if profile.HasOptionalStarpak() {
		c.OptStarpakPaths = readPathBlock(r, int(c.Header.StarpakOptRefSize))
	}

	c.Segments = make([]schema.VirtualSegment, c.Header.SegmentCount)
	for i := range c.Segments {
		if err := c.Segments[i].FromBytes(r); err != nil {
			return nil, errdefs.Validationf("unable to decode segment %d: %s", i, err.Error())
		}
	}

	c.Pages = make([]schema.PageInfo, c.Header.PageCount)
	for i := range c.Pages {
		if err := c.Pages[i].FromBytes(r); err != nil {
			return nil, errdefs.Validationf("unable to decode page %d: %s", i, err.Error())
		}
		if int(c.Pages[i].SegmentIndex) >= len(c.Segments) {
			return nil, errdefs.Validationf("page %d refers to segment %d of %d", i, c.Pages[i].SegmentIndex, len(c.Segments))
		}
		if uint64(c.Pages[i].Size) > uint64(len(body)) {
			return nil, errdefs.Validationf("page %d is %d bytes, larger than the container body", i, c.Pages[i].Size)
		}
	}

	c.Descriptors = make([]schema.Descriptor, c.Header.DescriptorCount)
	for i := range c.Descriptors {
		if err := c.Descriptors[i].FromBytes(r); err != nil {
			return nil, errdefs.Validationf("unable to decode descriptor %d: %s", i, err.Error())
		}
	}

	c.GuidDescriptors = make([]schema.Descriptor, c.Header.GuidDescriptorCount)
	for i := range c.GuidDescriptors {
		if err := c.GuidDescriptors[i].FromBytes(r); err != nil {
			return nil, errdefs.Validationf("unable to decode guid descriptor %d: %s", i, err.Error())
		}
	}

	c.Relations = make([]schema.Relation, c.Header.RelationCount)
	for i := range c.Relations {
		if err := c.Relations[i].FromBytes(r); err != nil {
			return nil, errdefs.Validationf("unable to decode relation %d: %s", i, err.Error())
		}
	}

	c.Assets = make([]schema.AssetEntry, c.Header.AssetEntryCount)
	for i := range c.Assets {
		if err := c.Assets[i].FromBytes(r, profile); err != nil {
			return nil, errdefs.Validationf("unable to decode asset entry %d: %s", i, err.Error())
		}
	}

	c.PageData = make([][]byte, len(c.Pages))
	for i, page := range c.Pages {
		c.PageData[i] = make([]byte, page.Size)
		if err := r.ReadBytes(int(page.Size), c.PageData[i]); err != nil {
			return nil, errdefs.Validationf("unable to read page %d (%d bytes): %s", i, page.Size, err.Error())
		}
	}

	if consumed := uint64(headerSize + r.Position()); consumed != c.Header.DecompressedSize {
		return nil, errdefs.Validationf("decoded %d bytes, header says %d", consumed, c.Header.DecompressedSize)
	}

	return c, nil
}

func readPathBlock(r *bits.BitsReader, size int) []string {
	if size == 0 {
		return nil
	}

	block := make([]byte, size)
	if err := r.ReadBytes(size, block); err != nil {
		panic(err)
	}

	var paths []string
	for _, p := range bytes.Split(block, []byte{0}) {
		if len(p) > 0 {
			paths = append(paths, string(p))
		}
	}
	return paths
}

// ReadPagePtr decodes the PagePtr stored at offset inside page.
func (c *Container) ReadPagePtr(page uint32, offset uint32) (schema.PagePtr, error) {
	if int(page) >= len(c.PageData) || uint64(offset)+schema.PagePtrSize > uint64(len(c.PageData[page])) {
		return schema.PagePtr{}, errors.Errorf("pointer at page %d offset %d is out of range", page, offset)
	}

	raw := c.PageData[page][offset:]
	return schema.PagePtr{
		Index:  binary.LittleEndian.Uint32(raw),
		Offset: binary.LittleEndian.Uint32(raw[4:]),
	}, nil
}

// CString reads a NUL terminated string the pointer refers to.
func (c *Container) CString(ptr schema.PagePtr) (string, error) {
	if int(ptr.Index) >= len(c.PageData) || int(ptr.Offset) >= len(c.PageData[ptr.Index]) {
		return "", errors.Errorf("string pointer %d:%d is out of range", ptr.Index, ptr.Offset)
	}

	raw := c.PageData[ptr.Index][ptr.Offset:]
	if end := bytes.IndexByte(raw, 0); end >= 0 {
		return string(raw[:end]), nil
	}
	return "", errors.Errorf("string at %d:%d is not terminated", ptr.Index, ptr.Offset)
}

// FindAsset returns the index of the entry with the given guid.
func (c *Container) FindAsset(guid uint64) (int, bool) {
	for idx, entry := range c.Assets {
		if entry.GUID == guid {
			return idx, true
		}
	}
	return -1, false
}
