// Package starpak builds the streaming file that holds asset payloads the
// loader pages in on demand instead of keeping them in the container.
package starpak

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/dot5enko/repak/bits"
)

const (
	// "SRPk"
	Magic   uint32 = 0x6b505253
	Version uint32 = 1

	// every entry starts on its own 4k boundary, the header occupies the first one
	EntryAlignment = 4096
	HeaderSize     = EntryAlignment

	EntryRecordSize = 16
)

type Entry struct {
	Offset uint64
	Size   uint64
}

// Writer accumulates entries in memory. Offsets handed out by Add are final.
type Writer struct {
	entries []Entry
	data    [][]byte
	end     uint64
}

func NewWriter() *Writer {
	return &Writer{end: HeaderSize}
}

// Add appends one payload and returns the file offset it will live at.
func (w *Writer) Add(data []byte) uint64 {
	offset := w.end

	w.entries = append(w.entries, Entry{Offset: offset, Size: uint64(len(data))})
	w.data = append(w.data, data)
	w.end = bits.AlignUp(offset+uint64(len(data)), EntryAlignment)

	return offset
}

func (w *Writer) Len() int {
	return len(w.entries)
}

func (w *Writer) Entries() []Entry {
	out := make([]Entry, len(w.entries))
	copy(out, w.entries)
	return out
}

// Size is the total file size WriteTo produces.
func (w *Writer) Size() uint64 {
	return w.end + uint64(len(w.entries))*EntryRecordSize + 8
}

func (w *Writer) WriteTo(out io.Writer) (int64, error) {

	var written int64

	put := func(p []byte) error {
		n, err := out.Write(p)
		written += int64(n)
		return err
	}

	header := bits.NewEncodeBuffer(make([]byte, HeaderSize), binary.LittleEndian)
	header.PutUint32(Magic)
	header.PutUint32(Version)
	header.EmptyBytes(HeaderSize - header.Position())

	if err := put(header.Bytes()); err != nil {
		return written, errors.Wrap(err, "unable to write starpak header")
	}

	padding := make([]byte, EntryAlignment)

	for idx, entry := range w.entries {
		if err := put(w.data[idx]); err != nil {
			return written, errors.Wrapf(err, "unable to write starpak entry %d", idx)
		}

		gap := bits.AlignUp(entry.Offset+entry.Size, EntryAlignment) - (entry.Offset + entry.Size)
		if err := put(padding[:gap]); err != nil {
			return written, errors.Wrapf(err, "unable to pad starpak entry %d", idx)
		}
	}

	trailer := bits.NewGrowingBuffer(len(w.entries)*EntryRecordSize + 8)
	for _, entry := range w.entries {
		trailer.PutUint64(entry.Offset)
		trailer.PutUint64(entry.Size)
	}
	trailer.PutUint64(uint64(len(w.entries)))

	if err := put(trailer.Bytes()); err != nil {
		return written, errors.Wrap(err, "unable to write starpak entry table")
	}

	return written, nil
}

// ReadEntries parses the trailing entry table of a complete starpak image.
func ReadEntries(image []byte) ([]Entry, error) {

	if len(image) < HeaderSize+8 {
		return nil, errors.Errorf("starpak image too short: %d bytes", len(image))
	}

	if magic := binary.LittleEndian.Uint32(image); magic != Magic {
		return nil, errors.Errorf("invalid starpak magic 0x%08x", magic)
	}

	count := binary.LittleEndian.Uint64(image[len(image)-8:])
	tableSize := count * EntryRecordSize
	if tableSize+8 > uint64(len(image)-HeaderSize) {
		return nil, errors.Errorf("starpak entry count %d does not fit a %d byte image", count, len(image))
	}

	table := image[uint64(len(image))-8-tableSize:]
	entries := make([]Entry, count)
	for i := range entries {
		entries[i].Offset = binary.LittleEndian.Uint64(table[i*EntryRecordSize:])
		entries[i].Size = binary.LittleEndian.Uint64(table[i*EntryRecordSize+8:])
	}

	return entries, nil
}
