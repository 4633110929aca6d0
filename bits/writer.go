package bits

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var ErrOutOfRange = errors.New("write position out of range")

// BitWriter encodes fixed-layout records into a byte buffer. Every field is
// written tightly packed, there is never implicit padding between fields.
type BitWriter struct {
	pos   int
	data  []byte
	size  int
	order binary.ByteOrder

	growingEnabled bool
}

func NewEncodeBuffer(buf []byte, order binary.ByteOrder) BitWriter {

	result := BitWriter{}

	result.data = buf
	result.pos = 0
	result.size = len(buf)
	result.order = order

	return result
}

// NewGrowingBuffer returns a little-endian writer that grows on demand,
// starting with sizeHint bytes of capacity.
func NewGrowingBuffer(sizeHint int) BitWriter {
	if sizeHint <= 0 {
		sizeHint = 64
	}

	result := NewEncodeBuffer(make([]byte, sizeHint), binary.LittleEndian)
	result.EnableGrowing()

	return result
}

func (this *BitWriter) EnableGrowing() {
	this.growingEnabled = true
}

func (this *BitWriter) Reset() {
	this.pos = 0
}

func (this BitWriter) Position() int {
	return this.pos
}

func (this *BitWriter) grow(atLeast int) {

	newSize := this.size * 2
	if this.pos+atLeast > newSize {
		newSize = this.pos + atLeast
	}

	newBuf := make([]byte, newSize)

	copy(newBuf, this.data[:this.pos])
	this.data = newBuf
	this.size = newSize
}

func (this *BitWriter) tryGrow(n int) {
	if (this.pos + n) > this.size {
		if this.growingEnabled {
			this.grow(n)
		} else {
			panic(fmt.Sprintf("bit writer growing is disabled on pos : %d, try grow %d, from size : %d", this.pos, n, this.size))
		}
	}
}

func (this *BitWriter) Write(p []byte) (n int, err error) {

	oldl := len(p)
	this.tryGrow(oldl)

	n = copy(this.data[this.pos:], p)

	if oldl != n {
		return 0, errors.New("not enough space")
	}

	this.pos += n

	return
}

// WriteCString writes s followed by a NUL terminator.
func (this *BitWriter) WriteCString(s string) {
	this.tryGrow(len(s) + 1)
	copy(this.data[this.pos:], s)
	this.pos += len(s)
	this.data[this.pos] = 0
	this.pos++
}

// EmptyBytes advances over i zero bytes.
func (this *BitWriter) EmptyBytes(i int) {
	this.tryGrow(i)
	clear(this.data[this.pos : this.pos+i])
	this.pos += i
}

// AlignTo pads with zero bytes until the position is a multiple of alignment.
func (this *BitWriter) AlignTo(alignment int) {
	if alignment <= 1 {
		return
	}
	if rem := this.pos % alignment; rem != 0 {
		this.EmptyBytes(alignment - rem)
	}
}

func (this *BitWriter) Bytes() []byte {
	return this.data[:this.pos]
}

func (this *BitWriter) WriteByte(u byte) error {
	this.tryGrow(1)
	this.data[this.pos] = u
	this.pos++
	return nil
}

func (this *BitWriter) PutUint8(v uint8) {
	_ = this.WriteByte(v)
}

func (this *BitWriter) PutUint16(v uint16) {
	this.tryGrow(2)
	this.order.PutUint16(this.data[this.pos:], v)
	this.pos += 2
}

func (this *BitWriter) PutInt16(v int16) {
	this.PutUint16(uint16(v))
}

func (this *BitWriter) PutUint32(v uint32) {
	this.tryGrow(4)
	this.order.PutUint32(this.data[this.pos:], v)
	this.pos += 4
}

func (this *BitWriter) PutInt32(v int32) {
	this.PutUint32(uint32(v))
}

func (this *BitWriter) PutUint64(v uint64) {
	this.tryGrow(8)
	this.order.PutUint64(this.data[this.pos:], v)
	this.pos += 8
}

func (this *BitWriter) PutInt64(v int64) {
	this.PutUint64(uint64(v))
}

func (this *BitWriter) PutFloat32(v float32) {
	this.PutUint32(math.Float32bits(v))
}

func (this *BitWriter) PutFloat64(f float64) {
	this.PutUint64(math.Float64bits(f))
}

// PutUint32At overwrites 4 bytes at an already written offset, the position is unchanged.
func (this *BitWriter) PutUint32At(offset int, v uint32) error {
	if offset < 0 || offset+4 > this.pos {
		return ErrOutOfRange
	}
	this.order.PutUint32(this.data[offset:], v)
	return nil
}

// PutUint64At overwrites 8 bytes at an already written offset, the position is unchanged.
func (this *BitWriter) PutUint64At(offset int, v uint64) error {
	if offset < 0 || offset+8 > this.pos {
		return ErrOutOfRange
	}
	this.order.PutUint64(this.data[offset:], v)
	return nil
}

func (this BitWriter) Order() binary.ByteOrder {
	return this.order
}
