package bits

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

var (
	ErrEOF          = errors.New("end of file")
	ErrReadMismatch = errors.New("read size mismatch")
)

const MaxBinReaderBufferSize = 256

type BitsReader struct {
	readBuffer [MaxBinReaderBufferSize]byte

	buf   io.Reader
	order binary.ByteOrder
	read  int
}

func NewReader(buf io.Reader, order binary.ByteOrder) *BitsReader {
	return &BitsReader{buf: buf, order: order}
}

// Position is the number of bytes consumed so far.
func (r *BitsReader) Position() int {
	return r.read
}

func (r *BitsReader) readNextBytesIntoReadBuffer(size int) error {
	readBytes, err := io.ReadFull(r.buf, r.readBuffer[:size])
	r.read += readBytes

	if err == io.EOF {
		return ErrEOF
	}

	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrReadMismatch
		}
		return err
	}

	return nil
}

func (r *BitsReader) ReadU8() (uint8, error) {
	err := r.readNextBytesIntoReadBuffer(1)

	if err != nil {
		return 0, err
	}

	return r.readBuffer[0], err
}

func (r *BitsReader) MustReadU8() uint8 {
	u, er := r.ReadU8()
	if er != nil {
		panic(er)
	}
	return u
}

func (r *BitsReader) ReadU16() (uint16, error) {

	err := r.readNextBytesIntoReadBuffer(2)

	if err != nil {
		return 0, err
	}

	v := r.order.Uint16(r.readBuffer[:2])
	return v, err
}

func (r *BitsReader) MustReadU16() uint16 {
	u, er := r.ReadU16()
	if er != nil {
		panic(er)
	}
	return u
}

func (r *BitsReader) ReadU32() (uint32, error) {
	readErr := r.readNextBytesIntoReadBuffer(4)
	if readErr != nil {
		return 0, readErr
	}
	v := r.order.Uint32(r.readBuffer[:4])
	return v, nil
}

func (r *BitsReader) MustReadU32() uint32 {
	u, er := r.ReadU32()
	if er != nil {
		panic(er)
	}
	return u
}

func (r *BitsReader) ReadU64() (uint64, error) {

	readErr := r.readNextBytesIntoReadBuffer(8)
	if readErr != nil {
		return 0, readErr
	}

	v := r.order.Uint64(r.readBuffer[:8])
	return v, nil
}

func (r *BitsReader) MustReadU64() uint64 {
	u, er := r.ReadU64()
	if er != nil {
		panic(er)
	}
	return u
}

func (r *BitsReader) ReadF32() (float32, error) {
	u, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(u), nil
}

func (r *BitsReader) MustReadF32() float32 {
	f, er := r.ReadF32()
	if er != nil {
		panic(er)
	}
	return f
}

func (r *BitsReader) ReadBytes(n int, out []byte) error {

	readBytes, err := io.ReadFull(r.buf, out[:n])
	r.read += readBytes

	if readBytes != n {
		return ErrReadMismatch
	}

	return err
}

// Skip discards n bytes.
func (r *BitsReader) Skip(n int) error {
	for n > 0 {
		chunk := min(n, MaxBinReaderBufferSize)
		if err := r.readNextBytesIntoReadBuffer(chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

// ReadCString reads bytes up to and including a NUL terminator.
func (r *BitsReader) ReadCString() (string, error) {
	var out []byte
	for {
		b, err := r.ReadU8()
		if err != nil {
			return "", err
		}
		if b == 0 {
			return string(out), nil
		}
		out = append(out, b)
	}
}
