package compression

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

func CompressLz4(src []byte, output *bytes.Buffer) error {
	zw := lz4.NewWriter(output)

	if _, err := zw.Write(src); err != nil {
		return err
	}

	flushErr := zw.Flush()

	if flushErr != nil {
		return flushErr
	}

	return zw.Close()
}

// DecompressLz4 inflates an lz4 frame, expecting exactly expectedSize bytes out.
func DecompressLz4(src []byte, expectedSize int) ([]byte, error) {
	zr := lz4.NewReader(bytes.NewReader(src))

	out := make([]byte, expectedSize)
	n, err := io.ReadFull(zr, out)
	if err != nil {
		return nil, fmt.Errorf("unable to decompress lz4 frame (%d of %d bytes): %s", n, expectedSize, err.Error())
	}

	return out, nil
}
