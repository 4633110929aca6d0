package io

import (
	"errors"
	goio "io"
	"os"
)

// FileReader gives read access to one source file.
type FileReader struct {
	path   string
	file   *os.File
	opened bool

	exists bool
	size   int64
}

func NewFileReader(path string) *FileReader {

	stat, err := os.Stat(path)

	freader := &FileReader{
		path:   path,
		exists: err == nil && stat.Mode().IsRegular(),
	}

	if freader.exists {
		freader.size = stat.Size()
	}

	return freader
}

func (f *FileReader) Path() string {
	return f.path
}

func (f *FileReader) Exists() bool {
	return f.exists
}

func (f *FileReader) Size() int64 {
	return f.size
}

func (f *FileReader) Open() (topErr error) {

	f.file, topErr = os.OpenFile(f.path, os.O_RDONLY, 0)

	if topErr == nil {
		f.opened = true
	}

	return topErr
}

func (f *FileReader) Close() error {
	if !f.opened {
		return nil
	}

	f.opened = false
	return f.file.Close()
}

// Reader exposes the opened file for sequential reads.
func (f *FileReader) Reader() goio.Reader {
	return f.file
}

func (f *FileReader) ReadAt(out []byte, off, length int) (err error) {
	if !f.opened {
		err = errors.New("file not opened")
		return err
	}

	var readBytes int
	readBytes, err = f.file.ReadAt(out[:length], int64(off))

	if readBytes != length {
		err = errors.New("read bytes mismatch")
		return err
	}

	return nil
}

// ReadAll reads the whole file in one go.
func (f *FileReader) ReadAll() ([]byte, error) {
	if !f.opened {
		return nil, errors.New("file not opened")
	}

	if _, err := f.file.Seek(0, goio.SeekStart); err != nil {
		return nil, err
	}

	return goio.ReadAll(f.file)
}
