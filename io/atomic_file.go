package io

import (
	"bufio"
	"fmt"
	goio "io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

const atomicWriteBufferSize = 256 * 1024

// StagedFile is a fully written temporary file waiting to replace dest.
type StagedFile struct {
	dest    string
	tmpPath string

	// previous dest moved aside during Commit
	backup string
}

// Stage streams into a temporary file next to dest. Nothing at dest changes
// until the file is passed to Commit. On error the temporary file is gone.
func Stage(dest string, perm os.FileMode, write func(w goio.Writer) error) (*StagedFile, error) {

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if err := checkReplaceable(dest); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(dest)+"-*")
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()

	fail := func(cause error) (*StagedFile, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return nil, cause
	}

	bw := bufio.NewWriterSize(tmp, atomicWriteBufferSize)
	if err := write(bw); err != nil {
		return fail(err)
	}
	if err := bw.Flush(); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return nil, err
	}

	return &StagedFile{dest: dest, tmpPath: tmpPath}, nil
}

func (s *StagedFile) Dest() string {
	return s.dest
}

// Abort drops the temporary file. Safe to call after Commit.
func (s *StagedFile) Abort() {
	if s.tmpPath != "" {
		_ = os.Remove(s.tmpPath)
		s.tmpPath = ""
	}
}

// only regular files or nothing may sit at dest
func checkReplaceable(dest string) error {
	stat, err := os.Lstat(dest)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !stat.Mode().IsRegular() {
		return fmt.Errorf("%s exists and is not a regular file", dest)
	}
	return nil
}

func (s *StagedFile) swap() error {

	if err := checkReplaceable(s.dest); err != nil {
		return err
	}

	if _, err := os.Lstat(s.dest); err == nil {
		s.backup = s.tmpPath + ".prev"
		if err = os.Rename(s.dest, s.backup); err != nil {
			s.backup = ""
			return err
		}
	}

	if err := os.Rename(s.tmpPath, s.dest); err != nil {
		s.restore()
		return err
	}
	s.tmpPath = ""

	return nil
}

// restore puts the previous dest back, or removes dest when there was none.
func (s *StagedFile) restore() {
	if s.backup == "" {
		if s.tmpPath == "" {
			_ = os.Remove(s.dest)
		}
		return
	}
	_ = os.Rename(s.backup, s.dest)
	s.backup = ""
}

// Commit moves every staged file over its destination. Either all of them
// land or, on error, every destination is back to what it was before.
func Commit(files ...*StagedFile) error {

	for idx, f := range files {
		if err := f.swap(); err != nil {
			for _, done := range files[:idx] {
				done.restore()
			}
			for _, f := range files {
				f.Abort()
			}
			return err
		}
	}

	for _, f := range files {
		if f.backup != "" {
			_ = os.Remove(f.backup)
			f.backup = ""
		}

		dir := filepath.Dir(f.dest)
		if err := syncDir(dir); err != nil {
			logrus.WithError(err).Debugf("unable to sync directory %s", dir)
		}
	}

	return nil
}

// WriteFileAtomic streams into a temporary file next to dest and renames it
// over dest only when write returned no error. On failure the temporary file
// is removed and dest is left untouched.
func WriteFileAtomic(dest string, perm os.FileMode, write func(w goio.Writer) error) error {

	staged, err := Stage(dest, perm, write)
	if err != nil {
		return err
	}

	return Commit(staged)
}
