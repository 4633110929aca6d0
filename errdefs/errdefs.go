package errdefs

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrValidation: unsupported or malformed source, aborts the build.
	ErrValidation = errors.New("validation error")
	// ErrSchema: one asset's declared structure is insufficient, the asset is skipped.
	ErrSchema = errors.New("schema error")
	// ErrIO: an expected source file is absent or unreadable, aborts the build.
	ErrIO = errors.New("io error")
	// ErrConsistency: segment/descriptor/block bookkeeping mismatch, an internal defect.
	ErrConsistency = errors.New("consistency error")
)

type kindError struct {
	kind  error
	msg   string
	cause error
}

func (e *kindError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.kind, e.msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

func (e *kindError) Is(target error) bool {
	return target == e.kind
}

func (e *kindError) Unwrap() error {
	return e.cause
}

func newKind(kind, cause error, format string, args ...any) error {
	return errors.WithStack(&kindError{kind: kind, msg: fmt.Sprintf(format, args...), cause: cause})
}

func Validationf(format string, args ...any) error {
	return newKind(ErrValidation, nil, format, args...)
}

func WrapValidation(cause error, format string, args ...any) error {
	return newKind(ErrValidation, cause, format, args...)
}

func Schemaf(format string, args ...any) error {
	return newKind(ErrSchema, nil, format, args...)
}

func WrapIO(cause error, format string, args ...any) error {
	return newKind(ErrIO, cause, format, args...)
}

func Consistencyf(format string, args ...any) error {
	return newKind(ErrConsistency, nil, format, args...)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsSchema(err error) bool {
	return errors.Is(err, ErrSchema)
}

func IsIO(err error) bool {
	return errors.Is(err, ErrIO)
}

func IsConsistency(err error) bool {
	return errors.Is(err, ErrConsistency)
}

// Code is the process exit status for a failed build.
func Code(err error) int {
	switch {
	case err == nil:
		return 0
	case IsValidation(err):
		return 2
	case IsIO(err):
		return 3
	case IsConsistency(err):
		return 4
	default:
		return 1
	}
}
