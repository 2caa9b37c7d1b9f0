package fsr

import (
	"fmt"
	"syscall"

	"github.com/pkg/errors"
)

// Kind classifies why a file could not be aligned or repacked. Kinds are
// errors themselves so that errors.Is(err, OffsetUnreachable) works on any
// wrapped failure.
type Kind string

func (k Kind) Error() string {
	return string(k)
}

const (
	QueryFailure           Kind = "metadata query failed"
	AttributeCreateFailure Kind = "attribute creation failed"
	OffsetUnreachable      Kind = "attribute fork offset unreachable"

	CreateFailure      Kind = "replacement inode creation failed"
	AlignFailure       Kind = "attribute fork alignment failed"
	ReplicationFailure Kind = "replication failed"
	SwapIncompatible   Kind = "extent swap rejected: forks incompatible"
	SwapChanged        Kind = "extent swap rejected: file changed"
	SwapFailure        Kind = "extent swap failed"
)

var (
	// ErrSkipped marks files that were deliberately left alone.
	ErrSkipped = errors.New("skipped")

	// ErrNoImprovement is returned when the replacement is no less
	// fragmented than the original.
	ErrNoImprovement = errors.WithMessage(ErrSkipped, "no improvement")
)

// AlignError is a hard alignment failure.
type AlignError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *AlignError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("align: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("align: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *AlignError) Unwrap() error {
	return e.Err
}

func (e *AlignError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// RepackError is a failure to repack one file. The replacement inode has
// always been released by the time it is returned.
type RepackError struct {
	Kind Kind
	Path string
	Op   string
	Err  error
}

func (e *RepackError) Error() string {
	return fmt.Sprintf("%s: %s: %s: %v", e.Path, e.Op, e.Kind, e.Err)
}

func (e *RepackError) Unwrap() error {
	return e.Err
}

func (e *RepackError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// classifySwap maps the errno from the swap ioctl onto a failure kind.
func classifySwap(err error) Kind {
	switch {
	case errors.Is(err, syscall.EINVAL):
		return SwapIncompatible
	case errors.Is(err, syscall.EBUSY), errors.Is(err, syscall.EFAULT):
		return SwapChanged
	default:
		return SwapFailure
	}
}

// KindOf returns the failure kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var re *RepackError
	if errors.As(err, &re) {
		return re.Kind, true
	}
	var ae *AlignError
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return "", false
}
