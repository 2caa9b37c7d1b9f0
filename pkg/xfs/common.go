package xfs

import "github.com/pkg/errors"

var (
	// ErrNotXFS is returned when a file or image does not belong to an XFS
	// filesystem.
	ErrNotXFS = errors.New("not an xfs filesystem")

	// ErrUnsupported is returned by the kernel bindings on platforms that
	// have no XFS ioctl interface.
	ErrUnsupported = errors.New("xfs ioctls are not supported on this platform")
)

func divide(x, y int64) int64 {
	return (x + y - 1) / y
}

func align(x, y int64) int64 {
	return divide(x, y) * y
}
