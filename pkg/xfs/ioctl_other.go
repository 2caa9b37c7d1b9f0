//go:build !linux

package xfs

// Descriptor is anything with an open file descriptor, usually *os.File.
type Descriptor interface {
	Fd() uintptr
}

func IsXFS(f Descriptor) (bool, error) {
	return false, ErrUnsupported
}

func Inode(f Descriptor) (uint64, error) {
	return 0, ErrUnsupported
}

func Device(f Descriptor) (uint64, error) {
	return 0, ErrUnsupported
}

func FSGeometry(f Descriptor) (Geometry, error) {
	return Geometry{}, ErrUnsupported
}

func BulkstatSingle(f Descriptor, ino uint64) (Bstat, error) {
	return Bstat{}, ErrUnsupported
}

func SwapExtents(target, tmp Descriptor, stat Bstat) error {
	return ErrUnsupported
}

func GetFSXattr(f Descriptor) (FSXattr, error) {
	return FSXattr{}, ErrUnsupported
}

func SetFSXattr(f Descriptor, fsx FSXattr) error {
	return ErrUnsupported
}

func Fiemap(f Descriptor) ([]Extent, error) {
	return nil, ErrUnsupported
}

func Fallocate(f Descriptor, off, length int64) error {
	return ErrUnsupported
}

func Fchown(f Descriptor, uid, gid uint32) error {
	return ErrUnsupported
}
