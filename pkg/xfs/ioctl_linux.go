//go:build linux

package xfs

import (
	"os"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	iocWrite = 1
	iocRead  = 2

	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNRShift | size<<iocSizeShift
}

// bulkReq mirrors struct xfs_fsop_bulkreq.
type bulkReq struct {
	LastIP  *uint64        // 0
	ICount  int32          // 8
	_       int32          // 12
	UBuffer unsafe.Pointer // 16
	OCount  *int32         // 24
} // 32

var (
	iocFSGeometryV1    = ioc(iocRead, 'X', 100, unsafe.Sizeof(Geometry{}))
	iocBulkstatSingle  = ioc(iocRead|iocWrite, 'X', 102, unsafe.Sizeof(bulkReq{}))
	iocSwapExt         = ioc(iocRead|iocWrite, 'X', 109, unsafe.Sizeof(SwapExt{}))
	iocFSGetXattr      = ioc(iocRead, 'X', 31, unsafe.Sizeof(FSXattr{}))
	iocFSSetXattr      = ioc(iocWrite, 'X', 32, unsafe.Sizeof(FSXattr{}))
	iocFiemap          = ioc(iocRead|iocWrite, 'f', 11, unsafe.Offsetof(fiemapRequest{}.Extents))
	errFiemapTruncated = errors.New("fiemap returned no extents before the end of the file")
)

// Descriptor is anything with an open file descriptor, usually *os.File.
type Descriptor interface {
	Fd() uintptr
}

func ioctl(fd uintptr, name string, request uintptr, argp unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, request, uintptr(argp))
	if errno != 0 {
		return os.NewSyscallError(name, errno)
	}
	return nil
}

// IsXFS reports whether f lives on an XFS filesystem.
func IsXFS(f Descriptor) (bool, error) {
	var sf unix.Statfs_t
	err := unix.Fstatfs(int(f.Fd()), &sf)
	if err != nil {
		return false, os.NewSyscallError("fstatfs", err)
	}
	return uint32(sf.Type) == SBMagicNumber, nil
}

// Inode returns the inode number of an open file.
func Inode(f Descriptor) (uint64, error) {
	var st unix.Stat_t
	err := unix.Fstat(int(f.Fd()), &st)
	if err != nil {
		return 0, os.NewSyscallError("fstat", err)
	}
	return st.Ino, nil
}

// Device returns the device number of the filesystem holding f.
func Device(f Descriptor) (uint64, error) {
	var st unix.Stat_t
	err := unix.Fstat(int(f.Fd()), &st)
	if err != nil {
		return 0, os.NewSyscallError("fstat", err)
	}
	return uint64(st.Dev), nil
}

// FSGeometry reads the geometry of the filesystem holding f.
func FSGeometry(f Descriptor) (Geometry, error) {
	var g Geometry
	err := ioctl(f.Fd(), "XFS_IOC_FSGEOMETRY_V1", iocFSGeometryV1, unsafe.Pointer(&g))
	return g, err
}

// BulkstatSingle reads the bulkstat record of inode ino. f may be any file
// on the same filesystem.
func BulkstatSingle(f Descriptor, ino uint64) (Bstat, error) {

	var bs Bstat
	var count int32

	req := bulkReq{
		LastIP:  &ino,
		ICount:  1,
		UBuffer: unsafe.Pointer(&bs),
		OCount:  &count,
	}

	err := ioctl(f.Fd(), "XFS_IOC_FSBULKSTAT_SINGLE", iocBulkstatSingle, unsafe.Pointer(&req))
	return bs, err

}

// SwapExtents exchanges the data forks of target and tmp. stat must be the
// bulkstat record of target taken before tmp was filled.
func SwapExtents(target, tmp Descriptor, stat Bstat) error {
	sx := NewSwapExt(target.Fd(), tmp.Fd(), stat)
	return ioctl(target.Fd(), "XFS_IOC_SWAPEXT", iocSwapExt, unsafe.Pointer(&sx))
}

// GetFSXattr reads the extended inode attributes of f.
func GetFSXattr(f Descriptor) (FSXattr, error) {
	var fsx FSXattr
	err := ioctl(f.Fd(), "FS_IOC_FSGETXATTR", iocFSGetXattr, unsafe.Pointer(&fsx))
	return fsx, err
}

// SetFSXattr replaces the extended inode attributes of f.
func SetFSXattr(f Descriptor, fsx FSXattr) error {
	return ioctl(f.Fd(), "FS_IOC_FSSETXATTR", iocFSSetXattr, unsafe.Pointer(&fsx))
}

// Fiemap returns the extent map of f, syncing delayed allocations first.
func Fiemap(f Descriptor) ([]Extent, error) {

	var all []Extent
	var start uint64

	for {

		req := new(fiemapRequest)
		req.Start = start
		req.Length = ^uint64(0) - start
		req.Flags = FiemapFlagSync
		req.ExtentCount = fiemapBatch

		err := ioctl(f.Fd(), "FS_IOC_FIEMAP", iocFiemap, unsafe.Pointer(req))
		if err != nil {
			return nil, err
		}

		if req.MappedExtents == 0 {
			if start == 0 {
				return all, nil
			}
			return all, errFiemapTruncated
		}

		for i := uint32(0); i < req.MappedExtents; i++ {
			e := req.Extents[i]
			all = append(all, Extent{
				Logical:  e.Logical,
				Physical: e.Physical,
				Length:   e.Length,
				Flags:    e.Flags,
			})
		}

		last := all[len(all)-1]
		if last.Last() {
			return all, nil
		}
		start = last.Logical + last.Length

	}

}

// Fallocate reserves space for [off, off+length) without changing the file
// size.
func Fallocate(f Descriptor, off, length int64) error {
	err := unix.Fallocate(int(f.Fd()), unix.FALLOC_FL_KEEP_SIZE, off, length)
	if err != nil {
		return os.NewSyscallError("fallocate", err)
	}
	return nil
}

// Fchown changes the owner of f.
func Fchown(f Descriptor, uid, gid uint32) error {
	err := unix.Fchown(int(f.Fd()), int(uid), int(gid))
	if err != nil {
		return os.NewSyscallError("fchown", err)
	}
	return nil
}
