//go:build linux

package fsr

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/pkg/xattr"

	"github.com/vorteil/vfsr/pkg/elog"
	"github.com/vorteil/vfsr/pkg/xfs"
)

const DefaultTempPrefix = ".fsr-"

// Mount is a Filesystem backed by the XFS ioctls of a mounted filesystem.
type Mount struct {
	TempPrefix string

	path string
	root *os.File
	dev  uint64
	geom xfs.Geometry
	log  elog.Logger
}

// OpenFilesystem opens the mount point of an XFS filesystem and reads its
// geometry.
func OpenFilesystem(path string, log elog.Logger) (*Mount, error) {

	if log == nil {
		log = elog.Discard
	}

	root, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	m := &Mount{
		TempPrefix: DefaultTempPrefix,
		path:       path,
		root:       root,
		log:        log,
	}

	err = m.init()
	if err != nil {
		root.Close()
		return nil, err
	}

	return m, nil

}

func (m *Mount) init() error {

	ok, err := xfs.IsXFS(m.root)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrap(xfs.ErrNotXFS, m.path)
	}

	m.dev, err = xfs.Device(m.root)
	if err != nil {
		return err
	}

	m.geom, err = xfs.FSGeometry(m.root)
	if err != nil {
		return errors.Wrap(err, "failed to read filesystem geometry")
	}

	m.log.Debugf("%s: block size %d, inode size %d, attr2 %v", m.path, m.geom.BlockSize, m.geom.InodeSize, m.geom.Attr2())

	return nil

}

func (m *Mount) Path() string {
	return m.path
}

func (m *Mount) Close() error {
	return m.root.Close()
}

func (m *Mount) Geometry() xfs.Geometry {
	return m.geom
}

// Contains reports whether h lives on this filesystem.
func (m *Mount) Contains(h Handle) (bool, error) {
	dev, err := xfs.Device(h)
	if err != nil {
		return false, err
	}
	return dev == m.dev, nil
}

func (m *Mount) Snapshot(ctx context.Context, h Handle) (xfs.InodeSnapshot, error) {

	ino, err := xfs.Inode(h)
	if err != nil {
		return xfs.InodeSnapshot{}, err
	}

	bs, err := xfs.BulkstatSingle(m.root, ino)
	if err != nil {
		return xfs.InodeSnapshot{}, err
	}

	return bs.Snapshot(), nil

}

// Extents returns the current extent map of h.
func (m *Mount) Extents(h Handle) ([]xfs.Extent, error) {
	return xfs.Fiemap(h)
}

type replacement struct {
	*os.File
	path   string
	linked bool
	closed bool
}

func (r *replacement) Release() error {

	var err error

	if !r.closed {
		r.closed = true
		err = r.File.Close()
	}

	if r.linked {
		rerr := os.Remove(r.path)
		if rerr != nil && !os.IsNotExist(rerr) && err == nil {
			err = rerr
		}
		r.linked = false
	}

	return err

}

func osFile(h Handle) (*os.File, error) {
	switch f := h.(type) {
	case *os.File:
		return f, nil
	case *replacement:
		return f.File, nil
	}
	return nil, errors.Errorf("%s: not an open file", h.Name())
}

// CreateReplacement creates an anonymous inode next to src. The name exists
// only for as long as it takes to open it.
func (m *Mount) CreateReplacement(ctx context.Context, src Handle) (Replacement, error) {

	path := filepath.Join(filepath.Dir(src.Name()), m.TempPrefix+uuid.New().String())

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, err
	}

	r := &replacement{File: f, path: path, linked: true}

	err = os.Remove(path)
	if err != nil {
		r.Release()
		return nil, err
	}
	r.linked = false

	ok, err := m.Contains(r)
	if err == nil && !ok {
		err = errors.Errorf("%s is not on %s", filepath.Dir(path), m.path)
	}
	if err != nil {
		r.Release()
		return nil, err
	}

	return r, nil

}

func (m *Mount) CreateAttribute(h Handle, name string, value []byte) error {
	f, err := osFile(h)
	if err != nil {
		return err
	}
	return xattr.FSetWithFlags(f, name, value, xattr.XATTR_CREATE)
}

// ReplicateFlags copies the extent size hint, project and realtime flag.
func (m *Mount) ReplicateFlags(src xfs.InodeSnapshot, tmp Replacement) error {

	fsx, err := xfs.GetFSXattr(tmp)
	if err != nil {
		return err
	}

	want := fsx
	if src.XFlags&xfs.XFlagRealtime != 0 {
		want.XFlags |= xfs.XFlagRealtime
	}
	if src.XFlags&xfs.XFlagExtSize != 0 {
		want.XFlags |= xfs.XFlagExtSize
		want.ExtSize = uint32(src.ExtSize)
	}
	want.ProjID = src.ProjectID

	if want == fsx {
		return nil
	}

	return xfs.SetFSXattr(tmp, want)

}

// ReplicateData preallocates the replacement and copies every written range
// of src into it. Holes and unwritten extents are left alone.
func (m *Mount) ReplicateData(ctx context.Context, src Handle, snap xfs.InodeSnapshot, tmp Replacement, p elog.Progress) (int64, error) {

	in, err := osFile(src)
	if err != nil {
		return 0, err
	}
	out, err := osFile(tmp)
	if err != nil {
		return 0, err
	}

	extents, err := xfs.Fiemap(in)
	if err != nil {
		return 0, err
	}

	size := snap.Size
	for _, r := range preallocRanges(extents, size, m.geom.RoundToBlock(size)) {
		err = xfs.Fallocate(out, r[0], r[1])
		if err != nil {
			return 0, err
		}
	}

	var copied int64

	for _, e := range extents {

		if err = ctx.Err(); err != nil {
			return copied, err
		}

		off := int64(e.Logical)
		if e.Unwritten() || off >= size {
			continue
		}

		n := int64(e.Length)
		if off+n > size {
			n = size - off
		}

		r := p.ProxyReader(io.NewSectionReader(in, off, n))
		k, err := io.Copy(io.NewOffsetWriter(out, off), r)
		r.Close()
		copied += k
		if err != nil {
			return copied, err
		}

	}

	err = out.Truncate(size)
	if err != nil {
		return copied, err
	}

	err = out.Sync()
	if err != nil {
		return copied, err
	}

	return copied, nil

}

// preallocRanges returns the (offset, length) ranges to reserve in a
// replacement for a file of the given size. Extents past EOF are ignored.
// A fully mapped file gets a single range; otherwise holes are kept.
func preallocRanges(extents []xfs.Extent, size, whole int64) [][2]int64 {

	var mapped int64
	var ranges [][2]int64

	for _, e := range extents {
		off, n := int64(e.Logical), int64(e.Length)
		if off >= size {
			continue
		}
		ranges = append(ranges, [2]int64{off, n})
		if off+n > whole {
			n = whole - off
		}
		mapped += n
	}

	if whole > 0 && mapped >= whole {
		return [][2]int64{{0, whole}}
	}

	return ranges

}

func (m *Mount) ReplicateOwner(src xfs.InodeSnapshot, tmp Replacement) error {
	return xfs.Fchown(tmp, src.UID, src.GID)
}

func (m *Mount) Swap(ctx context.Context, src Handle, tmp Replacement, token xfs.Bstat) error {
	return xfs.SwapExtents(src, tmp, token)
}
