package fsr

import (
	"context"
	"strings"
	"syscall"

	"github.com/vorteil/vfsr/pkg/elog"
	"github.com/vorteil/vfsr/pkg/xfs"
)

type fakeHandle struct {
	name string
	fd   uintptr
}

func (h *fakeHandle) Name() string { return h.name }
func (h *fakeHandle) Fd() uintptr  { return h.fd }

type fakeReplacement struct {
	fakeHandle
	released   int
	releaseErr error
}

func (r *fakeReplacement) Release() error {
	r.released++
	return r.releaseErr
}

// fakeFS plays back a script of fork offsets for the replacement inode, one
// per snapshot. The last offset repeats forever.
type fakeFS struct {
	geom    xfs.Geometry
	offsets []uint16
	polls   int

	src      xfs.InodeSnapshot
	srcAfter int32
	swapped  bool

	tmp        *fakeReplacement
	tmpExtents int32

	created []string
	values  []string
	steps   []string

	notContained bool
	snapErr      error
	attrErr      error
	createErr    error
	flagsErr     error
	dataErr      error
	ownerErr     error
	swapErr      error
	swapToken    xfs.Bstat
	copied       int64
}

func newFakeFS(geom xfs.Geometry, offsets ...uint16) *fakeFS {
	return &fakeFS{
		geom:       geom,
		offsets:    offsets,
		tmp:        &fakeReplacement{fakeHandle: fakeHandle{name: "/mnt/.fsr-tmp", fd: 11}},
		tmpExtents: 1,
		copied:     4096,
	}
}

func (fs *fakeFS) Geometry() xfs.Geometry {
	return fs.geom
}

func (fs *fakeFS) Contains(h Handle) (bool, error) {
	return !fs.notContained, nil
}

func (fs *fakeFS) Snapshot(ctx context.Context, h Handle) (xfs.InodeSnapshot, error) {

	if fs.snapErr != nil {
		return xfs.InodeSnapshot{}, fs.snapErr
	}

	if h != Handle(fs.tmp) {
		s := fs.src
		if fs.swapped {
			s.Extents = fs.srcAfter
		}
		return s, nil
	}

	off := uint16(0)
	if len(fs.offsets) > 0 {
		i := fs.polls
		if i >= len(fs.offsets) {
			i = len(fs.offsets) - 1
		}
		off = fs.offsets[i]
	}
	fs.polls++

	bs := xfs.Bstat{Mode: 0100600, ForkOff: off, Extents: fs.tmpExtents}
	if off != 0 {
		bs.XFlags |= xfs.XFlagHasAttr
	}

	return bs.Snapshot(), nil

}

func (fs *fakeFS) CreateAttribute(h Handle, name string, value []byte) error {
	if fs.attrErr != nil {
		return fs.attrErr
	}
	for _, n := range fs.created {
		if n == name {
			return syscall.EEXIST
		}
	}
	fs.created = append(fs.created, name)
	fs.values = append(fs.values, string(value))
	return nil
}

func (fs *fakeFS) CreateReplacement(ctx context.Context, src Handle) (Replacement, error) {
	fs.steps = append(fs.steps, "create")
	if fs.createErr != nil {
		return nil, fs.createErr
	}
	return fs.tmp, nil
}

func (fs *fakeFS) ReplicateFlags(src xfs.InodeSnapshot, tmp Replacement) error {
	fs.steps = append(fs.steps, "flags")
	return fs.flagsErr
}

func (fs *fakeFS) ReplicateData(ctx context.Context, src Handle, snap xfs.InodeSnapshot, tmp Replacement, p elog.Progress) (int64, error) {
	fs.steps = append(fs.steps, "data")
	if fs.dataErr != nil {
		return 0, fs.dataErr
	}
	r := p.ProxyReader(strings.NewReader("data"))
	r.Close()
	return fs.copied, nil
}

func (fs *fakeFS) ReplicateOwner(src xfs.InodeSnapshot, tmp Replacement) error {
	fs.steps = append(fs.steps, "owner")
	return fs.ownerErr
}

func (fs *fakeFS) Swap(ctx context.Context, src Handle, tmp Replacement, token xfs.Bstat) error {
	fs.steps = append(fs.steps, "swap")
	fs.swapToken = token
	fs.swapped = fs.swapErr == nil
	return fs.swapErr
}

func attr2Geometry() xfs.Geometry {
	return xfs.Geometry{BlockSize: 4096, InodeSize: 256, Flags: xfs.GeomFlagAttr | xfs.GeomFlagAttr2}
}

func sourceSnapshot(forkoff uint16, extents int32) xfs.InodeSnapshot {
	return xfs.Bstat{
		Ino:     128,
		Mode:    0100644,
		Size:    1 << 20,
		XFlags:  xfs.XFlagHasAttr,
		ForkOff: forkoff,
		Extents: extents,
		Gen:     3,
	}.Snapshot()
}
