//go:build !linux

package fsr

import (
	"context"

	"github.com/vorteil/vfsr/pkg/elog"
	"github.com/vorteil/vfsr/pkg/xfs"
)

const DefaultTempPrefix = ".fsr-"

// Mount is only implemented on Linux.
type Mount struct {
	TempPrefix string
}

func OpenFilesystem(path string, log elog.Logger) (*Mount, error) {
	return nil, xfs.ErrUnsupported
}

func (m *Mount) Path() string {
	return ""
}

func (m *Mount) Close() error {
	return nil
}

func (m *Mount) Geometry() xfs.Geometry {
	return xfs.Geometry{}
}

func (m *Mount) Extents(h Handle) ([]xfs.Extent, error) {
	return nil, xfs.ErrUnsupported
}

func (m *Mount) Contains(h Handle) (bool, error) {
	return false, xfs.ErrUnsupported
}

func (m *Mount) Snapshot(ctx context.Context, h Handle) (xfs.InodeSnapshot, error) {
	return xfs.InodeSnapshot{}, xfs.ErrUnsupported
}

func (m *Mount) CreateAttribute(h Handle, name string, value []byte) error {
	return xfs.ErrUnsupported
}

func (m *Mount) CreateReplacement(ctx context.Context, src Handle) (Replacement, error) {
	return nil, xfs.ErrUnsupported
}

func (m *Mount) ReplicateFlags(src xfs.InodeSnapshot, tmp Replacement) error {
	return xfs.ErrUnsupported
}

func (m *Mount) ReplicateData(ctx context.Context, src Handle, snap xfs.InodeSnapshot, tmp Replacement, p elog.Progress) (int64, error) {
	return 0, xfs.ErrUnsupported
}

func (m *Mount) ReplicateOwner(src xfs.InodeSnapshot, tmp Replacement) error {
	return xfs.ErrUnsupported
}

func (m *Mount) Swap(ctx context.Context, src Handle, tmp Replacement, token xfs.Bstat) error {
	return xfs.ErrUnsupported
}
