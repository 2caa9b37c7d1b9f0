package fsr

import (
	"context"
	"syscall"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vorteil/vfsr/pkg/xfs"
)

func newTestAligner(fs *fakeFS) *Aligner {
	return NewAligner(fs.geom, fs, fs, nil)
}

func TestAlignNoAttributes(t *testing.T) {

	fs := newFakeFS(attr2Geometry(), 0, 80)
	src := xfs.Bstat{Mode: 0100644, ForkOff: 64}.Snapshot()

	out, err := newTestAligner(fs).Align(context.Background(), src, fs.tmp)
	require.NoError(t, err)
	assert.Equal(t, Skipped, out.Result)
	assert.Equal(t, ReasonNoAttributes, out.Reason)
	assert.Equal(t, 0, out.Creations)
	assert.Empty(t, fs.created)
	assert.Equal(t, 0, fs.polls)

}

func TestAlignLegacyFormat(t *testing.T) {

	geom := xfs.Geometry{InodeSize: 256, Flags: xfs.GeomFlagAttr}

	for _, forkoff := range []uint16{0, 24, 64, 200} {

		fs := newFakeFS(geom, 0, 80)
		src := sourceSnapshot(forkoff, 5)

		out, err := newTestAligner(fs).Align(context.Background(), src, fs.tmp)
		require.NoError(t, err)
		assert.Equal(t, Skipped, out.Result)
		assert.Equal(t, ReasonLegacy, out.Reason)
		assert.Equal(t, 1, out.Creations)
		assert.Equal(t, []string{"user.X"}, fs.created)
		assert.Equal(t, []string{"X"}, fs.values)
		assert.Equal(t, 0, fs.polls)

	}

}

func TestAlignUnreportedForkOffset(t *testing.T) {

	fs := newFakeFS(attr2Geometry(), 0, 80)
	src := sourceSnapshot(0, 5)
	require.True(t, src.HasAttributes())
	require.False(t, src.ForkOffsetReported)

	out, err := newTestAligner(fs).Align(context.Background(), src, fs.tmp)
	require.NoError(t, err)
	assert.Equal(t, ReasonLegacy, out.Reason)
	assert.Equal(t, []string{"user.X"}, fs.created)
	assert.Equal(t, 0, fs.polls)

}

func TestAlignLegacyCreateFailure(t *testing.T) {

	fs := newFakeFS(xfs.Geometry{InodeSize: 256}, 0)
	fs.attrErr = syscall.ENOSPC

	_, err := newTestAligner(fs).Align(context.Background(), sourceSnapshot(64, 5), fs.tmp)
	require.Error(t, err)
	assert.True(t, errors.Is(err, AttributeCreateFailure))
	assert.True(t, errors.Is(err, syscall.ENOSPC))

}

func TestAlignIterationLimit(t *testing.T) {

	// always moving, never arriving
	offsets := make([]uint16, 0, 200)
	for i := 0; i < 100; i++ {
		offsets = append(offsets, 200, 201)
	}

	fs := newFakeFS(attr2Geometry(), offsets...)
	out, err := newTestAligner(fs).Align(context.Background(), sourceSnapshot(64, 5), fs.tmp)
	require.NoError(t, err)
	assert.Equal(t, BestEffort, out.Result)
	assert.Equal(t, ReasonIterationsExhausted, out.Reason)
	assert.Equal(t, 100, out.Iterations)
	assert.Equal(t, 100, out.Creations)
	assert.Equal(t, 100, fs.polls)

	fs = newFakeFS(attr2Geometry(), offsets...)
	a := newTestAligner(fs)
	a.MaxIterations = 7
	out, err = a.Align(context.Background(), sourceSnapshot(64, 5), fs.tmp)
	require.NoError(t, err)
	assert.Equal(t, ReasonIterationsExhausted, out.Reason)
	assert.Equal(t, 7, out.Creations)

}

func TestAlignLimitsFallBackToDefaults(t *testing.T) {

	offsets := make([]uint16, 0, 200)
	for i := 0; i < 100; i++ {
		offsets = append(offsets, 200, 201)
	}

	fs := newFakeFS(attr2Geometry(), offsets...)
	a := newTestAligner(fs)
	a.MaxIterations = 0
	a.MaxStalls = -1
	out, err := a.Align(context.Background(), sourceSnapshot(64, 5), fs.tmp)
	require.NoError(t, err)
	assert.Equal(t, ReasonIterationsExhausted, out.Reason)
	assert.Equal(t, DefaultMaxIterations, out.Iterations)

	fs = newFakeFS(attr2Geometry(), 80)
	a = newTestAligner(fs)
	a.MaxStalls = 0
	out, err = a.Align(context.Background(), sourceSnapshot(64, 5), fs.tmp)
	require.NoError(t, err)
	assert.Equal(t, ReasonStalled, out.Reason)
	assert.Equal(t, DefaultMaxStalls+2, out.Iterations)

}

func TestAlignStall(t *testing.T) {

	fs := newFakeFS(attr2Geometry(), 80)
	out, err := newTestAligner(fs).Align(context.Background(), sourceSnapshot(64, 5), fs.tmp)
	require.NoError(t, err)
	assert.Equal(t, BestEffort, out.Result)
	assert.Equal(t, ReasonStalled, out.Reason)

	// one creation for the first sighting, none for the eleven repeats
	assert.Equal(t, 1, out.Creations)
	assert.Equal(t, 12, out.Iterations)
	assert.Equal(t, uint16(80), out.ForkOffset)

}

func TestAlignStallCounterResets(t *testing.T) {

	fs := newFakeFS(attr2Geometry(), 100, 100, 100, 90, 90, 90, 80, 64)
	a := newTestAligner(fs)
	a.MaxStalls = 2

	out, err := a.Align(context.Background(), sourceSnapshot(64, 5), fs.tmp)
	require.NoError(t, err)
	assert.Equal(t, Matched, out.Result)
	assert.Equal(t, 3, out.Creations)
	assert.Equal(t, 8, out.Iterations)

}

func TestAlignUnreachable(t *testing.T) {

	// 120 byte inodes leave 20 bytes past the core
	geom := xfs.Geometry{InodeSize: 120, Flags: xfs.GeomFlagAttr2}
	require.Equal(t, 20, geom.MaxForkOffsetGap())

	fs := newFakeFS(geom, 0, 55, 30)
	out, err := newTestAligner(fs).Align(context.Background(), sourceSnapshot(30, 5), fs.tmp)
	require.Error(t, err)
	assert.True(t, errors.Is(err, OffsetUnreachable))
	assert.Equal(t, 1, out.Creations)
	assert.Equal(t, []string{"user.0"}, fs.created)
	assert.Equal(t, 2, fs.polls)

	var ae *AlignError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, OffsetUnreachable, ae.Kind)

	// too far the other way is just as fatal
	fs = newFakeFS(geom, 8)
	_, err = newTestAligner(fs).Align(context.Background(), sourceSnapshot(64, 5), fs.tmp)
	assert.True(t, errors.Is(err, OffsetUnreachable))
	assert.Empty(t, fs.created)

}

func TestAlignDataForkGrowth(t *testing.T) {

	fs := newFakeFS(attr2Geometry(), 0, 40)
	out, err := newTestAligner(fs).Align(context.Background(), sourceSnapshot(64, 5), fs.tmp)
	require.NoError(t, err)
	assert.Equal(t, BestEffort, out.Result)
	assert.Equal(t, ReasonDataForkGrowth, out.Reason)
	assert.Equal(t, 1, out.Creations)
	assert.Equal(t, 2, out.Iterations)

}

func TestAlignStallAfterGrowth(t *testing.T) {

	fs := newFakeFS(attr2Geometry(), 0, 70)
	out, err := newTestAligner(fs).Align(context.Background(), sourceSnapshot(64, 5), fs.tmp)
	require.NoError(t, err)
	assert.Equal(t, BestEffort, out.Result)
	assert.Equal(t, ReasonStalled, out.Reason)
	assert.Equal(t, 2, out.Creations)
	assert.Equal(t, []string{"user.0", "user.1"}, fs.created)
	assert.Equal(t, []string{"XX", "XX"}, fs.values)

}

func TestAlignMatched(t *testing.T) {

	fs := newFakeFS(attr2Geometry(), 0, 72, 64)
	out, err := newTestAligner(fs).Align(context.Background(), sourceSnapshot(64, 5), fs.tmp)
	require.NoError(t, err)
	assert.Equal(t, Matched, out.Result)
	assert.Equal(t, ReasonNone, out.Reason)
	assert.Equal(t, 2, out.Creations)
	assert.Equal(t, uint16(64), out.ForkOffset)
	assert.Equal(t, "matched", out.String())

}

func TestAlignQueryFailure(t *testing.T) {

	fs := newFakeFS(attr2Geometry(), 0)
	fs.snapErr = syscall.EIO

	_, err := newTestAligner(fs).Align(context.Background(), sourceSnapshot(64, 5), fs.tmp)
	require.Error(t, err)
	assert.True(t, errors.Is(err, QueryFailure))
	assert.True(t, errors.Is(err, syscall.EIO))
	assert.Empty(t, fs.created)

}

func TestAlignCreateFailure(t *testing.T) {

	fs := newFakeFS(attr2Geometry(), 0)
	fs.attrErr = syscall.EEXIST

	out, err := newTestAligner(fs).Align(context.Background(), sourceSnapshot(64, 5), fs.tmp)
	require.Error(t, err)
	assert.True(t, errors.Is(err, AttributeCreateFailure))
	assert.Equal(t, 1, out.Iterations)
	assert.Contains(t, err.Error(), "user.0")

}

func TestAlignCanceled(t *testing.T) {

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fs := newFakeFS(attr2Geometry(), 0, 80)
	_, err := newTestAligner(fs).Align(ctx, sourceSnapshot(64, 5), fs.tmp)
	require.Error(t, err)
	assert.True(t, errors.Is(err, QueryFailure))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, fs.polls)

}
