package fsr

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vorteil/vfsr/pkg/xfs"
)

var srcHandle = &fakeHandle{name: "/mnt/data/file", fd: 10}

func repackFixture(offsets ...uint16) (*fakeFS, *Repacker) {
	fs := newFakeFS(attr2Geometry(), offsets...)
	fs.src = sourceSnapshot(64, 9)
	fs.srcAfter = 1
	return fs, NewRepacker(fs, DefaultOptions(), nil)
}

func TestRepackOne(t *testing.T) {

	fs, r := repackFixture(0, 72, 64)

	rep, err := r.RepackOne(context.Background(), srcHandle, fs.src)
	require.NoError(t, err)
	assert.Equal(t, []string{"create", "flags", "data", "owner", "swap"}, fs.steps)
	assert.Equal(t, 1, fs.tmp.released)
	assert.Equal(t, fs.src.Bstat(), fs.swapToken)

	assert.Equal(t, "/mnt/data/file", rep.Path)
	assert.Equal(t, uint64(128), rep.Ino)
	assert.Equal(t, 9, rep.ExtentsBefore)
	assert.Equal(t, 1, rep.ExtentsAfter)
	assert.Equal(t, int64(4096), rep.BytesCopied)
	assert.Equal(t, Matched, rep.Align.Result)
	assert.Empty(t, rep.Skipped)

}

func TestRepackOneBestEffortStillSwaps(t *testing.T) {

	fs, r := repackFixture(0, 40)

	rep, err := r.RepackOne(context.Background(), srcHandle, fs.src)
	require.NoError(t, err)
	assert.Equal(t, BestEffort, rep.Align.Result)
	assert.Equal(t, ReasonDataForkGrowth, rep.Align.Reason)
	assert.Contains(t, fs.steps, "swap")
	assert.Equal(t, 1, fs.tmp.released)

}

func TestRepackOneSkips(t *testing.T) {

	cases := map[string]xfs.Bstat{
		"not a regular file": {Mode: 040755, Extents: 9},
		"immutable":          {Mode: 0100644, Extents: 9, XFlags: xfs.XFlagImmutable},
		"append-only":        {Mode: 0100644, Extents: 9, XFlags: xfs.XFlagAppend},
		"marked nodefrag":    {Mode: 0100644, Extents: 9, XFlags: xfs.XFlagNoDefrag},
		"already contiguous": {Mode: 0100644, Extents: 1},
	}

	for reason, bs := range cases {

		fs, r := repackFixture(0, 64)

		rep, err := r.RepackOne(context.Background(), srcHandle, bs.Snapshot())
		assert.True(t, errors.Is(err, ErrSkipped), reason)
		assert.Equal(t, reason, rep.Skipped)
		assert.Empty(t, fs.steps, reason)

	}

}

func TestRepackOneForce(t *testing.T) {

	fs, r := repackFixture(0, 64)
	r.Options.Force = true
	r.Options.RequireImprovement = false

	src := xfs.Bstat{Mode: 0100644, Extents: 1}.Snapshot()
	_, err := r.RepackOne(context.Background(), srcHandle, src)
	require.NoError(t, err)
	assert.Contains(t, fs.steps, "swap")

	// flags still win over force
	fs, r = repackFixture(0, 64)
	r.Options.Force = true
	src = xfs.Bstat{Mode: 0100644, Extents: 9, XFlags: xfs.XFlagImmutable}.Snapshot()
	_, err = r.RepackOne(context.Background(), srcHandle, src)
	assert.True(t, errors.Is(err, ErrSkipped))
	assert.Empty(t, fs.steps)

}

func TestRepackOneCreateFailure(t *testing.T) {

	fs, r := repackFixture(0, 64)
	fs.createErr = syscall.EEXIST

	_, err := r.RepackOne(context.Background(), srcHandle, fs.src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, CreateFailure))
	assert.Equal(t, []string{"create"}, fs.steps)
	assert.Equal(t, 0, fs.tmp.released)

}

func TestRepackOneAlignFailure(t *testing.T) {

	fs, r := repackFixture(0, 250)

	_, err := r.RepackOne(context.Background(), srcHandle, fs.src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, AlignFailure))
	assert.True(t, errors.Is(err, OffsetUnreachable))
	assert.Equal(t, []string{"create"}, fs.steps)
	assert.Equal(t, 1, fs.tmp.released)

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, AlignFailure, kind)

}

func TestRepackOneReplicationFailures(t *testing.T) {

	setups := map[string]func(fs *fakeFS){
		"flags": func(fs *fakeFS) { fs.flagsErr = syscall.EPERM },
		"data":  func(fs *fakeFS) { fs.dataErr = syscall.ENOSPC },
		"owner": func(fs *fakeFS) { fs.ownerErr = syscall.EPERM },
	}

	for op, setup := range setups {

		fs, r := repackFixture(0, 64)
		setup(fs)

		_, err := r.RepackOne(context.Background(), srcHandle, fs.src)
		require.Error(t, err, op)
		assert.True(t, errors.Is(err, ReplicationFailure), op)
		assert.Equal(t, op, fs.steps[len(fs.steps)-1], op)
		assert.NotContains(t, fs.steps, "swap", op)
		assert.Equal(t, 1, fs.tmp.released, op)

		var re *RepackError
		require.True(t, errors.As(err, &re), op)
		assert.Equal(t, op, re.Op)

	}

}

func TestRepackOneNoImprovement(t *testing.T) {

	fs, r := repackFixture(0, 64)
	fs.tmpExtents = 9

	rep, err := r.RepackOne(context.Background(), srcHandle, fs.src)
	assert.Equal(t, ErrNoImprovement, err)
	assert.True(t, errors.Is(err, ErrSkipped))
	assert.Equal(t, "no improvement", rep.Skipped)
	assert.NotContains(t, fs.steps, "swap")
	assert.Equal(t, 1, fs.tmp.released)

	fs, r = repackFixture(0, 64)
	fs.tmpExtents = 9
	r.Options.RequireImprovement = false
	_, err = r.RepackOne(context.Background(), srcHandle, fs.src)
	assert.NoError(t, err)

}

func TestRepackOneSwapFailures(t *testing.T) {

	cases := []struct {
		err  error
		kind Kind
	}{
		{syscall.EINVAL, SwapIncompatible},
		{os.NewSyscallError("XFS_IOC_SWAPEXT", syscall.EBUSY), SwapChanged},
		{syscall.EFAULT, SwapChanged},
		{syscall.EIO, SwapFailure},
	}

	for _, c := range cases {

		fs, r := repackFixture(0, 64)
		fs.swapErr = c.err

		rep, err := r.RepackOne(context.Background(), srcHandle, fs.src)
		require.Error(t, err)
		assert.True(t, errors.Is(err, c.kind), c.kind.Error())
		assert.Equal(t, 1, fs.tmp.released)
		assert.Equal(t, 9, rep.ExtentsAfter)

	}

}

func TestRepackOneReleaseErrorIsNotFatal(t *testing.T) {

	fs, r := repackFixture(0, 64)
	fs.tmp.releaseErr = syscall.EIO

	_, err := r.RepackOne(context.Background(), srcHandle, fs.src)
	assert.NoError(t, err)
	assert.Equal(t, 1, fs.tmp.released)

}

func TestRepackOneCanceled(t *testing.T) {

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fs, r := repackFixture(0, 64)
	_, err := r.RepackOne(ctx, srcHandle, fs.src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.NotContains(t, fs.steps, "swap")
	assert.Equal(t, 1, fs.tmp.released)

}

func TestRepackPath(t *testing.T) {

	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))

	fs, r := repackFixture(0, 64)
	fs.notContained = true

	rep, err := r.Repack(context.Background(), path)
	assert.True(t, errors.Is(err, ErrSkipped))
	assert.Equal(t, path, rep.Path)
	assert.Empty(t, fs.steps)

	fs.notContained = false
	rep, err = r.Repack(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, rep.Path)
	assert.Equal(t, 1, rep.ExtentsAfter)

	_, err = r.Repack(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.True(t, os.IsNotExist(errors.Cause(err)))

}
