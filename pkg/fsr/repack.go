package fsr

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/vorteil/vfsr/pkg/elog"
	"github.com/vorteil/vfsr/pkg/xfs"
)

type Options struct {
	MaxIterations      int
	MaxStalls          int
	Force              bool
	RequireImprovement bool
	Progress           bool
}

func DefaultOptions() Options {
	return Options{
		MaxIterations:      DefaultMaxIterations,
		MaxStalls:          DefaultMaxStalls,
		RequireImprovement: true,
	}
}

// Report describes what happened to one file.
type Report struct {
	Path          string
	Ino           uint64
	Size          int64
	ExtentsBefore int
	ExtentsAfter  int
	Align         Outcome
	BytesCopied   int64
	Skipped       string
	Duration      time.Duration
}

// Repacker rewrites files one at a time. A single Repacker may be used from
// several goroutines as long as they work on different files.
type Repacker struct {
	FS      Filesystem
	Aligner *Aligner
	Options Options
	Log     elog.View
}

func NewRepacker(fs Filesystem, opts Options, log elog.View) *Repacker {

	if log == nil {
		log = elog.Discard
	}

	a := NewAligner(fs.Geometry(), fs, fs, log)
	a.MaxIterations = opts.MaxIterations
	a.MaxStalls = opts.MaxStalls

	return &Repacker{
		FS:      fs,
		Aligner: a,
		Options: opts,
		Log:     log,
	}

}

// Repack opens path and repacks it.
func (r *Repacker) Repack(ctx context.Context, path string) (*Report, error) {

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return &Report{Path: path}, err
	}
	defer f.Close()

	ok, err := r.FS.Contains(f)
	if err != nil {
		return &Report{Path: path}, err
	}
	if !ok {
		return &Report{Path: path, Skipped: "not on this filesystem"},
			errors.WithMessage(ErrSkipped, "not on this filesystem")
	}

	snap, err := r.FS.Snapshot(ctx, f)
	if err != nil {
		return &Report{Path: path}, &RepackError{Kind: QueryFailure, Path: path, Op: "bulkstat", Err: err}
	}

	return r.RepackOne(ctx, f, snap)

}

func (r *Repacker) precheck(snap xfs.InodeSnapshot) string {

	switch {
	case !snap.IsRegular():
		return "not a regular file"
	case snap.XFlags&xfs.XFlagImmutable != 0:
		return "immutable"
	case snap.XFlags&xfs.XFlagAppend != 0:
		return "append-only"
	case snap.XFlags&xfs.XFlagNoDefrag != 0:
		return "marked nodefrag"
	case r.Options.Force:
		return ""
	case snap.Extents <= 1:
		return "already contiguous"
	}

	return ""

}

// RepackOne rewrites src, described by snap, into a replacement inode and
// swaps the data forks. The replacement never outlives the call.
func (r *Repacker) RepackOne(ctx context.Context, src Handle, snap xfs.InodeSnapshot) (rep *Report, err error) {

	start := time.Now()
	path := src.Name()
	log := r.Log.Scoped(path)

	rep = &Report{
		Path:          path,
		Ino:           snap.Ino,
		Size:          snap.Size,
		ExtentsBefore: int(snap.Extents),
		ExtentsAfter:  int(snap.Extents),
	}
	defer func() {
		rep.Duration = time.Since(start)
	}()

	if reason := r.precheck(snap); reason != "" {
		log.Debugf("skipping: %s", reason)
		rep.Skipped = reason
		return rep, errors.WithMessage(ErrSkipped, reason)
	}

	fail := func(kind Kind, op string, err error) error {
		return &RepackError{Kind: kind, Path: path, Op: op, Err: err}
	}

	tmp, err := r.FS.CreateReplacement(ctx, src)
	if err != nil {
		return rep, fail(CreateFailure, "create", err)
	}
	defer func() {
		rerr := tmp.Release()
		if rerr != nil {
			log.Warnf("failed to release replacement inode: %v", rerr)
		}
	}()

	rep.Align, err = r.Aligner.Align(ctx, snap, tmp)
	if err != nil {
		return rep, fail(AlignFailure, "align", err)
	}
	log.Debugf("attribute fork: %s after %d iterations, %d attributes", rep.Align, rep.Align.Iterations, rep.Align.Creations)

	err = r.FS.ReplicateFlags(snap, tmp)
	if err != nil {
		return rep, fail(ReplicationFailure, "flags", err)
	}

	var p elog.Progress
	if r.Options.Progress {
		p = r.Log.NewProgress(path, "KiB", snap.Size)
	} else {
		p = elog.Discard.NewProgress(path, "", 0)
	}

	rep.BytesCopied, err = r.FS.ReplicateData(ctx, src, snap, tmp, p)
	p.Finish(err == nil)
	if err != nil {
		return rep, fail(ReplicationFailure, "data", err)
	}

	if r.Options.RequireImprovement {
		tsnap, err := r.FS.Snapshot(ctx, tmp)
		if err != nil {
			return rep, fail(QueryFailure, "bulkstat", err)
		}
		if tsnap.Extents >= snap.Extents {
			rep.Skipped = "no improvement"
			log.Infof("replacement has %d extents, original %d", tsnap.Extents, snap.Extents)
			return rep, ErrNoImprovement
		}
	}

	err = r.FS.ReplicateOwner(snap, tmp)
	if err != nil {
		return rep, fail(ReplicationFailure, "owner", err)
	}

	if err = ctx.Err(); err != nil {
		return rep, fail(SwapFailure, "swap", err)
	}

	err = r.FS.Swap(ctx, src, tmp, snap.Bstat())
	if err != nil {
		return rep, fail(classifySwap(err), "swap", err)
	}

	after, err := r.FS.Snapshot(ctx, src)
	if err != nil {
		log.Warnf("swapped, but could not re-read metadata: %v", err)
	} else {
		rep.ExtentsAfter = int(after.Extents)
	}

	log.Infof("%d extents -> %d", rep.ExtentsBefore, rep.ExtentsAfter)

	return rep, nil

}
