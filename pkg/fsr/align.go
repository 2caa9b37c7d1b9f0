package fsr

import (
	"context"
	"fmt"

	"github.com/vorteil/vfsr/pkg/elog"
	"github.com/vorteil/vfsr/pkg/xfs"
)

const (
	DefaultMaxIterations = 100
	DefaultMaxStalls     = 10

	legacyAttrName = "user.X"
)

var (
	legacyAttrValue = []byte("X")
	attrValue       = []byte("XX")
)

// Aligner shapes a replacement inode so that its attribute fork starts at
// the same offset as the source's. The only lever available is adding small
// attributes, which grows the attribute fork and moves the offset towards
// the start of the inode literal area.
//
// MaxIterations and MaxStalls below 1 fall back to DefaultMaxIterations and
// DefaultMaxStalls.
type Aligner struct {
	Geometry      xfs.Geometry
	Snapshots     SnapshotProvider
	Attrs         AttributeCreator
	MaxIterations int
	MaxStalls     int
	Log           elog.Logger
}

func NewAligner(geom xfs.Geometry, snaps SnapshotProvider, attrs AttributeCreator, log elog.Logger) *Aligner {
	return &Aligner{
		Geometry:      geom,
		Snapshots:     snaps,
		Attrs:         attrs,
		MaxIterations: DefaultMaxIterations,
		MaxStalls:     DefaultMaxStalls,
		Log:           log,
	}
}

func (a *Aligner) limits() (int, int) {
	iterations, stalls := a.MaxIterations, a.MaxStalls
	if iterations <= 0 {
		iterations = DefaultMaxIterations
	}
	if stalls <= 0 {
		stalls = DefaultMaxStalls
	}
	return iterations, stalls
}

func (a *Aligner) logger() elog.Logger {
	if a.Log == nil {
		return elog.Discard
	}
	return a.Log
}

// Align adds attributes to tmp until its attribute fork offset matches
// src's, or until it is clear that it never will. A nil error means the swap
// may be attempted; only the returned *AlignError values are fatal.
func (a *Aligner) Align(ctx context.Context, src xfs.InodeSnapshot, tmp Handle) (Outcome, error) {

	log := a.logger()

	if !src.HasAttributes() {
		return Outcome{Result: Skipped, Reason: ReasonNoAttributes}, nil
	}

	if !a.Geometry.Attr2() || !src.ForkOffsetReported {
		err := a.Attrs.CreateAttribute(tmp, legacyAttrName, legacyAttrValue)
		if err != nil {
			return Outcome{}, &AlignError{Kind: AttributeCreateFailure, Op: legacyAttrName, Err: err}
		}
		log.Debugf("created %s on %s", legacyAttrName, tmp.Name())
		return Outcome{Result: Skipped, Reason: ReasonLegacy, Creations: 1}, nil
	}

	maxIterations, maxStalls := a.limits()
	maxGap := a.Geometry.MaxForkOffsetGap()
	want := int(src.ForkOffset)

	out := Outcome{Result: BestEffort, Reason: ReasonIterationsExhausted}
	last := 0
	stalls := 0

	for i := 0; i < maxIterations; i++ {

		if err := ctx.Err(); err != nil {
			return out, &AlignError{Kind: QueryFailure, Op: "align", Err: err}
		}

		out.Iterations = i + 1

		snap, err := a.Snapshots.Snapshot(ctx, tmp)
		if err != nil {
			return out, &AlignError{Kind: QueryFailure, Op: "bulkstat", Err: err}
		}

		cur := int(snap.ForkOffset)
		out.ForkOffset = snap.ForkOffset

		if cur == 0 {
			// no attribute fork yet
			err = a.create(tmp, i)
			if err != nil {
				return out, err
			}
			out.Creations++
			continue
		}

		if cur == last {
			stalls++
			if stalls > maxStalls {
				log.Debugf("fork offset stuck at %d after %d iterations", cur, out.Iterations)
				out.Reason = ReasonStalled
				return out, nil
			}
			continue
		}

		stalls = 0
		last = cur

		diff := cur - want
		log.Tracef("iteration %d: fork offset %d, want %d", i, cur, want)

		if diff > maxGap || -diff > maxGap {
			return out, &AlignError{
				Kind: OffsetUnreachable,
				Op:   "compare",
				Err:  fmt.Errorf("offset %d is %d bytes from %d, more than the %d bytes available", cur, diff, want, maxGap),
			}
		}

		if diff == 0 {
			out.Result = Matched
			out.Reason = ReasonNone
			return out, nil
		}

		if diff < 0 {
			out.Reason = ReasonDataForkGrowth
			return out, nil
		}

		err = a.create(tmp, i)
		if err != nil {
			return out, err
		}
		out.Creations++

	}

	return out, nil

}

func (a *Aligner) create(tmp Handle, i int) error {
	name := fmt.Sprintf("user.%d", i)
	err := a.Attrs.CreateAttribute(tmp, name, attrValue)
	if err != nil {
		return &AlignError{Kind: AttributeCreateFailure, Op: name, Err: err}
	}
	return nil
}
