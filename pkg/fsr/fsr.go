// Package fsr reorganises fragmented files on a mounted XFS filesystem. A
// file is rewritten into a hidden replacement inode whose data fork is then
// exchanged with the original's by the kernel. The exchange only works when
// both inodes place their attribute fork at the same offset, so the
// replacement is shaped to match before the data is copied.
package fsr

import (
	"context"
	"fmt"

	"github.com/vorteil/vfsr/pkg/elog"
	"github.com/vorteil/vfsr/pkg/xfs"
)

// Handle is an open file. *os.File satisfies it.
type Handle interface {
	Name() string
	Fd() uintptr
}

// Replacement is the temporary inode a file is rewritten into. It is owned
// by a single repack and must be released on every path.
type Replacement interface {
	Handle
	Release() error
}

type SnapshotProvider interface {
	Snapshot(ctx context.Context, h Handle) (xfs.InodeSnapshot, error)
}

// AttributeCreator creates a named extended attribute, failing if the name
// already exists.
type AttributeCreator interface {
	CreateAttribute(h Handle, name string, value []byte) error
}

type ReplacementFactory interface {
	CreateReplacement(ctx context.Context, src Handle) (Replacement, error)
}

// Replicator copies everything but the data fork mapping from a file to its
// replacement.
type Replicator interface {
	ReplicateFlags(src xfs.InodeSnapshot, tmp Replacement) error
	ReplicateData(ctx context.Context, src Handle, snap xfs.InodeSnapshot, tmp Replacement, p elog.Progress) (int64, error)
	ReplicateOwner(src xfs.InodeSnapshot, tmp Replacement) error
}

// SwapCommitter exchanges data forks. token is the bulkstat record of src
// taken before its data was copied.
type SwapCommitter interface {
	Swap(ctx context.Context, src Handle, tmp Replacement, token xfs.Bstat) error
}

// Filesystem is everything a repack needs from one mounted filesystem.
type Filesystem interface {
	Geometry() xfs.Geometry
	Contains(h Handle) (bool, error)
	SnapshotProvider
	AttributeCreator
	ReplacementFactory
	Replicator
	SwapCommitter
}

// Result is how alignment ended when it did not fail.
type Result int

const (
	Matched Result = iota
	BestEffort
	Skipped
)

func (r Result) String() string {
	switch r {
	case Matched:
		return "matched"
	case BestEffort:
		return "best-effort"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

type Reason int

const (
	ReasonNone Reason = iota
	ReasonNoAttributes
	ReasonLegacy
	ReasonStalled
	ReasonDataForkGrowth
	ReasonIterationsExhausted
)

var reasonStrings = map[Reason]string{
	ReasonNone:                "",
	ReasonNoAttributes:        "no attributes",
	ReasonLegacy:              "legacy attribute format",
	ReasonStalled:             "offset stopped changing",
	ReasonDataForkGrowth:      "data fork would need to grow",
	ReasonIterationsExhausted: "iteration limit reached",
}

func (r Reason) String() string {
	s, ok := reasonStrings[r]
	if !ok {
		return fmt.Sprintf("Reason(%d)", int(r))
	}
	return s
}

// Outcome describes a successful alignment. BestEffort outcomes leave the
// final verdict to the swap.
type Outcome struct {
	Result     Result
	Reason     Reason
	Iterations int
	Creations  int
	ForkOffset uint16
}

func (o Outcome) String() string {
	if o.Reason == ReasonNone {
		return o.Result.String()
	}
	return fmt.Sprintf("%s (%s)", o.Result, o.Reason)
}

var _ Filesystem = (*Mount)(nil)
