package xfs

const SwapExtVersion = 0 // XFS_SX_VERSION

// SwapExt mirrors struct xfs_swapext. Stat must hold the bulkstat record of
// the target taken before its data was copied; the kernel refuses the swap
// if the target changed since.
type SwapExt struct {
	Version  int64    // 0
	FdTarget int64    // 8
	FdTmp    int64    // 16
	Offset   int64    // 24
	Length   int64    // 32
	Pad      [16]byte // 40
	Stat     Bstat    // 56
} // 192

// NewSwapExt builds a request exchanging the whole data fork of target with
// that of tmp.
func NewSwapExt(target, tmp uintptr, stat Bstat) SwapExt {
	return SwapExt{
		Version:  SwapExtVersion,
		FdTarget: int64(target),
		FdTmp:    int64(tmp),
		Offset:   0,
		Length:   stat.Size,
		Stat:     stat,
	}
}

// FSXattr mirrors struct fsxattr.
type FSXattr struct {
	XFlags     uint32  // 0
	ExtSize    uint32  // 4
	NExtents   uint32  // 8
	ProjID     uint32  // 12
	CowExtSize uint32  // 16
	Pad        [8]byte // 20
} // 28
