package xfs

const (
	GeomVersionV1 = 1 // XFS_FSOP_GEOM_VERSION

	GeomFlagAttr     = 0x00001 // XFS_FSOP_GEOM_FLAGS_ATTR
	GeomFlagNlink    = 0x00002 // XFS_FSOP_GEOM_FLAGS_NLINK
	GeomFlagQuota    = 0x00004 // XFS_FSOP_GEOM_FLAGS_QUOTA
	GeomFlagIAlign   = 0x00008 // XFS_FSOP_GEOM_FLAGS_IALIGN
	GeomFlagDAlign   = 0x00010 // XFS_FSOP_GEOM_FLAGS_DALIGN
	GeomFlagShared   = 0x00020 // XFS_FSOP_GEOM_FLAGS_SHARED
	GeomFlagExtFlg   = 0x00040 // XFS_FSOP_GEOM_FLAGS_EXTFLG
	GeomFlagDirV2    = 0x00080 // XFS_FSOP_GEOM_FLAGS_DIRV2
	GeomFlagLogV2    = 0x00100 // XFS_FSOP_GEOM_FLAGS_LOGV2
	GeomFlagSector   = 0x00200 // XFS_FSOP_GEOM_FLAGS_SECTOR
	GeomFlagAttr2    = 0x00400 // XFS_FSOP_GEOM_FLAGS_ATTR2
	GeomFlagProjID32 = 0x00800 // XFS_FSOP_GEOM_FLAGS_PROJID32
	GeomFlagDirV2CI  = 0x01000 // XFS_FSOP_GEOM_FLAGS_DIRV2CI
	GeomFlagLazySB   = 0x04000 // XFS_FSOP_GEOM_FLAGS_LAZYSB
	GeomFlagV5SB     = 0x08000 // XFS_FSOP_GEOM_FLAGS_V5SB
	GeomFlagFtype    = 0x10000 // XFS_FSOP_GEOM_FLAGS_FTYPE
	GeomFlagFinobt   = 0x20000 // XFS_FSOP_GEOM_FLAGS_FINOBT
	GeomFlagSpinodes = 0x40000 // XFS_FSOP_GEOM_FLAGS_SPINODES
	GeomFlagRmapbt   = 0x80000 // XFS_FSOP_GEOM_FLAGS_RMAPBT
	GeomFlagReflink  = 0x100000
)

// Geometry mirrors struct xfs_fsop_geom_v1. It is read once per mounted
// filesystem and never modified afterwards, so a value may be shared freely
// between goroutines.
type Geometry struct {
	BlockSize    uint32   // 0
	RtExtSize    uint32   // 4
	AGBlocks     uint32   // 8
	AGCount      uint32   // 12
	LogBlocks    uint32   // 16
	SectSize     uint32   // 20
	InodeSize    uint32   // 24
	IMaxPct      uint32   // 28
	DataBlocks   uint64   // 32
	RtBlocks     uint64   // 40
	RtExtents    uint64   // 48
	LogStart     uint64   // 56
	UUID         [16]byte // 64
	SUnit        uint32   // 80
	SWidth       uint32   // 84
	Version      int32    // 88
	Flags        uint32   // 92
	LogSectSize  uint32   // 96
	RtSectSize   uint32   // 100
	DirBlockSize uint32   // 104
	_            uint32   // 108
} // 112

// Attr2 reports whether the attribute fork offset varies with the shape of
// both forks.
func (g Geometry) Attr2() bool {
	return g.Flags&GeomFlagAttr2 != 0
}

// V5 reports whether the filesystem uses version 3 (CRC) inodes.
func (g Geometry) V5() bool {
	return g.Flags&GeomFlagV5SB != 0
}

// HeaderSize is the fixed inode core that precedes both forks.
func (g Geometry) HeaderSize() int {
	return DinodeSize(g.V5())
}

// MaxForkOffsetGap is the largest difference two attribute fork offsets
// can legitimately have on this filesystem.
func (g Geometry) MaxForkOffsetGap() int {
	return int(g.InodeSize) - g.HeaderSize()
}

// RoundToBlock rounds n up to a whole number of filesystem blocks.
func (g Geometry) RoundToBlock(n int64) int64 {
	if g.BlockSize == 0 {
		return n
	}
	return align(n, int64(g.BlockSize))
}
