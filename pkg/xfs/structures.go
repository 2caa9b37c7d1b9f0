package xfs

import "encoding/binary"

const (
	SBMagicNumber = 0x58465342 // "XFSB"
	sectorSizeLog = 9
	SectorSize    = 0x1 << sectorSizeLog

	VersionNumMask     = 0x000f // XFS_SB_VERSION_NUMBITS
	VersionNumber      = 4      // XFS_SB_VERSION_4
	VersionNumber5     = 5      // XFS_SB_VERSION_5
	VersionAttrBit     = 0x0010 // XFS_SB_VERSION_ATTRBIT
	VersionNlinkBit    = 0x0020 // XFS_SB_VERSION_NLINKBIT
	VersionQuotaBit    = 0x0040 // XFS_SB_VERSION_QUOTABIT
	VersionAlignBit    = 0x0080 // XFS_SB_VERSION_ALIGNBIT
	VersionDalignBit   = 0x0100 // XFS_SB_VERSION_DALIGNBIT
	VersionSharedBit   = 0x0200 // XFS_SB_VERSION_SHAREDBIT
	VersionLogV2Bit    = 0x0400 // XFS_SB_VERSION_LOGV2BIT
	VersionSectorBit   = 0x0800 // XFS_SB_VERSION_SECTORBIT
	VersionExtFlgBit   = 0x1000 // XFS_SB_VERSION_EXTFLGBIT
	VersionDirV2Bit    = 0x2000 // XFS_SB_VERSION_DIRV2BIT
	VersionBorgBit     = 0x4000 // XFS_SB_VERSION_BORGBIT
	VersionMoreBitsBit = 0x8000 // XFS_SB_VERSION_MOREBITSBIT

	Version2Reserved1Bit   = 0x00000001 // XFS_SB_VERSION2_RESERVED1BIT
	Version2LazySBCountBit = 0x00000002 // XFS_SB_VERSION2_LAZYSBCOUNTBIT
	Version2Reserved4Bit   = 0x00000004 // XFS_SB_VERSION2_RESERVED4BIT
	Version2Attr2Bit       = 0x00000008 // XFS_SB_VERSION2_ATTR2BIT
	Version2ParentBit      = 0x00000010 // XFS_SB_VERSION2_PARENTBIT
	Version2ProjID32Bit    = 0x00000080 // XFS_SB_VERSION2_PROJID32BIT
	Version2CRCBit         = 0x00000100 // XFS_SB_VERSION2_CRCBIT
	Version2Ftype          = 0x00000200 // XFS_SB_VERSION2_FTYPE

	InodeMagicNumber = 0x494e // "IN" (in ascii)

	InodeFormatDev     = 0
	InodeFormatLocal   = 1
	InodeFormatExtents = 2
	InodeFormatBTree   = 3

	// di_forkoff is stored in units of 8 bytes.
	forkOffShift = 3
)

type SuperBlock struct {
	MagicNumber                     uint32   // 0
	BlockSize                       uint32   // 4
	DataBlocks                      uint64   // 8
	RealtimeBlocks                  uint64   // 16
	RealtimeExtents                 uint64   // 24
	UUID                            [16]byte // 32
	LogStart                        uint64   // 48
	RootInode                       uint64   // 56
	RealtimeBitmapInode             uint64   // 64
	RealtimeSummaryInode            uint64   // 72
	RealtimeExtentBlocks            uint32   // 80
	AGBlocks                        uint32   // 84
	AGCount                         uint32   // 88
	RealtimeBitmapBlocks            uint32   // 92
	LogBlocks                       uint32   // 96
	VersionNum                      uint16   // 100
	SectorSize                      uint16   // 102
	InodeSize                       uint16   // 104
	InodesPerBlock                  uint16   // 106
	FSName                          [12]byte // 108
	BlockSizeLogarithmic            uint8    // 120
	SectorSizeLogarithmic           uint8    // 121
	InodeSizeLogarithmic            uint8    // 122
	InodesPerBlockLogarithmic       uint8    // 123
	AGBlocksLogarithmic             uint8    // 124
	RealtimeExtentBlocksLogarithmic uint8    // 125
	InProgress                      uint8    // 126
	InodesMaxPercentage             uint8    // 127
	InodesAllocated                 uint64   // 128
	InodesFree                      uint64   // 136
	DataFree                        uint64   // 144
	RealtimeExtentsFree             uint64   // 152
	UserQuotasInode                 uint64   // 160
	GroupQuotasInode                uint64   // 168
	QuotaFlags                      uint16   // 176
	MiscFlags                       uint8    // 178
	SharedVN                        uint8    // 179
	InodeChunkAlignment             uint32   // 180
	StripeUnitBlocks                uint32   // 184
	StripeWidthBlocks               uint32   // 188
	DirectoryBlocksLogarithmic      uint8    // 192
	LogSectorSizeLogarithmic        uint8    // 193
	LogSectorSize                   uint16   // 194
	LogStripeUnit                   uint32   // 196
	MoreFeatures                    uint32   // 200
	BadFeatures                     uint32   // 204
} // 208

type Timestamp struct {
	Sec  uint32 // 0
	NSec uint32 // 4
}

type InodeCore struct {
	Magic        uint16    // 0
	Mode         uint16    // 2
	Version      uint8     // 4
	Format       uint8     // 5
	Onlink       uint16    // 6
	UID          uint32    // 8
	GID          uint32    // 12
	Nlink        uint32    // 16
	ProjID       uint16    // 20
	Pad          [8]byte   // 22
	FlushIter    uint16    // 30
	ATime        Timestamp // 32
	MTime        Timestamp // 40
	CTime        Timestamp // 48
	Size         int64     // 56
	NBlocks      uint64    // 64
	ExtSize      uint32    // 72
	NExtents     int32     // 76
	ANExtents    int16     // 80
	ForkOff      uint8     // 82
	AFormat      int8      // 83
	DMevMask     uint32    // 84
	DMState      uint16    // 88
	Flags        uint16    // 90
	Gen          uint32    // 92
	NextUnlinked uint32    // 96
} // 100

// InodeCoreV3 is the tail appended to InodeCore by version 3 inodes, which
// are used on v5 (CRC enabled) filesystems.
type InodeCoreV3 struct {
	CRC         uint32    // 100
	ChangeCount uint64    // 104
	LSN         uint64    // 112
	Flags2      uint64    // 120
	CowExtSize  uint32    // 128
	Pad2        [12]byte  // 132
	CrTime      Timestamp // 144
	Ino         uint64    // 152
	UUID        [16]byte  // 160
} // 176

// ForkOffBytes converts the on-disk attribute fork offset into bytes past
// the end of the inode core, the unit reported by bulkstat.
func (c *InodeCore) ForkOffBytes() uint16 {
	return uint16(c.ForkOff) << forkOffShift
}

// DinodeSize returns the size of the fixed inode header that precedes the
// data fork. Everything after it up to the inode size is shared between the
// data and attribute forks.
func DinodeSize(v5 bool) int {
	n := binary.Size(InodeCore{})
	if v5 {
		n += binary.Size(InodeCoreV3{})
	}
	return n
}
