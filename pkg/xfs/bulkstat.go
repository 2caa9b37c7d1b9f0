package xfs

import "time"

// Extended inode flags, shared by bulkstat (bs_xflags) and fsxattr.
const (
	XFlagRealtime     = 0x00000001 // FS_XFLAG_REALTIME
	XFlagPrealloc     = 0x00000002 // FS_XFLAG_PREALLOC
	XFlagImmutable    = 0x00000008 // FS_XFLAG_IMMUTABLE
	XFlagAppend       = 0x00000010 // FS_XFLAG_APPEND
	XFlagSync         = 0x00000020 // FS_XFLAG_SYNC
	XFlagNoAtime      = 0x00000040 // FS_XFLAG_NOATIME
	XFlagNoDump       = 0x00000080 // FS_XFLAG_NODUMP
	XFlagRtInherit    = 0x00000100 // FS_XFLAG_RTINHERIT
	XFlagProjInherit  = 0x00000200 // FS_XFLAG_PROJINHERIT
	XFlagNoSymlinks   = 0x00000400 // FS_XFLAG_NOSYMLINKS
	XFlagExtSize      = 0x00000800 // FS_XFLAG_EXTSIZE
	XFlagExtSzInherit = 0x00001000 // FS_XFLAG_EXTSZINHERIT
	XFlagNoDefrag     = 0x00002000 // FS_XFLAG_NODEFRAG
	XFlagFilestream   = 0x00004000 // FS_XFLAG_FILESTREAM
	XFlagDax          = 0x00008000 // FS_XFLAG_DAX
	XFlagCowExtSize   = 0x00010000 // FS_XFLAG_COWEXTSIZE
	XFlagHasAttr      = 0x80000000 // FS_XFLAG_HASATTR
)

// SnapshotV1 identifies snapshots decoded from the original (v1) bulkstat
// record.
const SnapshotV1 = 1

// Bstime mirrors xfs_bstime_t on 64-bit Linux.
type Bstime struct {
	Sec  int64 // 0
	NSec int32 // 8
	_    int32 // 12
} // 16

// Bstat mirrors struct xfs_bstat. ForkOff occupies bytes that older
// kernels left as padding; those kernels report zero.
type Bstat struct {
	Ino        uint64  // 0
	Mode       uint16  // 8
	Nlink      uint16  // 10
	UID        uint32  // 12
	GID        uint32  // 16
	Rdev       uint32  // 20
	BlkSize    int32   // 24
	_          int32   // 28
	Size       int64   // 32
	ATime      Bstime  // 40
	MTime      Bstime  // 56
	CTime      Bstime  // 72
	Blocks     int64   // 88
	XFlags     uint32  // 96
	ExtSize    int32   // 100
	Extents    int32   // 104
	Gen        uint32  // 108
	ProjIDLo   uint16  // 112
	ForkOff    uint16  // 114
	ProjIDHi   uint16  // 116
	Sick       uint16  // 118
	Checked    uint16  // 120
	Pad        [2]byte // 122
	CowExtSize uint32  // 124
	DMEvMask   uint32  // 128
	DMState    uint16  // 132
	AExtents   uint16  // 134
} // 136

// ProjID joins the split project identifier.
func (b *Bstat) ProjID() uint32 {
	return uint32(b.ProjIDHi)<<16 | uint32(b.ProjIDLo)
}

// InodeSnapshot is a point-in-time view of one inode's metadata. A new
// snapshot is taken after every change; they are never updated in place.
type InodeSnapshot struct {
	SchemaVersion int
	Ino           uint64
	Mode          uint32
	UID           uint32
	GID           uint32
	Size          int64
	Blocks        int64
	BlockSize     int32
	ModTime       time.Time
	ChangeTime    time.Time
	XFlags        uint32
	ExtSize       int32
	Extents       int32
	AttrExtents   uint16
	Generation    uint32
	ProjectID     uint32

	// ForkOffset is the attribute fork offset in bytes past the inode core.
	// It is meaningful only when ForkOffsetReported is set.
	ForkOffset         uint16
	ForkOffsetReported bool

	raw Bstat
}

// NewSnapshot decodes a bulkstat record.
func NewSnapshot(b Bstat) InodeSnapshot {

	s := InodeSnapshot{
		SchemaVersion: SnapshotV1,
		Ino:           b.Ino,
		Mode:          uint32(b.Mode),
		UID:           b.UID,
		GID:           b.GID,
		Size:          b.Size,
		Blocks:        b.Blocks,
		BlockSize:     b.BlkSize,
		ModTime:       time.Unix(b.MTime.Sec, int64(b.MTime.NSec)),
		ChangeTime:    time.Unix(b.CTime.Sec, int64(b.CTime.NSec)),
		XFlags:        b.XFlags,
		ExtSize:       b.ExtSize,
		Extents:       b.Extents,
		AttrExtents:   b.AExtents,
		Generation:    b.Gen,
		ProjectID:     b.ProjID(),
		ForkOffset:    b.ForkOff,
		raw:           b,
	}

	// zero means both "no attribute fork" and "kernel too old to say"
	s.ForkOffsetReported = s.HasAttributes() && b.ForkOff != 0

	return s

}

// Snapshot is shorthand for NewSnapshot(b).
func (b Bstat) Snapshot() InodeSnapshot {
	return NewSnapshot(b)
}

// HasAttributes reports whether the inode carries an attribute fork.
func (s InodeSnapshot) HasAttributes() bool {
	return s.XFlags&XFlagHasAttr != 0
}

// IsRegular reports whether the inode is a regular file.
func (s InodeSnapshot) IsRegular() bool {
	return s.Mode&0170000 == 0100000
}

// Bstat returns the kernel record the snapshot was decoded from. The swap
// ioctl uses it to detect changes made to the file since the snapshot.
func (s InodeSnapshot) Bstat() Bstat {
	return s.raw
}
