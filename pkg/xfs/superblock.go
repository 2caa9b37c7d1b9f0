package xfs

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// ReadSuperBlock decodes the primary superblock found at the start of an
// XFS device or image.
func ReadSuperBlock(r io.ReaderAt) (*SuperBlock, error) {

	sb := new(SuperBlock)
	sr := io.NewSectionReader(r, 0, int64(binary.Size(sb)))

	err := binary.Read(sr, binary.BigEndian, sb)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read superblock")
	}

	if sb.MagicNumber != SBMagicNumber {
		return nil, errors.Wrapf(ErrNotXFS, "bad superblock magic %#x", sb.MagicNumber)
	}

	return sb, nil

}

// Version returns the superblock version number (4 or 5).
func (sb *SuperBlock) Version() int {
	return int(sb.VersionNum & VersionNumMask)
}

// HasMoreBits reports whether the second feature word is valid.
func (sb *SuperBlock) HasMoreBits() bool {
	return sb.VersionNum&VersionMoreBitsBit != 0
}

// Attr2 reports whether the variable fork offset attribute format is in
// use. Version 5 filesystems always use it.
func (sb *SuperBlock) Attr2() bool {
	if sb.Version() == VersionNumber5 {
		return true
	}
	return sb.HasMoreBits() && sb.MoreFeatures&Version2Attr2Bit != 0
}

// Geometry converts the superblock into the same description the kernel
// returns from XFS_IOC_FSGEOMETRY_V1, for use on unmounted images.
func (sb *SuperBlock) Geometry() Geometry {

	g := Geometry{
		BlockSize:    sb.BlockSize,
		RtExtSize:    sb.RealtimeExtentBlocks * sb.BlockSize,
		AGBlocks:     sb.AGBlocks,
		AGCount:      sb.AGCount,
		LogBlocks:    sb.LogBlocks,
		SectSize:     uint32(sb.SectorSize),
		InodeSize:    uint32(sb.InodeSize),
		IMaxPct:      uint32(sb.InodesMaxPercentage),
		DataBlocks:   sb.DataBlocks,
		RtBlocks:     sb.RealtimeBlocks,
		RtExtents:    sb.RealtimeExtents,
		LogStart:     sb.LogStart,
		UUID:         sb.UUID,
		SUnit:        sb.StripeUnitBlocks,
		SWidth:       sb.StripeWidthBlocks,
		Version:      GeomVersionV1,
		LogSectSize:  uint32(sb.LogSectorSize),
		DirBlockSize: sb.BlockSize << sb.DirectoryBlocksLogarithmic,
	}

	if sb.VersionNum&VersionAttrBit != 0 {
		g.Flags |= GeomFlagAttr
	}
	if sb.VersionNum&VersionNlinkBit != 0 {
		g.Flags |= GeomFlagNlink
	}
	if sb.VersionNum&VersionQuotaBit != 0 {
		g.Flags |= GeomFlagQuota
	}
	if sb.VersionNum&VersionAlignBit != 0 {
		g.Flags |= GeomFlagIAlign
	}
	if sb.VersionNum&VersionDalignBit != 0 {
		g.Flags |= GeomFlagDAlign
	}
	if sb.VersionNum&VersionExtFlgBit != 0 {
		g.Flags |= GeomFlagExtFlg
	}
	if sb.VersionNum&VersionDirV2Bit != 0 {
		g.Flags |= GeomFlagDirV2
	}
	if sb.VersionNum&VersionLogV2Bit != 0 {
		g.Flags |= GeomFlagLogV2
	}
	if sb.VersionNum&VersionSectorBit != 0 {
		g.Flags |= GeomFlagSector
	}
	if sb.Attr2() {
		g.Flags |= GeomFlagAttr2
	}
	if sb.HasMoreBits() && sb.MoreFeatures&Version2LazySBCountBit != 0 {
		g.Flags |= GeomFlagLazySB
	}
	if sb.HasMoreBits() && sb.MoreFeatures&Version2ProjID32Bit != 0 {
		g.Flags |= GeomFlagProjID32
	}
	if sb.Version() == VersionNumber5 {
		g.Flags |= GeomFlagV5SB
	}

	return g

}
