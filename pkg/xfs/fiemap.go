package xfs

const (
	FiemapFlagSync   = 0x00000001 // FIEMAP_FLAG_SYNC
	FiemapExtentLast = 0x00000001 // FIEMAP_EXTENT_LAST
	FiemapUnwritten  = 0x00000800 // FIEMAP_EXTENT_UNWRITTEN

	fiemapBatch = 256
)

// Extent is one mapped range of a file.
type Extent struct {
	Logical  uint64
	Physical uint64
	Length   uint64
	Flags    uint32
}

// Last reports whether this is the final extent of the file.
func (e Extent) Last() bool {
	return e.Flags&FiemapExtentLast != 0
}

// Unwritten reports whether the range is preallocated but never written.
func (e Extent) Unwritten() bool {
	return e.Flags&FiemapUnwritten != 0
}

// Raw kernel structs for FS_IOC_FIEMAP (linux/fiemap.h).

type fiemapExtent struct {
	Logical    uint64    // 0
	Physical   uint64    // 8
	Length     uint64    // 16
	Reserved64 [2]uint64 // 24
	Flags      uint32    // 40
	Reserved32 [3]uint32 // 44
} // 56

type fiemapRequest struct {
	Start         uint64 // 0
	Length        uint64 // 8
	Flags         uint32 // 16
	MappedExtents uint32 // 20
	ExtentCount   uint32 // 24
	Reserved      uint32 // 28
	Extents       [fiemapBatch]fiemapExtent
}

// CountFragments counts physically discontiguous runs in a mapping.
// Logically adjacent extents that also sit next to each other on disk count
// once.
func CountFragments(extents []Extent) int {

	n := 0
	var prev *Extent

	for i := range extents {
		e := &extents[i]
		if prev == nil ||
			prev.Logical+prev.Length != e.Logical ||
			prev.Physical+prev.Length != e.Physical {
			n++
		}
		prev = e
	}

	return n

}
