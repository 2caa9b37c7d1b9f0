package xfs

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeometryLayout(t *testing.T) {
	assert.Equal(t, 112, binary.Size(Geometry{}))
}

func TestGeometryForkOffsetGap(t *testing.T) {

	g := Geometry{InodeSize: 256, Flags: GeomFlagAttr | GeomFlagAttr2}
	assert.True(t, g.Attr2())
	assert.False(t, g.V5())
	assert.Equal(t, 100, g.HeaderSize())
	assert.Equal(t, 156, g.MaxForkOffsetGap())

	g = Geometry{InodeSize: 512, Flags: GeomFlagV5SB | GeomFlagAttr2}
	assert.True(t, g.V5())
	assert.Equal(t, 176, g.HeaderSize())
	assert.Equal(t, 336, g.MaxForkOffsetGap())

	g = Geometry{InodeSize: 256}
	assert.False(t, g.Attr2())

}

func TestGeometryRoundToBlock(t *testing.T) {

	g := Geometry{BlockSize: 4096}
	assert.Equal(t, int64(0), g.RoundToBlock(0))
	assert.Equal(t, int64(4096), g.RoundToBlock(1))
	assert.Equal(t, int64(4096), g.RoundToBlock(4096))
	assert.Equal(t, int64(8192), g.RoundToBlock(4097))

	g = Geometry{}
	assert.Equal(t, int64(17), g.RoundToBlock(17))

}
