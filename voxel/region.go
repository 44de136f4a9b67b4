package voxel

import "fmt"

const (
	// RegionBlocks is the width of a region along x and z, in blocks.
	RegionBlocks = 512
	// ChunkBlocks is the width of a chunk along every axis (a section is 16 high).
	ChunkBlocks = 16
	// RegionChunks is the width of a region along x and z, in chunks.
	RegionChunks = RegionBlocks / ChunkBlocks
)

var (
	RegionSize = Size{Y: Unbounded, X: RegionBlocks, Z: RegionBlocks}
	ChunkSize  = Size{Y: ChunkBlocks, X: ChunkBlocks, Z: ChunkBlocks}
)

// RegionAddress chains two partitions: the world is split into regions, and the position
// inside the region is split again into chunks and sections.
type RegionAddress struct {
	region Partitioned
	chunk  Partitioned
}

// NewRegionAddress returns the address of a world position.
func NewRegionAddress(c Coordinate) RegionAddress {
	a := RegionAddress{
		region: Partitioned{size: RegionSize},
		chunk:  Partitioned{size: ChunkSize},
	}
	a.SetCoordinate(c)
	return a
}

// Coordinate returns the world position.
func (a *RegionAddress) Coordinate() Coordinate { return a.region.Coordinate() }

// SetCoordinate moves to a world position.
func (a *RegionAddress) SetCoordinate(c Coordinate) {
	a.region.SetCoordinate(c)
	a.refresh()
}

// SetRegion moves to the north-west corner of region (x, z), keeping the current y.
func (a *RegionAddress) SetRegion(x, z int) {
	a.region.SetZone(Coordinate{X: x, Z: z})
	a.region.SetOffset(Coordinate{Y: a.region.Offset().Y})
	a.refresh()
}

// SetRegionOffset moves inside the current region. x and z are block offsets from the region
// corner; y is the world y.
func (a *RegionAddress) SetRegionOffset(o Coordinate) {
	a.region.SetOffset(o)
	a.refresh()
}

func (a *RegionAddress) refresh() {
	a.chunk.SetCoordinate(a.region.Offset())
}

func (a *RegionAddress) RegionX() int { return a.region.Zone().X }
func (a *RegionAddress) RegionZ() int { return a.region.Zone().Z }

// RegionOffset is the block position relative to the region corner.
func (a *RegionAddress) RegionOffset() Coordinate { return a.region.Offset() }

// ChunkX and ChunkZ locate the chunk inside its region, 0..31.
func (a *RegionAddress) ChunkX() int { return a.chunk.Zone().X }
func (a *RegionAddress) ChunkZ() int { return a.chunk.Zone().Z }

// ChunkIndex is the chunk's slot in the region file, 0..1023.
func (a *RegionAddress) ChunkIndex() int {
	return a.ChunkZ()*RegionChunks + a.ChunkX()
}

// SectionY is the index of the 16-high section holding the position.
func (a *RegionAddress) SectionY() int { return a.chunk.Zone().Y }

// Local is the block position inside its section, each component in 0..15.
func (a *RegionAddress) Local() Coordinate { return a.chunk.Offset() }

// Column indexes the 16x16 per-column arrays of a chunk (height map, biomes).
func (a *RegionAddress) Column() int {
	l := a.chunk.Offset()
	return l.Z*ChunkBlocks + l.X
}

// BlockPos indexes the 16x16x16 per-block arrays of a section.
func (a *RegionAddress) BlockPos() int {
	l := a.chunk.Offset()
	return l.Y*ChunkBlocks*ChunkBlocks + l.Z*ChunkBlocks + l.X
}

// WorldChunk returns the chunk coordinates in the world, as stored in a chunk's xPos and zPos.
func (a *RegionAddress) WorldChunk() (x, z int) {
	c := a.Coordinate()
	return Zone(ChunkBlocks, c.X), Zone(ChunkBlocks, c.Z)
}

func (a RegionAddress) String() string {
	return fmt.Sprintf("%s region(%d,%d) chunk %d section %d block %d",
		a.Coordinate(), a.RegionX(), a.RegionZ(), a.ChunkIndex(), a.SectionY(), a.BlockPos())
}
