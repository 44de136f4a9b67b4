package anvil

import (
	"fmt"

	"github.com/astei/anvilview/voxel"
)

// cacheLevel is how much of a Cursor's cache is valid. Each level implies the ones below it.
type cacheLevel int

const (
	cacheEmpty cacheLevel = iota
	cacheRegion
	cacheChunk
	cacheSection
)

func (l cacheLevel) String() string {
	switch l {
	case cacheEmpty:
		return "empty"
	case cacheRegion:
		return "region"
	case cacheChunk:
		return "chunk"
	case cacheSection:
		return "section"
	}
	return fmt.Sprintf("cacheLevel(%d)", int(l))
}

// Stats counts the work a Cursor did to answer its queries.
type Stats struct {
	RegionLoads    int
	ChunkDecodes   int
	SectionLookups int
}

// Block is everything stored for one block position. The nibble fields are -1 when the
// section has no array for them.
type Block struct {
	ID         int
	Data       int
	SkyLight   int
	BlockLight int
}

// Cursor answers block queries over a region directory, keeping the last region, chunk and
// section it touched. A query that stays inside the cached region reuses it, one that stays in
// the cached chunk skips decompression, and one in the cached section skips the section
// search. Walking all blocks of a chunk before moving on therefore decodes each chunk once.
//
// A Cursor is not safe for concurrent use; give each goroutine its own.
type Cursor struct {
	region *Region
	level  cacheLevel

	rx, rz   int
	index    int
	chunk    *Chunk
	sectionY int
	section  *Section

	stats Stats
}

// NewCursor returns a Cursor reading region files from dir.
func NewCursor(dir string) *Cursor {
	return &Cursor{region: NewRegion(dir)}
}

// Stats returns the work counters.
func (c *Cursor) Stats() Stats { return c.stats }

// Region loads region (x, z) unless it is already cached.
func (c *Cursor) Region(x, z int) (*Region, error) {
	if c.level >= cacheRegion && c.rx == x && c.rz == z {
		return c.region, nil
	}
	c.level = cacheEmpty
	if err := c.region.Load(x, z); err != nil {
		return nil, err
	}
	c.stats.RegionLoads++
	c.rx, c.rz = x, z
	c.level = cacheRegion
	return c.region, nil
}

// Chunk returns the chunk holding a. The chunk is nil if its slot is empty.
func (c *Cursor) Chunk(a *voxel.RegionAddress) (*Chunk, error) {
	if _, err := c.Region(a.RegionX(), a.RegionZ()); err != nil {
		return nil, err
	}
	index := a.ChunkIndex()
	if c.level >= cacheChunk && c.index == index {
		return c.chunk, nil
	}
	c.level = cacheRegion
	chunk, err := c.region.Chunk(index)
	if err != nil {
		return nil, err
	}
	c.stats.ChunkDecodes++
	c.index, c.chunk = index, chunk
	c.level = cacheChunk
	return chunk, nil
}

// Section returns the section holding a. It is nil if the chunk or section does not exist.
func (c *Cursor) Section(a *voxel.RegionAddress) (*Section, error) {
	chunk, err := c.Chunk(a)
	if err != nil {
		return nil, err
	}
	y := a.SectionY()
	if c.level == cacheSection && c.sectionY == y {
		return c.section, nil
	}
	c.stats.SectionLookups++
	c.sectionY, c.section = y, chunk.Section(y)
	c.level = cacheSection
	return c.section, nil
}

// Block reads the block at a world position.
func (c *Cursor) Block(pos voxel.Coordinate) (Block, error) {
	a := voxel.NewRegionAddress(pos)
	s, err := c.Section(&a)
	if err != nil {
		return Block{}, err
	}
	p := a.BlockPos()
	return Block{
		ID:         s.BlockID(p),
		Data:       s.BlockData(p),
		SkyLight:   s.SkyLight(p),
		BlockLight: s.BlockLight(p),
	}, nil
}

// Invalidate drops the cache so the next query reloads the region from disk.
func (c *Cursor) Invalidate() {
	c.level = cacheEmpty
	c.chunk, c.section = nil, nil
	c.region.reset()
}
