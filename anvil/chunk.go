package anvil

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/astei/anvilview/nbt"
)

// columns is the number of entries in the per-column arrays of a chunk.
const columns = 16 * 16

// Chunk is a read view over a decoded chunk tree. Fields are found by name anywhere in the
// tree, so both a bare level compound and the usual {"Level": {...}} wrapping work.
//
// The accessors are safe to call on a nil *Chunk, which stands for an empty slot.
type Chunk struct {
	root      *nbt.Tag
	heights   []int32
	biomes    []byte
	sections  []*nbt.Tag
	truncated bool
}

// NewChunk wraps a decoded chunk. The root must be a compound.
func NewChunk(root *nbt.Tag) (*Chunk, error) {
	if root.Kind() != nbt.TagCompound {
		return nil, fmt.Errorf("%w: root is %s", ErrInvalidChunk, root.Kind())
	}
	c := &Chunk{root: root}
	c.heights, _ = root.Lookup("HeightMap").Ints()
	c.biomes, _ = root.Lookup("Biomes").Bytes()
	if l := root.Lookup("Sections").List(); l != nil && l.Elem == nbt.TagCompound {
		c.sections = l.Items
	}
	return c, nil
}

// Root returns the chunk's tree.
func (c *Chunk) Root() *nbt.Tag {
	if c == nil {
		return nil
	}
	return c.root
}

// Tag looks up a field by name.
func (c *Chunk) Tag(name string) *nbt.Tag {
	return c.Root().Lookup(name)
}

// Truncated reports whether the chunk's tree ended early and was completed with zero values.
func (c *Chunk) Truncated() bool { return c != nil && c.truncated }

func (c *Chunk) int(name string) (int64, bool) {
	return c.Tag(name).Int()
}

// Pos returns the chunk's world position in chunks.
func (c *Chunk) Pos() (x, z int, ok bool) {
	cx, okx := c.int("xPos")
	cz, okz := c.int("zPos")
	return int(cx), int(cz), okx && okz
}

// LastUpdate is the game tick at which the chunk was last saved.
func (c *Chunk) LastUpdate() int64 {
	v, _ := c.int("LastUpdate")
	return v
}

// InhabitedTime is the number of ticks players have spent in the chunk.
func (c *Chunk) InhabitedTime() int64 {
	v, _ := c.int("InhabitedTime")
	return v
}

func (c *Chunk) LightPopulated() bool {
	v, _ := c.int("LightPopulated")
	return v == 1
}

func (c *Chunk) TerrainPopulated() bool {
	v, _ := c.int("TerrainPopulated")
	return v == 1
}

// Version is the chunk format version byte V.
func (c *Chunk) Version() int {
	v, _ := c.int("V")
	return int(v)
}

func (c *Chunk) Entities() *nbt.List     { return c.Tag("Entities").List() }
func (c *Chunk) TileEntities() *nbt.List { return c.Tag("TileEntities").List() }
func (c *Chunk) TileTicks() *nbt.List    { return c.Tag("TileTicks").List() }

func column(x, z int) int { return (z&0xf)*16 + (x & 0xf) }

// Height returns the height map entry for column (x, z); only the low four bits of x and z
// are used. A chunk without a usable height map reads as 255.
func (c *Chunk) Height(x, z int) int {
	if c == nil || len(c.heights) < columns {
		return 255
	}
	return int(c.heights[column(x, z)])
}

// Biome returns the biome id of column (x, z), or -1 if the chunk has no biome map.
func (c *Chunk) Biome(x, z int) int {
	if c == nil || len(c.biomes) < columns {
		return -1
	}
	return int(c.biomes[column(x, z)])
}

// CopyHeights copies the height map into dst and returns the number of entries copied.
func (c *Chunk) CopyHeights(dst []int32) int {
	if c == nil {
		return 0
	}
	return copy(dst, c.heights)
}

// CopyBiomes copies the biome map into dst and returns the number of entries copied.
func (c *Chunk) CopyBiomes(dst []byte) int {
	if c == nil {
		return 0
	}
	return copy(dst, c.biomes)
}

// Section returns the section whose Y field equals y, or nil if the chunk has none.
func (c *Chunk) Section(y int) *Section {
	if c == nil {
		return nil
	}
	i := slices.IndexFunc(c.sections, func(s *nbt.Tag) bool {
		sy, ok := s.Compound().Get("Y").Int()
		return ok && int(sy) == y
	})
	if i < 0 {
		return nil
	}
	return newSection(c.sections[i])
}

// Sections returns every section in stored order.
func (c *Chunk) Sections() []*Section {
	if c == nil {
		return nil
	}
	out := make([]*Section, 0, len(c.sections))
	for _, s := range c.sections {
		out = append(out, newSection(s))
	}
	return out
}

// Validate checks that the per-column arrays have one entry per column.
func (c *Chunk) Validate() error {
	if c == nil {
		return ErrNoChunk
	}
	if len(c.heights) != columns {
		return fmt.Errorf("%w: height map has %d entries", ErrInvalidChunk, len(c.heights))
	}
	if len(c.biomes) != columns {
		return fmt.Errorf("%w: biome map has %d entries", ErrInvalidChunk, len(c.biomes))
	}
	return nil
}
