package anvil

import (
	"golang.org/x/exp/slices"

	"github.com/astei/anvilview/voxel"
)

// TopoSize is the number of columns in a region, and the length of every Topo plane.
const TopoSize = voxel.RegionBlocks * voxel.RegionBlocks

// NoFluid marks a column whose top block is not a fluid.
const NoFluid = 255

// Topo is a per-column summary of one region. Each plane is indexed z*512 + x with x and z
// relative to the region corner.
type Topo struct {
	X, Z int
	// Height is the y of the top block of each column.
	Height []byte
	// Fluid is the y of the first solid block under a fluid surface, or NoFluid.
	Fluid []byte
	// Biome is the biome id of each column, 255 where the chunk has no biome map.
	Biome []byte

	// Skipped holds the chunk slots that could not be decoded. Their columns keep the blank
	// values. It is not stored by WriteTopo.
	Skipped map[int]error
}

// NewTopo returns a blank survey of region (x, z). Columns of missing chunks keep these
// values: height 0, no fluid and biome 255.
func NewTopo(x, z int) *Topo {
	t := &Topo{
		X:      x,
		Z:      z,
		Height: make([]byte, TopoSize),
		Fluid:  make([]byte, TopoSize),
		Biome:  make([]byte, TopoSize),
	}
	for i := range t.Fluid {
		t.Fluid[i] = NoFluid
		t.Biome[i] = 255
	}
	return t
}

// SurveyOptions configures Survey.
type SurveyOptions struct {
	// FluidIDs are the block ids treated as a fluid surface.
	FluidIDs []int
	// Workers bounds how many regions World.SurveyAll reads at once.
	Workers int
}

// DefaultSurveyOptions treats flowing and still water as fluids.
func DefaultSurveyOptions() SurveyOptions {
	return SurveyOptions{FluidIDs: []int{8, 9}, Workers: 4}
}

// Survey summarises region (x, z) column by column. It walks chunk by chunk so every chunk
// is decoded once through the cursor. A chunk that fails to decode is recorded in
// Topo.Skipped and the survey goes on; only a failure to read the region itself is returned.
func Survey(cur *Cursor, x, z int, opts SurveyOptions) (*Topo, error) {
	topo := NewTopo(x, z)
	region, err := cur.Region(x, z)
	if err != nil {
		return nil, err
	}
	if !region.IsLoaded() {
		return topo, nil
	}

	isFluid := func(id int) bool { return slices.Contains(opts.FluidIDs, id) }

	a := voxel.NewRegionAddress(voxel.Coordinate{})
	a.SetRegion(x, z)
	for cz := 0; cz < voxel.RegionChunks; cz++ {
		for cx := 0; cx < voxel.RegionChunks; cx++ {
			a.SetRegionOffset(voxel.Coordinate{X: cx * voxel.ChunkBlocks, Z: cz * voxel.ChunkBlocks})
			chunk, err := cur.Chunk(&a)
			if err != nil {
				if topo.Skipped == nil {
					topo.Skipped = make(map[int]error)
				}
				topo.Skipped[a.ChunkIndex()] = err
				continue
			}
			if chunk == nil {
				continue
			}

			for bz := 0; bz < voxel.ChunkBlocks; bz++ {
				for bx := 0; bx < voxel.ChunkBlocks; bx++ {
					col := voxel.Coordinate{X: cx*voxel.ChunkBlocks + bx, Z: cz*voxel.ChunkBlocks + bz}
					i := col.Z*voxel.RegionBlocks + col.X

					// The height map holds the first air block above the surface.
					h := chunk.Height(bx, bz)
					if h > 0 {
						h--
					}
					h = clampByte(h)
					topo.Height[i] = byte(h)
					topo.Biome[i] = byte(chunk.Biome(bx, bz))

					col.Y = h
					a.SetRegionOffset(col)
					s, err := cur.Section(&a)
					if err != nil {
						return nil, err
					}
					if !isFluid(s.BlockID(a.BlockPos())) {
						continue
					}
					for y := h; y > 0; y-- {
						col.Y = y
						a.SetRegionOffset(col)
						if s, err = cur.Section(&a); err != nil {
							return nil, err
						}
						if !isFluid(s.BlockID(a.BlockPos())) {
							topo.Fluid[i] = byte(y)
							break
						}
					}
				}
			}
		}
	}
	return topo, nil
}

func clampByte(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return v
}
