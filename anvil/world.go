package anvil

import (
	"os"
	"strings"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/astei/anvilview/voxel"
)

// RegionCoord names a region by its coordinates.
type RegionCoord struct {
	X int
	Z int
}

// World is a directory of region files.
type World struct {
	dir     string
	regions map[RegionCoord]string
}

// OpenWorld lists the region files in dir. Files that are not named r.<x>.<z>.mca are
// ignored.
func OpenWorld(dir string) (*World, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	regions := make(map[RegionCoord]string)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".mca") {
			continue
		}
		if x, z, ok := voxel.ParseRegionFileName(e.Name()); ok {
			regions[RegionCoord{X: x, Z: z}] = e.Name()
		}
	}
	return &World{dir: dir, regions: regions}, nil
}

func (w *World) Dir() string { return w.dir }

// Regions returns the coordinates of every region file, ordered by z and then x.
func (w *World) Regions() []RegionCoord {
	keys := maps.Keys(w.regions)
	slices.SortFunc(keys, func(a, b RegionCoord) int {
		if a.Z != b.Z {
			return a.Z - b.Z
		}
		return a.X - b.X
	})
	return keys
}

// SurveyResult is the outcome of surveying one region.
type SurveyResult struct {
	Region RegionCoord
	Topo   *Topo
	// Truncated is set when the region file ended early; Topo covers the chunks before it.
	Truncated *TruncatedError
	Err       error
}

// SurveyAll surveys every region with up to opts.Workers goroutines, each with its own
// Cursor. Results are in the order of Regions. A region that fails does not stop the others.
func (w *World) SurveyAll(opts SurveyOptions) []SurveyResult {
	regions := w.Regions()
	results := make([]SurveyResult, len(regions))

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(regions) {
		workers = len(regions)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for n := 0; n < workers; n++ {
		go func() {
			defer wg.Done()
			cur := NewCursor(w.dir)
			for i := range jobs {
				rc := regions[i]
				topo, err := Survey(cur, rc.X, rc.Z, opts)
				results[i] = SurveyResult{Region: rc, Topo: topo, Err: err}
				if err == nil {
					results[i].Truncated = cur.region.Truncated()
				}
			}
		}()
	}
	for i := range regions {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}
