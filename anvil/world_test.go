package anvil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/astei/anvilview/internal/regiontest"
)

func TestOpenWorld(t *testing.T) {
	dir := t.TempDir()
	surveyFixture(t, dir, 0)
	surveyFixture(t, dir, -1)
	regiontest.Write(t, dir, 3, -2, regiontest.Bytes(t))
	for _, junk := range []string{"r.a.b.mca", "level.dat", "r.0.0.hdt"} {
		if err := os.WriteFile(filepath.Join(dir, junk), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "r.9.9.mca"), 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := OpenWorld(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []RegionCoord{{X: 3, Z: -2}, {X: -1, Z: 0}, {X: 0, Z: 0}}
	if diff := cmp.Diff(want, w.Regions()); diff != "" {
		t.Errorf("Regions() mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenWorldMissingDir(t *testing.T) {
	if _, err := OpenWorld(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v", err)
	}
}

func TestSurveyAll(t *testing.T) {
	dir := t.TempDir()
	for rx := -2; rx <= 2; rx++ {
		surveyFixture(t, dir, rx)
	}
	// A region cut short inside its second chunk keeps the first.
	data := regiontest.Bytes(t,
		regiontest.Slot{Index: 0, Root: regiontest.ChunkTag(0, 32, 32, 4, regiontest.SectionTag(0, 1), regiontest.SectionTag(1, 9))},
		regiontest.Slot{Index: 1, Root: regiontest.ChunkTag(1, 32, 16, 2, regiontest.SectionTag(0, 1))},
	)
	regiontest.Write(t, dir, 0, 1, data[:len(data)-SectorSize+8])

	w, err := OpenWorld(dir)
	if err != nil {
		t.Fatal(err)
	}
	opts := DefaultSurveyOptions()
	opts.Workers = 3
	results := w.SurveyAll(opts)
	if len(results) != 6 {
		t.Fatalf("%d results, want 6", len(results))
	}

	for i, res := range results {
		if res.Err != nil {
			t.Errorf("%v: %v", res.Region, res.Err)
			continue
		}
		if res.Region != w.Regions()[i] {
			t.Errorf("result %d is %v, want %v", i, res.Region, w.Regions()[i])
		}
		if res.Topo.X != res.Region.X || res.Topo.Z != res.Region.Z {
			t.Errorf("%v: topo for %d,%d", res.Region, res.Topo.X, res.Topo.Z)
		}
		if res.Topo.Height[0] != 31 || res.Topo.Fluid[0] != 15 {
			t.Errorf("%v: column 0 = height %d fluid %d", res.Region, res.Topo.Height[0], res.Topo.Fluid[0])
		}

		truncated := res.Region == RegionCoord{X: 0, Z: 1}
		if (res.Truncated != nil) != truncated {
			t.Errorf("%v: Truncated = %v", res.Region, res.Truncated)
		}
		if truncated && res.Topo.Height[16] != 0 {
			t.Errorf("%v: lost chunk surveyed with height %d", res.Region, res.Topo.Height[16])
		}
	}
}
