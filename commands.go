package main

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/astei/anvilview/anvil"
	"github.com/astei/anvilview/nbt"
	"github.com/astei/anvilview/voxel"
)

// regionFlag reads --region as "x,z". ParseCoordinate puts a two-value form in X and Z.
func regionFlag(c *cli.Context) (x, z int, err error) {
	if !c.IsSet("region") {
		fmt.Fprintf(os.Stderr, "%s: --region x,z is required\n", c.Command.Name)
		return 0, 0, cli.Exit("", 2)
	}
	coord, err := voxel.ParseCoordinate(c.String("region"))
	if err != nil {
		return 0, 0, err
	}
	return coord.X, coord.Z, nil
}

func openRegion(c *cli.Context) (*anvil.Region, error) {
	x, z, err := regionFlag(c)
	if err != nil {
		return nil, err
	}
	r, err := anvil.OpenRegion(c.String("dir"), x, z)
	if err != nil {
		return nil, err
	}
	if tr := r.Truncated(); tr != nil {
		log.Printf("warning: %v", tr)
	}
	return r, nil
}

func infoAction(c *cli.Context) error {
	r, err := openRegion(c)
	if err != nil {
		return err
	}
	if !r.IsLoaded() {
		fmt.Printf("%s: no chunks\n", r.Name())
		return nil
	}

	fmt.Printf("%s: %d chunks\n", r.Name(), r.Count())
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLOT\tCHUNK\tMODIFIED\tCOMPRESSION\tBYTES\tSECTIONS\tSTATUS")
	for _, i := range r.Slots() {
		p := r.Payload(i)
		chunk, err := r.Chunk(i)
		if err != nil {
			fmt.Fprintf(tw, "%d\t-\t%s\t%s\t%d\t-\t%v\n", i, r.Timestamp(i).Format("2006-01-02 15:04"), p.Compression, p.Length, err)
			continue
		}
		status := "ok"
		if err := chunk.Validate(); err != nil {
			status = err.Error()
		} else if chunk.Truncated() {
			status = "truncated"
		}
		x, z, _ := chunk.Pos()
		fmt.Fprintf(tw, "%d\t%d,%d\t%s\t%s\t%d\t%d\t%s\n",
			i, x, z, r.Timestamp(i).Format("2006-01-02 15:04"), p.Compression, p.Length, len(chunk.Sections()), status)
	}
	for i := 0; i < anvil.ChunkSlots; i++ {
		if err := r.SlotError(i); err != nil {
			fmt.Fprintf(tw, "%d\t-\t-\t-\t-\t-\t%v\n", i, err)
		}
	}
	return tw.Flush()
}

func dumpAction(c *cli.Context) error {
	r, err := openRegion(c)
	if err != nil {
		return err
	}
	chunk, err := r.Chunk(c.Int("chunk"))
	if err != nil {
		return err
	}
	if chunk == nil {
		return fmt.Errorf("%s: slot %d: %w", r.Name(), c.Int("chunk"), anvil.ErrNoChunk)
	}
	return nbt.Explain(os.Stdout, chunk.Root())
}

func blockAction(c *cli.Context) error {
	if c.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "block: need one position as x,y,z")
		return cli.Exit("", 2)
	}
	pos, err := voxel.ParseCoordinate(c.Args().First())
	if err != nil {
		return err
	}
	a := voxel.NewRegionAddress(pos)
	b, err := anvil.NewCursor(c.String("dir")).Block(pos)
	if err != nil {
		return err
	}
	fmt.Println(a.String())
	fmt.Printf("id %d data %d sky light %d block light %d\n", b.ID, b.Data, b.SkyLight, b.BlockLight)
	return nil
}

func surveyAction(c *cli.Context) error {
	dir := c.String("dir")
	out := c.String("out")
	if out == "" {
		out = dir
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}

	opts := anvil.SurveyOptions{FluidIDs: c.IntSlice("fluid"), Workers: c.Int("workers")}
	var results []anvil.SurveyResult
	if c.IsSet("region") {
		x, z, err := regionFlag(c)
		if err != nil {
			return err
		}
		cur := anvil.NewCursor(dir)
		res := anvil.SurveyResult{Region: anvil.RegionCoord{X: x, Z: z}}
		res.Topo, res.Err = anvil.Survey(cur, x, z, opts)
		if r, err := cur.Region(x, z); err == nil {
			res.Truncated = r.Truncated()
		}
		results = append(results, res)
	} else {
		w, err := anvil.OpenWorld(dir)
		if err != nil {
			return err
		}
		results = w.SurveyAll(opts)
	}

	failed := 0
	for _, res := range results {
		name := voxel.RegionFileName(res.Region.X, res.Region.Z)
		if res.Err != nil {
			log.Printf("%s: %v", name, res.Err)
			failed++
			continue
		}
		if res.Truncated != nil {
			log.Printf("warning: %v", res.Truncated)
		}
		skipped := maps.Keys(res.Topo.Skipped)
		slices.Sort(skipped)
		for _, i := range skipped {
			log.Printf("warning: skipped %v", res.Topo.Skipped[i])
		}
		if err := anvil.SaveTopo(out, res.Topo); err != nil {
			return err
		}
		log.Printf("%s: wrote %s", name, anvil.TopoFileName(res.Region.X, res.Region.Z))
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d regions could not be surveyed", failed), 1)
	}
	return nil
}
