package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/astei/anvilview/anvil"
)

var regionFlagDef = &cli.StringFlag{Name: "region", Aliases: []string{"r"}, Usage: "region coordinates as x,z"}

func main() {
	app := &cli.App{
		Name:  "anvilview",
		Usage: "inspects Anvil region files and exports per-region height surveys",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Value:   ".",
				Usage:   "region directory",
				EnvVars: []string{"ANVILVIEW_REGION_DIR"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "info",
				Usage:  "lists the chunks stored in a region file",
				Flags:  []cli.Flag{regionFlagDef},
				Action: infoAction,
			},
			{
				Name:  "dump",
				Usage: "prints the NBT tree of one chunk",
				Flags: []cli.Flag{
					regionFlagDef,
					&cli.IntFlag{Name: "chunk", Aliases: []string{"c"}, Usage: "slot index, 0..1023"},
				},
				Action: dumpAction,
			},
			{
				Name:      "block",
				Usage:     "prints the block stored at a world position",
				ArgsUsage: "x,y,z",
				Action:    blockAction,
			},
			{
				Name:  "survey",
				Usage: "writes an r.<x>.<z>.hdt height survey for every region, or only --region",
				Flags: []cli.Flag{
					regionFlagDef,
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output directory (default: the region directory)"},
					&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Value: anvil.DefaultSurveyOptions().Workers},
					&cli.IntSliceFlag{Name: "fluid", Value: cli.NewIntSlice(anvil.DefaultSurveyOptions().FluidIDs...), Usage: "block ids treated as fluid"},
				},
				Action: surveyAction,
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
