package main

import (
	"os"

	"github.com/Marsevil/radiance-cascades/cmd"
	"github.com/urfave/cli"
)

var cascadeFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "levels",
		Value: 4,
		Usage: "number of cascade levels",
	},
	cli.IntFlag{
		Name:  "base-spatial",
		Usage: "probe grid dimension at level 0 (default: frame size)",
	},
	cli.IntFlag{
		Name:  "base-angular",
		Value: 4,
		Usage: "directions per probe at level 0",
	},
	cli.IntFlag{
		Name:  "spatial-factor",
		Value: 2,
		Usage: "per-level probe grid divisor",
	},
	cli.IntFlag{
		Name:  "angular-factor",
		Value: 4,
		Usage: "per-level direction multiplier",
	},
	cli.Float64Flag{
		Name:  "max-extent",
		Usage: "distance covered by the cascade intervals (default: scene diagonal)",
	},
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "cascades"
	app.Usage = "render 2d scenes using radiance cascades"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render scene to a png frame",
			Description: `
Parse a scene definition (occluders and radiance emitters over a 2d
domain), build the cascade hierarchy, merge it into a per-pixel
irradiance buffer and write the tonemapped result to a png file.`,
			ArgsUsage: "scene_file",
			Action:    cmd.RenderFrame,
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 512,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 512,
					Usage: "frame height",
				},
				cli.Float64Flag{
					Name:  "t-epsilon",
					Value: 1e-4,
					Usage: "transmittance cutoff treated as fully occluded",
				},
				cli.Float64Flag{
					Name:  "step",
					Value: 1.0,
					Usage: "trace step size in world units",
				},
				cli.Float64Flag{
					Name:  "exposure",
					Value: 1.0,
					Usage: "camera exposure for tone-mapping",
				},
				cli.IntFlag{
					Name:  "workers",
					Usage: "build worker count (default: one per cpu)",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the rendered frame",
				},
			}, cascadeFlags...),
		},
		{
			Name:  "levels",
			Usage: "print the cascade level layout for a configuration",
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 512,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 512,
					Usage: "frame height",
				},
			}, cascadeFlags...),
			Action: cmd.ShowLevels,
		},
	}

	app.Run(os.Args)
}
