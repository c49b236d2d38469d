package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/Marsevil/radiance-cascades/cascade"
	"github.com/Marsevil/radiance-cascades/renderer"
	"github.com/Marsevil/radiance-cascades/scene/reader"
)

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := renderer.Options{
		FrameW:               ctx.Int("width"),
		FrameH:               ctx.Int("height"),
		LevelCount:           ctx.Int("levels"),
		BaseCols:             ctx.Int("base-spatial"),
		BaseRows:             ctx.Int("base-spatial"),
		BaseAngular:          ctx.Int("base-angular"),
		SpatialFactor:        ctx.Int("spatial-factor"),
		AngularFactor:        ctx.Int("angular-factor"),
		MaxExtent:            float32(ctx.Float64("max-extent")),
		TransmittanceEpsilon: float32(ctx.Float64("t-epsilon")),
		TraceStepSize:        float32(ctx.Float64("step")),
		Exposure:             float32(ctx.Float64("exposure")),
		NumWorkers:           ctx.Int("workers"),
	}

	// Load scene
	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	field, err := reader.ReadField(ctx.Args().First())
	if err != nil {
		return err
	}

	// Create renderer
	r, err := renderer.NewDefault(field, cascade.AdaptiveScheduler(), opts)
	if err != nil {
		return err
	}
	defer r.Close()

	if err = r.Render(); err != nil {
		return err
	}

	out := ctx.String("out")
	if err = renderer.WriteFrame(out, r.FrameBuffer(), opts.FrameW, opts.FrameH); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s", out)

	// Display stats
	displayFrameStats(r.Stats())

	return nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Level", "Probes", "Rays", "% of rays", "Build time"})
	for _, stat := range stats.Levels {
		table.Append([]string{
			fmt.Sprintf("%d", stat.Level),
			fmt.Sprintf("%d", stat.Probes),
			fmt.Sprintf("%d", stat.Rays),
			fmt.Sprintf("%02.1f %%", stat.RayPercent),
			fmt.Sprintf("%s", stat.BuildTime),
		})
	}
	table.SetFooter([]string{"", "", "", "MERGE", fmt.Sprintf("%s", stats.MergeTime)})
	table.Render()

	buf.WriteString(fmt.Sprintf("TOTAL %s\n", stats.RenderTime))
	logger.Noticef("frame statistics\n%s", buf.String())
}
