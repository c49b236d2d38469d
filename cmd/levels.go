package cmd

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/Marsevil/radiance-cascades/cascade"
)

// Print the cascade level layout derived from the given configuration
// without rendering anything. Useful for sizing a hierarchy before
// committing to a long render.
func ShowLevels(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg := cascade.DefaultConfig(ctx.Int("width"), ctx.Int("height"))
	if v := ctx.Int("levels"); v != 0 {
		cfg.LevelCount = v
	}
	if v := ctx.Int("base-spatial"); v != 0 {
		cfg.BaseCols = v
		cfg.BaseRows = v
	}
	if v := ctx.Int("base-angular"); v != 0 {
		cfg.BaseAngular = v
	}
	if v := ctx.Int("spatial-factor"); v != 0 {
		cfg.SpatialFactor = v
	}
	if v := ctx.Int("angular-factor"); v != 0 {
		cfg.AngularFactor = v
	}
	if v := ctx.Float64("max-extent"); v != 0 {
		cfg.MaxExtent = float32(v)
	}

	levels, err := cfg.Levels()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Level", "Probe grid", "Directions", "Interval", "Rays"})

	totalRays := 0
	for _, level := range levels {
		totalRays += level.RayCount()
		table.Append([]string{
			fmt.Sprintf("%d", level.Index),
			fmt.Sprintf("%d x %d", level.Cols, level.Rows),
			fmt.Sprintf("%d", level.AngularCount),
			fmt.Sprintf("[%.1f, %.1f)", level.Near, level.Far),
			fmt.Sprintf("%d", level.RayCount()),
		})
	}
	table.SetFooter([]string{"", "", "", "TOTAL", fmt.Sprintf("%d", totalRays)})
	table.Render()

	logger.Noticef("cascade hierarchy\n%s", buf.String())
	return nil
}
