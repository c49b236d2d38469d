package cmd

import (
	"github.com/Marsevil/radiance-cascades/log"
	"github.com/urfave/cli"
)

var logger = log.New("cascades")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
