package main

import (
	"os"

	"github.com/danthegoodman1/hitmerge/commands"
	"github.com/danthegoodman1/hitmerge/gologger"
)

var logger = gologger.NewLogger()

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		logger.Error().Err(err).Msg("hitmerge failed")
		os.Exit(1)
	}
}
