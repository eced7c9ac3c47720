package commands

import (
	"context"

	"github.com/danthegoodman1/hitmerge/gologger"
	"github.com/danthegoodman1/hitmerge/pipeline"
	"github.com/spf13/cobra"
)

var logger = gologger.NewLogger()

func NewCombineCommand() *cobra.Command {
	var cfg pipeline.Config

	command := &cobra.Command{
		Use:   "combine",
		Short: "Merge every matching input file once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logger.WithContext(context.Background())

			d, err := buildDeps(ctx)
			if err != nil {
				return err
			}
			defer d.shutdown(ctx)

			_, err = pipeline.NewRunner(d.metaStore, d.stores...).Run(ctx, cfg)
			return err
		},
	}

	bindConfigFlags(command, &cfg)
	return command
}
