package commands

import (
	"github.com/spf13/cobra"
)

func NewRootCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "hitmerge",
		Short: "Align per-link hit dumps onto their common time window and merge them into one time ordered file",
		// errors are logged by main
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	command.AddCommand(NewCombineCommand())
	command.AddCommand(NewServeCommand())
	command.AddCommand(NewMigrateCommand())
	return command
}
