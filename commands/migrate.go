package commands

import (
	"errors"
	"fmt"

	"github.com/danthegoodman1/hitmerge/migrations"
	"github.com/danthegoodman1/hitmerge/utils"
	"github.com/spf13/cobra"
)

var ErrNoDSN = errors.New("CRDB_DSN is not set")

func NewMigrateCommand() *cobra.Command {
	var dsn string

	command := &cobra.Command{
		Use:   "migrate",
		Short: "Apply run ledger migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				return ErrNoDSN
			}
			n, err := migrations.RunMigrations(dsn)
			if err != nil {
				return fmt.Errorf("error in RunMigrations: %w", err)
			}
			logger.Info().Int("applied", n).Msg("ran migrations")
			return nil
		},
	}

	command.Flags().StringVar(&dsn, "dsn", utils.CRDB_DSN, "CockroachDB connection string, defaults to $CRDB_DSN.")
	return command
}
