package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danthegoodman1/hitmerge/http_server"
	"github.com/danthegoodman1/hitmerge/pipeline"
	"github.com/danthegoodman1/hitmerge/utils"
	"github.com/spf13/cobra"
)

func NewServeCommand() *cobra.Command {
	var (
		cfg  pipeline.Config
		port string
	)

	command := &cobra.Command{
		Use:   "serve",
		Short: "Serve an HTTP API that runs combines on request",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logger.WithContext(context.Background())
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid default config: %w", err)
			}

			d, err := buildDeps(ctx)
			if err != nil {
				return err
			}
			defer d.shutdown(ctx)

			s := http_server.NewHTTPServer(pipeline.NewRunner(d.metaStore, d.stores...), d.metaStore, cfg)
			if err = http_server.StartHTTPServer(s, port); err != nil {
				return err
			}

			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt, syscall.SIGTERM)
			<-c
			logger.Warn().Msg("received shutdown signal!")

			// For load balancers needing some time to de-register
			sleepTime := utils.GetEnvOrDefaultInt("SHUTDOWN_SLEEP_SEC", 0)
			logger.Info().Msg(fmt.Sprintf("sleeping for %ds before exiting", sleepTime))
			time.Sleep(time.Second * time.Duration(sleepTime))

			shutdownCtx, cancel := context.WithTimeout(ctx, time.Second*10)
			defer cancel()
			if err := s.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("failed to shutdown HTTP server")
			} else {
				logger.Info().Msg("successfully shutdown HTTP server")
			}
			return nil
		},
	}

	bindConfigFlags(command, &cfg)
	command.Flags().StringVar(&port, "port", utils.HTTP_PORT, "Port to listen on, defaults to $HTTP_PORT.")
	return command
}
