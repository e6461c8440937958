package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MaxTraderDev/aster-liquidations-bot/internal/adapters/docker"
	"github.com/MaxTraderDev/aster-liquidations-bot/internal/probe"
)

// NewSuperviseCmd creates the supervise command: run the recipe's
// health-check policy against a running container until interrupted.
// Restart decisions stay with the operator; this only reports the verdict.
func NewSuperviseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "supervise <container>",
		Short: "Run the health-check policy against a running container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, recipe, err := app.environment()
			if err != nil {
				return err
			}
			warnIfShallow(logger, recipe)

			runtime, err := docker.NewAdapter(logger)
			if err != nil {
				return err
			}

			check := probe.ContainerCheck(runtime, args[0], recipe.Healthcheck.Test)
			supervisor := probe.NewSupervisor(recipe.Healthcheck, check, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("supervising", "container", args[0],
				"interval", recipe.Healthcheck.Interval,
				"timeout", recipe.Healthcheck.Timeout,
				"start_period", recipe.Healthcheck.StartPeriod,
				"retries", recipe.Healthcheck.Retries)

			if err := supervisor.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			logger.Info("supervision stopped", "state", supervisor.Status().State)
			return nil
		},
	}
}
