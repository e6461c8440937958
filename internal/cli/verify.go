package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MaxTraderDev/aster-liquidations-bot/internal/adapters/docker"
	"github.com/MaxTraderDev/aster-liquidations-bot/internal/verify"
)

// NewVerifyCmd creates the verify command: check a running container against
// the recipe's privilege and ownership contract.
func NewVerifyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <container>",
		Short: "Verify the privilege contract of a running container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, recipe, err := app.environment()
			if err != nil {
				return err
			}

			runtime, err := docker.NewAdapter(logger)
			if err != nil {
				return err
			}

			verifier := verify.New(runtime, logger)
			violations, err := verifier.VerifyContract(cmd.Context(), args[0], recipe)
			if err != nil {
				return err
			}

			if len(violations) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			}
			for _, v := range violations {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", v.Check, v.Detail)
			}
			return fmt.Errorf("%d contract violation(s)", len(violations))
		},
	}
}
