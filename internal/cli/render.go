package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRenderCmd creates the render command: print the build file a recipe
// produces, without touching the Docker daemon.
func NewRenderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Render the recipe's Dockerfile to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, recipe, err := app.environment()
			if err != nil {
				return err
			}

			dockerfile, err := recipe.Dockerfile()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), dockerfile)
			return nil
		},
	}
}
