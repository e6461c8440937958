package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MaxTraderDev/aster-liquidations-bot/internal/adapters/builder"
	"github.com/MaxTraderDev/aster-liquidations-bot/internal/core/ports"
)

// NewBuildCmd creates the build command
func NewBuildCmd(app *App) *cobra.Command {
	var (
		tag        string
		contextDir string
		repoURL    string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the worker image from the active recipe",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, recipe, err := app.environment()
			if err != nil {
				return err
			}

			adapter, err := builder.NewAdapter(logger)
			if err != nil {
				return err
			}

			source := ports.BuildSource{Dir: contextDir, RepoURL: repoURL}
			imageID, err := adapter.BuildImage(cmd.Context(), recipe, source, tag)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", imageID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "aster-bot:latest", "Tag for the built image")
	cmd.Flags().StringVar(&contextDir, "context", "", "Local directory holding the build inputs")
	cmd.Flags().StringVar(&repoURL, "repo", "", "Git repository holding the build inputs")
	cmd.MarkFlagsOneRequired("context", "repo")
	cmd.MarkFlagsMutuallyExclusive("context", "repo")

	return cmd
}
