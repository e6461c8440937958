package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MaxTraderDev/aster-liquidations-bot/internal/adapters/builder"
	"github.com/MaxTraderDev/aster-liquidations-bot/internal/adapters/docker"
	"github.com/MaxTraderDev/aster-liquidations-bot/internal/core/ports"
)

// NewDeployCmd creates the deploy command: optionally build from a source,
// then start the worker container.
func NewDeployCmd(app *App) *cobra.Command {
	var (
		image      string
		name       string
		contextDir string
		repoURL    string
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Start the worker container, building the image first if a source is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, recipe, err := app.environment()
			if err != nil {
				return err
			}
			warnIfShallow(logger, recipe)

			if contextDir != "" || repoURL != "" {
				buildAdapter, err := builder.NewAdapter(logger)
				if err != nil {
					return err
				}
				source := ports.BuildSource{Dir: contextDir, RepoURL: repoURL}
				if _, err := buildAdapter.BuildImage(cmd.Context(), recipe, source, image); err != nil {
					return err
				}
			}

			runtime, err := docker.NewAdapter(logger)
			if err != nil {
				return err
			}
			containerID, err := runtime.StartContainer(cmd.Context(), image, name)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", containerID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&image, "image", "i", "aster-bot:latest", "Image to run")
	cmd.Flags().StringVarP(&name, "name", "n", "aster-bot", "Container name")
	cmd.Flags().StringVar(&contextDir, "context", "", "Build from this local directory first")
	cmd.Flags().StringVar(&repoURL, "repo", "", "Build from this git repository first")
	cmd.MarkFlagsMutuallyExclusive("context", "repo")

	return cmd
}
