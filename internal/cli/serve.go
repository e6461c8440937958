package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	"github.com/MaxTraderDev/aster-liquidations-bot/internal/adapters/builder"
	"github.com/MaxTraderDev/aster-liquidations-bot/internal/adapters/docker"
	apihttp "github.com/MaxTraderDev/aster-liquidations-bot/internal/adapters/http"
	"github.com/MaxTraderDev/aster-liquidations-bot/internal/verify"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve command: the HTTP control API.
func NewServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the packaging control API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, recipe, err := app.environment()
			if err != nil {
				return err
			}
			warnIfShallow(logger, recipe)

			dockerAdapter, err := docker.NewAdapter(logger)
			if err != nil {
				return err
			}
			builderAdapter, err := builder.NewAdapter(logger)
			if err != nil {
				return err
			}
			verifier := verify.New(dockerAdapter, logger)

			containerHandler := apihttp.NewContainerHandler(dockerAdapter, builderAdapter, verifier, recipe)
			statusHandler := apihttp.NewStatusHandler(dockerAdapter)

			fiberApp := fiber.New(fiber.Config{DisableStartupMessage: true})

			api := fiberApp.Group("/api")
			v1 := api.Group("/v1")

			images := v1.Group("/images")
			images.Post("/", containerHandler.BuildImage)

			containers := v1.Group("/containers")
			containers.Get("/", containerHandler.ListContainers)
			containers.Post("/", containerHandler.StartContainer)
			containers.Delete("/:id", containerHandler.StopContainer)
			containers.Get("/:id/logs", containerHandler.GetContainerLogs)
			containers.Post("/:id/verify", containerHandler.VerifyContainer)
			containers.Get("/name/:name/health", statusHandler.GetHealthByName)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- fiberApp.Listen(cfg.ListenAddr)
			}()
			logger.Info("control API listening", "addr", cfg.ListenAddr)

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return fiberApp.ShutdownWithContext(shutdownCtx)
			}
		},
	}
}
