// Package cli wires the packaging toolkit's commands: render a recipe's
// build file, build an image, deploy and supervise the container, and verify
// the privilege contract of a running deployment.
package cli

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/MaxTraderDev/aster-liquidations-bot/internal/config"
	"github.com/MaxTraderDev/aster-liquidations-bot/internal/core/domain"
)

// App represents the CLI application with all wired dependencies
type App struct {
	rootCmd *cobra.Command

	// Persistent flags
	configPath string
	recipePath string

	// Version information
	version string
	commit  string
	date    string
}

// New creates a new CLI application
func New() *App {
	app := &App{}
	app.setupRootCmd()
	return app
}

// Execute runs the CLI application
func (a *App) Execute() error {
	return a.rootCmd.Execute()
}

// SetVersion sets the version string for the version command
func (a *App) SetVersion(version, commit, date string) {
	a.version = version
	a.commit = commit
	a.date = date
}

// setupRootCmd configures the root Cobra command
func (a *App) setupRootCmd() {
	a.rootCmd = &cobra.Command{
		Use:   "asterpackd",
		Short: "Package and supervise the aster liquidation worker",
		Long: `asterpackd builds minimal-privilege container images for the aster
liquidation worker, runs them, verifies the ownership and privilege-drop
contract, and supervises liveness with the declared health-check policy.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	a.rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "",
		"Path to daemon config file")
	a.rootCmd.PersistentFlags().StringVar(&a.recipePath, "recipe", "",
		"Path to a recipe file (default: built-in aster bot recipe)")

	a.rootCmd.AddCommand(
		NewRenderCmd(a),
		NewBuildCmd(a),
		NewDeployCmd(a),
		NewVerifyCmd(a),
		NewSuperviseCmd(a),
		NewServeCmd(a),
		NewVersionCmd(a),
	)
}

// environment loads the daemon config, logger and active recipe shared by
// every command. The --recipe flag wins over the config file's recipe path.
func (a *App) environment() (config.Config, *log.Logger, domain.Recipe, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return config.Config{}, nil, domain.Recipe{}, err
	}

	recipePath := cfg.RecipePath
	if a.recipePath != "" {
		recipePath = a.recipePath
	}
	recipe, err := config.LoadRecipe(recipePath)
	if err != nil {
		return config.Config{}, nil, domain.Recipe{}, err
	}

	return cfg, cfg.Logger(), recipe, nil
}

// warnIfShallow flags a probe command that can only fail by timing out: it
// proves the interpreter starts, not that the worker is alive.
func warnIfShallow(logger *log.Logger, recipe domain.Recipe) {
	test := recipe.Healthcheck.Test
	if len(test) == 3 && test[0] == "python" && test[1] == "-c" && test[2] == "exit(0)" {
		logger.Warn("declared health check always succeeds; it verifies interpreter startup, not worker liveness")
	}
}
