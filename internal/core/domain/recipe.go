package domain

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

// ErrInvalidRecipe wraps all recipe validation failures.
var ErrInvalidRecipe = errors.New("invalid recipe")

// Identity is the unprivileged user/group pair the packaged process runs as.
type Identity struct {
	User  string `yaml:"user"`
	Group string `yaml:"group"`
}

func (id Identity) String() string {
	return id.User + ":" + id.Group
}

// HealthcheckPolicy is the liveness contract the orchestrator evaluates
// against the running container.
type HealthcheckPolicy struct {
	// Test is the command run inside the container. Exit 0 means healthy.
	Test []string `yaml:"test"`

	Interval    time.Duration `yaml:"interval"`
	Timeout     time.Duration `yaml:"timeout"`
	StartPeriod time.Duration `yaml:"start_period"`

	// Retries is the number of consecutive failures (after the start
	// period) before the container is considered unhealthy.
	Retries int `yaml:"retries"`
}

// Recipe describes how to package a single long-running worker into a
// minimal-privilege image. The build steps it renders are strictly ordered;
// each depends on the filesystem state left by the previous one.
type Recipe struct {
	// BaseImage pins the interpreter version, e.g. "python:3.11-slim".
	BaseImage string `yaml:"base_image"`

	// WorkDir is the filesystem root for the application inside the image.
	WorkDir string `yaml:"workdir"`

	// Manifest is the dependency declaration file, copied before the
	// application files so dependency layers cache independently of
	// application-code changes.
	Manifest string `yaml:"manifest"`

	// InstallCommand installs the manifest's packages without retaining a
	// local cache. The manifest path is appended as its final argument.
	InstallCommand []string `yaml:"install_command"`

	// AppFiles are the application sources; the first one is the entry point.
	AppFiles []string `yaml:"app_files"`

	// Identity is created as a system account (-r) and owns the workdir.
	Identity Identity `yaml:"identity"`

	Healthcheck HealthcheckPolicy `yaml:"healthcheck"`

	// Command is the container's default entry command.
	Command []string `yaml:"command"`
}

// DefaultRecipe returns the packaging contract for the aster liquidation
// worker: a pinned slim Python base, dependencies installed cache-less, all
// files handed to a system account, and a shallow interpreter-level probe.
func DefaultRecipe() Recipe {
	return Recipe{
		BaseImage:      "python:3.11-slim",
		WorkDir:        "/app",
		Manifest:       "requirements.txt",
		InstallCommand: []string{"pip", "install", "--no-cache-dir", "-r"},
		AppFiles:       []string{"aster_bot.py"},
		Identity:       Identity{User: "botuser", Group: "botuser"},
		Healthcheck: HealthcheckPolicy{
			Test:        []string{"python", "-c", "exit(0)"},
			Interval:    30 * time.Second,
			Timeout:     10 * time.Second,
			StartPeriod: 5 * time.Second,
			Retries:     3,
		},
		Command: []string{"python", "aster_bot.py"},
	}
}

// EntryPoint returns the primary application file.
func (r Recipe) EntryPoint() string {
	if len(r.AppFiles) == 0 {
		return ""
	}
	return r.AppFiles[0]
}

// Validate checks the structural invariants of the recipe. It does not touch
// the filesystem; whether the manifest and app files actually exist is
// checked when the build context is staged.
func (r Recipe) Validate() error {
	var problems []string

	if r.BaseImage == "" {
		problems = append(problems, "base_image is required")
	}
	if !path.IsAbs(r.WorkDir) {
		problems = append(problems, fmt.Sprintf("workdir %q must be an absolute path", r.WorkDir))
	}
	switch {
	case r.Manifest == "":
		problems = append(problems, "manifest is required")
	case !plainRelative(r.Manifest):
		problems = append(problems, fmt.Sprintf("manifest %q must be a plain relative path", r.Manifest))
	}
	if len(r.InstallCommand) == 0 {
		problems = append(problems, "install_command is required")
	}
	if len(r.AppFiles) == 0 {
		problems = append(problems, "at least one app file is required")
	}
	for _, f := range r.AppFiles {
		if !plainRelative(f) {
			problems = append(problems, fmt.Sprintf("app file %q must be a plain relative path", f))
		}
	}
	switch {
	case r.Identity.User == "" || r.Identity.Group == "":
		problems = append(problems, "identity user and group are required")
	case r.Identity.User == "root" || r.Identity.Group == "root":
		problems = append(problems, "identity must not be root")
	}
	if len(r.Command) == 0 {
		problems = append(problems, "command is required")
	}

	hc := r.Healthcheck
	if len(hc.Test) == 0 {
		problems = append(problems, "healthcheck test command is required")
	}
	if hc.Interval <= 0 {
		problems = append(problems, "healthcheck interval must be positive")
	}
	if hc.Timeout <= 0 {
		problems = append(problems, "healthcheck timeout must be positive")
	}
	if hc.StartPeriod < 0 {
		problems = append(problems, "healthcheck start_period must not be negative")
	}
	if hc.Retries < 1 {
		problems = append(problems, "healthcheck retries must be at least 1")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRecipe, strings.Join(problems, "; "))
	}
	return nil
}

// plainRelative reports whether p is a relative path that cannot climb out
// of the directory it is resolved against. Build inputs must satisfy this so
// staging stays inside its own sandbox.
func plainRelative(p string) bool {
	return p != "" && !path.IsAbs(p) && !strings.Contains(p, "..")
}
