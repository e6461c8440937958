package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/MaxTraderDev/aster-liquidations-bot/internal/core/domain"
	"github.com/MaxTraderDev/aster-liquidations-bot/internal/core/ports"
)

// ErrMissingInput is returned when a file the recipe declares (the dependency
// manifest or an application file) is absent from the build source. The build
// aborts before anything is sent to the Docker daemon.
var ErrMissingInput = errors.New("missing build input")

// dockerfileName is the name of the rendered build file inside the staged
// context.
const dockerfileName = "Dockerfile"

// resolveSource materializes the build source as a local directory. For git
// sources it performs a shallow clone into a temp dir; the returned cleanup
// removes it.
func resolveSource(ctx context.Context, source ports.BuildSource) (string, func(), error) {
	switch {
	case source.Dir != "" && source.RepoURL != "":
		return "", nil, fmt.Errorf("build source must be a directory or a repo URL, not both")
	case source.Dir != "":
		info, err := os.Stat(source.Dir)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read build source: %w", err)
		}
		if !info.IsDir() {
			return "", nil, fmt.Errorf("build source %s is not a directory", source.Dir)
		}
		return source.Dir, func() {}, nil
	case source.RepoURL != "":
		tmpDir, err := os.MkdirTemp("", "asterpack-clone-*")
		if err != nil {
			return "", nil, fmt.Errorf("failed to create temp dir: %w", err)
		}
		_, err = git.PlainCloneContext(ctx, tmpDir, false, &git.CloneOptions{
			URL:   source.RepoURL,
			Depth: 1, // Shallow clone for speed
		})
		if err != nil {
			os.RemoveAll(tmpDir)
			return "", nil, fmt.Errorf("failed to clone repo: %w", err)
		}
		return tmpDir, func() { os.RemoveAll(tmpDir) }, nil
	default:
		return "", nil, fmt.Errorf("build source is empty")
	}
}

// stageContext assembles a minimal build context in a fresh temp directory:
// only the files the recipe declares plus the rendered Dockerfile. Nothing
// else from the source directory reaches the daemon. A declared file missing
// from the source fails the stage with ErrMissingInput.
func stageContext(recipe domain.Recipe, srcDir string) (string, error) {
	stageDir, err := os.MkdirTemp("", "asterpack-build-*")
	if err != nil {
		return "", fmt.Errorf("failed to create staging dir: %w", err)
	}

	inputs := append([]string{recipe.Manifest}, recipe.AppFiles...)
	for _, name := range inputs {
		if err := copyInput(srcDir, stageDir, name); err != nil {
			os.RemoveAll(stageDir)
			return "", err
		}
	}

	dockerfile, err := recipe.Dockerfile()
	if err != nil {
		os.RemoveAll(stageDir)
		return "", err
	}
	if err := os.WriteFile(filepath.Join(stageDir, dockerfileName), []byte(dockerfile), 0o644); err != nil {
		os.RemoveAll(stageDir)
		return "", fmt.Errorf("failed to write %s: %w", dockerfileName, err)
	}

	return stageDir, nil
}

func copyInput(srcDir, stageDir, name string) error {
	// Validate already enforces plain relative paths; re-check here so a
	// recipe that skipped validation can never write outside the sandbox.
	if filepath.IsAbs(name) || strings.Contains(name, "..") {
		return fmt.Errorf("build input %q escapes the staging dir", name)
	}

	src, err := os.Open(filepath.Join(srcDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s not found in build source", ErrMissingInput, name)
		}
		return fmt.Errorf("failed to open build input %s: %w", name, err)
	}
	defer src.Close()

	target := filepath.Join(stageDir, name)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to stage build input %s: %w", name, err)
	}
	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to stage build input %s: %w", name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to stage build input %s: %w", name, err)
	}
	return nil
}
