package builder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/archive"
	"github.com/docker/docker/pkg/jsonmessage"

	"github.com/MaxTraderDev/aster-liquidations-bot/internal/core/domain"
	"github.com/MaxTraderDev/aster-liquidations-bot/internal/core/ports"
)

// Adapter implements ports.BuilderService using the Docker SDK.
type Adapter struct {
	cli    *client.Client
	logger *log.Logger
}

func NewAdapter(logger *log.Logger) (*Adapter, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Adapter{cli: cli, logger: logger}, nil
}

// BuildImage stages the recipe's build context and builds a Docker image.
// The build is atomic: a missing input, an install failure or any daemon
// error frame aborts it with a non-nil error and no image ID is returned.
func (a *Adapter) BuildImage(ctx context.Context, recipe domain.Recipe, source ports.BuildSource, tag string) (string, error) {
	if err := recipe.Validate(); err != nil {
		return "", err
	}

	srcDir, cleanup, err := resolveSource(ctx, source)
	if err != nil {
		return "", err
	}
	defer cleanup()

	stageDir, err := stageContext(recipe, srcDir)
	if err != nil {
		return "", err
	}
	defer removeStage(stageDir, a.logger)

	buildCtx, err := archive.TarWithOptions(stageDir, &archive.TarOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to create build context: %w", err)
	}

	a.logger.Info("building image", "tag", tag, "base", recipe.BaseImage, "entrypoint", recipe.EntryPoint())
	resp, err := a.cli.ImageBuild(ctx, buildCtx, types.ImageBuildOptions{
		Tags:       []string{tag},
		Dockerfile: dockerfileName,
		Remove:     true, // Remove intermediate containers
	})
	if err != nil {
		return "", fmt.Errorf("failed to build image: %w", err)
	}
	defer resp.Body.Close()

	imageID, err := drainBuildStream(resp.Body)
	if err != nil {
		return "", err
	}
	if imageID == "" {
		// Older daemons omit the aux frame; the tag still resolves.
		imageID = tag
	}

	a.logger.Info("image built", "tag", tag, "id", imageID)
	return imageID, nil
}

// drainBuildStream consumes the daemon's progress stream until EOF. An error
// frame means a build step failed (missing file in context, non-zero install
// exit) and the whole build is treated as failed.
func drainBuildStream(body io.Reader) (string, error) {
	var imageID string
	dec := json.NewDecoder(body)
	for {
		var msg jsonmessage.JSONMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return imageID, nil
			}
			return "", fmt.Errorf("failed to read build output: %w", err)
		}
		if msg.Error != nil {
			return "", fmt.Errorf("build failed: %s", msg.Error.Message)
		}
		if msg.Aux != nil {
			var result types.BuildResult
			if err := json.Unmarshal(*msg.Aux, &result); err == nil && result.ID != "" {
				imageID = result.ID
			}
		}
	}
}

func removeStage(dir string, logger *log.Logger) {
	if err := os.RemoveAll(dir); err != nil {
		logger.Warn("failed to clean staging dir", "dir", dir, "error", err)
	}
}
