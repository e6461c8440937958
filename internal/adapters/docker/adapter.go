package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/MaxTraderDev/aster-liquidations-bot/internal/core/domain"
)

// Adapter implements ports.ContainerService using Docker SDK
type Adapter struct {
	cli    *client.Client
	logger *log.Logger
}

// NewAdapter creates a new Docker adapter instance
func NewAdapter(logger *log.Logger) (*Adapter, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Adapter{cli: cli, logger: logger}, nil
}

// ListContainers returns a list of running containers with details
func (a *Adapter) ListContainers(ctx context.Context) ([]domain.Container, error) {
	containers, err := a.cli.ContainerList(ctx, types.ContainerListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	var result []domain.Container
	for _, c := range containers {
		// Use the first name if available, remove slash
		name := ""
		if len(c.Names) > 0 {
			name = strings.TrimPrefix(c.Names[0], "/")
		}

		result = append(result, domain.Container{
			ID:     c.ID[:12], // Short ID
			Name:   name,
			Image:  c.Image,
			Status: c.Status,
			State:  c.State,
			Health: healthFromStatus(c.Status),
		})
	}
	return result, nil
}

// healthFromStatus recovers the daemon's health verdict from the status
// summary line ("Up 2 minutes (healthy)"); the list endpoint exposes no
// structured health field.
func healthFromStatus(status string) domain.HealthState {
	switch {
	case strings.Contains(status, "(healthy)"):
		return domain.HealthHealthy
	case strings.Contains(status, "(unhealthy)"):
		return domain.HealthUnhealthy
	case strings.Contains(status, "(health: starting)"):
		return domain.HealthStarting
	default:
		return domain.HealthNone
	}
}

// StartContainer creates and starts a named container from a given image
func (a *Adapter) StartContainer(ctx context.Context, image string, name string) (string, error) {
	// 1. Image Pull (Ensure image exists). Locally built images are in no
	// registry, so a failed pull is fine when a local copy is present.
	reader, err := a.cli.ImagePull(ctx, image, types.ImagePullOptions{})
	if err != nil {
		if _, _, inspectErr := a.cli.ImageInspectWithRaw(ctx, image); inspectErr != nil {
			return "", fmt.Errorf("failed to pull image: %w", err)
		}
		a.logger.Debug("image not pullable, using local copy", "image", image)
	} else {
		defer reader.Close()
		io.Copy(io.Discard, reader)
	}

	// 2. Create Container
	resp, err := a.cli.ContainerCreate(ctx, &container.Config{
		Image: image,
	}, nil, nil, nil, name)
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}

	// 3. Start Container
	if err := a.cli.ContainerStart(ctx, resp.ID, types.ContainerStartOptions{}); err != nil {
		return "", fmt.Errorf("failed to start container: %w", err)
	}

	a.logger.Info("container started", "id", resp.ID[:12], "image", image, "name", name)
	return resp.ID, nil
}

// StopContainer stops a running container
func (a *Adapter) StopContainer(ctx context.Context, id string) error {
	// Timeout can be configurable, but keeping it simple for now
	timeout := 10 * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return a.cli.ContainerStop(ctx, id, container.StopOptions{})
}

// GetContainerLogs returns a stream of container logs
func (a *Adapter) GetContainerLogs(ctx context.Context, id string) (io.ReadCloser, error) {
	options := types.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     false, // Can be true for streaming
		Timestamps: true,
	}
	return a.cli.ContainerLogs(ctx, id, options)
}

// InspectContainer returns the runtime view of a single container, including
// the configured user and the daemon's structured health state.
func (a *Adapter) InspectContainer(ctx context.Context, id string) (domain.Container, error) {
	info, err := a.cli.ContainerInspect(ctx, id)
	if err != nil {
		return domain.Container{}, fmt.Errorf("failed to inspect container: %w", err)
	}

	c := domain.Container{
		ID:     shortID(info.ID),
		Name:   strings.TrimPrefix(info.Name, "/"),
		Image:  info.Config.Image,
		User:   info.Config.User,
		Health: domain.HealthNone,
	}
	if info.State != nil {
		c.State = info.State.Status
		c.Status = info.State.Status
		if info.State.Health != nil {
			c.Health = domain.HealthState(info.State.Health.Status)
			c.FailingStreak = info.State.Health.FailingStreak
		}
	}
	return c, nil
}

// Exec runs a command inside a running container and returns its exit code
// and combined stdout/stderr.
func (a *Adapter) Exec(ctx context.Context, id string, cmd []string) (int, string, error) {
	exec, err := a.cli.ContainerExecCreate(ctx, id, types.ExecConfig{
		Cmd:          cmd,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return 0, "", fmt.Errorf("failed to create exec: %w", err)
	}

	attach, err := a.cli.ContainerExecAttach(ctx, exec.ID, types.ExecStartCheck{})
	if err != nil {
		return 0, "", fmt.Errorf("failed to attach exec: %w", err)
	}
	defer attach.Close()

	var out bytes.Buffer
	if _, err := stdcopy.StdCopy(&out, &out, attach.Reader); err != nil {
		return 0, "", fmt.Errorf("failed to read exec output: %w", err)
	}

	inspect, err := a.cli.ContainerExecInspect(ctx, exec.ID)
	if err != nil {
		return 0, "", fmt.Errorf("failed to inspect exec: %w", err)
	}
	return inspect.ExitCode, out.String(), nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
