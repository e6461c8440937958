package ports

import (
	"context"
	"io"

	"github.com/MaxTraderDev/aster-liquidations-bot/internal/core/domain"
)

// ContainerService defines the core operations for managing containers.
// This interface allows us to switch between Docker, Podman, or Kubernetes
// without changing the business logic.
type ContainerService interface {
	ListContainers(ctx context.Context) ([]domain.Container, error)
	StartContainer(ctx context.Context, image string, name string) (string, error)
	StopContainer(ctx context.Context, id string) error
	GetContainerLogs(ctx context.Context, id string) (io.ReadCloser, error)

	// InspectContainer returns the runtime view of a single container,
	// including its configured user and health state.
	InspectContainer(ctx context.Context, id string) (domain.Container, error)

	// Exec runs a command inside a running container and returns its
	// exit code together with the combined output.
	Exec(ctx context.Context, id string, cmd []string) (int, string, error)
}

// ContractViolation describes one way a running container breaks the
// minimal-privilege contract of its recipe.
type ContractViolation struct {
	Check  string `json:"check"`
	Detail string `json:"detail"`
}

// VerifierService checks that a running container honors the ownership and
// privilege-drop guarantees of the recipe it was built from.
type VerifierService interface {
	// VerifyContract returns the list of violations found; an empty list
	// means the container satisfies the contract.
	VerifyContract(ctx context.Context, id string, recipe domain.Recipe) ([]ContractViolation, error)
}
