package ports

import (
	"context"

	"github.com/MaxTraderDev/aster-liquidations-bot/internal/core/domain"
)

// BuildSource locates the build context inputs: either a local directory or
// a git repository to clone. Exactly one must be set.
type BuildSource struct {
	Dir     string
	RepoURL string
}

// BuilderService defines operations for building container images from a
// packaging recipe and a build context.
type BuilderService interface {
	// BuildImage stages the build context, renders the recipe's build
	// file into it and builds a Docker image. It returns the ID of the
	// built image or an error. Any missing input or install failure
	// aborts the build; no partial image is produced.
	BuildImage(ctx context.Context, recipe domain.Recipe, source BuildSource, tag string) (string, error)
}
