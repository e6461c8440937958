package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/MaxTraderDev/aster-liquidations-bot/internal/adapters/builder"
	"github.com/MaxTraderDev/aster-liquidations-bot/internal/core/domain"
	"github.com/MaxTraderDev/aster-liquidations-bot/internal/core/ports"
)

// ContainerHandler exposes the packaging and supervision operations over
// HTTP. The recipe is the daemon's active packaging contract: every build
// and every contract verification runs against it.
type ContainerHandler struct {
	service  ports.ContainerService
	builder  ports.BuilderService
	verifier ports.VerifierService
	recipe   domain.Recipe
}

func NewContainerHandler(service ports.ContainerService, builder ports.BuilderService, verifier ports.VerifierService, recipe domain.Recipe) *ContainerHandler {
	return &ContainerHandler{service: service, builder: builder, verifier: verifier, recipe: recipe}
}

func (h *ContainerHandler) ListContainers(c *fiber.Ctx) error {
	containers, err := h.service.ListContainers(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(containers)
}

type BuildImageRequest struct {
	Tag        string `json:"tag"`
	ContextDir string `json:"context_dir"`
	RepoURL    string `json:"repo_url"`
}

// BuildImage builds an image from the active recipe and the requested build
// source. Missing inputs and failed installs surface as 422 so callers can
// tell bad build context from daemon trouble.
func (h *ContainerHandler) BuildImage(c *fiber.Ctx) error {
	var req BuildImageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Tag == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image tag is required",
		})
	}
	if req.ContextDir == "" && req.RepoURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Context dir or repo URL is required",
		})
	}

	source := ports.BuildSource{Dir: req.ContextDir, RepoURL: req.RepoURL}
	imageID, err := h.builder.BuildImage(c.Context(), h.recipe, source, req.Tag)
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, builder.ErrMissingInput) || errors.Is(err, domain.ErrInvalidRecipe) {
			status = fiber.StatusUnprocessableEntity
		}
		return c.Status(status).JSON(fiber.Map{
			"error": "Build failed: " + err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":  imageID,
		"tag": req.Tag,
	})
}

type StartContainerRequest struct {
	Image   string `json:"image"`
	Name    string `json:"name"`
	RepoURL string `json:"repo_url"` // build from source before running
}

func (h *ContainerHandler) StartContainer(c *fiber.Ctx) error {
	var req StartContainerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Image == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image name is required",
		})
	}

	// Build from source first when a repo URL is given.
	if req.RepoURL != "" {
		source := ports.BuildSource{RepoURL: req.RepoURL}
		if _, err := h.builder.BuildImage(c.Context(), h.recipe, source, req.Image); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Build failed: " + err.Error(),
			})
		}
	}

	containerID, err := h.service.StartContainer(c.Context(), req.Image, req.Name)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    containerID,
		"image": req.Image,
	})
}

func (h *ContainerHandler) StopContainer(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Container ID is required",
		})
	}

	if err := h.service.StopContainer(c.Context(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ContainerHandler) GetContainerLogs(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Container ID is required",
		})
	}

	logs, err := h.service.GetContainerLogs(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set("Content-Type", "text/plain")
	return c.SendStream(logs)
}

// VerifyContainer runs the privilege/ownership contract checks against a
// running container and reports every violation.
func (h *ContainerHandler) VerifyContainer(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Container ID is required",
		})
	}

	violations, err := h.verifier.VerifyContract(c.Context(), id, h.recipe)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"ok":         len(violations) == 0,
		"violations": violations,
	})
}
