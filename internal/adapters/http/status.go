package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/MaxTraderDev/aster-liquidations-bot/internal/core/ports"
)

// StatusHandler resolves containers by name and reports their health.
// The packaged worker exposes no network ports, so name-based lookups serve
// status queries instead of request routing.
type StatusHandler struct {
	service ports.ContainerService
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(service ports.ContainerService) *StatusHandler {
	return &StatusHandler{service: service}
}

// GetHealthByName looks up a container by its name (e.g. "aster-bot") and
// returns its identity and health snapshot.
func (h *StatusHandler) GetHealthByName(c *fiber.Ctx) error {
	name := c.Params("name")
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Container name is required",
		})
	}

	// 1. Find Container by Name
	containers, err := h.service.ListContainers(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list containers",
		})
	}

	var targetID string
	for _, container := range containers {
		if container.Name == name {
			targetID = container.ID
			break
		}
	}
	if targetID == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": fmt.Sprintf("Container '%s' not found", name),
		})
	}

	// 2. Inspect for the structured health state
	info, err := h.service.InspectContainer(c.Context(), targetID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(info)
}
