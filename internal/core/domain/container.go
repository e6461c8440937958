package domain

// HealthState is the orchestrator's view of a container's liveness.
type HealthState string

const (
	// HealthStarting means the start grace period has not produced a
	// passing check yet; failures do not count against the retry budget.
	HealthStarting HealthState = "starting"
	// HealthHealthy means the most recent check passed.
	HealthHealthy HealthState = "healthy"
	// HealthUnhealthy means the retry budget of consecutive failures
	// is exhausted.
	HealthUnhealthy HealthState = "unhealthy"
	// HealthNone means the container declares no health check.
	HealthNone HealthState = "none"
)

// Container represents a container in the system (Docker, K8s, etc.)
type Container struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Image  string `json:"image"`
	Status string `json:"status"`
	State  string `json:"state"` // running, exited, etc.

	// User is the configured runtime identity; empty means the image
	// default (root for most bases).
	User string `json:"user"`

	Health        HealthState `json:"health"`
	FailingStreak int         `json:"failing_streak"`
}
