// Package probe implements the orchestrator side of the health-check
// contract: a supervisor loop that runs a check command on a fixed interval
// with a bounded per-check timeout, suppresses failures during an initial
// grace period, and declares the target unhealthy after a run of consecutive
// failures exhausts the retry budget.
package probe

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/MaxTraderDev/aster-liquidations-bot/internal/core/domain"
	"github.com/MaxTraderDev/aster-liquidations-bot/internal/core/ports"
)

// CheckFunc performs one liveness check. A nil return means healthy; the
// passed context carries the per-check timeout.
type CheckFunc func(ctx context.Context) error

// Snapshot is a point-in-time view of the supervised target's health.
type Snapshot struct {
	State         domain.HealthState `json:"state"`
	FailingStreak int                `json:"failing_streak"`
	LastChecked   time.Time          `json:"last_checked"`
	LastError     string             `json:"last_error,omitempty"`
}

// Supervisor evaluates a CheckFunc against a HealthcheckPolicy.
//
// Semantics match the container-runtime contract: the first check runs one
// interval after Run starts; failures inside the start period do not count
// against the retry budget while the target is still starting; any success
// marks the target healthy; Retries consecutive counted failures mark it
// unhealthy. The state is sticky only in the sense that a later success
// always returns it to healthy; restart decisions belong to the caller.
type Supervisor struct {
	policy domain.HealthcheckPolicy
	check  CheckFunc
	logger *log.Logger

	mu   sync.Mutex
	snap Snapshot
}

func NewSupervisor(policy domain.HealthcheckPolicy, check CheckFunc, logger *log.Logger) *Supervisor {
	return &Supervisor{
		policy: policy,
		check:  check,
		logger: logger,
		snap:   Snapshot{State: domain.HealthStarting},
	}
}

// Status returns the current health snapshot.
func (s *Supervisor) Status() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Run evaluates checks until the context is cancelled. It always returns the
// context's error; the health verdict is observed through Status.
func (s *Supervisor) Run(ctx context.Context) error {
	started := time.Now()
	ticker := time.NewTicker(s.policy.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.evaluate(ctx, started)
		}
	}
}

func (s *Supervisor) evaluate(ctx context.Context, started time.Time) {
	checkCtx, cancel := context.WithTimeout(ctx, s.policy.Timeout)
	err := s.check(checkCtx)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.snap.State
	s.snap.LastChecked = time.Now()

	if err == nil {
		s.snap.State = domain.HealthHealthy
		s.snap.FailingStreak = 0
		s.snap.LastError = ""
		if prev != domain.HealthHealthy {
			s.logger.Info("target healthy", "previous", prev)
		}
		return
	}

	s.snap.LastError = err.Error()

	// Failures inside the start period keep the target in the starting
	// state without consuming the retry budget.
	inGrace := prev == domain.HealthStarting && time.Since(started) < s.policy.StartPeriod
	if inGrace {
		s.logger.Debug("check failed during start period", "error", err)
		return
	}

	s.snap.FailingStreak++
	s.logger.Warn("check failed", "streak", s.snap.FailingStreak, "retries", s.policy.Retries, "error", err)
	if s.snap.FailingStreak >= s.policy.Retries {
		s.snap.State = domain.HealthUnhealthy
		if prev != domain.HealthUnhealthy {
			s.logger.Error("target unhealthy", "streak", s.snap.FailingStreak)
		}
	}
}

// ContainerCheck adapts a container exec into a CheckFunc: the declared test
// command is run inside the container and any non-zero exit is a failure.
func ContainerCheck(containers ports.ContainerService, id string, test []string) CheckFunc {
	return func(ctx context.Context) error {
		code, out, err := containers.Exec(ctx, id, test)
		if err != nil {
			return err
		}
		if code != 0 {
			return fmt.Errorf("%s exited %d: %s", strings.Join(test, " "), code, strings.TrimSpace(out))
		}
		return nil
	}
}
