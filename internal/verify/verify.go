// Package verify checks that a running container honors the
// minimal-privilege contract of the recipe it was built from: the process
// runs as the declared unprivileged identity, never as root, and every file
// under the working directory belongs to that identity.
package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/MaxTraderDev/aster-liquidations-bot/internal/core/domain"
	"github.com/MaxTraderDev/aster-liquidations-bot/internal/core/ports"
)

// Verifier implements ports.VerifierService on top of a ContainerService.
type Verifier struct {
	containers ports.ContainerService
	logger     *log.Logger
}

func New(containers ports.ContainerService, logger *log.Logger) *Verifier {
	return &Verifier{containers: containers, logger: logger}
}

// VerifyContract inspects and probes the container and returns every
// violation found. An empty slice means the container satisfies the
// contract. A non-nil error means the checks themselves could not run.
func (v *Verifier) VerifyContract(ctx context.Context, id string, recipe domain.Recipe) ([]ports.ContractViolation, error) {
	var violations []ports.ContractViolation

	info, err := v.containers.InspectContainer(ctx, id)
	if err != nil {
		return nil, err
	}
	if info.User != recipe.Identity.User {
		violations = append(violations, ports.ContractViolation{
			Check:  "configured-user",
			Detail: fmt.Sprintf("container is configured to run as %q, want %q", info.User, recipe.Identity.User),
		})
	}

	checks := []struct {
		name string
		cmd  []string
		want string
	}{
		{"effective-user", []string{"id", "-un"}, recipe.Identity.User},
		{"effective-group", []string{"id", "-gn"}, recipe.Identity.Group},
	}
	for _, check := range checks {
		got, err := v.execLine(ctx, id, check.cmd)
		if err != nil {
			return nil, err
		}
		if got != check.want {
			violations = append(violations, ports.ContractViolation{
				Check:  check.name,
				Detail: fmt.Sprintf("process reports %q, want %q", got, check.want),
			})
		}
	}

	uid, err := v.execLine(ctx, id, []string{"id", "-u"})
	if err != nil {
		return nil, err
	}
	if uid == "0" {
		violations = append(violations, ports.ContractViolation{
			Check:  "not-root",
			Detail: "process runs with uid 0",
		})
	}

	// Every file under the workdir must belong to the runtime identity;
	// anything still owned by root would survive from a missed chown.
	strays, err := v.execLine(ctx, id, []string{
		"find", recipe.WorkDir,
		"!", "-user", recipe.Identity.User,
		"-o", "!", "-group", recipe.Identity.Group,
	})
	if err != nil {
		return nil, err
	}
	if strays != "" {
		violations = append(violations, ports.ContractViolation{
			Check:  "workdir-ownership",
			Detail: fmt.Sprintf("files not owned by %s: %s", recipe.Identity, strays),
		})
	}

	if len(violations) == 0 {
		v.logger.Info("privilege contract satisfied", "container", id, "identity", recipe.Identity.String())
	} else {
		v.logger.Warn("privilege contract violated", "container", id, "violations", len(violations))
	}
	return violations, nil
}

func (v *Verifier) execLine(ctx context.Context, id string, cmd []string) (string, error) {
	code, out, err := v.containers.Exec(ctx, id, cmd)
	if err != nil {
		return "", err
	}
	if code != 0 {
		return "", fmt.Errorf("%s exited %d: %s", strings.Join(cmd, " "), code, strings.TrimSpace(out))
	}
	return strings.TrimSpace(out), nil
}
