package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Dockerfile renders the recipe as an ordered build file. Rendering is pure
// and deterministic: the same recipe always produces byte-identical output.
//
// Step order is load-bearing. The manifest is copied and installed before the
// application files so the dependency layer caches across code changes, the
// identity is created and given ownership before the privilege drop, and the
// drop happens before the health-check and entry command are declared so the
// image can never fall back to root at runtime.
func (r Recipe) Dockerfile() (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder

	fmt.Fprintf(&b, "FROM %s\n\n", r.BaseImage)
	fmt.Fprintf(&b, "WORKDIR %s\n\n", r.WorkDir)

	fmt.Fprintf(&b, "COPY %s ./\n", r.Manifest)
	fmt.Fprintf(&b, "RUN %s %s\n\n", strings.Join(r.InstallCommand, " "), r.Manifest)

	fmt.Fprintf(&b, "COPY %s ./\n\n", strings.Join(r.AppFiles, " "))

	fmt.Fprintf(&b, "RUN groupadd -r %s && useradd -r -g %s %s\n",
		r.Identity.Group, r.Identity.Group, r.Identity.User)
	fmt.Fprintf(&b, "RUN chown -R %s %s\n\n", r.Identity, r.WorkDir)

	fmt.Fprintf(&b, "USER %s\n\n", r.Identity.User)

	hc := r.Healthcheck
	test, err := execForm(hc.Test)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "HEALTHCHECK --interval=%s --timeout=%s --start-period=%s --retries=%d \\\n  CMD %s\n\n",
		hc.Interval, hc.Timeout, hc.StartPeriod, hc.Retries, test)

	cmd, err := execForm(r.Command)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "CMD %s\n", cmd)

	return b.String(), nil
}

// execForm renders a command as a Dockerfile JSON-array (exec form) so no
// shell is interposed between the runtime and the process.
func execForm(cmd []string) (string, error) {
	out, err := json.Marshal(cmd)
	if err != nil {
		return "", fmt.Errorf("failed to render exec form: %w", err)
	}
	return string(out), nil
}
