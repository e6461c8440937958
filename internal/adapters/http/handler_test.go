package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaxTraderDev/aster-liquidations-bot/internal/adapters/builder"
	"github.com/MaxTraderDev/aster-liquidations-bot/internal/core/domain"
	"github.com/MaxTraderDev/aster-liquidations-bot/internal/core/ports"
)

type containerServiceStub struct {
	containers []domain.Container
	inspected  domain.Container
	started    string
	stopped    string
	err        error
}

func (s *containerServiceStub) ListContainers(ctx context.Context) ([]domain.Container, error) {
	return s.containers, s.err
}

func (s *containerServiceStub) StartContainer(ctx context.Context, image, name string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.started = image
	return "deadbeef0001", nil
}

func (s *containerServiceStub) StopContainer(ctx context.Context, id string) error {
	s.stopped = id
	return s.err
}

func (s *containerServiceStub) GetContainerLogs(ctx context.Context, id string) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader("2026-08-23T00:00:00Z bot started\n")), nil
}

func (s *containerServiceStub) InspectContainer(ctx context.Context, id string) (domain.Container, error) {
	return s.inspected, s.err
}

func (s *containerServiceStub) Exec(ctx context.Context, id string, cmd []string) (int, string, error) {
	return 0, "", s.err
}

type builderStub struct {
	imageID string
	err     error
	source  ports.BuildSource
}

func (b *builderStub) BuildImage(ctx context.Context, recipe domain.Recipe, source ports.BuildSource, tag string) (string, error) {
	b.source = source
	if b.err != nil {
		return "", b.err
	}
	return b.imageID, nil
}

type verifierStub struct {
	violations []ports.ContractViolation
	err        error
}

func (v *verifierStub) VerifyContract(ctx context.Context, id string, recipe domain.Recipe) ([]ports.ContractViolation, error) {
	return v.violations, v.err
}

func newTestApp(svc ports.ContainerService, bld ports.BuilderService, ver ports.VerifierService) *fiber.App {
	handler := NewContainerHandler(svc, bld, ver, domain.DefaultRecipe())
	status := NewStatusHandler(svc)

	app := fiber.New()
	v1 := app.Group("/api").Group("/v1")
	v1.Group("/images").Post("/", handler.BuildImage)
	containers := v1.Group("/containers")
	containers.Get("/", handler.ListContainers)
	containers.Post("/", handler.StartContainer)
	containers.Delete("/:id", handler.StopContainer)
	containers.Get("/:id/logs", handler.GetContainerLogs)
	containers.Post("/:id/verify", handler.VerifyContainer)
	containers.Get("/name/:name/health", status.GetHealthByName)
	return app
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestListContainers(t *testing.T) {
	svc := &containerServiceStub{containers: []domain.Container{
		{ID: "deadbeef0001", Name: "aster-bot", Image: "aster-bot:latest", State: "running", Health: domain.HealthHealthy},
	}}
	app := newTestApp(svc, &builderStub{}, &verifierStub{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/containers/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got []domain.Container
	decodeBody(t, resp, &got)
	require.Len(t, got, 1)
	assert.Equal(t, "aster-bot", got[0].Name)
	assert.Equal(t, domain.HealthHealthy, got[0].Health)
}

func TestBuildImage(t *testing.T) {
	bld := &builderStub{imageID: "sha256:feedfacecafe"}
	app := newTestApp(&containerServiceStub{}, bld, &verifierStub{})

	resp, err := app.Test(jsonRequest("POST", "/api/v1/images/", BuildImageRequest{
		Tag:        "aster-bot:latest",
		ContextDir: "/srv/checkout",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var got map[string]string
	decodeBody(t, resp, &got)
	assert.Equal(t, "sha256:feedfacecafe", got["id"])
	assert.Equal(t, "/srv/checkout", bld.source.Dir)
}

func TestBuildImageValidation(t *testing.T) {
	app := newTestApp(&containerServiceStub{}, &builderStub{}, &verifierStub{})

	resp, err := app.Test(jsonRequest("POST", "/api/v1/images/", BuildImageRequest{ContextDir: "/srv/checkout"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(jsonRequest("POST", "/api/v1/images/", BuildImageRequest{Tag: "aster-bot:latest"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestBuildImageMissingInput(t *testing.T) {
	bld := &builderStub{err: fmt.Errorf("%w: requirements.txt not found in build source", builder.ErrMissingInput)}
	app := newTestApp(&containerServiceStub{}, bld, &verifierStub{})

	resp, err := app.Test(jsonRequest("POST", "/api/v1/images/", BuildImageRequest{
		Tag:        "aster-bot:latest",
		ContextDir: "/srv/checkout",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestStartContainer(t *testing.T) {
	svc := &containerServiceStub{}
	app := newTestApp(svc, &builderStub{}, &verifierStub{})

	resp, err := app.Test(jsonRequest("POST", "/api/v1/containers/", StartContainerRequest{
		Image: "aster-bot:latest",
		Name:  "aster-bot",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "aster-bot:latest", svc.started)
}

func TestStartContainerRequiresImage(t *testing.T) {
	app := newTestApp(&containerServiceStub{}, &builderStub{}, &verifierStub{})

	resp, err := app.Test(jsonRequest("POST", "/api/v1/containers/", StartContainerRequest{}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestStartContainerBuildsFromRepo(t *testing.T) {
	bld := &builderStub{imageID: "sha256:feedfacecafe"}
	svc := &containerServiceStub{}
	app := newTestApp(svc, bld, &verifierStub{})

	resp, err := app.Test(jsonRequest("POST", "/api/v1/containers/", StartContainerRequest{
		Image:   "aster-bot:latest",
		RepoURL: "https://example.com/aster-bot.git",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "https://example.com/aster-bot.git", bld.source.RepoURL)
	assert.Equal(t, "aster-bot:latest", svc.started)
}

func TestStopContainer(t *testing.T) {
	svc := &containerServiceStub{}
	app := newTestApp(svc, &builderStub{}, &verifierStub{})

	resp, err := app.Test(httptest.NewRequest("DELETE", "/api/v1/containers/deadbeef0001", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "deadbeef0001", svc.stopped)
}

func TestVerifyContainer(t *testing.T) {
	ver := &verifierStub{violations: []ports.ContractViolation{
		{Check: "not-root", Detail: "process runs with uid 0"},
	}}
	app := newTestApp(&containerServiceStub{}, &builderStub{}, ver)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/containers/deadbeef0001/verify", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got struct {
		OK         bool                      `json:"ok"`
		Violations []ports.ContractViolation `json:"violations"`
	}
	decodeBody(t, resp, &got)
	assert.False(t, got.OK)
	require.Len(t, got.Violations, 1)
	assert.Equal(t, "not-root", got.Violations[0].Check)
}

func TestGetHealthByName(t *testing.T) {
	svc := &containerServiceStub{
		containers: []domain.Container{{ID: "deadbeef0001", Name: "aster-bot"}},
		inspected: domain.Container{
			ID: "deadbeef0001", Name: "aster-bot", User: "botuser",
			Health: domain.HealthHealthy,
		},
	}
	app := newTestApp(svc, &builderStub{}, &verifierStub{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/containers/name/aster-bot/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got domain.Container
	decodeBody(t, resp, &got)
	assert.Equal(t, "botuser", got.User)
	assert.Equal(t, domain.HealthHealthy, got.Health)
}

func TestGetHealthByNameNotFound(t *testing.T) {
	app := newTestApp(&containerServiceStub{}, &builderStub{}, &verifierStub{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/containers/name/ghost/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
