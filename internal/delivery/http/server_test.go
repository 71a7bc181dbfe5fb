package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/perception-map/internal/config"
	"github.com/perception-map/internal/delivery/http/handler"
	"github.com/perception-map/internal/domain"
	"github.com/perception-map/internal/overlay"
	"github.com/perception-map/internal/usecase"
)

type stubSource struct {
	cells map[int][]domain.GeoCell
	errs  map[int]error
}

func (s *stubSource) FetchYear(_ context.Context, year int) ([]domain.GeoCell, error) {
	if err, ok := s.errs[year]; ok {
		return nil, err
	}
	if cells, ok := s.cells[year]; ok {
		return cells, nil
	}
	return nil, domain.ErrNoData
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Meta  map[string]interface{} `json:"meta"`
	Error *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func newTestServer(t *testing.T, checks map[string]HealthCheck) *fiber.App {
	t.Helper()

	source := &stubSource{
		cells: map[int][]domain.GeoCell{
			2024: {
				{
					Index:  7,
					Score:  -6,
					Coords: json.RawMessage(`{"lat_1": 45.18, "lng_1": 5.72, "lat_2": 45.182, "lng_2": 5.722}`),
					Evaluations: []domain.Evaluation{
						{ID: "a", Criteria: domain.Criteria{Boring: 3}},
						{ID: "b", Criteria: domain.Criteria{Beauty: 4}},
					},
				},
				{Index: 8, Score: 1, Coords: json.RawMessage(`null`)},
			},
		},
		errs: map[int]error{2023: domain.ErrUnauthorized},
	}
	logger := zap.NewNop()
	mapUC := usecase.NewMapUseCase(source, nil, nil, usecase.MapConfig{
		Years:    []int{2022, 2023, 2024},
		Renderer: overlay.DefaultConfig(),
	}, logger)
	sessionUC := usecase.NewMapSessionUseCase(mapUC, time.Hour, logger)
	t.Cleanup(func() {
		_ = sessionUC.Shutdown(context.Background())
	})

	srv := NewServer(&config.Config{}, logger,
		handler.NewMapHandler(mapUC, logger),
		handler.NewSessionHandler(sessionUC, logger),
		checks)
	return srv.App()
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func TestServer_Years(t *testing.T) {
	app := newTestServer(t, nil)

	status, env := do(t, app, "GET", "/api/v1/map/years", "")
	require.Equal(t, fiber.StatusOK, status)

	var years struct {
		Years   []int `json:"years"`
		Default int   `json:"default"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &years))
	assert.Equal(t, []int{2022, 2023, 2024}, years.Years)
	assert.Equal(t, 2024, years.Default)
}

func TestServer_Overlay(t *testing.T) {
	app := newTestServer(t, nil)

	status, env := do(t, app, "GET", "/api/v1/map/2024/overlay?view=individual&width=640&height=480", "")
	require.Equal(t, fiber.StatusOK, status)

	var resp struct {
		ViewMode string `json:"view_mode"`
		NoData   bool   `json:"no_data"`
		Overlay  struct {
			Type     string            `json:"type"`
			Features []json.RawMessage `json:"features"`
		} `json:"overlay"`
		Report domain.RenderReport `json:"report"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "individual", resp.ViewMode)
	assert.False(t, resp.NoData)
	assert.Equal(t, "FeatureCollection", resp.Overlay.Type)
	assert.Len(t, resp.Overlay.Features, 1)
	assert.Equal(t, 2, resp.Report.TotalCells)
	assert.Equal(t, 1, resp.Report.Drawn)
	require.Len(t, resp.Report.Skipped, 1)
	assert.Equal(t, 8, resp.Report.Skipped[0].Index)

	status, env = do(t, app, "GET", "/api/v1/map/2022/overlay", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(env.Data), `"no_data":true`)
}

func TestServer_OverlayErrors(t *testing.T) {
	app := newTestServer(t, nil)

	tests := []struct {
		target string
		status int
		code   string
	}{
		{"/api/v1/map/abc/overlay", fiber.StatusBadRequest, "INVALID_YEAR"},
		{"/api/v1/map/2010/overlay", fiber.StatusBadRequest, "INVALID_YEAR"},
		{"/api/v1/map/2024/overlay?view=3d", fiber.StatusBadRequest, "INVALID_REQUEST"},
		{"/api/v1/map/2023/overlay", fiber.StatusUnauthorized, "UNAUTHORIZED"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			status, env := do(t, app, "GET", tt.target, "")
			assert.Equal(t, tt.status, status)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestServer_ReportsWithoutJournal(t *testing.T) {
	app := newTestServer(t, nil)

	status, env := do(t, app, "GET", "/api/v1/map/reports?year=2024&limit=5", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[]`, string(env.Data))

	status, env = do(t, app, "GET", "/api/v1/map/reports?limit=1000", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "max=500", env.Error.Details["limit"])
}

func TestServer_SessionLifecycle(t *testing.T) {
	app := newTestServer(t, nil)

	status, env := do(t, app, "POST", "/api/v1/sessions", `{"width": 800, "height": 600}`)
	require.Equal(t, fiber.StatusCreated, status)
	var created struct {
		ID   string `json:"id"`
		Year int    `json:"year"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, 2024, created.Year)
	base := "/api/v1/sessions/" + created.ID

	status, env = do(t, app, "GET", base+"?wait=3s", "")
	require.Equal(t, fiber.StatusOK, status)
	var snapshot struct {
		State    string          `json:"state"`
		Viewport domain.Viewport `json:"viewport"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snapshot))
	assert.Equal(t, "ready", snapshot.State)
	assert.False(t, snapshot.Viewport.Fallback)

	status, env = do(t, app, "GET", base+"/shapes/0/hover", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(env.Data), "Square #7")
	status, _ = do(t, app, "DELETE", base+"/shapes/0/hover", "")
	assert.Equal(t, fiber.StatusNoContent, status)

	status, env = do(t, app, "GET", base+"/detail", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "DETAIL_NOT_OPEN", env.Error.Code)

	status, env = do(t, app, "POST", base+"/shapes/0/click", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(env.Data), `"position_label":"1/2"`)

	status, env = do(t, app, "POST", base+"/detail/next", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(env.Data), `"position_label":"2/2"`)
	status, env = do(t, app, "POST", base+"/detail/next", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(env.Data), `"position_label":"1/2"`)
	status, env = do(t, app, "POST", base+"/detail/previous", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(env.Data), `"position_label":"2/2"`)

	status, _ = do(t, app, "DELETE", base+"/detail", "")
	assert.Equal(t, fiber.StatusNoContent, status)

	status, env = do(t, app, "POST", base+"/shapes/x/click", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "SHAPE_NOT_FOUND", env.Error.Code)

	status, env = do(t, app, "PUT", base+"/view-mode", `{"view_mode": "individual"}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(env.Data), `"view_mode":"individual"`)

	status, _ = do(t, app, "PUT", base+"/year", `{"year": 2022}`)
	require.Equal(t, fiber.StatusAccepted, status)
	status, env = do(t, app, "GET", base+"?wait=3s", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(env.Data), `"state":"empty"`)
	assert.Contains(t, string(env.Data), "No data available for year 2022")

	status, _ = do(t, app, "PUT", base+"/year", `{"year": 2023}`)
	require.Equal(t, fiber.StatusAccepted, status)
	status, env = do(t, app, "GET", base+"?wait=3s", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(env.Data), `"state":"error"`)

	status, _ = do(t, app, "DELETE", base, "")
	assert.Equal(t, fiber.StatusNoContent, status)

	// после размонтирования любой вызов по сессии отвечает 410
	for _, call := range []struct{ method, path, body string }{
		{"GET", base, ""},
		{"DELETE", base, ""},
		{"PUT", base + "/year", `{"year": 2024}`},
		{"GET", base + "/shapes/0/hover", ""},
		{"POST", base + "/shapes/0/click", ""},
	} {
		status, env = do(t, app, call.method, call.path, call.body)
		assert.Equal(t, fiber.StatusGone, status, "%s %s", call.method, call.path)
		require.NotNil(t, env.Error)
		assert.Equal(t, "SESSION_CLOSED", env.Error.Code)
	}

	status, env = do(t, app, "GET", "/api/v1/sessions/unknown-id", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "SESSION_NOT_FOUND", env.Error.Code)
}

func TestServer_SessionValidation(t *testing.T) {
	app := newTestServer(t, nil)

	status, env := do(t, app, "POST", "/api/v1/sessions", `{"height": 600}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
	assert.Equal(t, "required", env.Error.Details["width"])

	status, env = do(t, app, "POST", "/api/v1/sessions", `{"width": 800, "height": 600, "year": 2019}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_YEAR", env.Error.Code)

	status, env = do(t, app, "POST", "/api/v1/sessions", `not json`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)

	status, env = do(t, app, "GET", "/api/v1/sessions/unknown?wait=abc", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	app := newTestServer(t, map[string]HealthCheck{
		"redis": func(context.Context) error { return nil },
	})
	status, _ := do(t, app, "GET", "/api/v1/health", "")
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = do(t, app, "GET", "/metrics", "")
	assert.Equal(t, fiber.StatusOK, status)

	degraded := newTestServer(t, map[string]HealthCheck{
		"postgres": func(context.Context) error { return errors.New("connection refused") },
	})
	status, _ = do(t, degraded, "GET", "/api/v1/health", "")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
}
