package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GriffinCanCode/storefetch/internal/domain/store"
	"github.com/GriffinCanCode/storefetch/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/storefetch/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/storefetch/internal/providers/download"
	"github.com/GriffinCanCode/storefetch/internal/providers/installer"
	"github.com/GriffinCanCode/storefetch/internal/providers/resolver"
	"github.com/GriffinCanCode/storefetch/internal/shared/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Resolve(ctx context.Context, input string, lookup store.Lookup) ([]types.FileDescriptor, error) {
	args := m.Called(ctx, input, lookup)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.FileDescriptor), args.Error(1)
}

func (m *MockStore) Page(ctx context.Context, input string, lookup store.Lookup) (string, error) {
	args := m.Called(ctx, input, lookup)
	return args.String(0), args.Error(1)
}

func (m *MockStore) StartDownload(ctx context.Context, file types.FileDescriptor, install bool) (download.Task, error) {
	args := m.Called(ctx, file, install)
	return args.Get(0).(download.Task), args.Error(1)
}

func (m *MockStore) CurrentDownload() (download.Task, bool) {
	args := m.Called()
	return args.Get(0).(download.Task), args.Bool(1)
}

func (m *MockStore) CancelDownload() error {
	return m.Called().Error(0)
}

func (m *MockStore) Packages(ctx context.Context) ([]download.Package, error) {
	args := m.Called(ctx)
	return args.Get(0).([]download.Package), args.Error(1)
}

func (m *MockStore) DownloadDir() string {
	return m.Called().String(0)
}

func (m *MockStore) Install(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func (m *MockStore) CanInstall() bool {
	return m.Called().Bool(0)
}

func (m *MockStore) AutoInstall() bool {
	return m.Called().Bool(0)
}

type stubBreaker struct {
	state resilience.State
}

func (b stubBreaker) BreakerState() resilience.State   { return b.state }
func (b stubBreaker) BreakerCounts() resilience.Counts { return resilience.Counts{Requests: 3} }

var files = []types.FileDescriptor{
	{Name: "App_1.0_x64__p.msix", URL: "https://cdn.example/x64.msix", Time: "2024-01-01 00:00:00 GMT", Size: "1.00 MB"},
	{Name: "App_1.0_arm64__p.msix", URL: "https://cdn.example/arm64.msix", Time: "2024-01-01 00:00:00 GMT", Size: "1.00 MB"},
}

func setup(t *testing.T) (*gin.Engine, *MockStore, *monitoring.Metrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := new(MockStore)
	metrics := monitoring.NewMetrics()
	h := NewHandlers(Options{
		Store:    s,
		Metrics:  metrics,
		Breakers: map[string]BreakerReporter{"resolver": stubBreaker{state: resilience.StateClosed}},
	})

	router := gin.New()
	h.Register(router)
	t.Cleanup(func() { s.AssertExpectations(t) })
	return router, s, metrics
}

func do(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRoot(t *testing.T) {
	router, _, _ := setup(t)

	w := do(router, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "storefetch", decode(t, w)["service"])
}

func TestHealth(t *testing.T) {
	router, s, _ := setup(t)
	s.On("CanInstall").Return(false)
	s.On("AutoInstall").Return(true)
	s.On("CurrentDownload").Return(download.Task{}, false)

	w := do(router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, map[string]any{"supported": false, "auto_install": true}, body["installer"])
	assert.Equal(t, "closed", body["breakers"].(map[string]any)["resolver"].(map[string]any)["state"])
	assert.Contains(t, body, "metrics")
	assert.NotContains(t, body, "download")
}

func TestHealthDegradedWhenBreakerOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := new(MockStore)
	s.On("CanInstall").Return(true)
	s.On("AutoInstall").Return(false)
	s.On("CurrentDownload").Return(download.Task{ID: "dl_1", State: download.StateDownloading}, true)

	router := gin.New()
	NewHandlers(Options{
		Store:    s,
		Breakers: map[string]BreakerReporter{"resolver": stubBreaker{state: resilience.StateOpen}},
	}).Register(router)

	body := decode(t, do(router, http.MethodGet, "/health", ""))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "dl_1", body["download"].(map[string]any)["id"])
}

func TestListFiles(t *testing.T) {
	router, s, _ := setup(t)
	s.On("Resolve", mock.Anything, "9N0DX20HK701", store.Lookup{
		Ring: "WIF",
		Filter: store.Filter{
			Arch:         "x64",
			Kinds:        []string{"msix", "appx", "msixbundle"},
			SkipBlockMap: true,
		},
	}).Return(files[:1], nil)

	w := do(router, http.MethodGet, "/files?q=9N0DX20HK701&ring=WIF&arch=x64&kind=msix,appx&kind=msixbundle&skip_blockmap=true", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(1), body["count"])
	first := body["files"].([]any)[0].(map[string]any)
	assert.Equal(t, "App_1.0_x64__p.msix", first["name"])
	assert.Equal(t, "https://cdn.example/x64.msix", first["url"])
}

func TestListFilesErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"empty input", store.ErrEmptyInput, http.StatusBadRequest},
		{"not a detail page", store.ErrNotDetailPage, http.StatusBadRequest},
		{"bad filter", fmt.Errorf("%w: unknown architecture", store.ErrInvalidFilter), http.StatusBadRequest},
		{"resolver status", &resolver.StatusError{Code: 500}, http.StatusBadGateway},
		{"transport", fmt.Errorf("%w: connection refused", resolver.ErrRequest), http.StatusBadGateway},
		{"breaker open", fmt.Errorf("%w: %w", resolver.ErrRequest, resilience.ErrCircuitOpen), http.StatusServiceUnavailable},
		{"deadline", fmt.Errorf("%w: %w", resolver.ErrRequest, context.DeadlineExceeded), http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, s, _ := setup(t)
			s.On("Resolve", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			w := do(router, http.MethodGet, "/files?q=x", "")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.err.Error(), decode(t, w)["error"])
		})
	}
}

func TestFilesPage(t *testing.T) {
	router, s, _ := setup(t)
	s.On("Page", mock.Anything, "9N0DX20HK701", store.Lookup{}).Return("<table class=\"tftable\"></table>", nil)

	w := do(router, http.MethodGet, "/files/page?q=9N0DX20HK701", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "<table class=\"tftable\"></table>", w.Body.String())
}

func TestStartDownload(t *testing.T) {
	router, s, _ := setup(t)
	file := types.FileDescriptor{Name: "App.msix", URL: "https://cdn.example/app.msix"}
	s.On("StartDownload", mock.Anything, file, true).
		Return(download.Task{ID: "dl_1", File: file, State: download.StatePending}, nil)

	w := do(router, http.MethodPost, "/downloads", `{"name":"App.msix","url":"https://cdn.example/app.msix","install":true}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "dl_1", decode(t, w)["id"])
}

func TestStartDownloadByLookup(t *testing.T) {
	router, s, _ := setup(t)
	s.On("Resolve", mock.Anything, "9N0DX20HK701", store.Lookup{Filter: store.Filter{Kinds: []string{"msix"}}}).Return(files, nil)
	s.On("StartDownload", mock.Anything, files[1], false).
		Return(download.Task{ID: "dl_2", File: files[1]}, nil)

	w := do(router, http.MethodPost, "/downloads", `{"q":"9N0DX20HK701","kind":["msix"],"index":2}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "dl_2", decode(t, w)["id"])
}

func TestStartDownloadIndexOutOfRange(t *testing.T) {
	router, s, _ := setup(t)
	s.On("Resolve", mock.Anything, "9N0DX20HK701", mock.Anything).Return(files, nil)

	w := do(router, http.MethodPost, "/downloads", `{"q":"9N0DX20HK701","index":5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	s.AssertNotCalled(t, "StartDownload", mock.Anything, mock.Anything, mock.Anything)
}

func TestStartDownloadErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"busy", download.ErrBusy, http.StatusConflict},
		{"missing url", download.ErrMissingURL, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, s, _ := setup(t)
			s.On("StartDownload", mock.Anything, mock.Anything, false).Return(download.Task{}, tt.err)

			w := do(router, http.MethodPost, "/downloads", `{"name":"App.msix"}`)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestStartDownloadBadBody(t *testing.T) {
	router, _, _ := setup(t)

	w := do(router, http.MethodPost, "/downloads", `{"url":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCurrentDownload(t *testing.T) {
	router, s, _ := setup(t)
	s.On("CurrentDownload").Return(download.Task{}, false).Once()
	s.On("CurrentDownload").Return(download.Task{ID: "dl_1", State: download.StateCompleted}, true).Once()

	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/downloads/current", "").Code)

	w := do(router, http.MethodGet, "/downloads/current", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", decode(t, w)["state"])
}

func TestCancelDownload(t *testing.T) {
	router, s, _ := setup(t)
	s.On("CancelDownload").Return(download.ErrNoTask).Once()
	s.On("CancelDownload").Return(nil).Once()
	s.On("CurrentDownload").Return(download.Task{ID: "dl_1", State: download.StateDownloading}, true)

	assert.Equal(t, http.StatusNotFound, do(router, http.MethodDelete, "/downloads/current", "").Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodDelete, "/downloads/current", "").Code)
}

func TestListPackages(t *testing.T) {
	router, s, _ := setup(t)
	s.On("Packages", mock.Anything).Return([]download.Package{{Name: "App.msix", Path: "downloads/App.msix", Size: 42}}, nil)

	w := do(router, http.MethodGet, "/packages", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["count"])
}

func TestInstall(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"success", nil, http.StatusOK},
		{"unsupported platform", installer.ErrUnsupportedPlatform, http.StatusNotImplemented},
		{"not a package", installer.ErrNotPackage, http.StatusBadRequest},
		{"command failed", fmt.Errorf("Add-AppxPackage failed: exit status 1"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, s, _ := setup(t)
			s.On("DownloadDir").Return("downloads")
			s.On("Install", mock.Anything, filepath.Join("downloads", "App.msix")).Return(tt.err)

			w := do(router, http.MethodPost, "/installs", `{"path":"App.msix"}`)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestInstallOutsideDownloads(t *testing.T) {
	router, s, _ := setup(t)
	s.On("DownloadDir").Return("downloads")

	w := do(router, http.MethodPost, "/installs", `{"path":"../../Windows/evil.msix"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	s.AssertNotCalled(t, "Install", mock.Anything, mock.Anything)
}

func TestInstallRequiresPath(t *testing.T) {
	router, _, _ := setup(t)

	w := do(router, http.MethodPost, "/installs", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoints(t *testing.T) {
	router, _, metrics := setup(t)
	metrics.RecordLookup(4)

	w := do(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "storefetch_")

	w = do(router, http.MethodGet, "/metrics/json", "")
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode(t, w)["summary"].(map[string]any)
	assert.Equal(t, float64(4), summary["files_per_lookup"])
}
