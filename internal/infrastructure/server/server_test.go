package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GriffinCanCode/storefetch/internal/infrastructure/config"
	"github.com/GriffinCanCode/storefetch/internal/providers/download"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resolverPage = `<html><body>
<table class="tftable">
<tr><th>File</th><th>Expire</th><th>SHA-1</th><th>Size</th></tr>
<tr><td><a href="%s/pkg/App_1.0_x64__p.msix">App_1.0_x64__p.msix</a></td><td>2024-01-01 00:00:00 GMT</td><td>abc</td><td>12 B</td></tr>
<tr><td><a href="%s/pkg/App_1.0_arm64__p.msix">App_1.0_arm64__p.msix</a></td><td>2024-01-01 00:00:00 GMT</td><td>def</td><td>12 B</td></tr>
</table></body></html>`

func newTestServer(t *testing.T) (*Server, *Components, afero.Fs) {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_ = r.ParseForm()
			if r.PostForm.Get("url") == "" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			base := "http://" + r.Host
			_, _ = io.WriteString(w, strings.ReplaceAll(resolverPage, "%s", base))
			return
		}
		_, _ = io.WriteString(w, "PK\x03\x04 package")
	}))
	t.Cleanup(upstream.Close)

	cfg := config.Default()
	cfg.Resolver.Endpoint = upstream.URL + "/api/GetFiles"
	cfg.Download.Dir = "/downloads"
	cfg.HTTP.Retries = 0
	cfg.RateLimit.Enabled = false
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"
	cfg.Logging.Development = true

	fs := afero.NewMemMapFs()
	components := Wire(cfg, nil, WireOptions{Fs: fs, GOOS: "linux"})
	srv := NewServer(cfg, nil, components)
	t.Cleanup(func() { _ = srv.Close() })
	return srv, components, fs
}

func request(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestWireConfiguresClients(t *testing.T) {
	cfg := config.Default()
	cfg.HTTP.Timeout = 7 * time.Second
	cfg.HTTP.RPS = 2
	cfg.Resolver.Lang = "de-DE"

	components := Wire(cfg, nil, WireOptions{Fs: afero.NewMemMapFs(), GOOS: "linux"})

	resolverClient := components.ResolverClient
	assert.Equal(t, 7*time.Second, resolverClient.Resty.GetClient().Timeout)
	assert.Equal(t, "de-DE", resolverClient.Resty.Header.Get("Accept-Language"))
	assert.InDelta(t, 2.0, float64(resolverClient.Limiter.Limit()), 0.001)

	downloadClient := components.DownloadClient
	assert.Zero(t, downloadClient.Resty.GetClient().Timeout)
	assert.Empty(t, downloadClient.Resty.Header.Get("Accept-Language"))
	assert.InDelta(t, 2.0, float64(downloadClient.Limiter.Limit()), 0.001)
}

func TestResolveThroughAPI(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := request(t, srv.Handler(), http.MethodGet, "/files?q=9N0DX20HK701&arch=arm64", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))

	var body struct {
		Files []struct {
			Name string `json:"name"`
			URL  string `json:"url"`
			Size string `json:"size"`
		} `json:"files"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "App_1.0_arm64__p.msix", body.Files[0].Name)
	assert.Equal(t, "12 B", body.Files[0].Size)
}

func TestRejectsForeignURL(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := request(t, srv.Handler(), http.MethodGet, "/files?q=https://example.com/app", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownloadThroughAPI(t *testing.T) {
	srv, components, fs := newTestServer(t)

	w := request(t, srv.Handler(), http.MethodPost, "/downloads", `{"q":"9N0DX20HK701","index":1}`)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	task, err := components.Downloads.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, download.StateCompleted, task.State)
	assert.Equal(t, "/downloads/App_1.0_x64__p.msix", task.Path)

	data, err := afero.ReadFile(fs, task.Path)
	require.NoError(t, err)
	assert.Equal(t, "PK\x03\x04 package", string(data))

	w = request(t, srv.Handler(), http.MethodGet, "/packages", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "App_1.0_x64__p.msix")

	w = request(t, srv.Handler(), http.MethodPost, "/installs", `{"path":"/downloads/App_1.0_x64__p.msix"}`)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestRejectsCrossOriginWrites(t *testing.T) {
	srv, components, _ := newTestServer(t)
	body := `{"name":"evil.msix","url":"http://127.0.0.1:1/pkg/evil.msix","install":true}`

	tests := []struct {
		name        string
		method      string
		target      string
		origin      string
		contentType string
		status      int
	}{
		{"simple post from foreign page", http.MethodPost, "/downloads", "https://evil.example", "text/plain", http.StatusForbidden},
		{"json post from foreign page", http.MethodPost, "/downloads", "https://evil.example", "application/json", http.StatusForbidden},
		{"install from foreign page", http.MethodPost, "/installs", "https://evil.example", "text/plain", http.StatusForbidden},
		{"preflight from foreign page", http.MethodOptions, "/downloads", "https://evil.example", "", http.StatusForbidden},
		{"non-json post without origin", http.MethodPost, "/downloads", "", "text/plain", http.StatusUnsupportedMediaType},
		{"form post without origin", http.MethodPost, "/installs", "", "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(body))
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}

	_, active := components.Service.CurrentDownload()
	assert.False(t, active)
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := request(t, srv.Handler(), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"resolver"`)
	assert.Contains(t, w.Body.String(), `"downloads"`)

	w = request(t, srv.Handler(), http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "storefetch_http_requests_total")
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv, _, _ := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
