package http

import (
	"context"
	"net/http"
	"time"

	"github.com/GriffinCanCode/storefetch/internal/domain/store"
	"github.com/GriffinCanCode/storefetch/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/storefetch/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/storefetch/internal/providers/download"
	"github.com/GriffinCanCode/storefetch/internal/shared/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	serviceName = "storefetch"
	version     = "0.1.0"
)

// Store is the workflow the handlers drive
type Store interface {
	Resolve(ctx context.Context, input string, lookup store.Lookup) ([]types.FileDescriptor, error)
	Page(ctx context.Context, input string, lookup store.Lookup) (string, error)
	StartDownload(ctx context.Context, file types.FileDescriptor, install bool) (download.Task, error)
	CurrentDownload() (download.Task, bool)
	CancelDownload() error
	Packages(ctx context.Context) ([]download.Package, error)
	DownloadDir() string
	Install(ctx context.Context, path string) error
	CanInstall() bool
	AutoInstall() bool
}

// BreakerReporter exposes a circuit breaker for health output
type BreakerReporter interface {
	BreakerState() resilience.State
	BreakerCounts() resilience.Counts
}

// Options configures Handlers
type Options struct {
	Store    Store
	Metrics  *monitoring.Metrics
	Breakers map[string]BreakerReporter
	Logger   *zap.Logger
}

// Handlers contains all HTTP handlers
type Handlers struct {
	store    Store
	metrics  *monitoring.Metrics
	breakers map[string]BreakerReporter
	log      *zap.Logger
	started  time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(opts Options) *Handlers {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Handlers{
		store:    opts.Store,
		metrics:  opts.Metrics,
		breakers: opts.Breakers,
		log:      opts.Logger,
		started:  time.Now(),
	}
}

// Register mounts the API routes on router
func (h *Handlers) Register(router gin.IRouter) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)

	router.GET("/files", h.ListFiles)
	router.GET("/files/page", h.FilesPage)

	router.POST("/downloads", h.StartDownload)
	router.GET("/downloads/current", h.CurrentDownload)
	router.DELETE("/downloads/current", h.CancelDownload)

	router.GET("/packages", h.ListPackages)
	router.POST("/installs", h.Install)

	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
		router.GET("/metrics/json", h.MetricsSummary)
	}
}

// Root handles the liveness check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": serviceName,
		"version": version,
	})
}

// Health reports workflow state, breakers and counters
func (h *Handlers) Health(c *gin.Context) {
	breakers := make(gin.H, len(h.breakers))
	status := "healthy"
	for name, b := range h.breakers {
		state := b.BreakerState()
		if state != resilience.StateClosed {
			status = "degraded"
		}
		counts := b.BreakerCounts()
		breakers[name] = gin.H{
			"state":                state.String(),
			"requests":             counts.Requests,
			"consecutive_failures": counts.ConsecutiveFailures,
		}
	}

	body := gin.H{
		"status":         status,
		"uptime_seconds": time.Since(h.started).Seconds(),
		"installer": gin.H{
			"supported":    h.store.CanInstall(),
			"auto_install": h.store.AutoInstall(),
		},
		"breakers": breakers,
	}
	if task, ok := h.store.CurrentDownload(); ok {
		body["download"] = task
	}
	if h.metrics != nil {
		body["metrics"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, body)
}

// MetricsSummary returns the JSON counters with derived rates
func (h *Handlers) MetricsSummary(c *gin.Context) {
	snapshot := h.metrics.Snapshot()

	var errorRate float64
	if snapshot.TotalRequests > 0 {
		errorRate = float64(snapshot.TotalErrors) / float64(snapshot.TotalRequests)
	}
	var filesPerLookup float64
	if snapshot.Lookups > 0 {
		filesPerLookup = float64(snapshot.FilesResolved) / float64(snapshot.Lookups)
	}

	c.JSON(http.StatusOK, gin.H{
		"timestamp": time.Now(),
		"metrics":   snapshot,
		"summary": gin.H{
			"error_rate":       errorRate,
			"files_per_lookup": filesPerLookup,
		},
	})
}
