package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/storefetch/internal/api/http"
	"github.com/GriffinCanCode/storefetch/internal/api/middleware"
	"github.com/GriffinCanCode/storefetch/internal/api/ws"
	"github.com/GriffinCanCode/storefetch/internal/infrastructure/config"
	"github.com/GriffinCanCode/storefetch/internal/infrastructure/logging"
	"github.com/GriffinCanCode/storefetch/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/storefetch/internal/infrastructure/tracing"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	components *Components
	tracer     *tracing.Tracer
	logger     *logging.Logger
	config     *config.Config
}

// NewServer creates a server around wired components
func NewServer(cfg *config.Config, logger *logging.Logger, components *Components) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}

	logger.Info("Initializing storefetch server",
		zap.String("addr", cfg.Server.Address()),
		zap.String("resolver", cfg.Resolver.Endpoint),
		zap.String("downloads", cfg.Download.Dir),
	)

	tracer := tracing.New("storefetch", logger.Component("tracing"))

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(components.Metrics))

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.Server.CORSOrigins
	router.Use(middleware.CORS(cors))
	router.Use(middleware.RequireJSON())

	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := api.NewHandlers(api.Options{
		Store:   components.Service,
		Metrics: components.Metrics,
		Breakers: map[string]api.BreakerReporter{
			"resolver":  components.ResolverClient,
			"downloads": components.DownloadClient,
		},
		Logger: logger.Component("api"),
	})
	handlers.Register(router)

	wsHandler := ws.NewHandler(components.Service, components.Metrics, logger.Component("ws")).
		AllowOrigins(cfg.Server.CORSOrigins)
	router.GET("/downloads/stream", wsHandler.HandleConnection)

	logger.Info("Server initialized successfully")

	return &Server{
		router:     router,
		components: components,
		tracer:     tracer,
		logger:     logger,
		config:     cfg,
	}
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.Address())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Server.Address(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	// hijacked websocket connections are not tracked by Shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases background resources. An active download is cancelled.
func (s *Server) Close() error {
	s.tracer.Close()

	if err := s.components.Service.CancelDownload(); err == nil {
		s.logger.Info("Cancelled active download")
	}

	_ = s.logger.Sync()
	return nil
}
