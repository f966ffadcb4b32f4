package http

import (
	"context"
	"errors"
	"io/fs"
	"net/http"

	"github.com/GriffinCanCode/storefetch/internal/domain/store"
	"github.com/GriffinCanCode/storefetch/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/storefetch/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/storefetch/internal/providers/download"
	"github.com/GriffinCanCode/storefetch/internal/providers/installer"
	"github.com/GriffinCanCode/storefetch/internal/providers/resolver"
	"github.com/GriffinCanCode/storefetch/internal/shared/paths"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps workflow errors onto HTTP status codes
func statusFor(err error) int {
	var statusErr *resolver.StatusError
	switch {
	case errors.Is(err, store.ErrEmptyInput),
		errors.Is(err, store.ErrNotDetailPage),
		errors.Is(err, store.ErrInvalidFilter),
		errors.Is(err, store.ErrIndexRange),
		errors.Is(err, resolver.ErrEmptyTarget),
		errors.Is(err, download.ErrMissingURL),
		errors.Is(err, installer.ErrEmptyPath),
		errors.Is(err, installer.ErrNotPackage):
		return http.StatusBadRequest
	case errors.Is(err, paths.ErrOutsideRoot):
		return http.StatusForbidden
	case errors.Is(err, download.ErrNoTask), errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, download.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, installer.ErrUnsupportedPlatform):
		return http.StatusNotImplemented
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &statusErr), errors.Is(err, resolver.ErrRequest):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a JSON error with its mapped status
func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)

	if status >= http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("trace_id", string(tracing.GetTraceID(c.Request.Context()))),
			zap.Int("status", status),
			zap.Error(err))
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
