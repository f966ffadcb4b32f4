/*
Package monitoring provides Prometheus metrics for storefetch.

Each Metrics value owns its registry, so several instances (one per test,
say) never collide on registration.

# Metrics

- HTTP requests by route template (count, latency, response size)
- Service calls by service/method/status, plus error counts
- Files extracted per resolver lookup
- Downloads by final state, bytes saved, downloads in progress
- Installs by status
- WebSocket connections and messages
- Process and Go runtime collectors, uptime

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "resolver", "fetch")
	page, err := fetch(ctx)
	timer.StopErr(err, "transport")
*/
package monitoring
