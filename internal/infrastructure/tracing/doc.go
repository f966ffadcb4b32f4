/*
Package tracing provides lightweight request tracing for the HTTP API.

Each request gets a span whose trace ID is taken from the X-Trace-ID header
or generated. The IDs are echoed back in X-Trace-ID and X-Span-ID so a
client can correlate its calls with the service log.

	tracer := tracing.New("storefetch", logger)
	defer tracer.Close()
	router.Use(tracing.HTTPMiddleware(tracer))

Finished spans are buffered and logged by a single collector goroutine;
a full buffer drops spans rather than blocking requests.
*/
package tracing
