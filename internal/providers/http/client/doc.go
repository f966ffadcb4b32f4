// Package client is the outbound HTTP client shared by the resolver and
// the download manager.
//
// Built on go-resty/resty over the pooled go-retryablehttp transport:
//   - retries with backoff on transport errors, 429 and 5xx
//   - token-bucket rate limiting per client instance
//   - a circuit breaker that fails fast when the remote keeps failing
//
// Example Usage:
//
//	c := client.NewClient(client.DefaultOptions())
//	req, err := c.Request(ctx)
//	if err != nil {
//		return err
//	}
//	resp, err := c.ExecuteWithBreaker(func() (*resty.Response, error) {
//		return req.SetFormData(form).Post(endpoint)
//	})
package client
