/*
Package resilience provides the circuit breaker used in front of the
resolver and package hosts.

When the resolver keeps failing, the breaker opens and calls fail fast with
ErrCircuitOpen instead of waiting on timeouts. After Settings.Timeout it
lets a few probes through (half-open) and closes again once they succeed.

	Closed --[ReadyToTrip]--> Open --[Timeout]--> Half-Open --[MaxRequests successes]--> Closed
	                                                   |
	                                               [failure]
	                                                   v
	                                                  Open

# Usage

	breaker := resilience.New("resolver", resilience.Settings{
		Timeout:      30 * time.Second,
		IsSuccessful: resilience.IgnoreCancellation,
	})

	page, err := resilience.Do(breaker, func() (string, error) {
		return fetch(ctx)
	})
*/
package resilience
