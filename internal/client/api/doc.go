// Package api is the session-aware HTTP client for the botadmin REST API.
//
// # Overview
//
// Client sends JSON requests with the session cookies attached and hides
// session expiry from callers:
//
//  1. A request that receives 401 is marked retried and waits for a session
//     refresh (POST /auth/refresh).
//  2. Only one refresh is ever in flight. Requests that hit 401 while it is
//     outstanding share its outcome instead of starting another.
//  3. On a valid refresh the request is replayed exactly once. A failed or
//     invalid refresh, or a second 401, logs the session out and the call
//     fails with ErrSessionExpired.
//
// Any other non-2xx response is returned as *APIError, unchanged. A request
// that gets no response at all fails with ErrNetworkUnreachable and is never
// retried.
//
// # Error Handling
//
//	var apiErr *api.APIError
//	switch {
//	case errors.Is(err, api.ErrSessionExpired):     // redirect to sign-in
//	case errors.Is(err, api.ErrNetworkUnreachable): // offline
//	case errors.As(err, &apiErr):                   // apiErr.Status, apiErr.Message
//	}
//
// # Concurrency
//
// Client is safe for concurrent use by multiple goroutines.
package api
