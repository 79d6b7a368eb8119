// Package apiclient is the HTTP client every bookshelf screen and service
// talks to the backend through:
//   - request building with base URL resolution, default headers and bearer
//     token injection from a token.Store
//   - a per-attempt timeout budget with cancellation propagated to the transport
//   - response normalization into Response[T] or a typed *APIError
//   - 401 recovery through a single refresh attempt, with auth-loss subscribers
//   - retries with exponential backoff for network failures, 408, 429 and 5xx
package apiclient
