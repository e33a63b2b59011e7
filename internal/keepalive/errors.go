package keepalive

import "errors"

// Error categories produced by the transport. Callers match them with
// errors.Is; the wrapped cause is kept for logging.
var (
	// ErrConnectionLost indicates the proxy or network failed before a response.
	ErrConnectionLost = errors.New("connection lost")

	// ErrServerError indicates the backend answered with a 5xx status.
	ErrServerError = errors.New("server error")

	// ErrAuthRejected indicates the token was refused (403).
	ErrAuthRejected = errors.New("auth rejected")

	// ErrInvalidResponse indicates a missing or negative code, or an undecodable body.
	ErrInvalidResponse = errors.New("invalid response")

	// ErrRetriesExhausted indicates the ping retry ceiling was reached.
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// IsTerminal reports whether err should retire the identity from its pool.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrConnectionLost) ||
		errors.Is(err, ErrServerError) ||
		errors.Is(err, ErrRetriesExhausted)
}
