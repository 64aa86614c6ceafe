package canteensdk

import "fmt"

// Stable error codes returned in ErrorResponse.Error. Clients branch on these,
// never on descriptions.
const (
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeUnauthorized       = "unauthorized"
	ErrorCodePermissionDenied   = "permission_denied"
	ErrorCodeNotFound           = "not_found"
	ErrorCodeAlreadyExists      = "already_exists"
	ErrorCodeInsufficientFunds  = "insufficient_funds"

	// ErrorCodePartialTransfer is special: the sender was debited but the
	// receiver was not credited. The client must show this distinctly from a
	// plain failure and point at support, not suggest a retry.
	ErrorCodePartialTransfer = "partial_transfer"

	ErrorCodeServerError = "server_error"
	ErrorCodeUnavailable = "unavailable"
)

// APIError is a non-2xx response decoded into a Go error.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.StatusCode, e.Description)
}

// IsPartialTransfer reports whether err is the debited-but-not-credited
// outcome that needs manual reconciliation.
func IsPartialTransfer(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Code == ErrorCodePartialTransfer
}
