package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Caller errors
const (
	// ErrCodeInvalidArgument indicates a missing required config key, an
	// unsupported HTTP method or a missing authorization input.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// Remote availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates the remote answered with a 5xx status.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTransport indicates the request never produced a response.
	ErrCodeTransport ErrorCode = "TRANSPORT_ERROR"
	// ErrCodeTimeout indicates the request deadline fired.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Response errors
const (
	// ErrCodeUnknownContentType indicates a missing or unrecognized Content-Type.
	ErrCodeUnknownContentType ErrorCode = "UNKNOWN_CONTENT_TYPE"
	// ErrCodeUnknownResponse indicates a response the pipeline cannot interpret.
	ErrCodeUnknownResponse ErrorCode = "UNKNOWN_RESPONSE"
)

// Provider errors
const (
	// ErrCodeAPI indicates the provider reported an error for an API call.
	ErrCodeAPI ErrorCode = "API_ERROR"
	// ErrCodeRequestToken indicates the token endpoint rejected a grant.
	ErrCodeRequestToken ErrorCode = "REQUEST_TOKEN_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeTransport:          true,
	ErrCodeTimeout:            true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
