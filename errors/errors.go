package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the error type produced by the request pipeline itself.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried by the caller.
	Retryable bool `json:"retryable"`
	// StatusCode is the remote HTTP status, zero when no response was obtained.
	StatusCode int `json:"status_code,omitempty"`
	// ContentType is the remote Content-Type header, if any.
	ContentType string `json:"content_type,omitempty"`
	// Body is the raw response body, kept for diagnostics.
	Body []byte `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

// WithResponse attaches the remote status, content type and body.
func (e *AppError) WithResponse(status int, contentType string, body []byte) *AppError {
	e.StatusCode = status
	e.ContentType = contentType
	e.Body = body
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// Sentinels for errors.Is matching. Any error carrying the same code matches.
var (
	ErrInvalidArgument    = New(ErrCodeInvalidArgument, "invalid argument")
	ErrServiceUnavailable = New(ErrCodeServiceUnavailable, "service unavailable")
	ErrTransport          = New(ErrCodeTransport, "transport failure")
	ErrTimeout            = New(ErrCodeTimeout, "timeout")
	ErrUnknownContentType = New(ErrCodeUnknownContentType, "unknown content type")
	ErrUnknownResponse    = New(ErrCodeUnknownResponse, "unknown response")
	ErrAPI                = New(ErrCodeAPI, "api error")
	ErrRequestToken       = New(ErrCodeRequestToken, "request token error")
)

// --- Constructors ---

// InvalidArgument creates an error for bad caller input.
func InvalidArgument(format string, args ...any) *AppError {
	return New(ErrCodeInvalidArgument, fmt.Sprintf(format, args...))
}

// MissingOption creates an InvalidArgument error for a required config key.
func MissingOption(key string) *AppError {
	return InvalidArgument("missing required option %q", key).WithDetail("option", key)
}

// UnsupportedMethod creates an InvalidArgument error for an HTTP method the
// pipeline does not encode.
func UnsupportedMethod(method string) *AppError {
	return InvalidArgument("unsupported HTTP method %q", method).WithDetail("method", method)
}

// ServiceUnavailable creates an error for a 5xx response.
func ServiceUnavailable(status int, body []byte) *AppError {
	return New(ErrCodeServiceUnavailable, fmt.Sprintf("remote service unavailable: %d %s", status, http.StatusText(status))).
		WithResponse(status, "", body)
}

// UnknownContentType creates an error for a missing or unrecognized Content-Type.
func UnknownContentType(contentType string, status int, body []byte) *AppError {
	msg := "response has no Content-Type"
	if contentType != "" {
		msg = fmt.Sprintf("unsupported response Content-Type %q", contentType)
	}
	return New(ErrCodeUnknownContentType, msg).WithResponse(status, contentType, body)
}

// UnknownResponse creates an error for a response the pipeline cannot interpret.
func UnknownResponse(message string, status int, body []byte) *AppError {
	return New(ErrCodeUnknownResponse, message).WithResponse(status, "", body)
}

// Transport creates an error for a request that produced no response.
func Transport(cause error) *AppError {
	return New(ErrCodeTransport, "request failed before a response was received").WithCause(cause)
}

// Timeout creates an error for a request whose deadline fired.
func Timeout(operation string, cause error) *AppError {
	return New(ErrCodeTimeout, "the request took too long").
		WithDetail("operation", operation).
		WithCause(cause)
}

// --- Helpers ---

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the ErrorCode carried by err, or "" for foreign errors.
func CodeOf(err error) ErrorCode {
	var coder interface{ ErrCode() ErrorCode }
	if stderrors.As(err, &coder) {
		return coder.ErrCode()
	}
	return ""
}

// ErrCode implements the code accessor used by CodeOf.
func (e *AppError) ErrCode() ErrorCode { return e.Code }

// IsRetryable reports whether the caller may retry the failed operation.
func IsRetryable(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Retryable
	}
	return false
}

// IsInvalidArgument reports whether err is an InvalidArgument error.
func IsInvalidArgument(err error) bool { return stderrors.Is(err, ErrInvalidArgument) }

// IsServiceUnavailable reports whether err is a ServiceUnavailable error.
func IsServiceUnavailable(err error) bool { return stderrors.Is(err, ErrServiceUnavailable) }

// IsUnknownContentType reports whether err is an UnknownContentType error.
func IsUnknownContentType(err error) bool { return stderrors.Is(err, ErrUnknownContentType) }

// IsUnknownResponse reports whether err is an UnknownResponse error.
func IsUnknownResponse(err error) bool { return stderrors.Is(err, ErrUnknownResponse) }
