package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// APIError is a provider-reported failure of an API call.
type APIError struct {
	// Provider is the adapter name, e.g. "facebook".
	Provider string `json:"provider"`
	// StatusCode is the HTTP status of the response.
	StatusCode int `json:"status_code"`
	// ErrorCode is the provider error code in its textual form.
	ErrorCode string `json:"error_code,omitempty"`
	// ErrorMessage is the provider error message.
	ErrorMessage string `json:"error_message,omitempty"`
	// Data is the full decoded response payload.
	Data any `json:"data,omitempty"`
}

// NewAPIError creates an APIError.
func NewAPIError(provider string, status int, code, message string, data any) *APIError {
	return &APIError{Provider: provider, StatusCode: status, ErrorCode: code, ErrorMessage: message, Data: data}
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString(string(ErrCodeAPI))
	if e.Provider != "" {
		b.WriteString(": ")
		b.WriteString(e.Provider)
	}
	b.WriteString(": ")
	if e.ErrorMessage != "" {
		b.WriteString(e.ErrorMessage)
	} else {
		fmt.Fprintf(&b, "request failed with status %d", e.StatusCode)
	}
	if e.ErrorCode != "" {
		fmt.Fprintf(&b, " (code %s)", e.ErrorCode)
	}
	return b.String()
}

// Is matches the ErrAPI sentinel and other APIErrors.
func (e *APIError) Is(target error) bool {
	switch t := target.(type) {
	case *AppError:
		return t.Code == ErrCodeAPI
	case *APIError:
		return true
	}
	return false
}

// ErrCode implements the code accessor used by CodeOf.
func (e *APIError) ErrCode() ErrorCode { return ErrCodeAPI }

// TokenError is a token endpoint rejection of an authorization or refresh grant.
type TokenError struct {
	Provider    string `json:"provider"`
	StatusCode  int    `json:"status_code"`
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
	URI         string `json:"error_uri,omitempty"`
	Body        []byte `json:"-"`
}

// NewTokenError creates a TokenError.
func NewTokenError(provider string, status int, code, description, uri string) *TokenError {
	return &TokenError{Provider: provider, StatusCode: status, Code: code, Description: description, URI: uri}
}

func (e *TokenError) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", ErrCodeRequestToken, e.Provider, e.Code)
	if e.Description != "" {
		msg += ": " + e.Description
	}
	return msg
}

// Is matches the ErrRequestToken sentinel and other TokenErrors.
func (e *TokenError) Is(target error) bool {
	switch t := target.(type) {
	case *AppError:
		return t.Code == ErrCodeRequestToken
	case *TokenError:
		return true
	}
	return false
}

// ErrCode implements the code accessor used by CodeOf.
func (e *TokenError) ErrCode() ErrorCode { return ErrCodeRequestToken }

// AsAPIError extracts an APIError from err.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// AsTokenError extracts a TokenError from err.
func AsTokenError(err error) (*TokenError, bool) {
	var tokErr *TokenError
	if stderrors.As(err, &tokErr) {
		return tokErr, true
	}
	return nil, false
}

// IsAPIError reports whether err is a provider-reported API failure.
func IsAPIError(err error) bool { return stderrors.Is(err, ErrAPI) }

// IsTokenError reports whether err is a token endpoint rejection.
func IsTokenError(err error) bool { return stderrors.Is(err, ErrRequestToken) }
