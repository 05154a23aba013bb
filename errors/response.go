package errors

// ErrorResponse is the JSON structure used when an error is rendered for a user.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains the rendered error details.
type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// ToResponse renders any error for JSON output. Foreign errors are reported
// without a code.
func ToResponse(err error) ErrorResponse {
	if apiErr, ok := AsAPIError(err); ok {
		details := map[string]any{"provider": apiErr.Provider, "status_code": apiErr.StatusCode}
		if apiErr.ErrorCode != "" {
			details["error_code"] = apiErr.ErrorCode
		}
		return ErrorResponse{Error: ErrorBody{Code: ErrCodeAPI, Message: apiErr.ErrorMessage, Details: details}}
	}
	if tokErr, ok := AsTokenError(err); ok {
		details := map[string]any{"provider": tokErr.Provider, "error": tokErr.Code}
		if tokErr.URI != "" {
			details["error_uri"] = tokErr.URI
		}
		return ErrorResponse{Error: ErrorBody{Code: ErrCodeRequestToken, Message: tokErr.Description, Details: details}}
	}
	if appErr, ok := AsAppError(err); ok {
		return ErrorResponse{Error: ErrorBody{
			Code:      appErr.Code,
			Message:   appErr.Message,
			Retryable: appErr.Retryable,
			Details:   appErr.Details,
		}}
	}
	return ErrorResponse{Error: ErrorBody{Message: err.Error()}}
}
