// Package errors defines the error taxonomy shared by every apihelper client.
//
// All failures surfaced by the request pipeline carry a machine-readable
// ErrorCode and can be matched with the standard library's errors.Is against
// the exported sentinels (ErrInvalidArgument, ErrServiceUnavailable, ...).
// Provider-reported failures use the dedicated APIError and TokenError types.
package errors
