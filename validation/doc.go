// Package validation checks configuration values and reports failures as
// errors.InvalidArgument with per-field details.
//
// Struct tags are evaluated by go-playground/validator:
//
//	type Config struct {
//	    RedirectURI string `json:"redirect_uri" validate:"omitempty,url"`
//	}
//	err := validation.Validate(cfg)
//
// The fluent Validator covers checks that depend on runtime data, such as
// provider-declared required options.
package validation
