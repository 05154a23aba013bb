package client

import "github.com/kbukum/apihelper/errors"

// ErrorPolicy decides when a decoded response is inspected for an error.
type ErrorPolicy int

const (
	// StatusRange treats every 4xx response as an error.
	StatusRange ErrorPolicy = iota
	// PayloadField treats any response carrying Root as an error, including 200.
	PayloadField
)

func (p ErrorPolicy) String() string {
	switch p {
	case StatusRange:
		return "status"
	case PayloadField:
		return "payload"
	default:
		return "unknown"
	}
}

// ErrorEnvelope locates a provider error inside a decoded payload.
type ErrorEnvelope struct {
	Policy ErrorPolicy
	// Root is the top-level field whose presence marks an error under PayloadField.
	Root string
	// CodePath and MessagePath point at the error code and message. Either may be empty.
	CodePath    []string
	MessagePath []string
}

// Check returns an APIError when res matches the envelope.
func (e ErrorEnvelope) Check(provider string, res *Result) error {
	switch e.Policy {
	case StatusRange:
		if res.StatusCode < 400 || res.StatusCode >= 500 {
			return nil
		}
	case PayloadField:
		if v, ok := Lookup(res.Data, e.Root); !ok || v == nil {
			return nil
		}
	default:
		return nil
	}

	code, message, _ := e.Fields(res.Data)
	return errors.NewAPIError(provider, res.StatusCode, code, message, res.Data)
}

// Fields reads the error code and message from data. ok is false when
// neither is present.
func (e ErrorEnvelope) Fields(data any) (code, message string, ok bool) {
	if len(e.CodePath) > 0 {
		if v, found := Lookup(data, e.CodePath...); found && v != nil {
			code = String(v)
		}
	}
	if len(e.MessagePath) > 0 {
		if v, found := Lookup(data, e.MessagePath...); found && v != nil {
			message = String(v)
		}
	}
	return code, message, code != "" || message != ""
}
