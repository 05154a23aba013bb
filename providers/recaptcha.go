package providers

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/kbukum/apihelper/client"
	"github.com/kbukum/apihelper/errors"
)

// User-token failures. Verify reports them as an unsuccessful result; any
// other error code is a misconfiguration and fails the call.
var recaptchaUserErrors = []string{
	"missing-input-response",
	"invalid-input-response",
	"timeout-or-duplicate",
}

// ReCaptcha is the reCAPTCHA siteverify adapter. client_id is the site key
// and client_secret the secret key.
type ReCaptcha struct{}

func (ReCaptcha) Name() string { return "recaptcha" }

func (ReCaptcha) RequiredOptions() []string { return []string{"client_secret"} }

func (ReCaptcha) APIURL(_ client.Session, method string) string {
	return "https://www.google.com/recaptcha/api/" + method
}

func (ReCaptcha) PrepareRequest(client.Session, string, url.Values) {}

// CheckResponse fails on error codes that are not user-token failures.
func (r ReCaptcha) CheckResponse(_ client.Session, res *client.Result) error {
	if success, _ := client.Lookup(res.Data, "success"); success == true {
		return nil
	}
	for _, code := range errorCodes(res.Data) {
		if !slices.Contains(recaptchaUserErrors, code) {
			return errors.NewAPIError(r.Name(), res.StatusCode, code, "siteverify rejected the request", res.Data)
		}
	}
	return nil
}

func errorCodes(data any) []string {
	raw, _ := client.Lookup(data, "error-codes")
	items, _ := raw.([]any)
	codes := make([]string, 0, len(items))
	for _, item := range items {
		codes = append(codes, client.String(item))
	}
	return codes
}

// VerifyResult is a siteverify answer.
type VerifyResult struct {
	Success     bool      `json:"success"`
	ErrorCodes  []string  `json:"error-codes,omitempty"`
	Hostname    string    `json:"hostname,omitempty"`
	ChallengeTS time.Time `json:"challenge_ts,omitzero"`
	// Action and Score are only sent for v3 keys.
	Action string  `json:"action,omitempty"`
	Score  float64 `json:"score,omitempty"`
}

// ReCaptchaClient verifies user responses.
type ReCaptchaClient struct {
	*client.Client

	mu         sync.Mutex
	lastErrors []string
}

// NewReCaptcha creates a verifying client.
func NewReCaptcha(cfg client.Config, opts ...client.Option) (*ReCaptchaClient, error) {
	c, err := client.New(ReCaptcha{}, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &ReCaptchaClient{Client: c}, nil
}

// Verify checks a user response token. remoteIP is optional.
func (r *ReCaptchaClient) Verify(ctx context.Context, response, remoteIP string) (VerifyResult, error) {
	params := url.Values{
		"secret":   {r.ClientSecret()},
		"response": {response},
	}
	if remoteIP != "" {
		params.Set("remoteip", remoteIP)
	}

	var res VerifyResult
	if err := r.RequestJSON(ctx, "siteverify", params, http.MethodPost, &res); err != nil {
		return VerifyResult{}, err
	}

	r.mu.Lock()
	r.lastErrors = slices.Clone(res.ErrorCodes)
	r.mu.Unlock()
	return res, nil
}

// LastErrors returns the error codes of the last Verify call.
func (r *ReCaptchaClient) LastErrors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.lastErrors)
}
