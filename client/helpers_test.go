package client

import (
	"net/url"
	"time"
)

// fakeProvider is a configurable OAuth2 provider for tests.
type fakeProvider struct {
	DefaultOAuth2
	name     string
	envelope ErrorEnvelope
	delim    string
	required []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		name: "fake",
		envelope: ErrorEnvelope{
			Policy:      StatusRange,
			CodePath:    []string{"error", "code"},
			MessagePath: []string{"error", "message"},
		},
	}
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) APIURL(_ Session, method string) string {
	return "https://api.example.com/" + method
}

func (p *fakeProvider) CheckResponse(_ Session, res *Result) error {
	return p.envelope.Check(p.name, res)
}

func (p *fakeProvider) AuthorizeURL(_ Session, query url.Values) string {
	return "https://auth.example.com/authorize?" + query.Encode()
}

func (p *fakeProvider) TokenURL(Session) string { return "https://auth.example.com/token" }

func (p *fakeProvider) ScopeDelimiter() string {
	if p.delim != "" {
		return p.delim
	}
	return p.DefaultOAuth2.ScopeDelimiter()
}

func (p *fakeProvider) RequiredOptions() []string { return p.required }

// fixedClock returns a clock frozen at t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func baseConfig() Config {
	return Config{ClientID: "id-1", ClientSecret: "secret-1"}
}
