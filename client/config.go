package client

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/apihelper/errors"
	"github.com/kbukum/apihelper/validation"
)

// Config holds the construction settings of a client. OAuth2-only fields are
// ignored by plain clients.
type Config struct {
	ClientID     string            `json:"client_id" mapstructure:"client_id" yaml:"client_id"`
	ClientSecret string            `json:"client_secret" mapstructure:"client_secret" yaml:"client_secret"`
	Version      string            `json:"version" mapstructure:"version" yaml:"version"`
	Locale       string            `json:"locale" mapstructure:"locale" yaml:"locale"`
	Options      map[string]string `json:"options" mapstructure:"options" yaml:"options"`
	Timeout      time.Duration     `json:"timeout" mapstructure:"timeout" yaml:"timeout" validate:"gte=0"`
	QPS          float64           `json:"qps" mapstructure:"qps" yaml:"qps" validate:"gte=0"`
	Proxy        string            `json:"proxy" mapstructure:"proxy" yaml:"proxy" validate:"omitempty,url"`

	RedirectURI  string   `json:"redirect_uri" mapstructure:"redirect_uri" yaml:"redirect_uri" validate:"omitempty,url"`
	Scope        []string `json:"scope" mapstructure:"scope" yaml:"scope"`
	Display      string   `json:"display" mapstructure:"display" yaml:"display"`
	AccessToken  string   `json:"access_token" mapstructure:"access_token" yaml:"access_token"`
	RefreshToken string   `json:"refresh_token" mapstructure:"refresh_token" yaml:"refresh_token"`
}

// ConfigFromMap builds a Config from a generic map, as produced by decoded
// JSON or YAML. Timeouts given as numbers are seconds; strings may also use
// time.ParseDuration syntax. A string scope is kept whole and split by the
// provider delimiter at construction. Unknown keys are ignored.
func ConfigFromMap(m map[string]any) (Config, error) {
	var cfg Config
	var err error

	str := func(key string) string {
		if err != nil {
			return ""
		}
		v, ok := m[key]
		if !ok || v == nil {
			return ""
		}
		s, convErr := scalarString(v)
		if convErr != nil {
			err = errors.InvalidArgument("option %q: %v", key, convErr)
		}
		return s
	}

	cfg.ClientID = str("client_id")
	cfg.ClientSecret = str("client_secret")
	cfg.Version = str("version")
	cfg.Locale = str("locale")
	cfg.Proxy = str("proxy")
	cfg.RedirectURI = str("redirect_uri")
	cfg.Display = str("display")
	cfg.AccessToken = str("access_token")
	cfg.RefreshToken = str("refresh_token")
	if err != nil {
		return Config{}, err
	}

	if v, ok := m["timeout"]; ok && v != nil {
		if cfg.Timeout, err = parseTimeout(v); err != nil {
			return Config{}, errors.InvalidArgument("option \"timeout\": %v", err)
		}
	}
	if v, ok := m["qps"]; ok && v != nil {
		s, convErr := scalarString(v)
		if convErr == nil {
			cfg.QPS, convErr = strconv.ParseFloat(s, 64)
		}
		if convErr != nil {
			return Config{}, errors.InvalidArgument("option \"qps\": %v", convErr)
		}
	}

	switch scope := m["scope"].(type) {
	case nil:
	case string:
		if scope != "" {
			cfg.Scope = []string{scope}
		}
	case []string:
		cfg.Scope = append([]string(nil), scope...)
	case []any:
		for _, item := range scope {
			s, convErr := scalarString(item)
			if convErr != nil {
				return Config{}, errors.InvalidArgument("option \"scope\": %v", convErr)
			}
			cfg.Scope = append(cfg.Scope, s)
		}
	default:
		return Config{}, errors.InvalidArgument("option \"scope\": unsupported type %T", scope)
	}

	switch opts := m["options"].(type) {
	case nil:
	case map[string]string:
		cfg.Options = maps.Clone(opts)
	case map[string]any:
		cfg.Options = make(map[string]string, len(opts))
		for k, v := range opts {
			s, convErr := scalarString(v)
			if convErr != nil {
				return Config{}, errors.InvalidArgument("option \"options.%s\": %v", k, convErr)
			}
			cfg.Options[k] = s
		}
	default:
		return Config{}, errors.InvalidArgument("option \"options\": unsupported type %T", opts)
	}

	return cfg, nil
}

func (c Config) clone() Config {
	c.Options = maps.Clone(c.Options)
	c.Scope = append([]string(nil), c.Scope...)
	return c
}

// has reports whether a RequiredOptioner key is set.
func (c Config) has(key string) bool {
	if name, ok := strings.CutPrefix(key, "options."); ok {
		return strings.TrimSpace(c.Options[name]) != ""
	}
	var v string
	switch key {
	case "client_id":
		v = c.ClientID
	case "client_secret":
		v = c.ClientSecret
	case "redirect_uri":
		v = c.RedirectURI
	case "version":
		v = c.Version
	case "locale":
		v = c.Locale
	}
	return strings.TrimSpace(v) != ""
}

// validate checks struct tags and the required keys, in that order.
func (c Config) validate(required []string) error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	for _, key := range required {
		if !c.has(key) {
			return errors.MissingOption(key)
		}
	}
	return nil
}

// splitScope splits each entry by delim and drops empties.
func splitScope(scope []string, delim string) []string {
	var out []string
	for _, s := range scope {
		parts := []string{s}
		if delim != "" {
			parts = strings.Split(s, delim)
		}
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func scalarString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case fmt.Stringer:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported type %T", v)
	}
}

func parseTimeout(v any) (time.Duration, error) {
	if d, ok := v.(time.Duration); ok {
		return d, nil
	}
	s, err := scalarString(v)
	if err != nil {
		return 0, err
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(s)
}
