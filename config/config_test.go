package config

import (
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/kbukum/apihelper/client"
	"github.com/kbukum/apihelper/store"
)

func TestAppConfigApplyDefaults(t *testing.T) {
	t.Run("empty config gets name and development", func(t *testing.T) {
		var cfg AppConfig
		cfg.ApplyDefaults()
		if cfg.Name != DefaultName {
			t.Errorf("expected name %q, got %q", DefaultName, cfg.Name)
		}
		if cfg.Environment != "development" || !cfg.Debug {
			t.Errorf("expected development with debug, got %q debug=%v", cfg.Environment, cfg.Debug)
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("expected logging defaults, got level %q", cfg.Logging.Level)
		}
		if cfg.HTTP.Timeout != 30*time.Second {
			t.Errorf("expected http timeout 30s, got %v", cfg.HTTP.Timeout)
		}
		if cfg.Retry.MaxAttempts != 3 {
			t.Errorf("expected default retry attempts, got %d", cfg.Retry.MaxAttempts)
		}
		if cfg.Store.Backend != store.KindFile {
			t.Errorf("expected file store, got %q", cfg.Store.Backend)
		}
		if cfg.Observability.Environment != "development" {
			t.Errorf("expected observability environment to follow, got %q", cfg.Observability.Environment)
		}
	})

	t.Run("production keeps debug false", func(t *testing.T) {
		cfg := AppConfig{Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})
}

func TestAppConfigValidate(t *testing.T) {
	valid := func() AppConfig {
		cfg := AppConfig{Store: store.Config{Backend: store.KindMemory}}
		cfg.ApplyDefaults()
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*AppConfig)
		errMsg string
	}{
		{"valid", func(*AppConfig) {}, ""},
		{"invalid environment", func(c *AppConfig) { c.Environment = "qa" }, "config.environment must be one of"},
		{"invalid log level", func(c *AppConfig) { c.Logging.Level = "loud" }, "config.logging"},
		{"invalid store", func(c *AppConfig) { c.Store.Backend = "s3" }, "store.backend"},
		{"invalid provider proxy", func(c *AppConfig) {
			c.Providers = map[string]client.Config{"vk": {Proxy: "not a url"}}
		}, "config.providers.vk"},
		{"negative qps", func(c *AppConfig) {
			c.Providers = map[string]client.Config{"ok": {QPS: -1}}
		}, "config.providers.ok"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.errMsg == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.errMsg) {
				t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
			}
		})
	}
}

func TestProviderNames(t *testing.T) {
	cfg := AppConfig{Providers: map[string]client.Config{"vk": {}, "google": {}, "ok": {}}}
	if got := cfg.ProviderNames(); !slices.Equal(got, []string{"google", "ok", "vk"}) {
		t.Errorf("expected sorted names, got %v", got)
	}
	if _, ok := cfg.Provider("yandex"); ok {
		t.Error("expected yandex to be missing")
	}
}

const sampleYAML = `
name: apihelper-test
environment: staging
http:
  timeout: 10s
providers:
  vk:
    client_id: "123"
    client_secret: secret
    scope: [friends, photos]
    qps: 3
    options:
      lang: en
  yandex:
    client_id: ya
    timeout: 5s
store:
  backend: redis
  redis:
    addr: localhost:6380
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apihelper.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadWithYAML(t *testing.T) {
	path := writeConfig(t, sampleYAML)

	var cfg AppConfig
	if err := Load(DefaultName, &cfg, WithConfigFile(path), WithFileSystem(&RealFileSystem{})); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Name != "apihelper-test" || cfg.Environment != "staging" {
		t.Errorf("unexpected base fields: %q %q", cfg.Name, cfg.Environment)
	}
	if cfg.HTTP.Timeout != 10*time.Second {
		t.Errorf("expected http timeout 10s, got %v", cfg.HTTP.Timeout)
	}
	vk, ok := cfg.Provider("vk")
	if !ok {
		t.Fatal("expected vk provider")
	}
	if vk.ClientID != "123" || vk.QPS != 3 || vk.Options["lang"] != "en" {
		t.Errorf("unexpected vk config: %+v", vk)
	}
	if !slices.Equal(vk.Scope, []string{"friends", "photos"}) {
		t.Errorf("expected scope [friends photos], got %v", vk.Scope)
	}
	if ya := cfg.Providers["yandex"]; ya.Timeout != 5*time.Second {
		t.Errorf("expected yandex timeout 5s, got %v", ya.Timeout)
	}
	if cfg.Store.Backend != store.KindRedis || cfg.Store.Redis.Addr != "localhost:6380" {
		t.Errorf("unexpected store config: %+v", cfg.Store)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	t.Setenv("APIHELPER_ENVIRONMENT", "production")
	t.Setenv("APIHELPER_PROVIDERS_VK_CLIENT_SECRET", "from-env")
	t.Setenv("APIHELPER_PROVIDERS_OK_OPTIONS_APPLICATION_KEY", "app-key")
	t.Setenv("APIHELPER_STORE_REDIS_ADDR", "redis:6379")
	t.Setenv("UNPREFIXED_NAME", "ignored")

	var cfg AppConfig
	if err := Load(DefaultName, &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Environment != "production" {
		t.Errorf("expected environment from env, got %q", cfg.Environment)
	}
	if vk := cfg.Providers["vk"]; vk.ClientSecret != "from-env" || vk.ClientID != "123" {
		t.Errorf("expected env secret merged into file config, got %+v", vk)
	}
	if ok := cfg.Providers["ok"]; ok.Options["application_key"] != "app-key" {
		t.Errorf("expected ok application_key from env, got %+v", ok.Options)
	}
	if cfg.Store.Redis.Addr != "redis:6379" {
		t.Errorf("expected redis addr from env, got %q", cfg.Store.Redis.Addr)
	}
}

func TestLoadWithViperOverrides(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	v := viper.New()
	v.Set("store.backend", "memory")

	var cfg AppConfig
	if err := Load(DefaultName, &cfg, WithConfigFile(path), WithViper(v)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("expected viper override, got %q", cfg.Store.Backend)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	var cfg AppConfig
	err := Load(DefaultName, &cfg, WithConfigFile("/nonexistent/path.yml"))
	if err == nil {
		t.Fatal("expected error for a missing explicit config file")
	}
}

func TestLoadNoFiles(t *testing.T) {
	var cfg AppConfig
	if err := Load(DefaultName, &cfg, WithFileSystem(&mockFS{})); err != nil {
		t.Fatalf("expected Load to succeed without files, got %v", err)
	}
}

func TestLoadApp(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	cfg, err := LoadApp(WithConfigFile(path))
	if err != nil {
		t.Fatalf("LoadApp: %v", err)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("expected defaults applied, got format %q", cfg.Logging.Format)
	}

	bad := writeConfig(t, "environment: nowhere\n")
	if _, err := LoadApp(WithConfigFile(bad)); err == nil {
		t.Error("expected validation error")
	}
}

func TestResolverWithMockFS(t *testing.T) {
	fs := &mockFS{
		files: map[string]bool{
			"/home/u/.config/apihelper/config.yml": true,
			".env":                                 true,
		},
		configDir: "/home/u/.config",
	}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles(DefaultName, LoaderConfig{})
	if files.ConfigFile != "/home/u/.config/apihelper/config.yml" {
		t.Errorf("expected user config file, got %q", files.ConfigFile)
	}
	if files.EnvFile != ".env" {
		t.Errorf("expected .env, got %q", files.EnvFile)
	}

	fs.files["./apihelper.yml"] = true
	if got := resolver.ResolveFiles(DefaultName, LoaderConfig{}).ConfigFile; got != "./apihelper.yml" {
		t.Errorf("expected working directory file to win, got %q", got)
	}
}

func TestLoadCallsLoadEnv(t *testing.T) {
	fs := &mockFS{files: map[string]bool{".env.apihelper": true}}
	var cfg AppConfig
	if err := Load(DefaultName, &cfg, WithFileSystem(fs)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !slices.Equal(fs.loaded, []string{".env.apihelper"}) {
		t.Errorf("expected .env.apihelper to be loaded, got %v", fs.loaded)
	}
}

type mockFS struct {
	files     map[string]bool
	configDir string
	loaded    []string
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error {
	m.loaded = append(m.loaded, path)
	return nil
}
func (m *mockFS) UserConfigDir() (string, error) { return m.configDir, nil }

func TestGenerateEnvKeyVariants(t *testing.T) {
	got := generateEnvKeyVariants("PROVIDERS_VK_CLIENT_ID")
	for _, want := range []string{"providers_vk_client_id", "providers.vk.client.id", "providers.vk.client_id"} {
		if !slices.Contains(got, want) {
			t.Errorf("expected variant %q in %v", want, got)
		}
	}
	if got := generateEnvKeyVariants("NAME"); !slices.Equal(got, []string{"name"}) {
		t.Errorf("expected [name], got %v", got)
	}
}

func TestKeyPatterns(t *testing.T) {
	patterns := keyPatterns(reflect.TypeOf(&AppConfig{}), "")
	for _, want := range []string{"name", "logging.level", "http.http2.ping_timeout", "providers.*.client_id", "providers.*.options.*", "store.redis.addr"} {
		if !slices.Contains(patterns, want) {
			t.Errorf("expected pattern %q", want)
		}
	}
	if slices.Contains(patterns, "logging.writer") {
		t.Error("expected mapstructure:\"-\" fields to be skipped")
	}

	if !matchPattern("providers.*.client_id", "providers.vk.client_id") {
		t.Error("expected wildcard match")
	}
	if matchPattern("providers.*.client_id", "providers.vk_client_id") {
		t.Error("expected segment count mismatch")
	}
}
