package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/giftcert/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	for _, mode := range []string{AuthModeToken, AuthModeWrites} {
		cfg := AuthConfig{Mode: mode, Token: ""}
		err := cfg.Validate()
		if err == nil {
			t.Fatalf("%s mode with empty token should fail", mode)
		}
		if !strings.Contains(err.Error(), "token is empty") {
			t.Errorf("unexpected error: %v", err)
		}
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}
}

func TestPaginationConfig(t *testing.T) {
	for _, tc := range []struct {
		cfg PaginationConfig
		ok  bool
	}{
		{PaginationConfig{DefaultSize: 10, MaxSize: 100}, true},
		{PaginationConfig{DefaultSize: 100, MaxSize: 100}, true},
		{PaginationConfig{DefaultSize: 101, MaxSize: 100}, false},
		{PaginationConfig{DefaultSize: 0, MaxSize: 100}, false},
		{PaginationConfig{DefaultSize: 10, MaxSize: 0}, false},
	} {
		err := tc.cfg.Validate()
		if (err == nil) != tc.ok {
			t.Errorf("%+v: err = %v, want ok=%v", tc.cfg, err, tc.ok)
		}
	}
}

func TestMetricsConfig(t *testing.T) {
	if err := (&MetricsConfig{Enabled: true, Path: ""}).Validate(); err == nil {
		t.Error("enabled metrics without path should fail")
	}
	if err := (&MetricsConfig{Enabled: true, Path: "metrics"}).Validate(); err == nil {
		t.Error("relative metrics path should fail")
	}
	if err := (&MetricsConfig{Enabled: false}).Validate(); err != nil {
		t.Errorf("disabled metrics: %v", err)
	}
	if err := (&MetricsConfig{Enabled: true, Path: "/m", TotalsTTL: -time.Second}).Validate(); err == nil {
		t.Error("negative totals ttl should fail")
	}
}

func TestCORSConfig(t *testing.T) {
	if err := (&CORSConfig{AllowedOrigins: []string{"https://shop.example"}, MaxAge: 60}).Validate(); err != nil {
		t.Errorf("valid cors: %v", err)
	}
	if err := (&CORSConfig{AllowedOrigins: []string{""}}).Validate(); err == nil {
		t.Error("blank origin should fail")
	}
	if err := (&CORSConfig{MaxAge: -1}).Validate(); err == nil {
		t.Error("negative max age should fail")
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("GIFTCERT_TEST_TOKEN", "s3cret")
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
app:
  log_level: debug
  http:
    port: 9090
sqlite:
  path: /tmp/giftcert.db
auth:
  mode: writes
  token: ${GIFTCERT_TEST_TOKEN}
pagination:
  default_size: 20
  max_size: 50
metrics:
  enabled: false
events:
  stats_throttle: 500ms
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug || cfg.App.HTTP.Port != 9090 {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Auth.Token != "s3cret" || cfg.Auth.Mode != AuthModeWrites {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.Pagination.DefaultSize != 20 || cfg.Pagination.MaxSize != 50 {
		t.Errorf("pagination = %+v", cfg.Pagination)
	}
	if cfg.Events.StatsThrottle != 500*time.Millisecond {
		t.Errorf("throttle = %v", cfg.Events.StatsThrottle)
	}
	if cfg.Metrics.Enabled || cfg.Metrics.Path != "/metrics" {
		t.Errorf("metrics = %+v", cfg.Metrics)
	}
}
