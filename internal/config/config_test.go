package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"courtiq-landing/internal/notifier"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() unexpected error: %v", err)
	}

	if cfg.HTTPAddress() != "0.0.0.0:8080" {
		t.Fatalf("HTTPAddress() = %q", cfg.HTTPAddress())
	}
	if !cfg.SSHEnabled || cfg.SSHAddress() != "0.0.0.0:2222" {
		t.Fatalf("unexpected SSH defaults: enabled=%t addr=%q", cfg.SSHEnabled, cfg.SSHAddress())
	}
	if cfg.SSHIdleTimeout != 120*time.Second {
		t.Fatalf("SSHIdleTimeout = %s", cfg.SSHIdleTimeout)
	}
	if cfg.FormURL != notifier.DefaultEndpoint || cfg.FormEmailField != notifier.DefaultEmailField {
		t.Fatalf("unexpected form defaults: %q %q", cfg.FormURL, cfg.FormEmailField)
	}
	if cfg.DeliveryMode != notifier.FireAndForget {
		t.Fatalf("DeliveryMode = %q, want fire-and-forget", cfg.DeliveryMode)
	}
	if cfg.NotifyTimeout != 0 {
		t.Fatalf("NotifyTimeout = %s, want none", cfg.NotifyTimeout)
	}
	if cfg.DBPath != filepath.Clean(".data/courtiq.db") {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
}

func TestLoadFromEnvInvalidPort(t *testing.T) {
	t.Setenv("COURTIQ_HTTP_PORT", "not-a-number")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("LoadFromEnv() expected error for invalid port")
	}
}

func TestLoadFromEnvPortOutOfRange(t *testing.T) {
	t.Setenv("COURTIQ_SSH_PORT", "70000")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("LoadFromEnv() expected error for out-of-range port")
	}
}

func TestLoadFromEnvWhitespaceHost(t *testing.T) {
	t.Setenv("COURTIQ_HTTP_HOST", "   ")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("LoadFromEnv() expected error for whitespace host")
	}
}

func TestLoadFromEnvInvalidHostKeyPath(t *testing.T) {
	t.Setenv("COURTIQ_SSH_HOST_KEY_PATH", ".")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("LoadFromEnv() expected error for host key path resolving to current directory")
	}
}

func TestLoadFromEnvInvalidIdleTimeout(t *testing.T) {
	t.Setenv("COURTIQ_SSH_IDLE_TIMEOUT", "not-duration")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("LoadFromEnv() expected error for invalid duration")
	}
}

func TestLoadFromEnvZeroIdleTimeoutRejected(t *testing.T) {
	t.Setenv("COURTIQ_SSH_IDLE_TIMEOUT", "0s")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("LoadFromEnv() expected error for zero idle timeout")
	}
}

func TestLoadFromEnvNotifyTimeout(t *testing.T) {
	t.Setenv("COURTIQ_NOTIFY_TIMEOUT", "5s")
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() unexpected error: %v", err)
	}
	if cfg.NotifyTimeout != 5*time.Second || cfg.NotifierOptions().Timeout != 5*time.Second {
		t.Fatalf("NotifyTimeout = %s", cfg.NotifyTimeout)
	}

	t.Setenv("COURTIQ_NOTIFY_TIMEOUT", "-1s")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("LoadFromEnv() expected error for negative notify timeout")
	}
}

func TestLoadFromEnvDeliveryMode(t *testing.T) {
	t.Setenv("COURTIQ_DELIVERY_MODE", "verified")
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() unexpected error: %v", err)
	}
	if cfg.DeliveryMode != notifier.Verified {
		t.Fatalf("DeliveryMode = %q, want verified", cfg.DeliveryMode)
	}

	t.Setenv("COURTIQ_DELIVERY_MODE", "carrier-pigeon")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("LoadFromEnv() expected error for unknown delivery mode")
	}
}

func TestLoadFromEnvFormURLMustBeAbsolute(t *testing.T) {
	t.Setenv("COURTIQ_FORM_URL", "/relative/formResponse")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("LoadFromEnv() expected error for relative form URL")
	}
}

func TestLoadFromEnvSamePortsRejected(t *testing.T) {
	t.Setenv("COURTIQ_HTTP_PORT", "2222")
	t.Setenv("COURTIQ_SSH_PORT", "2222")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("LoadFromEnv() expected error when HTTP and SSH share host and port")
	}

	t.Setenv("COURTIQ_SSH_ENABLED", "false")
	if _, err := LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv() unexpected error with SSH disabled: %v", err)
	}
}

func TestLoadFromEnvInvalidLogLevel(t *testing.T) {
	t.Setenv("COURTIQ_LOG_LEVEL", "chatty")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("LoadFromEnv() expected error for unknown log level")
	}
}

func TestLoadFromEnvAggregatesErrors(t *testing.T) {
	t.Setenv("COURTIQ_HTTP_PORT", "zero")
	t.Setenv("COURTIQ_RATE_LIMIT_BURST", "0")
	t.Setenv("COURTIQ_PRETTY_HTML", "definitely")

	_, err := LoadFromEnv()
	if err == nil {
		t.Fatal("LoadFromEnv() expected aggregated error")
	}

	msg := err.Error()
	for _, key := range []string{"COURTIQ_HTTP_PORT", "COURTIQ_RATE_LIMIT_BURST", "COURTIQ_PRETTY_HTML"} {
		if !strings.Contains(msg, key) {
			t.Fatalf("expected aggregated error to include %s; got %q", key, msg)
		}
	}
}

func TestLoadFromEnvReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	body := "http_port: 9090\nrate_limit_per_minute: 12\npretty_html: true\n"
	if err := os.WriteFile(filepath.Join(dir, "courtiq.yaml"), []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("COURTIQ_CONFIG_DIR", dir)
	t.Setenv("COURTIQ_RATE_LIMIT_PER_MINUTE", "40")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() unexpected error: %v", err)
	}
	if cfg.HTTPPort != 9090 || !cfg.PrettyHTML {
		t.Fatalf("config file values not applied: %+v", cfg)
	}
	if cfg.RateLimitPerMinute != 40 {
		t.Fatalf("environment should override file, got %d", cfg.RateLimitPerMinute)
	}
}
