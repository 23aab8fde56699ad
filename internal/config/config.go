package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"courtiq-landing/internal/notifier"
)

const (
	envPrefix = "COURTIQ"

	defaultHTTPHost           = "0.0.0.0"
	defaultHTTPPort           = 8080
	defaultSSHHost            = "0.0.0.0"
	defaultSSHPort            = 2222
	defaultHostKeyPath        = ".data/host_ed25519"
	defaultIdleTimeout        = 120 * time.Second
	defaultRateLimitPerMinute = 30
	defaultRateLimitBurst     = 10
	defaultDBPath             = ".data/courtiq.db"
	defaultLogLevel           = "info"
	maximumRateLimit          = 10000
	maximumBurst              = 1000
)

// Config captures startup settings for both the web and SSH surfaces.
type Config struct {
	HTTPHost string
	HTTPPort int

	SSHEnabled     bool
	SSHHost        string
	SSHPort        int
	SSHHostKeyPath string
	SSHIdleTimeout time.Duration

	RateLimitPerMinute int
	RateLimitBurst     int

	DBPath string

	FormURL        string
	FormEmailField string
	DeliveryMode   notifier.DeliveryMode
	NotifyTimeout  time.Duration

	PrettyHTML bool
	LogLevel   string
}

// HTTPAddress is the listen address of the web surface.
func (c Config) HTTPAddress() string {
	return net.JoinHostPort(c.HTTPHost, strconv.Itoa(c.HTTPPort))
}

// SSHAddress is the listen address of the terminal surface.
func (c Config) SSHAddress() string {
	return net.JoinHostPort(c.SSHHost, strconv.Itoa(c.SSHPort))
}

// NotifierOptions maps the outbound settings onto notifier options.
func (c Config) NotifierOptions() notifier.Options {
	return notifier.Options{
		Endpoint: c.FormURL,
		Field:    c.FormEmailField,
		Mode:     c.DeliveryMode,
		Timeout:  c.NotifyTimeout,
	}
}

// LoadFromEnv loads configuration from an optional .env file, an optional
// courtiq.yaml, and COURTIQ_* environment variables, in increasing priority.
func LoadFromEnv() (Config, error) {
	// A missing .env is the normal case in production.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	v.SetConfigName("courtiq")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, ok := os.LookupEnv("COURTIQ_CONFIG_DIR"); ok && strings.TrimSpace(dir) != "" {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return load(v)
}

func load(v *viper.Viper) (Config, error) {
	r := &reader{v: v}

	cfg := Config{
		HTTPHost:           r.readRequiredOrDefault("http_host", defaultHTTPHost),
		HTTPPort:           r.readInt("http_port", defaultHTTPPort, 1, 65535),
		SSHEnabled:         r.readBool("ssh_enabled", true),
		SSHHost:            r.readRequiredOrDefault("ssh_host", defaultSSHHost),
		SSHPort:            r.readInt("ssh_port", defaultSSHPort, 1, 65535),
		SSHHostKeyPath:     r.readPath("ssh_host_key_path", defaultHostKeyPath),
		SSHIdleTimeout:     r.readDuration("ssh_idle_timeout", defaultIdleTimeout, false),
		RateLimitPerMinute: r.readInt("rate_limit_per_minute", defaultRateLimitPerMinute, 1, maximumRateLimit),
		RateLimitBurst:     r.readInt("rate_limit_burst", defaultRateLimitBurst, 1, maximumBurst),
		DBPath:             r.readPath("db_path", defaultDBPath),
		FormURL:            r.readURL("form_url", notifier.DefaultEndpoint),
		FormEmailField:     r.readRequiredOrDefault("form_email_field", notifier.DefaultEmailField),
		NotifyTimeout:      r.readDuration("notify_timeout", 0, true),
		PrettyHTML:         r.readBool("pretty_html", false),
		LogLevel:           r.readRequiredOrDefault("log_level", defaultLogLevel),
	}

	mode, err := notifier.ParseDeliveryMode(r.readRequiredOrDefault("delivery_mode", string(notifier.FireAndForget)))
	if err != nil {
		r.fail("delivery_mode", err)
	}
	cfg.DeliveryMode = mode

	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		r.fail("log_level", err)
	}

	if cfg.SSHEnabled && cfg.SSHPort == cfg.HTTPPort && cfg.SSHHost == cfg.HTTPHost {
		r.errs = append(r.errs, fmt.Errorf("%s and %s must differ when both surfaces share a host", envName("ssh_port"), envName("http_port")))
	}

	if len(r.errs) > 0 {
		return Config{}, errors.Join(r.errs...)
	}
	return cfg, nil
}

// reader collects every validation failure so one startup attempt reports
// all misconfigured keys at once.
type reader struct {
	v    *viper.Viper
	errs []error
}

func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(key)
}

func (r *reader) fail(key string, err error) {
	r.errs = append(r.errs, fmt.Errorf("%s: %w", envName(key), err))
}

func (r *reader) raw(key string) (string, bool) {
	if !r.v.IsSet(key) {
		return "", false
	}
	return strings.TrimSpace(r.v.GetString(key)), true
}

func (r *reader) readRequiredOrDefault(key, fallback string) string {
	raw, ok := r.raw(key)
	if !ok {
		return fallback
	}
	if raw == "" {
		r.errs = append(r.errs, fmt.Errorf("%s must not be empty", envName(key)))
		return fallback
	}

	return raw
}

func (r *reader) readPath(key, fallback string) string {
	clean := filepath.Clean(r.readRequiredOrDefault(key, fallback))
	if clean == "." {
		r.errs = append(r.errs, fmt.Errorf("%s must not resolve to current directory", envName(key)))
	}
	return clean
}

func (r *reader) readURL(key, fallback string) string {
	raw := r.readRequiredOrDefault(key, fallback)
	parsed, err := url.Parse(raw)
	if err != nil {
		r.fail(key, err)
		return raw
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		r.errs = append(r.errs, fmt.Errorf("%s must be an absolute http(s) URL", envName(key)))
	}
	return raw
}

func (r *reader) readInt(key string, fallback, min, max int) int {
	raw, ok := r.raw(key)
	if !ok {
		return fallback
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s must be an integer: %w", envName(key), err))
		return fallback
	}
	if parsed < min || parsed > max {
		r.errs = append(r.errs, fmt.Errorf("%s must be between %d and %d", envName(key), min, max))
		return fallback
	}

	return parsed
}

func (r *reader) readDuration(key string, fallback time.Duration, allowZero bool) time.Duration {
	raw, ok := r.raw(key)
	if !ok {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s must be a valid duration: %w", envName(key), err))
		return fallback
	}
	switch {
	case parsed < 0:
		r.errs = append(r.errs, fmt.Errorf("%s must not be negative", envName(key)))
	case parsed == 0 && !allowZero:
		r.errs = append(r.errs, fmt.Errorf("%s must be greater than 0", envName(key)))
	}

	return parsed
}

func (r *reader) readBool(key string, fallback bool) bool {
	raw, ok := r.raw(key)
	if !ok {
		return fallback
	}

	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s must be a boolean: %w", envName(key), err))
		return fallback
	}
	return parsed
}
