package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/lukman83/autovit-sync/internal/apperr"
	"github.com/lukman83/autovit-sync/internal/autovit"
	"github.com/lukman83/autovit-sync/internal/stealth"
	"github.com/lukman83/autovit-sync/internal/store"
	"github.com/titanous/json5"
)

// DefaultFile is looked up in the working directory when no --config flag
// is given.
const DefaultFile = "autovit.json5"

// Config holds all application configuration.
//
// Boolean keys in a config file can only switch a default on. Use the
// environment or flags to switch RespectRobots off.
type Config struct {
	// HTTP server
	HTTPPort       string   `json:"port"`
	AllowedOrigins []string `json:"allowed_origins"`
	MCPAPIKey      string   `json:"mcp_api_key"`

	// Store
	DatabaseURL    string `json:"database_url"`
	ConflictPolicy string `json:"conflict_policy"` // "overwrite", "respect-locks"

	// Auth
	SupabaseURL    string `json:"supabase_url"`
	ServiceRoleKey string `json:"service_role_key"`
	JWTSecret      string `json:"jwt_secret"`

	// Fetching
	Headless            bool    `json:"headless"`
	BrowserBin          string  `json:"browser_bin"`
	FetchTimeoutSeconds int     `json:"fetch_timeout_seconds"`
	FetchRetries        int     `json:"fetch_retries"`
	DelayProfile        string  `json:"delay_profile"` // "none", "cautious", "normal", "aggressive"
	RespectRobots       bool    `json:"respect_robots"`
	ProxyURL            string  `json:"proxy_url"` // comma-separated proxy URLs
	RatePerSecond       float64 `json:"rate_per_second"`
	RateBurst           int     `json:"rate_burst"`
	MaxConcurrent       int     `json:"max_concurrent"`

	// Observability
	LogLevel     string `json:"log_level"`
	LogFormat    string `json:"log_format"` // "console", "json"
	OTLPEndpoint string `json:"otlp_endpoint"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTPPort:            "8080",
		ConflictPolicy:      string(store.PolicyOverwrite),
		FetchTimeoutSeconds: 30,
		DelayProfile:        string(stealth.ProfileNone),
		RespectRobots:       true,
		RatePerSecond:       2.0,
		RateBurst:           3,
		MaxConcurrent:       4,
		LogLevel:            "info",
		LogFormat:           "console",
	}
}

// FetchTimeout is the per-page budget of a fetch strategy.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// Strategies lists fetch strategies in the order they are tried.
func (c *Config) Strategies() []string {
	if c.Headless {
		return []string{autovit.StrategyStatic, autovit.StrategyHeadless}
	}
	return []string{autovit.StrategyStatic}
}

// LoadFile merges path and its ".local" sibling (autovit.json5 then
// autovit.local.json5) into c. Missing files are skipped. It reports whether
// any file was read.
func (c *Config) LoadFile(path string) (bool, error) {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(filepath.Base(path), ext)
	local := filepath.Join(dir, base+".local"+ext)

	found := false
	for _, p := range []string{path, local} {
		data, err := os.ReadFile(p)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return found, fmt.Errorf("read config %s: %w", p, err)
		}
		var fc Config
		if err := json5.Unmarshal(data, &fc); err != nil {
			return found, apperr.Wrap(apperr.KindConfiguration, fmt.Sprintf("invalid config file %s", p), err)
		}
		if err := mergo.Merge(c, fc, mergo.WithOverride); err != nil {
			return found, fmt.Errorf("merge config %s: %w", p, err)
		}
		found = true
	}
	return found, nil
}

// LoadFromEnv loads .env file (if present) then overrides config from
// environment variables.
func (c *Config) LoadFromEnv() error {
	// Auto-load .env file; silently ignored if missing
	_ = godotenv.Load()

	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	str(&c.HTTPPort, "PORT")
	str(&c.DatabaseURL, "AUTOVIT_DATABASE_URL", "DATABASE_URL")
	str(&c.ConflictPolicy, "AUTOVIT_CONFLICT_POLICY")
	str(&c.SupabaseURL, "SUPABASE_URL")
	str(&c.ServiceRoleKey, "SERVICE_ROLE_KEY", "SUPABASE_SERVICE_ROLE_KEY")
	str(&c.JWTSecret, "SUPABASE_JWT_SECRET")
	str(&c.MCPAPIKey, "AUTOVIT_MCP_API_KEY")
	str(&c.BrowserBin, "ROD_BROWSER_BIN")
	str(&c.DelayProfile, "AUTOVIT_DELAY_PROFILE")
	str(&c.ProxyURL, "AUTOVIT_PROXY_URL")
	str(&c.LogLevel, "AUTOVIT_LOG_LEVEL")
	str(&c.LogFormat, "AUTOVIT_LOG_FORMAT")
	str(&c.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")

	var origins string
	str(&origins, "ALLOWED_ORIGINS", "ALLOWED_ORIGIN")
	if origins != "" {
		c.AllowedOrigins = splitList(origins)
	}

	if v := os.Getenv("AUTOVIT_FETCH_TIMEOUT"); v != "" {
		secs, err := parseSeconds(v)
		if err != nil {
			return envError("AUTOVIT_FETCH_TIMEOUT", v, err)
		}
		c.FetchTimeoutSeconds = secs
	}
	ints := []struct {
		key string
		dst *int
	}{
		{"AUTOVIT_FETCH_RETRIES", &c.FetchRetries},
		{"AUTOVIT_RATE_BURST", &c.RateBurst},
		{"AUTOVIT_MAX_CONCURRENT", &c.MaxConcurrent},
	}
	for _, e := range ints {
		if v := os.Getenv(e.key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return envError(e.key, v, err)
			}
			*e.dst = n
		}
	}
	if v := os.Getenv("AUTOVIT_RATE_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return envError("AUTOVIT_RATE_PER_SECOND", v, err)
		}
		c.RatePerSecond = f
	}
	if v := os.Getenv("AUTOVIT_HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("AUTOVIT_HEADLESS", v, err)
		}
		c.Headless = b
	}
	if v := os.Getenv("AUTOVIT_RESPECT_ROBOTS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("AUTOVIT_RESPECT_ROBOTS", v, err)
		}
		c.RespectRobots = b
	}
	return nil
}

// Validate reports the first invalid value as a configuration error.
func (c *Config) Validate() error {
	if _, err := store.ParseConflictPolicy(c.ConflictPolicy); err != nil {
		return apperr.Wrap(apperr.KindConfiguration, "invalid conflict policy", err)
	}
	if _, err := stealth.ParseDelayProfile(c.DelayProfile); err != nil {
		return apperr.Wrap(apperr.KindConfiguration, "invalid delay profile", err)
	}
	switch {
	case c.RatePerSecond <= 0:
		return invalid("rate_per_second must be positive, got %g", c.RatePerSecond)
	case c.RateBurst < 1:
		return invalid("rate_burst must be at least 1, got %d", c.RateBurst)
	case c.MaxConcurrent < 1:
		return invalid("max_concurrent must be at least 1, got %d", c.MaxConcurrent)
	case c.FetchTimeoutSeconds <= 0:
		return invalid("fetch timeout must be positive, got %ds", c.FetchTimeoutSeconds)
	case c.FetchRetries < 0:
		return invalid("fetch_retries must not be negative, got %d", c.FetchRetries)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return invalid("log_format must be console or json, got %q", c.LogFormat)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseSeconds accepts a Go duration ("45s", "1m") or a plain number of
// seconds.
func parseSeconds(v string) (int, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	return int(d / time.Second), nil
}

func envError(key, value string, err error) error {
	return apperr.Wrap(apperr.KindConfiguration, fmt.Sprintf("invalid %s=%q", key, value), err)
}

func invalid(format string, args ...any) error {
	return apperr.New(apperr.KindConfiguration, fmt.Sprintf(format, args...))
}
