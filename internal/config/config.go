package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates everything the CLI needs for one run. Values come from
// the environment (optionally via a .env file); positional arguments and
// interactive prompts in main fill whatever is left.
type Config struct {
	Server  ServerConfig
	Auth    AuthConfig
	Enforce EnforceConfig
}

// ServerConfig describes the target server.
type ServerConfig struct {
	// URL includes the scheme, e.g. "https://reports.example.com".
	URL        string
	APIVersion string
	// Timeout bounds each HTTP call; zero means no deadline, so a stalled
	// server blocks until interrupted.
	Timeout time.Duration
	// Strict extends status checking to the historically lenient reads.
	Strict bool
}

// AuthConfig carries the operator credentials.
type AuthConfig struct {
	Username string
	Password string
	// Site is the content URL of the sign-in site. "Default" or empty
	// selects the server's default site.
	Site string
}

// EnforceConfig holds the enforcement parameters.
type EnforceConfig struct {
	// TargetMode is applied uniformly to every site, compared
	// case-sensitively against each site's current mode.
	TargetMode string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: server,
		Auth: AuthConfig{
			Username: strings.TrimSpace(os.Getenv("EAR_USERNAME")),
			Password: os.Getenv("EAR_PASSWORD"),
			Site:     strings.TrimSpace(os.Getenv("EAR_SITE")),
		},
		Enforce: EnforceConfig{
			TargetMode: strings.TrimSpace(os.Getenv("EAR_TARGET_MODE")),
		},
	}, nil
}

func loadServerConfig() (ServerConfig, error) {
	timeoutSeconds, err := parseOptionalIntEnv("EAR_TIMEOUT")
	if err != nil {
		return ServerConfig{}, err
	}
	var timeout time.Duration
	if timeoutSeconds != nil {
		if *timeoutSeconds < 0 {
			return ServerConfig{}, fmt.Errorf("invalid EAR_TIMEOUT value %d: must not be negative", *timeoutSeconds)
		}
		timeout = time.Duration(*timeoutSeconds) * time.Second
	}

	strict, err := parseBoolEnv("EAR_STRICT", false)
	if err != nil {
		return ServerConfig{}, err
	}

	return ServerConfig{
		URL:        strings.TrimSpace(os.Getenv("EAR_SERVER")),
		APIVersion: getEnvOrDefault("EAR_API_VERSION", "3.9"),
		Timeout:    timeout,
		Strict:     strict,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
