package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	ServiceName     string
	CoreDatabaseURL string
	TemporalAddress string
	HTTPListenAddr  string
	LogLevel        string

	// Temporal mTLS. Empty cert/key means plaintext.
	TemporalTLSCert       string
	TemporalTLSKey        string
	TemporalTLSCACert     string
	TemporalTLSServerName string

	// Process-wide cloud credential. Projects whose token is empty or set
	// to the "default" sentinel resolve to this token.
	HetznerAPIToken string

	// GoDaddy DNS API credentials. When empty, DNS record creation is
	// skipped; the provisioning pipeline treats that as a non-fatal miss.
	GoDaddyAPIKey    string
	GoDaddyAPISecret string
	GoDaddyBaseURL   string

	// Fallback SSH settings for projects without their own SSH credential.
	DefaultSSHUser string
	DefaultSSHPort int

	// ArtifactDir is where downloaded backup artifacts are stored locally.
	ArtifactDir string

	// MetricsListenAddr serves /metrics and /healthz on the worker, which
	// has no HTTP API of its own.
	MetricsListenAddr string
}

func Load() (*Config, error) {
	sshPort, err := strconv.Atoi(getEnv("DEFAULT_SSH_PORT", "22"))
	if err != nil {
		return nil, fmt.Errorf("parse DEFAULT_SSH_PORT: %w", err)
	}

	cfg := &Config{
		ServiceName:           getEnv("SERVICE_NAME", "provision"),
		CoreDatabaseURL:       getEnv("CORE_DATABASE_URL", ""),
		TemporalAddress:       getEnv("TEMPORAL_ADDRESS", "localhost:7233"),
		HTTPListenAddr:        getEnv("HTTP_LISTEN_ADDR", ":8090"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		TemporalTLSCert:       getEnv("TEMPORAL_TLS_CERT", ""),
		TemporalTLSKey:        getEnv("TEMPORAL_TLS_KEY", ""),
		TemporalTLSCACert:     getEnv("TEMPORAL_TLS_CA_CERT", ""),
		TemporalTLSServerName: getEnv("TEMPORAL_TLS_SERVER_NAME", ""),
		HetznerAPIToken:       getEnv("HETZNER_API_TOKEN", ""),
		GoDaddyAPIKey:         getEnv("GODADDY_API_KEY", ""),
		GoDaddyAPISecret:      getEnv("GODADDY_API_SECRET", ""),
		GoDaddyBaseURL:        getEnv("GODADDY_BASE_URL", "https://api.godaddy.com/v1"),
		DefaultSSHUser:        getEnv("DEFAULT_SSH_USER", "root"),
		DefaultSSHPort:        sshPort,
		ArtifactDir:           getEnv("ARTIFACT_DIR", "/var/lib/provision/artifacts"),
		MetricsListenAddr:     getEnv("METRICS_LISTEN_ADDR", ":9100"),
	}

	return cfg, nil
}

// Validate checks that the configuration is complete for the given role
// ("api" or "worker"). All missing fields are reported in one error.
func (c *Config) Validate(role string) error {
	var missing []string

	if c.CoreDatabaseURL == "" {
		missing = append(missing, "CORE_DATABASE_URL")
	}
	if c.TemporalAddress == "" {
		missing = append(missing, "TEMPORAL_ADDRESS")
	}

	switch role {
	case "api":
		if c.HTTPListenAddr == "" {
			missing = append(missing, "HTTP_LISTEN_ADDR")
		}
	case "worker":
		if c.ArtifactDir == "" {
			missing = append(missing, "ARTIFACT_DIR")
		}
	default:
		return fmt.Errorf("unknown role %q", role)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
