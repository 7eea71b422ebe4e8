package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultJWTSecret is used when no secret is configured. Kept for
// zero-config runs; main logs a warning when it is still in effect.
const DefaultJWTSecret = "TaskMaster5000_HelloThere!#2025_SECURE"

type Config struct {
	Listen       string     `yaml:"listen"`
	DatabasePath string     `yaml:"database_path"`
	JWT          JWTConfig  `yaml:"jwt"`
	CORS         CORSConfig `yaml:"cors"`
	Logs         LogsConfig `yaml:"logs"`
	TLS          TLSConfig  `yaml:"tls"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LogsConfig struct {
	RequestLogPath  string `yaml:"request_log_path"`
	CriticalLogPath string `yaml:"critical_log_path"`
}

type TLSConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cert    string `yaml:"cert"`
	Key     string `yaml:"key"`
}

var C Config

func Load() error {
	// Defaults
	C = Config{
		Listen:       ":8080",
		DatabasePath: "taskmanagement.db",
		JWT: JWTConfig{
			Secret: DefaultJWTSecret,
			Expiry: 60 * time.Minute,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Logs: LogsConfig{
			RequestLogPath:  "api_requests.log",
			CriticalLogPath: "critical_updates.log",
		},
	}

	// Load from YAML if exists
	if data, err := os.ReadFile("config.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &C); err != nil {
			return err
		}
	}

	// Environment overrides
	if v := os.Getenv("LISTEN"); v != "" {
		C.Listen = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		C.DatabasePath = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		C.JWT.Secret = v
	}
	if v := os.Getenv("JWT_EXPIRY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			C.JWT.Expiry = d
		}
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		C.CORS.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("REQUEST_LOG_PATH"); v != "" {
		C.Logs.RequestLogPath = v
	}
	if v := os.Getenv("CRITICAL_LOG_PATH"); v != "" {
		C.Logs.CriticalLogPath = v
	}
	if v := os.Getenv("TLS_ENABLED"); v == "true" {
		C.TLS.Enabled = true
	}
	if v := os.Getenv("TLS_CERT"); v != "" {
		C.TLS.Cert = v
	}
	if v := os.Getenv("TLS_KEY"); v != "" {
		C.TLS.Key = v
	}

	return nil
}

// UsingDefaultSecret reports whether token signing still relies on the
// built-in fallback secret.
func UsingDefaultSecret() bool {
	return C.JWT.Secret == DefaultJWTSecret
}
