package config

import (
	"os"
	"testing"
	"time"
)

func TestConfig_Defaults(t *testing.T) {
	C = Config{}
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("JWT_EXPIRY")

	if err := Load(); err != nil {
		t.Fatal(err)
	}

	if C.Listen != ":8080" {
		t.Errorf("expected default listen :8080, got %s", C.Listen)
	}
	if C.JWT.Expiry != 60*time.Minute {
		t.Errorf("expected default expiry 60m, got %v", C.JWT.Expiry)
	}
	if !UsingDefaultSecret() {
		t.Error("expected default secret to be in effect")
	}
	if C.Logs.RequestLogPath != "api_requests.log" || C.Logs.CriticalLogPath != "critical_updates.log" {
		t.Errorf("unexpected log paths: %+v", C.Logs)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	C = Config{}
	os.Setenv("JWT_SECRET", "configured-secret")
	os.Setenv("JWT_EXPIRY", "2h")
	os.Setenv("LISTEN", ":9999")
	defer func() {
		os.Unsetenv("JWT_SECRET")
		os.Unsetenv("JWT_EXPIRY")
		os.Unsetenv("LISTEN")
	}()

	if err := Load(); err != nil {
		t.Fatal(err)
	}

	if C.JWT.Secret != "configured-secret" {
		t.Errorf("expected env secret, got %s", C.JWT.Secret)
	}
	if UsingDefaultSecret() {
		t.Error("default secret should not be in effect")
	}
	if C.JWT.Expiry != 2*time.Hour {
		t.Errorf("expected 2h expiry, got %v", C.JWT.Expiry)
	}
	if C.Listen != ":9999" {
		t.Errorf("expected :9999, got %s", C.Listen)
	}
}

func TestConfig_CORSOriginsFromEnv(t *testing.T) {
	C = Config{}
	os.Setenv("CORS_ORIGINS", "http://a.example,http://b.example")
	defer os.Unsetenv("CORS_ORIGINS")

	if err := Load(); err != nil {
		t.Fatal(err)
	}

	if len(C.CORS.AllowedOrigins) != 2 || C.CORS.AllowedOrigins[1] != "http://b.example" {
		t.Errorf("unexpected origins: %v", C.CORS.AllowedOrigins)
	}
}
