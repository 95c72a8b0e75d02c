package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Kiosk.TableNumber != "12" {
		t.Fatalf("unexpected table number %q", cfg.Kiosk.TableNumber)
	}
	if cfg.Backend.BaseURL != "http://localhost:8000/api" {
		t.Fatalf("unexpected backend url %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != 20*time.Second {
		t.Fatalf("expected 20s timeout, got %v", cfg.Backend.Timeout)
	}
	if cfg.Tracking.PollInterval != 3*time.Second || cfg.Tracking.CountdownTick != time.Second {
		t.Fatalf("unexpected tracking intervals %+v", cfg.Tracking)
	}
	if cfg.Tracking.SurchargePercent != 10 {
		t.Fatalf("expected 10%% surcharge, got %d", cfg.Tracking.SurchargePercent)
	}
	if cfg.History.Driver != HistoryDriverMemory {
		t.Fatalf("expected memory history driver, got %q", cfg.History.Driver)
	}
	if cfg.History.SessionTTL != 12*time.Hour || cfg.History.RetentionInterval != time.Hour {
		t.Fatalf("unexpected history timings %+v", cfg.History)
	}
}

func TestLoad_MissingTable(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvTableNumber); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvTableNumber, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing table number to return an error")
	}
}

func TestLoad_RedisDriverNeedsAddress(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvHistoryDriver, "Redis")

	if _, err := Load(); err == nil {
		t.Fatal("expected redis driver without address to fail")
	}

	t.Setenv(EnvRedisURL, "redis://localhost:6379/1")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.History.Driver != HistoryDriverRedis {
		t.Fatalf("driver should be normalised, got %q", cfg.History.Driver)
	}
}

func TestLoad_SQLDriverValidatesDialect(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvHistoryDriver, HistoryDriverSQL)
	t.Setenv(EnvDBDriver, "mysql")

	if _, err := Load(); err == nil {
		t.Fatal("expected unsupported sql dialect to fail")
	}

	t.Setenv(EnvDBDriver, DBDriverPostgres)
	t.Setenv(EnvDBDSN, "postgres://kiosk@localhost:5432/tableorder?sslmode=disable")
	if _, err := Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad_CORSOriginsList(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.App.CORSOrigins) != 1 || cfg.App.CORSOrigins[0] != "http://localhost:5173" {
		t.Fatalf("unexpected default origins %v", cfg.App.CORSOrigins)
	}

	t.Setenv(EnvCORSOrigins, "http://kiosk.local,http://localhost:3000")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.App.CORSOrigins) != 2 || cfg.App.CORSOrigins[1] != "http://localhost:3000" {
		t.Fatalf("unexpected origins %v", cfg.App.CORSOrigins)
	}
}

func TestLoad_RejectsUnknownHistoryDriver(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvHistoryDriver, "cookie")
	if _, err := Load(); err == nil {
		t.Fatal("expected unknown driver to fail")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "dev")
	t.Setenv(EnvTableNumber, "12")
	for _, key := range []string{EnvHistoryDriver, EnvRedisURL, EnvRedisAddr, EnvDBDriver, EnvDBDSN, EnvAPIBase, EnvPollInterval, EnvCORSOrigins} {
		// t.Setenv registers the restore; envconfig treats set-but-empty as a value, so unset.
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "production"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
}
