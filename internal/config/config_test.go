package config

import (
	"strings"
	"testing"
	"time"

	"goride/internal/types"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GORIDE_HTTP_ADDR", "GORIDE_LOG_LEVEL", "GORIDE_ORACLE", "GEMINI_API_KEY",
		"GOOGLE_MAPS_API_KEY", "GORIDE_ORACLE_TIMEOUT", "GORIDE_REDIS_ADDR",
		"GORIDE_DB_DSN", "GORIDE_ORACLE_MONTHLY_CALLS", "GORIDE_SEARCH_DEBOUNCE",
		"GORIDE_DISPATCH_DELAY", "GORIDE_DRIVER_TICK", "GORIDE_DEVICE_LAT", "GORIDE_DEVICE_LNG",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" || cfg.LogLevel != "info" {
		t.Fatalf("http/log defaults: %+v", cfg)
	}
	if cfg.Oracle.Backend != OracleOffline {
		t.Fatalf("backend = %q, want offline without a key", cfg.Oracle.Backend)
	}
	if cfg.Booking.Debounce != 500*time.Millisecond || cfg.Booking.DispatchDelay != 3500*time.Millisecond || cfg.Booking.Tick != time.Second {
		t.Fatalf("booking timings: %+v", cfg.Booking)
	}
	if cfg.DB.MonthlyCalls != 100 || cfg.Redis.CacheTTL != 10*time.Minute {
		t.Fatalf("quota/cache defaults: %+v %+v", cfg.DB, cfg.Redis)
	}
	if cfg.Device != nil {
		t.Fatalf("device = %v, want nil", cfg.Device)
	}
}

func TestLoadGeminiWhenKeyPresent(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("GORIDE_DEVICE_LAT", "28.6139")
	t.Setenv("GORIDE_DEVICE_LNG", "77.2090")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Oracle.Backend != OracleGemini {
		t.Fatalf("backend = %q", cfg.Oracle.Backend)
	}
	if cfg.Device == nil || *cfg.Device != (types.Point{Lat: 28.6139, Lng: 77.2090}) {
		t.Fatalf("device = %v", cfg.Device)
	}
}

func TestLoadCollectsErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("GORIDE_ORACLE", "maps")
	t.Setenv("GORIDE_DRIVER_TICK", "soon")
	t.Setenv("GORIDE_ORACLE_MONTHLY_CALLS", "lots")
	t.Setenv("GORIDE_DEVICE_LAT", "north")

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, want := range []string{"GOOGLE_MAPS_API_KEY", "GORIDE_DRIVER_TICK", "GORIDE_ORACLE_MONTHLY_CALLS", "GORIDE_DEVICE_LAT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}
