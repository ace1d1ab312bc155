// README: Config loader with env defaults for HTTP, oracle backends, caching, quota and booking timings.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"goride/internal/types"
)

// Oracle backends.
const (
	OracleGemini  = "gemini"
	OracleMaps    = "maps"
	OracleOffline = "offline"
)

type Config struct {
	HTTP struct {
		Addr            string
		ShutdownTimeout time.Duration
	}
	LogLevel string
	Oracle   struct {
		Backend     string
		GeminiKey   string
		GeminiModel string
		MapsKey     string
		Timeout     time.Duration
	}
	Redis struct {
		Addr     string
		Password string
		CacheTTL time.Duration
	}
	DB struct {
		DSN          string
		MonthlyCalls int
	}
	Booking struct {
		Debounce      time.Duration
		DispatchDelay time.Duration
		Tick          time.Duration
	}
	// Device is the simulated geolocation fix; nil means the device refuses.
	Device *types.Point
}

func Load() (Config, error) {
	var cfg Config
	var errs []error

	cfg.HTTP.Addr = envOrDefault("GORIDE_HTTP_ADDR", ":8080")
	cfg.HTTP.ShutdownTimeout = envOrDefaultDuration("GORIDE_SHUTDOWN_TIMEOUT", 10*time.Second, &errs)
	cfg.LogLevel = strings.ToLower(envOrDefault("GORIDE_LOG_LEVEL", "info"))

	cfg.Oracle.GeminiKey = os.Getenv("GEMINI_API_KEY")
	cfg.Oracle.GeminiModel = envOrDefault("GORIDE_GEMINI_MODEL", "gemini-2.5-flash")
	cfg.Oracle.MapsKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	cfg.Oracle.Timeout = envOrDefaultDuration("GORIDE_ORACLE_TIMEOUT", 10*time.Second, &errs)
	defaultBackend := OracleOffline
	if cfg.Oracle.GeminiKey != "" {
		defaultBackend = OracleGemini
	}
	cfg.Oracle.Backend = strings.ToLower(envOrDefault("GORIDE_ORACLE", defaultBackend))

	cfg.Redis.Addr = os.Getenv("GORIDE_REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("GORIDE_REDIS_PASSWORD")
	cfg.Redis.CacheTTL = envOrDefaultDuration("GORIDE_ORACLE_CACHE_TTL", 10*time.Minute, &errs)

	cfg.DB.DSN = os.Getenv("GORIDE_DB_DSN")
	cfg.DB.MonthlyCalls = envOrDefaultInt("GORIDE_ORACLE_MONTHLY_CALLS", 100, &errs)

	cfg.Booking.Debounce = envOrDefaultDuration("GORIDE_SEARCH_DEBOUNCE", 500*time.Millisecond, &errs)
	cfg.Booking.DispatchDelay = envOrDefaultDuration("GORIDE_DISPATCH_DELAY", 3500*time.Millisecond, &errs)
	cfg.Booking.Tick = envOrDefaultDuration("GORIDE_DRIVER_TICK", time.Second, &errs)

	lat, lng := os.Getenv("GORIDE_DEVICE_LAT"), os.Getenv("GORIDE_DEVICE_LNG")
	if lat != "" || lng != "" {
		p, err := parsePoint(lat, lng)
		if err != nil {
			errs = append(errs, err)
		} else {
			cfg.Device = &p
		}
	}

	switch cfg.Oracle.Backend {
	case OracleGemini:
		if cfg.Oracle.GeminiKey == "" {
			errs = append(errs, fmt.Errorf("GORIDE_ORACLE=gemini requires GEMINI_API_KEY"))
		}
	case OracleMaps:
		if cfg.Oracle.MapsKey == "" {
			errs = append(errs, fmt.Errorf("GORIDE_ORACLE=maps requires GOOGLE_MAPS_API_KEY"))
		}
	case OracleOffline:
	default:
		errs = append(errs, fmt.Errorf("unknown GORIDE_ORACLE %q", cfg.Oracle.Backend))
	}
	if cfg.Booking.Tick <= 0 {
		errs = append(errs, fmt.Errorf("GORIDE_DRIVER_TICK must be > 0"))
	}

	return cfg, errors.Join(errs...)
}

func parsePoint(lat, lng string) (types.Point, error) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return types.Point{}, fmt.Errorf("invalid GORIDE_DEVICE_LAT: %w", err)
	}
	ln, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return types.Point{}, fmt.Errorf("invalid GORIDE_DEVICE_LNG: %w", err)
	}
	return types.Point{Lat: la, Lng: ln}, nil
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int, errs *[]error) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return def
		}
		return n
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration, errs *[]error) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return def
		}
		return d
	}
	return def
}
