// README: Flow checker; drives a running API through a whole booking and prints PASS/FAIL per step.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	runner := NewRunner(cfg)
	results := runner.RunAll(ctx)

	fmt.Println("\n== Summary ==")
	pass, fail, skipped := 0, 0, 0
	for _, r := range results {
		switch r.Status {
		case "PASS":
			pass++
		case "FAIL":
			fail++
		case "SKIP":
			skipped++
		}
	}
	fmt.Printf("PASS=%d FAIL=%d SKIP=%d\n", pass, fail, skipped)

	if fail > 0 || (cfg.Strict && skipped > 0) {
		os.Exit(1)
	}
}

type Config struct {
	BaseURL     string
	DSN         string
	RedisAddr   string
	Email       string
	Dropoff     string
	Strict      bool
	Timeout     time.Duration
	StepTimeout time.Duration
	Concurrency int
	Duration    time.Duration
}

func loadConfig() Config {
	var cfg Config
	flag.StringVar(&cfg.BaseURL, "base-url", envOrDefault("GORIDE_FLOW_BASE_URL", "http://localhost:8080"), "API base URL")
	flag.StringVar(&cfg.DSN, "dsn", os.Getenv("GORIDE_DB_DSN"), "Postgres DSN (optional)")
	flag.StringVar(&cfg.RedisAddr, "redis", os.Getenv("GORIDE_REDIS_ADDR"), "Redis address (optional)")
	flag.StringVar(&cfg.Email, "email", envOrDefault("GORIDE_FLOW_EMAIL", "flowcheck@goride.local"), "Login email")
	flag.StringVar(&cfg.Dropoff, "dropoff", envOrDefault("GORIDE_FLOW_DROPOFF", "MG Road"), "Dropoff search text")
	flag.BoolVar(&cfg.Strict, "strict", envOrDefaultBool("GORIDE_FLOW_STRICT", false), "Fail on skipped checks")
	flag.DurationVar(&cfg.Timeout, "timeout", envOrDefaultDuration("GORIDE_FLOW_TIMEOUT", 2*time.Minute), "Total timeout")
	flag.DurationVar(&cfg.StepTimeout, "step-timeout", envOrDefaultDuration("GORIDE_FLOW_STEP_TIMEOUT", 20*time.Second), "Timeout while waiting for async steps")
	flag.IntVar(&cfg.Concurrency, "concurrency", envOrDefaultInt("GORIDE_FLOW_CONCURRENCY", 10), "Concurrency for snapshot reads")
	flag.DurationVar(&cfg.Duration, "duration", envOrDefaultDuration("GORIDE_FLOW_DURATION", 3*time.Second), "Duration for snapshot reads")
	flag.Parse()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(v)
		return v == "1" || v == "true" || v == "yes"
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		_, _ = fmt.Sscanf(v, "%d", &n)
		if n > 0 {
			return n
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
