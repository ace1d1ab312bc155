// README: Oracle assembly; picks a backend and wraps it with quota, cache and metrics decorators.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"goride/internal/ai"
	"goride/internal/config"
	"goride/internal/maps"
)

// OracleOptions selects and decorates the oracle backend.
type OracleOptions struct {
	Backend     string // config.OracleGemini | OracleMaps | OracleOffline
	GeminiKey   string
	GeminiModel string
	MapsKey     string

	// Quota meters every backend call when set.
	Quota ai.Quota
	// Redis caches suggestions and reverse geocodes when set.
	Redis    *redis.Client
	CacheTTL time.Duration
}

// BuildOracle returns the decorated oracle and a func releasing backend resources.
// The chain is Instrumented(Cache(Metered(backend))): cache hits are neither
// metered nor charged against the quota.
func BuildOracle(ctx context.Context, opts OracleOptions, log *slog.Logger) (ai.Oracle, func(), error) {
	var (
		base    ai.Oracle
		release = func() {}
	)
	switch opts.Backend {
	case config.OracleGemini:
		g, err := ai.NewGeminiOracle(ctx, opts.GeminiKey, opts.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		base, release = g, g.Close
	case config.OracleMaps:
		m, err := maps.NewOracle(opts.MapsKey)
		if err != nil {
			return nil, nil, err
		}
		base = m
	case config.OracleOffline, "":
		base = ai.Unavailable{}
	default:
		return nil, nil, fmt.Errorf("unknown oracle backend %q", opts.Backend)
	}
	log.Info("oracle backend selected", "backend", opts.Backend, "metered", opts.Quota != nil, "cached", opts.Redis != nil)

	oracle := base
	if opts.Quota != nil {
		oracle = ai.NewMetered(oracle, opts.Quota)
	}
	if opts.Redis != nil {
		oracle = ai.NewCache(oracle, opts.Redis, opts.CacheTTL, log)
	}
	return ai.NewInstrumented(oracle), release, nil
}
