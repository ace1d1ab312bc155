// README: Entry point; loads config, wires the oracle chain and booking session, serves HTTP until signalled.
package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"goride/internal/config"
	httptransport "goride/internal/http"
	"goride/internal/infra"
	"goride/internal/logging"
	"goride/internal/modules/aiusage"
	"goride/internal/modules/location"
	"goride/internal/modules/pricing"
	"goride/internal/modules/ride"
	"goride/internal/platform/clock"
	"goride/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	log := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := service.OracleOptions{
		Backend:     cfg.Oracle.Backend,
		GeminiKey:   cfg.Oracle.GeminiKey,
		GeminiModel: cfg.Oracle.GeminiModel,
		MapsKey:     cfg.Oracle.MapsKey,
		CacheTTL:    cfg.Redis.CacheTTL,
	}
	if cfg.DB.DSN != "" {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()
		opts.Quota = aiusage.NewService(aiusage.NewStore(dbPool, cfg.DB.MonthlyCalls))
	}
	if cfg.Redis.Addr != "" {
		rdb, err := infra.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			log.Error("redis unavailable", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		opts.Redis = rdb
	}

	oracle, release, err := service.BuildOracle(ctx, opts, log)
	if err != nil {
		log.Error("oracle init failed", "error", err)
		os.Exit(1)
	}
	defer release()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	resolver := location.NewResolver(oracle, rand.New(rand.NewSource(rng.Int63())), log)
	loader := pricing.NewLoader(oracle, log)
	machine := ride.NewMachine(resolver, loader, clock.Real{}, rng, ride.Timings{
		Debounce:      cfg.Booking.Debounce,
		DispatchDelay: cfg.Booking.DispatchDelay,
		Tick:          cfg.Booking.Tick,
		OracleTimeout: cfg.Oracle.Timeout,
	}, log)
	at := machine.InitLocation(ctx, location.StaticGeolocator{Fix: cfg.Device})
	log.Info("device location", "lat", at.Lat, "lng", at.Lng)

	gin.SetMode(gin.ReleaseMode)
	server := httptransport.NewServer(cfg.HTTP.Addr, httptransport.NewRouter(machine, log))

	go func() {
		log.Info("http server listening", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	// Closing the machine first ends websocket streams, which Shutdown does not wait for.
	machine.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "error", err)
	}
}
