// README: Oracle demo; runs each oracle operation once through the booking fallbacks and prints the result.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"

	"goride/internal/ai"
	"goride/internal/logging"
	"goride/internal/modules/location"
	"goride/internal/modules/pricing"
	"goride/internal/service"
)

func main() {
	_ = godotenv.Load()

	backend := flag.String("backend", "gemini", "oracle backend: gemini, maps or offline")
	query := flag.String("query", "Indiranagar", "address search text")
	dropoff := flag.String("dropoff", "MG Road", "dropoff name for fare pricing")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := logging.NewLogger("warn")
	oracle, release, err := service.BuildOracle(ctx, service.OracleOptions{
		Backend:     *backend,
		GeminiKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel: ai.DefaultGeminiModel,
		MapsKey:     os.Getenv("GOOGLE_MAPS_API_KEY"),
	}, logger)
	if err != nil {
		log.Fatalf("Failed to initialize oracle: %v", err)
	}
	defer release()

	near := location.DefaultPosition
	resolver := location.NewResolver(oracle, rand.New(rand.NewSource(time.Now().UnixNano())), logger)

	fmt.Printf("Suggestions for %q near %.4f, %.4f:\n", *query, near.Lat, near.Lng)
	for _, s := range resolver.Suggest(ctx, *query, near) {
		fmt.Printf("  - %s\n", s)
	}

	tap := near.Offset(0.0042, -0.0031)
	fmt.Printf("Address at %s: %s\n", location.FallbackAddress(tap), resolver.ResolveTap(ctx, tap).Name)

	fmt.Printf("Fares %s -> %s:\n", location.CurrentLocationName, *dropoff)
	for _, v := range pricing.NewLoader(oracle, logger).LoadCatalog(ctx, location.CurrentLocationName, *dropoff) {
		fmt.Printf("  %-8s %-16s %s%d  %d min  (%s)\n", v.Category, v.Name, v.Fare.Currency, v.Fare.Amount, v.ETAMinutes, v.Description)
	}
}
