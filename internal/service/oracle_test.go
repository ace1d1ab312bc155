package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"goride/internal/ai"
	"goride/internal/logging"
	"goride/internal/types"
)

type denyQuota struct{ calls int }

func (q *denyQuota) UseCall(context.Context, string) error {
	q.calls++
	return errors.New("quota store down")
}

func TestBuildOracleOffline(t *testing.T) {
	o, release, err := BuildOracle(context.Background(), OracleOptions{Backend: "offline"}, logging.Discard())
	if err != nil {
		t.Fatalf("BuildOracle: %v", err)
	}
	defer release()
	if _, err := o.Suggest(context.Background(), "MG Road", types.Point{}); !errors.Is(err, ai.ErrOracleUnavailable) {
		t.Fatalf("offline Suggest = %v", err)
	}
}

func TestBuildOracleUnknownBackend(t *testing.T) {
	if _, _, err := BuildOracle(context.Background(), OracleOptions{Backend: "crystal-ball"}, logging.Discard()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestBuildOracleChargesQuota(t *testing.T) {
	q := &denyQuota{}
	o, release, err := BuildOracle(context.Background(), OracleOptions{Backend: "offline", Quota: q}, logging.Discard())
	if err != nil {
		t.Fatalf("BuildOracle: %v", err)
	}
	defer release()
	if _, err := o.ReverseGeocode(context.Background(), types.Point{}); err == nil {
		t.Fatal("expected quota error")
	}
	if q.calls != 1 {
		t.Fatalf("quota charged %d times", q.calls)
	}
}

func TestBuildOracleCachesBeforeQuota(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	// Seed the cache so the lookup never reaches the backend or the quota.
	mr.Set("goride:oracle:reverse:12.97160,77.59460", `"MG Road"`)

	q := &denyQuota{}
	o, release, err := BuildOracle(context.Background(), OracleOptions{Backend: "offline", Quota: q, Redis: rdb, CacheTTL: time.Minute}, logging.Discard())
	if err != nil {
		t.Fatalf("BuildOracle: %v", err)
	}
	defer release()

	got, err := o.ReverseGeocode(context.Background(), types.Point{Lat: 12.9716, Lng: 77.5946})
	if err != nil || got != "MG Road" {
		t.Fatalf("ReverseGeocode = %q, %v", got, err)
	}
	if q.calls != 0 {
		t.Fatalf("cache hit was charged against the quota")
	}
}
