// README: Flow check cases; environment probes, the booking sequence, guards and a read load check.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"goride/internal/modules/ride"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client

	// last is the snapshot returned by the most recent session call.
	last ride.Snapshot
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

func (r *Runner) cases() []TestCase {
	return []TestCase{
		{
			Name: "Env: Postgres quota table",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "dsn not configured"}
				}
				var exists bool
				err := r.db.QueryRow(ctx,
					"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
					"oracle_usage",
				).Scan(&exists)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if !exists {
					return Result{Status: "FAIL", Note: "missing table: oracle_usage"}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Env: Redis cache",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "SKIP", Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "API: health",
			Run: func(ctx context.Context, r *Runner) Result {
				start := time.Now()
				status, _, err := r.do(ctx, http.MethodGet, "/health", nil)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return expect(status, http.StatusOK, time.Since(start))
			},
		},
		sessionCase("Session: fresh at login", http.MethodGet, "/api/session", nil, http.StatusOK, func(s ride.Snapshot) string {
			if s.Stage != ride.StageLogin {
				return "stage=" + string(s.Stage) + ", restart the API for a clean run"
			}
			return ""
		}),
		sessionCase("Login: empty password rejected", http.MethodPost, "/api/session/login", map[string]string{"email": "x@y.z"}, http.StatusBadRequest, nil),
		sessionCase("Login", http.MethodPost, "/api/session/login", func(r *Runner) any {
			return map[string]string{"email": r.cfg.Email, "password": "flowcheck"}
		}, http.StatusOK, func(s ride.Snapshot) string {
			if s.Stage != ride.StageLocationSelect || s.UserName == "" {
				return fmt.Sprintf("stage=%s user=%q", s.Stage, s.UserName)
			}
			return ""
		}),
		sessionCase("Guard: find rides without addresses", http.MethodPost, "/api/session/find-rides", nil, http.StatusConflict, nil),
		sessionCase("Location: use current location", http.MethodPost, "/api/session/current-location", nil, http.StatusOK, func(s ride.Snapshot) string {
			if s.Pickup == nil || s.Pickup.Provenance != "current" {
				return "pickup not set from device"
			}
			return ""
		}),
		sessionCase("Location: type dropoff", http.MethodPut, "/api/session/search", func(r *Runner) any {
			return map[string]string{"field": "dropoff", "text": r.cfg.Dropoff}
		}, http.StatusOK, nil),
		{
			Name: "Location: suggestions arrive",
			Run: func(ctx context.Context, r *Runner) Result {
				return r.waitFor(ctx, func(s ride.Snapshot) bool { return len(s.Suggestions) > 0 })
			},
		},
		{
			Name: "Location: select first suggestion",
			Run: func(ctx context.Context, r *Runner) Result {
				if len(r.last.Suggestions) == 0 {
					return Result{Status: "FAIL", Note: "no suggestions"}
				}
				return r.call(ctx, http.MethodPost, "/api/session/suggestions/select",
					map[string]string{"address": r.last.Suggestions[0]}, http.StatusOK, nil)
			},
		},
		sessionCase("Fares: find rides", http.MethodPost, "/api/session/find-rides", nil, http.StatusOK, func(s ride.Snapshot) string {
			if s.Stage != ride.StageVehicleSelect {
				return "stage=" + string(s.Stage)
			}
			return ""
		}),
		{
			Name: "Fares: catalog loaded",
			Run: func(ctx context.Context, r *Runner) Result {
				return r.waitFor(ctx, func(s ride.Snapshot) bool { return !s.LoadingFares && len(s.Vehicles) > 0 })
			},
		},
		sessionCase("Guard: proceed without vehicle", http.MethodPost, "/api/session/proceed", nil, http.StatusConflict, nil),
		{
			Name: "Fares: select cheapest vehicle",
			Run: func(ctx context.Context, r *Runner) Result {
				if len(r.last.Vehicles) == 0 {
					return Result{Status: "FAIL", Note: "empty catalog"}
				}
				cheapest := r.last.Vehicles[0]
				for _, v := range r.last.Vehicles[1:] {
					if v.Fare.Amount < cheapest.Fare.Amount {
						cheapest = v
					}
				}
				return r.call(ctx, http.MethodPost, "/api/session/vehicle", map[string]string{"id": cheapest.ID}, http.StatusOK, nil)
			},
		},
		sessionCase("Payment: proceed", http.MethodPost, "/api/session/proceed", nil, http.StatusOK, nil),
		sessionCase("Payment: choose cash", http.MethodPut, "/api/session/payment-method", map[string]string{"method": "CASH"}, http.StatusOK, nil),
		sessionCase("Payment: confirm", http.MethodPost, "/api/session/confirm-payment", nil, http.StatusOK, func(s ride.Snapshot) string {
			if s.Stage != ride.StageSearchingDriver {
				return "stage=" + string(s.Stage)
			}
			return ""
		}),
		sessionCase("Guard: cancel while searching", http.MethodPost, "/api/session/cancel", nil, http.StatusConflict, nil),
		{
			Name: "Ride: driver assigned",
			Run: func(ctx context.Context, r *Runner) Result {
				return r.waitFor(ctx, func(s ride.Snapshot) bool { return s.Stage == ride.StageRideActive })
			},
		},
		{
			Name: "Ride: driver approaches",
			Run: func(ctx context.Context, r *Runner) Result {
				before := r.last
				if before.DriverPosition == nil {
					return Result{Status: "FAIL", Note: "no driver position"}
				}
				select {
				case <-time.After(2500 * time.Millisecond):
				case <-ctx.Done():
					return Result{Status: "FAIL", Note: ctx.Err().Error()}
				}
				res := r.call(ctx, http.MethodGet, "/api/session", nil, http.StatusOK, nil)
				if res.Status != "PASS" {
					return res
				}
				after := r.last
				if after.RideETASeconds >= before.RideETASeconds && before.RideETASeconds > 0 {
					return Result{Status: "FAIL", Note: fmt.Sprintf("eta did not count down (%d -> %d)", before.RideETASeconds, after.RideETASeconds)}
				}
				if after.DriverDistance > before.DriverDistance {
					return Result{Status: "FAIL", Note: "driver moved away from pickup"}
				}
				return Result{Status: "PASS", Note: fmt.Sprintf("eta %s, %.3f km", after.ETALabel, after.DriverDistance)}
			},
		},
		sessionCase("Ride: cancel", http.MethodPost, "/api/session/cancel", nil, http.StatusOK, func(s ride.Snapshot) string {
			if s.Stage != ride.StageLocationSelect || s.Pickup != nil || s.Dropoff != nil || s.DriverPosition != nil {
				return "booking not reset"
			}
			if s.UserName == "" {
				return "user name lost"
			}
			return ""
		}),
		{
			Name: "Metrics: exposed",
			Run: func(ctx context.Context, r *Runner) Result {
				status, body, err := r.do(ctx, http.MethodGet, "/metrics", nil)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusOK || !strings.Contains(string(body), "goride_stage_transitions_total") {
					return Result{Status: "FAIL", Note: fmt.Sprintf("status=%d, stage metrics missing", status)}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name: "Perf: snapshot reads",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, r.cfg.BaseURL+"/api/session")
			},
		},
	}
}

// sessionCase calls a session endpoint. body may be a value or a func(*Runner) any
// evaluated at run time; check inspects the returned snapshot on success.
func sessionCase(name, method, path string, body any, want int, check func(ride.Snapshot) string) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			payload := body
			if fn, ok := body.(func(*Runner) any); ok {
				payload = fn(r)
			}
			return r.call(ctx, method, path, payload, want, check)
		},
	}
}

func (r *Runner) call(ctx context.Context, method, path string, body any, want int, check func(ride.Snapshot) string) Result {
	start := time.Now()
	status, raw, err := r.do(ctx, method, path, body)
	latency := time.Since(start)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	if status != want {
		return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d want=%d %s", status, want, strings.TrimSpace(string(raw)))}
	}
	if status != http.StatusOK {
		return Result{Status: "PASS", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
	}
	var snap ride.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Result{Status: "FAIL", Latency: latency, Note: "decode snapshot: " + err.Error()}
	}
	r.last = snap
	if check != nil {
		if msg := check(snap); msg != "" {
			return Result{Status: "FAIL", Latency: latency, Note: msg}
		}
	}
	return Result{Status: "PASS", Latency: latency}
}

// waitFor polls the session until cond holds or the step timeout expires.
func (r *Runner) waitFor(ctx context.Context, cond func(ride.Snapshot) bool) Result {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.StepTimeout)
	defer cancel()
	start := time.Now()
	for {
		if res := r.call(ctx, http.MethodGet, "/api/session", nil, http.StatusOK, nil); res.Status != "PASS" {
			return res
		}
		if cond(r.last) {
			return Result{Status: "PASS", Latency: time.Since(start)}
		}
		select {
		case <-ctx.Done():
			return Result{Status: "FAIL", Latency: time.Since(start), Note: "timed out, stage=" + string(r.last.Stage)}
		case <-time.After(200 * time.Millisecond):
		}
	}
}

func (r *Runner) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.cfg.BaseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	return resp.StatusCode, raw, err
}

func expect(status, want int, latency time.Duration) Result {
	if status != want {
		return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d want=%d", status, want)}
	}
	return Result{Status: "PASS", Latency: latency}
}

func perfLoad(ctx context.Context, r *Runner, url string) Result {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Duration)
	defer cancel()

	var ok, failed int64
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
				resp, err := r.httpc.Do(req)
				if err != nil {
					if ctx.Err() == nil {
						atomic.AddInt64(&failed, 1)
					}
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				if resp.StatusCode == http.StatusOK {
					atomic.AddInt64(&ok, 1)
				} else {
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}
	wg.Wait()

	rps := float64(ok) / r.cfg.Duration.Seconds()
	note := fmt.Sprintf("ok=%d failed=%d rps=%.1f", ok, failed, rps)
	if failed > 0 {
		return Result{Status: "FAIL", Note: note}
	}
	return Result{Status: "PASS", Note: note}
}
