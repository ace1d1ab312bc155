package driver

import (
	"math"
	"math/rand"
	"testing"

	"goride/internal/types"
)

func distance(a, b types.Point) float64 {
	return math.Hypot(a.Lat-b.Lat, a.Lng-b.Lng)
}

func TestStepConvergesGeometrically(t *testing.T) {
	target := types.Point{Lat: 12.9716, Lng: 77.5946}
	start := target.Offset(0.008, -0.006)
	s := NewSimulator(start, target, 5)

	d0 := distance(start, target)
	for n := 1; n <= 120; n++ {
		s.Step()
		want := d0 * math.Pow(1-Decay, float64(n))
		if got := distance(s.Position(), target); math.Abs(got-want) > 1e-12 {
			t.Fatalf("tick %d: distance %.15f, want %.15f", n, got, want)
		}
	}
	if s.Position() == target {
		t.Fatal("decay must never land exactly on the target")
	}
}

func TestStepCountsDownAndHolds(t *testing.T) {
	target := types.Point{Lat: 1, Lng: 1}
	s := NewSimulator(types.Point{}, target, 1)
	if s.ETASeconds() != 60 {
		t.Fatalf("eta = %d, want 60", s.ETASeconds())
	}
	for i := 59; i >= 1; i-- {
		if done := s.Step(); done {
			t.Fatalf("done early with %d seconds left", i)
		}
		if s.ETASeconds() != i {
			t.Fatalf("eta = %d, want %d", s.ETASeconds(), i)
		}
	}
	if done := s.Step(); !done || s.ETASeconds() != 0 {
		t.Fatalf("last tick: done=%v eta=%d", done, s.ETASeconds())
	}

	pos := s.Position()
	if done := s.Step(); !done || s.ETASeconds() != 0 {
		t.Fatalf("eta must hold at zero, got %d", s.ETASeconds())
	}
	if s.Position() != pos {
		t.Fatal("driver must not move after the countdown ends")
	}
}

func TestZeroETA(t *testing.T) {
	s := NewSimulator(types.Point{}, types.Point{Lat: 1}, 0)
	if !s.Step() {
		t.Fatal("zero eta is done immediately")
	}
	if s.Position() != (types.Point{}) {
		t.Fatal("zero eta must not move the driver")
	}
}

func TestSpawnNear(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	target := types.Point{Lat: 12.9716, Lng: 77.5946}
	for i := 0; i < 500; i++ {
		p := SpawnNear(target, rng)
		if math.Abs(p.Lat-target.Lat) > SpawnRadius || math.Abs(p.Lng-target.Lng) > SpawnRadius {
			t.Fatalf("spawn %v outside radius of %v", p, target)
		}
	}
}

func TestFormatETA(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "Arriving now"},
		{-3, "Arriving now"},
		{1, "1 min"},
		{60, "1 min"},
		{61, "2 min"},
		{480, "8 min"},
	}
	for _, tt := range tests {
		if got := FormatETA(tt.seconds); got != tt.want {
			t.Errorf("FormatETA(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
