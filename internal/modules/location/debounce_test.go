package location

import (
	"testing"
	"time"

	"goride/internal/platform/clock"
)

func TestDebouncerRunsOnlyLastTrigger(t *testing.T) {
	c := clock.NewFake(time.Unix(0, 0))
	d := NewDebouncer(c, DefaultDebounce)

	var ran []string
	for _, q := range []string{"M", "MG", "MG ", "MG R"} {
		q := q
		d.Trigger(func() { ran = append(ran, q) })
		c.Advance(200 * time.Millisecond)
	}
	if len(ran) != 0 {
		t.Fatalf("fired inside the burst: %v", ran)
	}
	c.Advance(DefaultDebounce)
	if len(ran) != 1 || ran[0] != "MG R" {
		t.Fatalf("expected only the final trigger, got %v", ran)
	}
}

func TestDebouncerStop(t *testing.T) {
	c := clock.NewFake(time.Unix(0, 0))
	d := NewDebouncer(c, DefaultDebounce)
	fired := false
	d.Trigger(func() { fired = true })
	d.Stop()
	c.Advance(time.Second)
	if fired {
		t.Fatal("stopped debouncer must not fire")
	}
}
