package scheduler

import (
	"sync"
	"testing"
	"time"
)

type fakeCache struct {
	mu    sync.Mutex
	calls []time.Time
}

func (f *fakeCache) Sweep(now time.Time) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, now)
	return 3
}

func TestRegisterAll_InvalidSpec(t *testing.T) {
	s := NewScheduler(&fakeCache{})
	if err := s.RegisterAll("not a cron"); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
	// five-field specs are rejected because the parser expects seconds
	if err := s.RegisterAll("*/5 * * * *"); err == nil {
		t.Fatal("expected error for spec without seconds field")
	}
}

func TestRegisterAll(t *testing.T) {
	s := NewScheduler(&fakeCache{})
	if err := s.RegisterAll("0 */5 * * * *"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(s.Cron.Entries()); n != 1 {
		t.Errorf("expected 1 entry, got %d", n)
	}
}

func TestRunSweepNow(t *testing.T) {
	cache := &fakeCache{}
	s := NewScheduler(cache)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	if n := s.RunSweepNow(); n != 3 {
		t.Errorf("expected 3 evictions, got %d", n)
	}
	if len(cache.calls) != 1 || !cache.calls[0].Equal(fixed) {
		t.Errorf("sweep called with %v", cache.calls)
	}
}

func TestRunSweepNow_NoCache(t *testing.T) {
	if n := NewScheduler(nil).RunSweepNow(); n != 0 {
		t.Errorf("expected 0, got %d", n)
	}
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(&fakeCache{})
	if err := s.RegisterAll("@every 1h"); err != nil {
		t.Fatal(err)
	}
	s.Start()
	s.Stop()
}
