package scheduler

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper evicts expired entries and reports how many were removed.
type Sweeper interface {
	Sweep(now time.Time) int
}

// Scheduler manages background cron tasks.
type Scheduler struct {
	Cron  *cron.Cron
	Cache Sweeper
	now   func() time.Time
}

// NewScheduler creates a new Scheduler. Cron specs include a seconds field.
func NewScheduler(cache Sweeper) *Scheduler {
	return &Scheduler{
		Cron:  cron.New(cron.WithSeconds()),
		Cache: cache,
		now:   time.Now,
	}
}

// RegisterAll registers the cache sweep task.
func (s *Scheduler) RegisterAll(sweepCron string) error {
	if _, err := s.Cron.AddFunc(sweepCron, func() { s.sweep() }); err != nil {
		return fmt.Errorf("register cache sweep: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunSweepNow executes the sweep immediately.
func (s *Scheduler) RunSweepNow() int {
	return s.sweep()
}

func (s *Scheduler) sweep() int {
	if s.Cache == nil {
		return 0
	}
	n := s.Cache.Sweep(s.now())
	if n > 0 {
		log.Printf("[INFO] cache sweep evicted %d entries", n)
	}
	return n
}
