package scheduler

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler fires a task on a fixed interval until stopped.
type Scheduler interface {
	Start(every time.Duration, task func()) error
	Stop()
}

// CronScheduler runs the task on a robfig/cron "@every" entry.
// Overlapping firings are skipped while the previous one is still running.
type CronScheduler struct {
	mu   sync.Mutex
	cron *cron.Cron
}

func NewCronScheduler() *CronScheduler {
	return &CronScheduler{}
}

// Start registers task to run every interval. Calling Start again replaces the
// previous registration.
func (s *CronScheduler) Start(every time.Duration, task func()) error {
	if every < time.Second {
		return fmt.Errorf("interval %s is below the 1s cron resolution", every)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		s.cron.Stop()
	}

	logger := cron.PrintfLogger(log.New(os.Stderr, "[cron] ", log.LstdFlags))
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc("@every "+every.String(), task); err != nil {
		return fmt.Errorf("register cycle task: %w", err)
	}
	c.Start()
	s.cron = c
	log.Printf("[INFO] scheduler started, every %s", every)
	return nil
}

// Stop halts future firings. It does not wait for a running task to finish.
func (s *CronScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return
	}
	s.cron.Stop()
	s.cron = nil
	log.Println("[INFO] scheduler stopped")
}

// Running reports whether a cron entry is registered.
func (s *CronScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron != nil
}
