package scheduler

import (
	"sync"
	"time"
)

// Manual is a Scheduler that only fires when told to. Useful for testing.
type Manual struct {
	mu     sync.Mutex
	task   func()
	every  time.Duration
	Starts int
	Stops  int
}

func (m *Manual) Start(every time.Duration, task func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.task = task
	m.every = every
	m.Starts++
	return nil
}

func (m *Manual) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.task = nil
	m.Stops++
}

// Fire runs the registered task once. It reports false when nothing is registered.
func (m *Manual) Fire() bool {
	m.mu.Lock()
	task := m.task
	m.mu.Unlock()
	if task == nil {
		return false
	}
	task()
	return true
}

// Interval returns the interval passed to the last Start.
func (m *Manual) Interval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.every
}
