package scheduler

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestCronScheduler_RejectsSubSecond(t *testing.T) {
	s := NewCronScheduler()
	if err := s.Start(500*time.Millisecond, func() {}); err == nil {
		t.Fatal("expected error for sub-second interval")
	}
	if s.Running() {
		t.Error("scheduler should not be running")
	}
}

func TestCronScheduler_StartStop(t *testing.T) {
	s := NewCronScheduler()
	var fired atomic.Int32
	if err := s.Start(time.Second, func() { fired.Add(1) }); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !s.Running() {
		t.Fatal("expected running after Start")
	}

	deadline := time.Now().Add(3 * time.Second)
	for fired.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if fired.Load() == 0 {
		t.Fatal("task never fired")
	}

	s.Stop()
	s.Stop() // idempotent
	if s.Running() {
		t.Error("expected stopped")
	}

	after := fired.Load()
	time.Sleep(1500 * time.Millisecond)
	if fired.Load() != after {
		t.Errorf("task fired after Stop: %d -> %d", after, fired.Load())
	}
}

func TestManual(t *testing.T) {
	var m Manual
	if m.Fire() {
		t.Error("Fire with nothing registered should report false")
	}

	n := 0
	_ = m.Start(time.Minute, func() { n++ })
	m.Fire()
	m.Fire()
	if n != 2 {
		t.Errorf("expected 2 firings, got %d", n)
	}
	if m.Interval() != time.Minute {
		t.Errorf("interval = %s", m.Interval())
	}

	m.Stop()
	if m.Fire() {
		t.Error("Fire after Stop should report false")
	}
}
