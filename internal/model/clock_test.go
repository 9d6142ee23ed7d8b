package model

import (
	"testing"
	"time"
)

func TestTimeRemainingRunning(t *testing.T) {
	now := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	end := now.Add(7 * time.Minute)
	c := &TournamentClock{Status: ClockRunning, LevelEndTime: &end}
	if got := c.TimeRemaining(20*time.Minute, now); got != 7*time.Minute {
		t.Fatalf("remaining = %v, want 7m", got)
	}
}

func TestTimeRemainingRunningPastDeadline(t *testing.T) {
	now := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	end := now.Add(-30 * time.Second)
	c := &TournamentClock{Status: ClockRunning, LevelEndTime: &end}
	if got := c.TimeRemaining(20*time.Minute, now); got != 0 {
		t.Fatalf("remaining = %v, want 0", got)
	}
}

func TestTimeRemainingPausedIsFrozen(t *testing.T) {
	paused := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	end := paused.Add(4 * time.Minute)
	c := &TournamentClock{Status: ClockPaused, LevelEndTime: &end, PauseStartedAt: &paused}
	// The value does not change no matter how late "now" is.
	for _, now := range []time.Time{paused, paused.Add(time.Hour), paused.Add(24 * time.Hour)} {
		if got := c.TimeRemaining(20*time.Minute, now); got != 4*time.Minute {
			t.Fatalf("remaining at %v = %v, want 4m", now, got)
		}
	}
}

func TestTimeRemainingStopped(t *testing.T) {
	c := &TournamentClock{Status: ClockStopped}
	if got := c.TimeRemaining(15*time.Minute, time.Now()); got != 15*time.Minute {
		t.Fatalf("remaining = %v, want 15m", got)
	}
}

func TestTimeRemainingMissingTimestamps(t *testing.T) {
	now := time.Now()
	running := &TournamentClock{Status: ClockRunning}
	if got := running.TimeRemaining(20*time.Minute, now); got != 0 {
		t.Fatalf("running without end time = %v, want 0", got)
	}
	end := now.Add(time.Minute)
	paused := &TournamentClock{Status: ClockPaused, LevelEndTime: &end}
	if got := paused.TimeRemaining(20*time.Minute, now); got != 0 {
		t.Fatalf("paused without pause start = %v, want 0", got)
	}
}

func TestStructureDuration(t *testing.T) {
	s := &TournamentStructure{DurationMinutes: 25}
	if got := s.Duration(); got != 25*time.Minute {
		t.Fatalf("Duration = %v, want 25m", got)
	}
}
