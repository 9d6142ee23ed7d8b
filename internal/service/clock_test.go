package service

import (
	"errors"
	"testing"

	"github.com/brunomoyse/pp-service/internal/model"
)

func TestStartFresh(t *testing.T) {
	fresh, err := startFresh(model.ClockStopped)
	if err != nil {
		t.Fatalf("stopped: unexpected error %v", err)
	}
	if !fresh {
		t.Fatalf("stopped clock should start a fresh epoch")
	}

	fresh, err = startFresh(model.ClockPaused)
	if err != nil {
		t.Fatalf("paused: unexpected error %v", err)
	}
	if fresh {
		t.Fatalf("paused clock should fold back in like a resume, not reset the epoch")
	}
}

func TestStartFreshRejectsRunning(t *testing.T) {
	_, err := startFresh(model.ClockRunning)
	if err == nil {
		t.Fatalf("expected error for a running clock")
	}
	var stateErr *ClockStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected ClockStateError, got %T", err)
	}
	if stateErr.Action != "start" {
		t.Fatalf("action = %q, want start", stateErr.Action)
	}
}
