package model

import "time"

// ClockStatus is the run-state of a tournament clock.
type ClockStatus string

const (
	ClockStopped ClockStatus = "stopped"
	ClockRunning ClockStatus = "running"
	ClockPaused  ClockStatus = "paused"
)

// TournamentClock is the persisted state of a tournament's blind-level
// timer. One row exists per tournament. Time remaining is never stored;
// it is derived from LevelEndTime, PauseStartedAt and the level's
// duration (see TimeRemaining).
//
// Fields:
//  ID                – primary key identifier (UUID).
//  TournamentID      – owning tournament (unique).
//  Status            – stopped, running or paused.
//  CurrentLevel      – 1-based blind level.
//  LevelStartedAt    – when the current level began (nullable).
//  LevelEndTime      – wall-clock deadline for the current level while
//                      running (nullable).
//  PauseStartedAt    – set only while paused (nullable).
//  TotalPauseSeconds – accumulated pause time over the clock's lifetime.
//  AutoAdvance       – whether the background ticker advances levels.
//  CreatedAt         – creation timestamp.
//  UpdatedAt         – last update timestamp.
type TournamentClock struct {
	ID                string      `json:"id"`
	TournamentID      string      `json:"tournament_id"`
	Status            ClockStatus `json:"clock_status"`
	CurrentLevel      int         `json:"current_level"`
	LevelStartedAt    *time.Time  `json:"level_started_at,omitempty"`
	LevelEndTime      *time.Time  `json:"level_end_time,omitempty"`
	PauseStartedAt    *time.Time  `json:"pause_started_at,omitempty"`
	TotalPauseSeconds int64       `json:"total_pause_seconds"`
	AutoAdvance       bool        `json:"auto_advance"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// TimeRemaining derives the time left in the current level at the given
// instant. levelDuration is the full duration of the current level and
// is only consulted while the clock is stopped.
//
//   - running: max(0, LevelEndTime − now)
//   - paused:  max(0, LevelEndTime − PauseStartedAt), frozen at the
//     instant of pause
//   - stopped: the level's full duration, since nothing has elapsed
func (c *TournamentClock) TimeRemaining(levelDuration time.Duration, now time.Time) time.Duration {
	switch c.Status {
	case ClockRunning:
		if c.LevelEndTime == nil {
			return 0
		}
		return maxDuration(0, c.LevelEndTime.Sub(now))
	case ClockPaused:
		if c.LevelEndTime == nil || c.PauseStartedAt == nil {
			return 0
		}
		return maxDuration(0, c.LevelEndTime.Sub(*c.PauseStartedAt))
	default:
		return levelDuration
	}
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

// TournamentStructure is one blind level of a tournament's structure.
// Level numbers are 1-based and contiguous per tournament.
//
// Fields:
//  ID                   – primary key identifier (UUID).
//  TournamentID         – owning tournament.
//  LevelNumber          – 1-based level number.
//  SmallBlind           – small blind for the level.
//  BigBlind             – big blind for the level.
//  Ante                 – ante for the level.
//  DurationMinutes      – length of the level in minutes.
//  IsBreak              – whether the level is a break.
//  BreakDurationMinutes – break length when IsBreak (nullable).
//  CreatedAt            – creation timestamp.
type TournamentStructure struct {
	ID                   string    `json:"id"`
	TournamentID         string    `json:"tournament_id"`
	LevelNumber          int       `json:"level_number"`
	SmallBlind           int       `json:"small_blind"`
	BigBlind             int       `json:"big_blind"`
	Ante                 int       `json:"ante"`
	DurationMinutes      int       `json:"duration_minutes"`
	IsBreak              bool      `json:"is_break"`
	BreakDurationMinutes *int      `json:"break_duration_minutes,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// Duration returns the level length as a time.Duration.
func (s *TournamentStructure) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// Clock event types recorded in the append-only audit log.
const (
	ClockEventStart         = "start"
	ClockEventPause         = "pause"
	ClockEventResume        = "resume"
	ClockEventLevelAdvance  = "level_advance"
	ClockEventManualAdvance = "manual_advance"
	ClockEventManualRevert  = "manual_revert"
	ClockEventFinalComplete = "final_level_complete"
)

// ClockEvent is one entry in the tournament clock's append-only audit
// log. Events are written on successful state changes and never mutated.
//
// Fields:
//  ID           – primary key identifier (UUID).
//  TournamentID – tournament the event belongs to.
//  EventType    – one of the ClockEvent* constants.
//  LevelNumber  – level after the change (nullable).
//  ActorID      – manager who triggered the change (nullable for
//                 automatic events).
//  EventTime    – when the event occurred.
//  Metadata     – free-form JSON payload.
type ClockEvent struct {
	ID           string    `json:"id"`
	TournamentID string    `json:"tournament_id"`
	EventType    string    `json:"event_type"`
	LevelNumber  *int      `json:"level_number,omitempty"`
	ActorID      *string   `json:"actor_id,omitempty"`
	EventTime    time.Time `json:"event_time"`
	Metadata     string    `json:"metadata"`
}
