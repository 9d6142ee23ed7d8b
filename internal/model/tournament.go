package model

import "time"

// TournamentLiveStatus is the fine-grained tournament state machine value.
// It is the source of truth for a tournament's lifecycle; the coarse
// TournamentStatus is always derived from it and never stored.
type TournamentLiveStatus string

const (
	LiveStatusNotStarted       TournamentLiveStatus = "not_started"
	LiveStatusRegistrationOpen TournamentLiveStatus = "registration_open"
	LiveStatusLateRegistration TournamentLiveStatus = "late_registration"
	LiveStatusInProgress       TournamentLiveStatus = "in_progress"
	LiveStatusBreak            TournamentLiveStatus = "break"
	LiveStatusFinalTable       TournamentLiveStatus = "final_table"
	LiveStatusFinished         TournamentLiveStatus = "finished"
)

// Valid reports whether s is one of the known live status values.
func (s TournamentLiveStatus) Valid() bool {
	switch s {
	case LiveStatusNotStarted, LiveStatusRegistrationOpen, LiveStatusLateRegistration,
		LiveStatusInProgress, LiveStatusBreak, LiveStatusFinalTable, LiveStatusFinished:
		return true
	}
	return false
}

// AcceptsCheckIns reports whether players may check in while the
// tournament is in this state.
func (s TournamentLiveStatus) AcceptsCheckIns() bool {
	switch s {
	case LiveStatusRegistrationOpen, LiveStatusLateRegistration, LiveStatusInProgress:
		return true
	}
	return false
}

// TournamentStatus is the coarse, user-facing status derived from the
// live status.
type TournamentStatus string

const (
	StatusUpcoming   TournamentStatus = "UPCOMING"
	StatusInProgress TournamentStatus = "IN_PROGRESS"
	StatusCompleted  TournamentStatus = "COMPLETED"
)

// Tournament describes a scheduled poker tournament hosted by a club.
//
// Fields:
//  ID                   – primary key identifier (UUID).
//  ClubID               – club hosting the tournament.
//  Name                 – display name.
//  Description          – optional free-form description.
//  StartTime            – scheduled start.
//  EndTime              – actual or scheduled end (nullable).
//  BuyInCents           – buy-in per entry in cents.
//  SeatCap              – optional cap on confirmed registrations.
//  LiveStatus           – fine-grained state machine value.
//  EarlyBirdBonusChips  – optional chip bonus for early check-in.
//  CreatedAt            – creation timestamp.
//  UpdatedAt            – last update timestamp.
type Tournament struct {
	ID                  string               `json:"id"`
	ClubID              string               `json:"club_id"`
	Name                string               `json:"name"`
	Description         *string              `json:"description,omitempty"`
	StartTime           time.Time            `json:"start_time"`
	EndTime             *time.Time           `json:"end_time,omitempty"`
	BuyInCents          int64                `json:"buy_in_cents"`
	SeatCap             *int                 `json:"seat_cap,omitempty"`
	LiveStatus          TournamentLiveStatus `json:"live_status"`
	EarlyBirdBonusChips *int                 `json:"early_bird_bonus_chips,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// Status derives the coarse status from the live status. It is computed
// on read so the two can never drift apart.
func (t *Tournament) Status() TournamentStatus {
	switch t.LiveStatus {
	case LiveStatusNotStarted, LiveStatusRegistrationOpen:
		return StatusUpcoming
	case LiveStatusFinished:
		return StatusCompleted
	default:
		return StatusInProgress
	}
}
