package model

import "time"

// RegistrationStatus is the state of a player's registration in a
// tournament. Transitions only move forward through the workflow;
// the only backward transition is an explicit cancellation.
type RegistrationStatus string

const (
	RegistrationRegistered RegistrationStatus = "registered"
	RegistrationCheckedIn  RegistrationStatus = "checked_in"
	RegistrationSeated     RegistrationStatus = "seated"
	RegistrationBusted     RegistrationStatus = "busted"
	RegistrationWaitlisted RegistrationStatus = "waitlisted"
	RegistrationCancelled  RegistrationStatus = "cancelled"
	RegistrationNoShow     RegistrationStatus = "no_show"
)

// Registration links a user to a tournament. Each (tournament, user)
// pair is unique. RegistrationTime orders the waitlist (FIFO) and
// feeds the seating recency heuristics.
//
// Fields:
//  ID               – primary key identifier (UUID).
//  TournamentID     – tournament being entered.
//  UserID           – registered player.
//  RegistrationTime – when the player signed up.
//  Status           – workflow state (see RegistrationStatus).
//  Notes            – optional free-form notes.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Registration struct {
	ID               string             `json:"id"`
	TournamentID     string             `json:"tournament_id"`
	UserID           string             `json:"user_id"`
	RegistrationTime time.Time          `json:"registration_time"`
	Status           RegistrationStatus `json:"status"`
	Notes            *string            `json:"notes,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}
