package model

import "time"

// SeatAssignment records that a player occupies (or occupied) a seat at
// a table during a tournament. Rows are never deleted: moving a player
// flips the old row's IsCurrent to false and inserts a new current row,
// so the same table answers both "who sits where now" and the full
// seating history.
//
// Invariants (enforced by the storage layer):
//  - per tournament, at most one current row per user;
//  - per (table, seat) pair, at most one current row.
//
// Fields:
//  ID           – primary key identifier (UUID).
//  TournamentID – tournament the seat belongs to.
//  ClubTableID  – table the player sits at.
//  UserID       – the seated player.
//  SeatNumber   – 1-based seat number at the table.
//  StackSize    – chip count, when tracked (nullable).
//  IsCurrent    – whether this is the player's active seat.
//  AssignedAt   – when the player was seated.
//  UnassignedAt – when the row was superseded (nullable).
//  AssignedBy   – actor who made the assignment (nullable).
//  Notes        – optional free-form notes.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type SeatAssignment struct {
	ID           string     `json:"id"`
	TournamentID string     `json:"tournament_id"`
	ClubTableID  string     `json:"club_table_id"`
	UserID       string     `json:"user_id"`
	SeatNumber   int        `json:"seat_number"`
	StackSize    *int       `json:"stack_size,omitempty"`
	IsCurrent    bool       `json:"is_current"`
	AssignedAt   time.Time  `json:"assigned_at"`
	UnassignedAt *time.Time `json:"unassigned_at,omitempty"`
	AssignedBy   *string    `json:"assigned_by,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
