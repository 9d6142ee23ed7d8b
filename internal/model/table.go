package model

import "time"

// ClubTable is a physical table owned by a club. Tables are linked to
// tournaments through TournamentTableAssignment rows; the table itself
// carries the default seat count.
//
// Fields:
//  ID          – primary key identifier (UUID).
//  ClubID      – owning club.
//  TableNumber – table number within the club.
//  MaxSeats    – seat count (may be overridden per tournament).
//  IsActive    – whether the table is usable.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type ClubTable struct {
	ID          string    `json:"id"`
	ClubID      string    `json:"club_id"`
	TableNumber int       `json:"table_number"`
	MaxSeats    int       `json:"max_seats"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TournamentTableAssignment links a club table to a tournament. A table
// is "in play" for a tournament only while IsActive is true. The link
// may be deactivated and later reactivated; unassigning requires that
// no current seat assignments remain on the table for that tournament.
//
// Fields:
//  ID              – primary key identifier (UUID).
//  TournamentID    – tournament the table is assigned to.
//  ClubTableID     – the physical table.
//  IsActive        – whether the link is currently active.
//  AssignedAt      – when the table was (last) assigned.
//  DeactivatedAt   – when the link was deactivated (nullable).
//  MaxSeatsOverride – optional per-tournament seat count override.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type TournamentTableAssignment struct {
	ID               string     `json:"id"`
	TournamentID     string     `json:"tournament_id"`
	ClubTableID      string     `json:"club_table_id"`
	IsActive         bool       `json:"is_active"`
	AssignedAt       time.Time  `json:"assigned_at"`
	DeactivatedAt    *time.Time `json:"deactivated_at,omitempty"`
	MaxSeatsOverride *int       `json:"max_seats_override,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
