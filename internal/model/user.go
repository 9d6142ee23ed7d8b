package model

import "time"

// User represents an application user as stored in the `users` table.
// The password hash never serializes.
//
// Fields:
//  ID           – primary key identifier (UUID).
//  Email        – unique email address.
//  Username     – optional display handle.
//  FirstName    – given name.
//  LastName     – optional family name.
//  PasswordHash – bcrypt hashed password.
//  Role         – coarse role name (player, manager, admin).
//  IsActive     – whether the account is active.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     *string   `json:"username,omitempty"`
	FirstName    string    `json:"first_name"`
	LastName     *string   `json:"last_name,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Club is a poker club that hosts tournaments.
//
// Fields:
//  ID        – primary key identifier (UUID).
//  Name      – club name.
//  City      – optional city.
//  Country   – optional country.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Club struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	City      *string   `json:"city,omitempty"`
	Country   *string   `json:"country,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClubManager links a user to a club they manage. Workflows that
// mutate seating, clocks or results require an active manager link for
// the tournament's club.
//
// Fields:
//  ID         – primary key identifier (UUID).
//  ClubID     – managed club.
//  UserID     – managing user.
//  IsActive   – whether the link is active.
//  AssignedAt – when management was granted.
type ClubManager struct {
	ID         string    `json:"id"`
	ClubID     string    `json:"club_id"`
	UserID     string    `json:"user_id"`
	IsActive   bool      `json:"is_active"`
	AssignedAt time.Time `json:"assigned_at"`
}
