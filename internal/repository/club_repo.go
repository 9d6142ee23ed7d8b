package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/brunomoyse/pp-service/internal/model"
)

// ClubRepo provides operations on clubs and club_managers. The
// manager link is what authorizes seating, clock and results
// mutations: a user manages a tournament when they hold an active
// manager row for the tournament's club.
type ClubRepo struct {
	db *sql.DB
}

// NewClubRepo returns a new ClubRepo bound to the given database.
func NewClubRepo(db *sql.DB) *ClubRepo { return &ClubRepo{db: db} }

// Create inserts a new club and queries the row back for timestamps.
func (r *ClubRepo) Create(ctx context.Context, c *model.Club) error {
	const q = `INSERT INTO clubs (id, name, city, country) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, c.ID, c.Name, c.City, c.Country); err != nil {
		return err
	}
	const sel = `SELECT id, name, city, country, created_at, updated_at FROM clubs WHERE id = ?`
	var city, country sql.NullString
	err := r.db.QueryRowContext(ctx, sel, c.ID).Scan(&c.ID, &c.Name, &city, &country, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return err
	}
	if city.Valid {
		v := city.String
		c.City = &v
	}
	if country.Valid {
		v := country.String
		c.Country = &v
	}
	return nil
}

// GetByID returns a club by primary key, or sql.ErrNoRows.
func (r *ClubRepo) GetByID(ctx context.Context, clubID string) (*model.Club, error) {
	const q = `SELECT id, name, city, country, created_at, updated_at FROM clubs WHERE id = ?`
	var c model.Club
	var city, country sql.NullString
	err := r.db.QueryRowContext(ctx, q, clubID).Scan(&c.ID, &c.Name, &city, &country, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if city.Valid {
		v := city.String
		c.City = &v
	}
	if country.Valid {
		v := country.String
		c.Country = &v
	}
	return &c, nil
}

// AddManager grants a user management of a club. Re-granting an
// existing link reactivates it.
func (r *ClubRepo) AddManager(ctx context.Context, m *model.ClubManager) error {
	const q = `INSERT INTO club_managers (id, club_id, user_id, is_active, assigned_at)
	           VALUES (?, ?, ?, 1, ?)
	           ON DUPLICATE KEY UPDATE is_active = 1, assigned_at = VALUES(assigned_at)`
	if m.AssignedAt.IsZero() {
		m.AssignedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, q, m.ID, m.ClubID, m.UserID, m.AssignedAt)
	return err
}

// IsActiveManager reports whether the user holds an active manager
// link for the club.
func (r *ClubRepo) IsActiveManager(ctx context.Context, clubID, userID string) (bool, error) {
	const q = `SELECT 1 FROM club_managers WHERE club_id = ? AND user_id = ? AND is_active = 1`
	var one int
	err := r.db.QueryRowContext(ctx, q, clubID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ManagesTournament reports whether the user actively manages the club
// hosting the given tournament. ErrTournamentNotFound is returned when
// the tournament does not exist, so handlers can distinguish a missing
// resource from a permission failure.
func (r *ClubRepo) ManagesTournament(ctx context.Context, tournamentID, userID string) (bool, error) {
	const exists = `SELECT club_id FROM tournaments WHERE id = ?`
	var clubID string
	if err := r.db.QueryRowContext(ctx, exists, tournamentID).Scan(&clubID); err != nil {
		if err == sql.ErrNoRows {
			return false, ErrTournamentNotFound
		}
		return false, err
	}
	return r.IsActiveManager(ctx, clubID, userID)
}
