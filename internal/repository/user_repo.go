package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/brunomoyse/pp-service/internal/model"
)

// UserRepo provides operations on the users table. Emails are
// normalized to lower case before storage and lookup so the unique
// key behaves case-insensitively.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userCols = `id, email, username, first_name, last_name, password_hash, role, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*model.User, error) {
	var u model.User
	var username, lastName sql.NullString
	err := row.Scan(
		&u.ID, &u.Email, &username, &u.FirstName, &lastName,
		&u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if username.Valid {
		v := username.String
		u.Username = &v
	}
	if lastName.Valid {
		v := lastName.String
		u.LastName = &v
	}
	return &u, nil
}

// Create inserts a new user. The caller supplies an already-hashed
// password. A duplicate email returns ErrEmailTaken.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	const q = `INSERT INTO users (id, email, username, first_name, last_name, password_hash, role)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, u.ID, u.Email, u.Username, u.FirstName, u.LastName, u.PasswordHash, u.Role); err != nil {
		if isDuplicateEntry(err) {
			return ErrEmailTaken
		}
		return err
	}
	const sel = `SELECT ` + userCols + ` FROM users WHERE id = ?`
	stored, err := scanUser(r.db.QueryRowContext(ctx, sel, u.ID))
	if err != nil {
		return err
	}
	*u = *stored
	return nil
}

// GetByEmail fetches a user by normalized email, or ErrUserNotFound.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	const q = `SELECT ` + userCols + ` FROM users WHERE email = ? LIMIT 1`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, email))
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	return u, err
}

// GetByID fetches a user by id, or ErrUserNotFound.
func (r *UserRepo) GetByID(ctx context.Context, userID string) (*model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id = ? LIMIT 1`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, userID))
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	return u, err
}
