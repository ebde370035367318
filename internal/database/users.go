package database

import (
	"context"
	"strings"
)

type Users struct {
	db DB
}

const userColumns = `id, email, password_hash, first_name, last_name, is_staff, created_at`

// Create inserts a user. A taken email is reported as ErrConflict.
func (s *Users) Create(ctx context.Context, u *User) error {
	u.Email = normalizeEmail(u.Email)
	err := s.db.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name, is_staff)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.IsStaff).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return wrap("create user", err)
	}
	return nil
}

func (s *Users) ByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, normalizeEmail(email)).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.IsStaff, &u.CreatedAt)
	if err != nil {
		return nil, wrap("get user by email", err)
	}
	return &u, nil
}

func (s *Users) ByID(ctx context.Context, id int64) (*User, error) {
	var u User
	err := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.IsStaff, &u.CreatedAt)
	if err != nil {
		return nil, wrap("get user", err)
	}
	return &u, nil
}

// Promote makes a user staff and resets its password hash.
func (s *Users) Promote(ctx context.Context, id int64, passwordHash string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users SET is_staff = TRUE, password_hash = $2 WHERE id = $1
	`, id, passwordHash)
	if err != nil {
		return wrap("promote user", err)
	}
	return affected(tag)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
