package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateUser inserts a new user account
func (s *Store) CreateUser(username, email, fullName string) (*User, error) {
	user := &User{
		ID:        uuid.New().String(),
		Username:  username,
		Email:     email,
		FullName:  fullName,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO users (id, username, email, full_name, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.FullName, user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return user, nil
}

// GetUser returns a user by ID
func (s *Store) GetUser(userID string) (*User, error) {
	return s.scanUser(s.db.QueryRow(
		`SELECT id, username, email, full_name, preferences, created_at FROM users WHERE id = ?`,
		userID,
	))
}

// GetUserByUsername returns a user by username
func (s *Store) GetUserByUsername(username string) (*User, error) {
	return s.scanUser(s.db.QueryRow(
		`SELECT id, username, email, full_name, preferences, created_at FROM users WHERE username = ?`,
		username,
	))
}

func (s *Store) scanUser(row *sql.Row) (*User, error) {
	var user User
	var fullName, preferences sql.NullString

	err := row.Scan(&user.ID, &user.Username, &user.Email, &fullName, &preferences, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	user.FullName = fullName.String
	if preferences.Valid && preferences.String != "" {
		user.Preferences = json.RawMessage(preferences.String)
	}
	return &user, nil
}

// UpdateUserProfile updates the mutable profile fields
func (s *Store) UpdateUserProfile(userID, email, fullName string) error {
	result, err := s.db.Exec(
		`UPDATE users SET email = ?, full_name = ? WHERE id = ?`,
		email, fullName, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetUserPreferences replaces the stored learning preferences JSON
func (s *Store) SetUserPreferences(userID string, prefs json.RawMessage) error {
	result, err := s.db.Exec(
		`UPDATE users SET preferences = ? WHERE id = ?`,
		string(prefs), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrUserNotFound
	}
	return nil
}
