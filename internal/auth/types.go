package auth

import (
	"time"
)

// Token represents an API token tied to one user account
type Token struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Name       string     `json:"name"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// AuthContext holds authentication information for a request
type AuthContext struct {
	Token *Token
}

// UserID returns the authenticated user, or empty when unauthenticated
func (a *AuthContext) UserID() string {
	if a == nil || a.Token == nil {
		return ""
	}
	return a.Token.UserID
}
