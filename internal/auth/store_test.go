package auth

import (
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCreateToken(t *testing.T) {
	store := newTestStore(t)

	token, secret, err := store.CreateToken("user-1", "cli", nil)
	if err != nil {
		t.Fatalf("CreateToken() error = %v", err)
	}
	if !strings.HasPrefix(secret, tokenPrefix) {
		t.Errorf("token = %q, want prefix %q", secret, tokenPrefix)
	}
	if token.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", token.UserID)
	}
	if token.Name != "cli" {
		t.Errorf("Name = %q, want cli", token.Name)
	}
	if token.ExpiresAt != nil {
		t.Errorf("ExpiresAt = %v, want nil", token.ExpiresAt)
	}
}

func TestValidateToken(t *testing.T) {
	store := newTestStore(t)

	_, secret, err := store.CreateToken("user-1", "cli", nil)
	if err != nil {
		t.Fatalf("CreateToken() error = %v", err)
	}

	token, err := store.ValidateToken(secret)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if token.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", token.UserID)
	}
}

func TestValidateTokenInvalidFormat(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.ValidateToken("not-a-token"); err != ErrInvalidToken {
		t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenNotFound(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.ValidateToken(tokenPrefix + "deadbeef"); err != ErrTokenNotFound {
		t.Errorf("ValidateToken() error = %v, want ErrTokenNotFound", err)
	}
}

func TestValidateTokenExpired(t *testing.T) {
	store := newTestStore(t)

	past := time.Now().Add(-time.Hour)
	_, secret, err := store.CreateToken("user-1", "old", &past)
	if err != nil {
		t.Fatalf("CreateToken() error = %v", err)
	}

	if _, err := store.ValidateToken(secret); err != ErrTokenExpired {
		t.Errorf("ValidateToken() error = %v, want ErrTokenExpired", err)
	}
}

func TestListTokensScopedToUser(t *testing.T) {
	store := newTestStore(t)

	if _, _, err := store.CreateToken("user-1", "a", nil); err != nil {
		t.Fatalf("CreateToken() error = %v", err)
	}
	if _, _, err := store.CreateToken("user-1", "b", nil); err != nil {
		t.Fatalf("CreateToken() error = %v", err)
	}
	if _, _, err := store.CreateToken("user-2", "c", nil); err != nil {
		t.Fatalf("CreateToken() error = %v", err)
	}

	tokens, err := store.ListTokens("user-1")
	if err != nil {
		t.Fatalf("ListTokens() error = %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("len(tokens) = %d, want 2", len(tokens))
	}
	for _, token := range tokens {
		if token.UserID != "user-1" {
			t.Errorf("UserID = %q, want user-1", token.UserID)
		}
	}
}

func TestRevokeToken(t *testing.T) {
	store := newTestStore(t)

	_, secret, err := store.CreateToken("user-1", "cli", nil)
	if err != nil {
		t.Fatalf("CreateToken() error = %v", err)
	}

	if err := store.RevokeToken(secret); err != nil {
		t.Fatalf("RevokeToken() error = %v", err)
	}
	if _, err := store.ValidateToken(secret); err != ErrTokenNotFound {
		t.Errorf("ValidateToken() after revoke error = %v, want ErrTokenNotFound", err)
	}
	if err := store.RevokeToken(secret); err != ErrTokenNotFound {
		t.Errorf("RevokeToken() twice error = %v, want ErrTokenNotFound", err)
	}
}
