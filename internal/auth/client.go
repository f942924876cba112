package auth

import (
	"context"
	"time"
)

// Identity is an account in the identity backend, distinct from the profile
// row the user store keeps.
type Identity struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Provider  string    `json:"provider"` // "password", "google", "github"
	CreatedAt time.Time `json:"created_at"`
}

// Session is an authenticated identity plus its access token.
type Session struct {
	Identity    Identity  `json:"identity"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Client is the identity backend boundary. Implementations must return the
// canonical errors of this package so stores can map them to friendly
// messages.
type Client interface {
	// SignInWithPassword verifies credentials and opens a session.
	SignInWithPassword(ctx context.Context, email, password string) (Session, error)

	// SignInWithOAuth returns the provider redirect URL that starts the flow.
	// Completion is observed later through GetSession.
	SignInWithOAuth(ctx context.Context, provider string) (string, error)

	// SignOut revokes the session carried by token.
	SignOut(ctx context.Context, token string) error

	// GetSession resolves token to its live session, or ErrSessionExpired /
	// ErrInvalidToken.
	GetSession(ctx context.Context, token string) (Session, error)

	// ResetPasswordForEmail issues a password-reset token for email.
	ResetPasswordForEmail(ctx context.Context, email string) error

	// CreateUser registers an identity on behalf of an administrator and
	// returns its UID without opening a session.
	CreateUser(ctx context.Context, email, password string) (Identity, error)

	// DeleteUser removes an identity by UID.
	DeleteUser(ctx context.Context, uid string) error
}
