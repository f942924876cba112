package auth

import "errors"

// Canonical identity backend errors. The store maps these to the friendly
// strings shown to users; everything else falls through generic.
var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrEmailInUse         = errors.New("email already registered")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidToken       = errors.New("invalid token")
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrUnknownProvider    = errors.New("unknown oauth provider")

	// ErrOrphanedIdentity is raised when a live session's identity has no
	// profile row; the store clears local state and removes the identity.
	ErrOrphanedIdentity = errors.New("identity has no profile")
)

// FriendlyMessage translates a login failure into the string surfaced to the
// user. Unknown errors get a generic message so backend detail never leaks.
func FriendlyMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "Incorrect email or password"
	case errors.Is(err, ErrEmailNotConfirmed):
		return "Please confirm your email before logging in"
	case errors.Is(err, ErrSessionExpired):
		return "Your session has expired, please log in again"
	default:
		return "Something went wrong, please try again"
	}
}
