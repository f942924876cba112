package auth

import (
	"context"
	"sync"

	"contenthub-backend/pkg/logger"
)

// State is the explicit authentication state, replacing flag combinations.
type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
)

// ProfileDirectory is the slice of the user store the auth flow needs: the
// signup cross-check that detects orphaned identities.
type ProfileDirectory interface {
	CheckIfUserAlreadySignUp(ctx context.Context, authUID string) (bool, error)
}

// Status mirrors the entity stores' side channel: user-facing strings only.
type Status struct {
	Loading bool
	Error   string
	Success string
}

// Store drives the session lifecycle against the identity backend.
//
// Transitions: Anonymous -> Authenticating -> Authenticated on login;
// logout or an invalid/orphaned session drops back to Anonymous. Errors are
// recorded as friendly strings AND returned, so callers can both render and
// branch.
type Store struct {
	client   Client
	profiles ProfileDirectory

	mu      sync.Mutex
	state   State
	session *Session
	status  Status
}

func NewStore(client Client, profiles ProfileDirectory) *Store {
	return &Store{
		client:   client,
		profiles: profiles,
		state:    StateAnonymous,
	}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Session returns the live session, if the store is authenticated.
func (s *Store) Session() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return Session{}, false
	}
	return *s.session, true
}

func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Store) ResetStatus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Error = ""
	s.status.Success = ""
}

// Login exchanges credentials for a session. Known identity errors surface as
// friendly strings; the raw error is returned either way.
func (s *Store) Login(ctx context.Context, email, password string) (Session, error) {
	s.begin(StateAuthenticating)
	defer s.finish()

	session, err := s.client.SignInWithPassword(ctx, email, password)
	if err != nil {
		s.drop(FriendlyMessage(err))
		return Session{}, err
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	s.session = &session
	s.status.Success = "Logged in"
	s.mu.Unlock()
	return session, nil
}

// Logout revokes the current session. On remote failure local state is kept
// and the error re-thrown; a retry can still revoke.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()
	if session == nil {
		return nil
	}

	s.begin(s.State())
	defer s.finish()

	if err := s.client.SignOut(ctx, session.AccessToken); err != nil {
		s.mu.Lock()
		s.status.Error = "Failed to log out"
		s.mu.Unlock()
		return err
	}

	s.drop("")
	s.mu.Lock()
	s.status.Success = "Logged out"
	s.mu.Unlock()
	return nil
}

// OAuthLogin starts a provider flow and returns the redirect URL. The store
// moves to Authenticating; completion is observed later through
// CheckCurrentAuthStatus.
func (s *Store) OAuthLogin(ctx context.Context, provider string) (string, error) {
	s.begin(StateAuthenticating)
	defer s.finish()

	url, err := s.client.SignInWithOAuth(ctx, provider)
	if err != nil {
		s.drop(FriendlyMessage(err))
		return "", err
	}
	return url, nil
}

// ResetPassword requests a password-reset for email and re-throws failures.
func (s *Store) ResetPassword(ctx context.Context, email string) error {
	s.begin(s.State())
	defer s.finish()

	if err := s.client.ResetPasswordForEmail(ctx, email); err != nil {
		s.mu.Lock()
		s.status.Error = "Failed to send password reset email"
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.status.Success = "Password reset email sent"
	s.mu.Unlock()
	return nil
}

// CheckCurrentAuthStatus resolves token to a session and cross-checks that
// its identity still owns a profile row. An identity without a profile is an
// orphan: local state is cleared and the identity deleted so it cannot log in
// again.
func (s *Store) CheckCurrentAuthStatus(ctx context.Context, token string) (Session, error) {
	s.begin(s.State())
	defer s.finish()

	session, err := s.client.GetSession(ctx, token)
	if err != nil {
		s.drop(FriendlyMessage(err))
		return Session{}, err
	}

	signedUp, err := s.profiles.CheckIfUserAlreadySignUp(ctx, session.Identity.UID)
	if err != nil {
		s.mu.Lock()
		s.status.Error = "Failed to verify account"
		s.mu.Unlock()
		return Session{}, err
	}
	if !signedUp {
		s.drop("")
		if err := s.client.SignOut(ctx, session.AccessToken); err != nil {
			logger.Error("failed to revoke orphaned session", err)
		}
		if err := s.client.DeleteUser(ctx, session.Identity.UID); err != nil {
			logger.Error("failed to delete orphaned identity", err)
		}
		return Session{}, ErrOrphanedIdentity
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	s.session = &session
	s.mu.Unlock()
	return session, nil
}

func (s *Store) begin(state State) {
	s.mu.Lock()
	s.state = state
	s.status.Loading = true
	s.status.Error = ""
	s.mu.Unlock()
}

func (s *Store) finish() {
	s.mu.Lock()
	s.status.Loading = false
	s.mu.Unlock()
}

// drop resets to Anonymous, optionally recording an error string.
func (s *Store) drop(errMsg string) {
	s.mu.Lock()
	s.state = StateAnonymous
	s.session = nil
	s.status.Error = errMsg
	s.mu.Unlock()
}
