package user

import (
	"context"
	"errors"
	"sync"

	"contenthub-backend/internal/auth"
	"contenthub-backend/internal/infrastructure/storage"
	"contenthub-backend/internal/store"
	"contenthub-backend/pkg/logger"
)

// Store manages user profiles. The generic collection behavior is inherited;
// on top of it sit the flows that touch the identity backend (AddUser,
// DeleteUser) and the current-user profile tracked for the active session.
type Store struct {
	*store.Store[User, CreateUserRequest, UpdateProfileRequest]

	repo Repository
	ids  auth.Client

	mu      sync.Mutex
	current *User
}

func NewStore(repo Repository, ids auth.Client, images *storage.ImageTransfer, cleanup store.BlobPurger) *Store {
	return &Store{
		Store: store.New(store.Config[User, CreateUserRequest, UpdateProfileRequest]{
			Singular: "user",
			Plural:   "users",
			Repo:     repo,
			Images:   images,
			Cleanup:  cleanup,
		}),
		repo: repo,
		ids:  ids,
	}
}

// AddUser registers an identity for the new user and inserts the profile row.
// The duplicate pre-checks are advisory and inherently racy; the unique
// constraints behind Insert are the real guard, a race just loses the
// friendly message. If the profile insert fails the already-created identity
// is deleted again, best-effort (the reconciliation job is the backstop).
func (s *Store) AddUser(ctx context.Context, dto CreateUserRequest, media *storage.Blob) (User, error) {
	if err := dto.Validate(); err != nil {
		vErr := &store.ValidationError{Reason: err.Error()}
		s.Fail(vErr.Reason)
		return User{}, vErr
	}

	s.Begin()
	defer s.Finish()

	taken, err := s.repo.ExistsByEmail(ctx, dto.Email)
	if err != nil {
		s.Fail("Failed to add user")
		return User{}, &store.RemoteError{Op: "select", Entity: "user", Err: err}
	}
	if taken {
		s.Fail(ErrEmailTaken.Error())
		return User{}, ErrEmailTaken
	}

	taken, err = s.repo.ExistsByUsername(ctx, dto.Username)
	if err != nil {
		s.Fail("Failed to add user")
		return User{}, &store.RemoteError{Op: "select", Entity: "user", Err: err}
	}
	if taken {
		s.Fail(ErrUsernameTaken.Error())
		return User{}, ErrUsernameTaken
	}

	identity, err := s.ids.CreateUser(ctx, dto.Email, dto.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailInUse) {
			s.Fail(ErrEmailTaken.Error())
			return User{}, ErrEmailTaken
		}
		s.Fail("Failed to add user")
		return User{}, err
	}
	dto.AuthUID = identity.UID

	row, err := s.Store.Create(ctx, dto, media)
	if err != nil {
		if delErr := s.ids.DeleteUser(ctx, identity.UID); delErr != nil {
			logger.Error("failed to delete identity after profile insert failure", delErr)
		}
		return User{}, err
	}
	return row, nil
}

// DeleteUser removes the profile row, its blob and its identity. The identity
// delete comes after the row is gone; if it fails the orphan is logged and
// left for the reconciliation job.
func (s *Store) DeleteUser(ctx context.Context, id int64) (bool, error) {
	target, cached := s.ByID(id)
	if !cached {
		row, err := s.repo.SelectByID(ctx, id)
		if err == nil {
			target = row
			cached = true
		}
	}

	ok, err := s.Store.Remove(ctx, id)
	if err != nil {
		return false, err
	}

	if cached {
		if err := s.ids.DeleteUser(ctx, target.AuthUID); err != nil && !errors.Is(err, auth.ErrIdentityNotFound) {
			logger.Error("failed to delete identity for removed user", err)
		}
	}

	s.mu.Lock()
	if s.current != nil && s.current.ID == id {
		s.current = nil
	}
	s.mu.Unlock()

	return ok, nil
}

// FetchCurrentUser loads the profile owned by the session identity. The error
// is recorded in status AND returned; callers react to it (a missing profile
// is how the auth flow detects an orphaned identity).
func (s *Store) FetchCurrentUser(ctx context.Context, authUID string) (User, error) {
	s.Begin()
	defer s.Finish()

	row, err := s.repo.SelectByAuthUID(ctx, authUID)
	if err != nil {
		s.Fail("Failed to fetch current user")
		if errors.Is(err, store.ErrNotFound) {
			return User{}, err
		}
		return User{}, &store.RemoteError{Op: "select", Entity: "user", Err: err}
	}

	s.mu.Lock()
	s.current = &row
	s.mu.Unlock()
	return row, nil
}

// UpdateProfile patches the current user's own profile. Errors are recorded
// and returned, like FetchCurrentUser.
func (s *Store) UpdateProfile(ctx context.Context, patch UpdateProfileRequest, media *storage.Blob) (User, error) {
	s.mu.Lock()
	cur := s.current
	s.mu.Unlock()
	if cur == nil {
		s.Fail(ErrNoProfile.Error())
		return User{}, ErrNoProfile
	}

	row, err := s.Store.Update(ctx, cur.ID, patch, media)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	s.current = &row
	s.mu.Unlock()
	return row, nil
}

// CurrentUser returns the profile of the active session, if one is loaded.
func (s *Store) CurrentUser() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return User{}, false
	}
	return *s.current, true
}

// ClearProfile drops the current-user profile, e.g. on logout or when the
// session turns out to be orphaned.
func (s *Store) ClearProfile() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// IsAdmin reports whether the current session's profile has the admin role.
func (s *Store) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil && s.current.IsAdmin()
}

// CheckIfUserAlreadySignUp reports whether an identity already owns a profile
// row.
func (s *Store) CheckIfUserAlreadySignUp(ctx context.Context, authUID string) (bool, error) {
	return s.repo.ExistsByAuthUID(ctx, authUID)
}
