package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contenthub-backend/internal/auth"
	"contenthub-backend/internal/store"
)

type fakeUserRepo struct {
	rows      []User
	nextID    int64
	insertErr error
	existsErr error
}

func (r *fakeUserRepo) SelectAll(context.Context) ([]User, error) {
	out := make([]User, len(r.rows))
	copy(out, r.rows)
	return out, nil
}

func (r *fakeUserRepo) SelectByID(_ context.Context, id int64) (User, error) {
	for _, row := range r.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return User{}, store.ErrNotFound
}

func (r *fakeUserRepo) SelectByAuthUID(_ context.Context, authUID string) (User, error) {
	for _, row := range r.rows {
		if row.AuthUID == authUID {
			return row, nil
		}
	}
	return User{}, store.ErrNotFound
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	if r.existsErr != nil {
		return false, r.existsErr
	}
	for _, row := range r.rows {
		if row.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, row := range r.rows {
		if row.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ExistsByAuthUID(_ context.Context, authUID string) (bool, error) {
	for _, row := range r.rows {
		if row.AuthUID == authUID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) Insert(_ context.Context, dto CreateUserRequest, _ string, mediaURL string) (User, error) {
	if r.insertErr != nil {
		return User{}, r.insertErr
	}
	r.nextID++
	row := User{
		ID:       r.nextID,
		AuthUID:  dto.AuthUID,
		Email:    dto.Email,
		Username: dto.Username,
		Fullname: dto.Fullname,
		Role:     dto.Role,
	}
	if mediaURL != "" {
		row.ProfilePictureURL = &mediaURL
	}
	r.rows = append(r.rows, row)
	return row, nil
}

func (r *fakeUserRepo) Update(_ context.Context, id int64, patch UpdateProfileRequest, _ string, mediaURL string) (User, error) {
	for i, row := range r.rows {
		if row.ID == id {
			if patch.Username != nil {
				row.Username = *patch.Username
			}
			if patch.Fullname != nil {
				row.Fullname = *patch.Fullname
			}
			if mediaURL != "" {
				row.ProfilePictureURL = &mediaURL
			}
			r.rows[i] = row
			return row, nil
		}
	}
	return User{}, store.ErrNotFound
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	for i, row := range r.rows {
		if row.ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type fakeIdentityClient struct {
	created   []auth.Identity
	deleted   []string
	createErr error
}

func (f *fakeIdentityClient) SignInWithPassword(context.Context, string, string) (auth.Session, error) {
	return auth.Session{}, errors.New("not used")
}

func (f *fakeIdentityClient) SignInWithOAuth(context.Context, string) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeIdentityClient) SignOut(context.Context, string) error { return nil }

func (f *fakeIdentityClient) GetSession(context.Context, string) (auth.Session, error) {
	return auth.Session{}, errors.New("not used")
}

func (f *fakeIdentityClient) ResetPasswordForEmail(context.Context, string) error { return nil }

func (f *fakeIdentityClient) CreateUser(_ context.Context, email, _ string) (auth.Identity, error) {
	if f.createErr != nil {
		return auth.Identity{}, f.createErr
	}
	identity := auth.Identity{
		UID:       "uid-" + email,
		Email:     email,
		Provider:  "password",
		CreatedAt: time.Now(),
	}
	f.created = append(f.created, identity)
	return identity, nil
}

func (f *fakeIdentityClient) DeleteUser(_ context.Context, uid string) error {
	f.deleted = append(f.deleted, uid)
	return nil
}

func validCreateRequest() CreateUserRequest {
	return CreateUserRequest{
		Email:    "new@example.com",
		Username: "newuser",
		Fullname: "New User",
		Password: "supersecret",
		Role:     RoleStaff,
	}
}

func TestAddUserCreatesIdentityAndProfile(t *testing.T) {
	repo := &fakeUserRepo{}
	ids := &fakeIdentityClient{}
	s := NewStore(repo, ids, nil, nil)

	created, err := s.AddUser(context.Background(), validCreateRequest(), nil)
	require.NoError(t, err)

	require.Len(t, ids.created, 1)
	assert.Equal(t, ids.created[0].UID, created.AuthUID)
	assert.Len(t, s.Items(), 1)
	assert.Equal(t, "User Added", s.Status().Success)
}

func TestAddUserDuplicateEmailPreCheck(t *testing.T) {
	repo := &fakeUserRepo{rows: []User{{ID: 1, Email: "new@example.com", Username: "other"}}, nextID: 1}
	ids := &fakeIdentityClient{}
	s := NewStore(repo, ids, nil, nil)

	_, err := s.AddUser(context.Background(), validCreateRequest(), nil)
	require.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, "Email already in use", s.Status().Error)
	assert.Empty(t, ids.created, "no identity before the pre-checks pass")
}

func TestAddUserDuplicateUsernamePreCheck(t *testing.T) {
	repo := &fakeUserRepo{rows: []User{{ID: 1, Email: "other@example.com", Username: "newuser"}}, nextID: 1}
	ids := &fakeIdentityClient{}
	s := NewStore(repo, ids, nil, nil)

	_, err := s.AddUser(context.Background(), validCreateRequest(), nil)
	require.ErrorIs(t, err, ErrUsernameTaken)
	assert.Equal(t, "Username already taken", s.Status().Error)
}

func TestAddUserIdentityEmailInUse(t *testing.T) {
	repo := &fakeUserRepo{}
	ids := &fakeIdentityClient{createErr: auth.ErrEmailInUse}
	s := NewStore(repo, ids, nil, nil)

	_, err := s.AddUser(context.Background(), validCreateRequest(), nil)
	require.ErrorIs(t, err, ErrEmailTaken)
	assert.Empty(t, repo.rows)
}

func TestAddUserInsertFailureDeletesIdentity(t *testing.T) {
	repo := &fakeUserRepo{insertErr: errors.New("insert exploded")}
	ids := &fakeIdentityClient{}
	s := NewStore(repo, ids, nil, nil)

	_, err := s.AddUser(context.Background(), validCreateRequest(), nil)
	require.Error(t, err)

	require.Len(t, ids.created, 1)
	assert.Equal(t, []string{ids.created[0].UID}, ids.deleted, "the identity must not outlive the failed profile")
	assert.Empty(t, s.Items())
}

func TestAddUserRejectsInvalidPayload(t *testing.T) {
	repo := &fakeUserRepo{}
	ids := &fakeIdentityClient{}
	s := NewStore(repo, ids, nil, nil)

	dto := validCreateRequest()
	dto.Password = "short"
	_, err := s.AddUser(context.Background(), dto, nil)

	var vErr *store.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Empty(t, ids.created)
	assert.NotEmpty(t, s.Status().Error)
}

func TestDeleteUserRemovesIdentity(t *testing.T) {
	repo := &fakeUserRepo{rows: []User{{ID: 1, AuthUID: "uid-x", Email: "x@example.com", Username: "x"}}, nextID: 1}
	ids := &fakeIdentityClient{}
	s := NewStore(repo, ids, nil, nil)
	_, err := s.List(context.Background())
	require.NoError(t, err)

	ok, err := s.DeleteUser(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"uid-x"}, ids.deleted)
	assert.Empty(t, s.Items())
}

func TestDeleteUserClearsCurrentProfile(t *testing.T) {
	repo := &fakeUserRepo{rows: []User{{ID: 1, AuthUID: "uid-x", Email: "x@example.com", Username: "x"}}, nextID: 1}
	s := NewStore(repo, &fakeIdentityClient{}, nil, nil)

	_, err := s.FetchCurrentUser(context.Background(), "uid-x")
	require.NoError(t, err)

	_, err = s.DeleteUser(context.Background(), 1)
	require.NoError(t, err)
	_, ok := s.CurrentUser()
	assert.False(t, ok)
}

func TestFetchCurrentUserRecordsAndReturnsError(t *testing.T) {
	repo := &fakeUserRepo{}
	s := NewStore(repo, &fakeIdentityClient{}, nil, nil)

	_, err := s.FetchCurrentUser(context.Background(), "ghost")
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, "Failed to fetch current user", s.Status().Error)
	_, ok := s.CurrentUser()
	assert.False(t, ok)
}

func TestFetchCurrentUserSetsProfile(t *testing.T) {
	repo := &fakeUserRepo{rows: []User{{ID: 1, AuthUID: "uid-x", Username: "x", Role: RoleAdmin}}, nextID: 1}
	s := NewStore(repo, &fakeIdentityClient{}, nil, nil)

	got, err := s.FetchCurrentUser(context.Background(), "uid-x")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)

	current, ok := s.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "x", current.Username)
	assert.True(t, s.IsAdmin())
}

func TestUpdateProfileWithoutSession(t *testing.T) {
	s := NewStore(&fakeUserRepo{}, &fakeIdentityClient{}, nil, nil)

	_, err := s.UpdateProfile(context.Background(), UpdateProfileRequest{}, nil)
	require.ErrorIs(t, err, ErrNoProfile)
}

func TestUpdateProfilePatchesCurrentUser(t *testing.T) {
	repo := &fakeUserRepo{rows: []User{{ID: 1, AuthUID: "uid-x", Username: "old", Fullname: "Old Name"}}, nextID: 1}
	s := NewStore(repo, &fakeIdentityClient{}, nil, nil)
	_, err := s.FetchCurrentUser(context.Background(), "uid-x")
	require.NoError(t, err)

	fullname := "New Name"
	got, err := s.UpdateProfile(context.Background(), UpdateProfileRequest{Fullname: &fullname}, nil)
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Fullname)

	current, _ := s.CurrentUser()
	assert.Equal(t, "New Name", current.Fullname)
}

func TestIsAdminFalseForNonAdmin(t *testing.T) {
	repo := &fakeUserRepo{rows: []User{{ID: 1, AuthUID: "uid-x", Role: RoleStaff}}, nextID: 1}
	s := NewStore(repo, &fakeIdentityClient{}, nil, nil)

	assert.False(t, s.IsAdmin(), "no profile loaded")
	_, err := s.FetchCurrentUser(context.Background(), "uid-x")
	require.NoError(t, err)
	assert.False(t, s.IsAdmin())
}

func TestCheckIfUserAlreadySignUp(t *testing.T) {
	repo := &fakeUserRepo{rows: []User{{ID: 1, AuthUID: "uid-x"}}, nextID: 1}
	s := NewStore(repo, &fakeIdentityClient{}, nil, nil)

	ok, err := s.CheckIfUserAlreadySignUp(context.Background(), "uid-x")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.CheckIfUserAlreadySignUp(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
}
