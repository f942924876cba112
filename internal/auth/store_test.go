package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	signInErr   error
	signOutErr  error
	sessionErr  error
	resetErr    error
	oauthURL    string
	oauthErr    error
	session     Session
	deletedUIDs []string
	signOuts    int
}

func (f *fakeClient) SignInWithPassword(context.Context, string, string) (Session, error) {
	if f.signInErr != nil {
		return Session{}, f.signInErr
	}
	return f.session, nil
}

func (f *fakeClient) SignInWithOAuth(context.Context, string) (string, error) {
	if f.oauthErr != nil {
		return "", f.oauthErr
	}
	return f.oauthURL, nil
}

func (f *fakeClient) SignOut(context.Context, string) error {
	f.signOuts++
	return f.signOutErr
}

func (f *fakeClient) GetSession(context.Context, string) (Session, error) {
	if f.sessionErr != nil {
		return Session{}, f.sessionErr
	}
	return f.session, nil
}

func (f *fakeClient) ResetPasswordForEmail(context.Context, string) error {
	return f.resetErr
}

func (f *fakeClient) CreateUser(context.Context, string, string) (Identity, error) {
	return Identity{}, errors.New("not used")
}

func (f *fakeClient) DeleteUser(_ context.Context, uid string) error {
	f.deletedUIDs = append(f.deletedUIDs, uid)
	return nil
}

type fakeProfiles struct {
	signedUp bool
	err      error
}

func (f *fakeProfiles) CheckIfUserAlreadySignUp(context.Context, string) (bool, error) {
	return f.signedUp, f.err
}

func testSession() Session {
	return Session{
		Identity: Identity{
			UID:      "uid-1",
			Email:    "a@b.co",
			Provider: "password",
		},
		AccessToken: "token-1",
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

func TestLoginMovesToAuthenticated(t *testing.T) {
	client := &fakeClient{session: testSession()}
	s := NewStore(client, &fakeProfiles{signedUp: true})
	require.Equal(t, StateAnonymous, s.State())

	session, err := s.Login(context.Background(), "a@b.co", "secret")
	require.NoError(t, err)
	assert.Equal(t, "token-1", session.AccessToken)
	assert.Equal(t, StateAuthenticated, s.State())
	assert.Equal(t, "Logged in", s.Status().Success)

	got, ok := s.Session()
	require.True(t, ok)
	assert.Equal(t, "uid-1", got.Identity.UID)
}

func TestLoginFailureMapsFriendlyMessage(t *testing.T) {
	client := &fakeClient{signInErr: ErrInvalidCredentials}
	s := NewStore(client, &fakeProfiles{})

	_, err := s.Login(context.Background(), "a@b.co", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, StateAnonymous, s.State())
	assert.Equal(t, "Incorrect email or password", s.Status().Error)
}

func TestLoginUnconfirmedEmail(t *testing.T) {
	client := &fakeClient{signInErr: ErrEmailNotConfirmed}
	s := NewStore(client, &fakeProfiles{})

	_, err := s.Login(context.Background(), "a@b.co", "secret")
	require.Error(t, err)
	assert.Equal(t, "Please confirm your email before logging in", s.Status().Error)
}

func TestLogoutClearsStateOnSuccess(t *testing.T) {
	client := &fakeClient{session: testSession()}
	s := NewStore(client, &fakeProfiles{signedUp: true})
	_, err := s.Login(context.Background(), "a@b.co", "secret")
	require.NoError(t, err)

	require.NoError(t, s.Logout(context.Background()))
	assert.Equal(t, StateAnonymous, s.State())
	_, ok := s.Session()
	assert.False(t, ok)
}

func TestLogoutRethrowsAndKeepsSession(t *testing.T) {
	client := &fakeClient{session: testSession()}
	s := NewStore(client, &fakeProfiles{signedUp: true})
	_, err := s.Login(context.Background(), "a@b.co", "secret")
	require.NoError(t, err)

	client.signOutErr = errors.New("backend down")
	err = s.Logout(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateAuthenticated, s.State(), "failed logout keeps the session for a retry")
}

func TestLogoutWithoutSessionIsNoop(t *testing.T) {
	client := &fakeClient{}
	s := NewStore(client, &fakeProfiles{})

	require.NoError(t, s.Logout(context.Background()))
	assert.Zero(t, client.signOuts)
}

func TestOAuthLoginReturnsRedirectURL(t *testing.T) {
	client := &fakeClient{oauthURL: "https://provider/authorize?x=1"}
	s := NewStore(client, &fakeProfiles{})

	url, err := s.OAuthLogin(context.Background(), "google")
	require.NoError(t, err)
	assert.Equal(t, "https://provider/authorize?x=1", url)
}

func TestOAuthLoginUnknownProvider(t *testing.T) {
	client := &fakeClient{oauthErr: ErrUnknownProvider}
	s := NewStore(client, &fakeProfiles{})

	_, err := s.OAuthLogin(context.Background(), "myspace")
	require.ErrorIs(t, err, ErrUnknownProvider)
	assert.Equal(t, StateAnonymous, s.State())
}

func TestResetPasswordRethrows(t *testing.T) {
	client := &fakeClient{resetErr: errors.New("backend down")}
	s := NewStore(client, &fakeProfiles{})

	err := s.ResetPassword(context.Background(), "a@b.co")
	require.Error(t, err)
	assert.Equal(t, "Failed to send password reset email", s.Status().Error)
}

func TestCheckCurrentAuthStatusAuthenticates(t *testing.T) {
	client := &fakeClient{session: testSession()}
	s := NewStore(client, &fakeProfiles{signedUp: true})

	session, err := s.CheckCurrentAuthStatus(context.Background(), "token-1")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", session.Identity.UID)
	assert.Equal(t, StateAuthenticated, s.State())
}

func TestCheckCurrentAuthStatusExpiredSession(t *testing.T) {
	client := &fakeClient{sessionErr: ErrSessionExpired}
	s := NewStore(client, &fakeProfiles{signedUp: true})

	_, err := s.CheckCurrentAuthStatus(context.Background(), "stale")
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, StateAnonymous, s.State())
}

func TestCheckCurrentAuthStatusOrphanedIdentity(t *testing.T) {
	client := &fakeClient{session: testSession()}
	s := NewStore(client, &fakeProfiles{signedUp: false})

	_, err := s.CheckCurrentAuthStatus(context.Background(), "token-1")
	require.ErrorIs(t, err, ErrOrphanedIdentity)

	assert.Equal(t, StateAnonymous, s.State())
	assert.Equal(t, []string{"uid-1"}, client.deletedUIDs, "the orphan must be deleted")
	assert.Equal(t, 1, client.signOuts, "the orphan's session must be revoked")
	_, ok := s.Session()
	assert.False(t, ok)
}

func TestFriendlyMessageFallsBackGeneric(t *testing.T) {
	assert.Equal(t, "Something went wrong, please try again",
		FriendlyMessage(errors.New("pq: weird internal detail")))
}
