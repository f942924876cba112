package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"contenthub-backend/internal/auth"
	"contenthub-backend/internal/config"
	"contenthub-backend/internal/infrastructure/database"
	"contenthub-backend/pkg/cache"
	"contenthub-backend/pkg/jwt"
	"contenthub-backend/pkg/logger"
)

const (
	sessionKeyPrefix = "session:"
	resetKeyPrefix   = "pwreset:"
	resetTokenExpiry = time.Hour
	providerPassword = "password"
)

// sessionRecord is what lives in Redis for the token's lifetime. Deleting it
// revokes the token before its JWT expiry.
type sessionRecord struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// Service implements auth.Client over an auth_identities table, bcrypt
// password hashes and Redis-backed sessions referenced by JWT.
type Service struct {
	pool     *pgxpool.Pool
	sessions cache.Cache
	tokens   *jwt.Manager
	cfg      *config.Config
}

func New(pool *pgxpool.Pool, sessions cache.Cache, tokens *jwt.Manager, cfg *config.Config) *Service {
	return &Service{pool: pool, sessions: sessions, tokens: tokens, cfg: cfg}
}

var _ auth.Client = (*Service)(nil)

func (s *Service) SignInWithPassword(ctx context.Context, email, password string) (auth.Session, error) {
	var (
		identity  auth.Identity
		hash      string
		confirmed bool
	)
	err := s.pool.QueryRow(ctx,
		`SELECT uid, email, provider, email_confirmed, password_hash, created_at
		 FROM auth_identities WHERE email = $1`, email).
		Scan(&identity.UID, &identity.Email, &identity.Provider, &confirmed, &hash, &identity.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.Session{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return auth.Session{}, fmt.Errorf("query identity: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return auth.Session{}, auth.ErrInvalidCredentials
	}
	if !confirmed {
		return auth.Session{}, auth.ErrEmailNotConfirmed
	}

	return s.openSession(ctx, identity)
}

func (s *Service) SignInWithOAuth(ctx context.Context, provider string) (string, error) {
	authorizeURL, ok := s.cfg.OAuth.Providers[provider]
	if !ok {
		return "", auth.ErrUnknownProvider
	}

	redirect := url.Values{}
	redirect.Set("redirect_uri", s.cfg.App.BaseURL+"/api/v1/auth/callback/"+provider)
	redirect.Set("response_type", "code")
	redirect.Set("state", uuid.NewString())
	return authorizeURL + "?" + redirect.Encode(), nil
}

func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return auth.ErrInvalidToken
	}
	return s.sessions.Delete(ctx, sessionKeyPrefix+claims.SessionID)
}

func (s *Service) GetSession(ctx context.Context, token string) (auth.Session, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return auth.Session{}, auth.ErrInvalidToken
	}

	var record sessionRecord
	found, err := s.sessions.Get(ctx, sessionKeyPrefix+claims.SessionID, &record)
	if err != nil {
		return auth.Session{}, fmt.Errorf("load session: %w", err)
	}
	if !found {
		return auth.Session{}, auth.ErrSessionExpired
	}

	var identity auth.Identity
	err = s.pool.QueryRow(ctx,
		`SELECT uid, email, provider, created_at FROM auth_identities WHERE uid = $1`, record.UID).
		Scan(&identity.UID, &identity.Email, &identity.Provider, &identity.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.Session{}, auth.ErrSessionExpired
	}
	if err != nil {
		return auth.Session{}, fmt.Errorf("query identity: %w", err)
	}

	return auth.Session{
		Identity:    identity,
		AccessToken: token,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// ResetPasswordForEmail issues a reset token with a one hour TTL. There is no
// mail delivery here; the token is logged so an operator (or a future mailer)
// can hand it over. Unknown emails are treated as success so the endpoint
// cannot be used to probe accounts.
func (s *Service) ResetPasswordForEmail(ctx context.Context, email string) error {
	var uid string
	err := s.pool.QueryRow(ctx,
		`SELECT uid FROM auth_identities WHERE email = $1`, email).Scan(&uid)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("query identity: %w", err)
	}

	token := uuid.NewString()
	if err := s.sessions.Set(ctx, resetKeyPrefix+token, uid, resetTokenExpiry); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	logger.Info("password reset token issued", map[string]interface{}{"email": email, "token": token})
	return nil
}

func (s *Service) CreateUser(ctx context.Context, email, password string) (auth.Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("hash password: %w", err)
	}

	identity := auth.Identity{
		UID:      uuid.NewString(),
		Email:    email,
		Provider: providerPassword,
	}
	// Admin-created identities skip email confirmation.
	err = s.pool.QueryRow(ctx,
		`INSERT INTO auth_identities (uid, email, provider, email_confirmed, password_hash, created_at)
		 VALUES ($1, $2, $3, true, $4, now())
		 RETURNING created_at`,
		identity.UID, identity.Email, identity.Provider, string(hash)).
		Scan(&identity.CreatedAt)
	if err != nil {
		if _, ok := database.UniqueViolation(err); ok {
			return auth.Identity{}, auth.ErrEmailInUse
		}
		return auth.Identity{}, fmt.Errorf("insert identity: %w", err)
	}
	return identity, nil
}

func (s *Service) DeleteUser(ctx context.Context, uid string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM auth_identities WHERE uid = $1`, uid)
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrIdentityNotFound
	}
	return nil
}

func (s *Service) openSession(ctx context.Context, identity auth.Identity) (auth.Session, error) {
	sessionID := uuid.NewString()
	ttl := time.Duration(s.cfg.JWT.SessionExpiry) * time.Hour

	record := sessionRecord{UID: identity.UID, Email: identity.Email}
	if err := s.sessions.Set(ctx, sessionKeyPrefix+sessionID, record, ttl); err != nil {
		return auth.Session{}, fmt.Errorf("store session: %w", err)
	}

	token, expiresAt, err := s.tokens.GenerateSessionToken(identity.UID, identity.Email, sessionID)
	if err != nil {
		return auth.Session{}, fmt.Errorf("sign token: %w", err)
	}

	return auth.Session{
		Identity:    identity,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}
