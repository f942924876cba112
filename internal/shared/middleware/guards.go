package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"contenthub-backend/internal/auth"
	"contenthub-backend/internal/domains/user"
)

// Context keys set by the guards for downstream handlers.
const (
	CtxSession = "auth_session"
	CtxUser    = "current_user"
)

// Navigation targets, mirrored by the frontend router.
const (
	loginPath        = "/login"
	dashboardPath    = "/dashboard"
	unauthorizedPath = "/unauthorized"
)

// SessionResolver validates the request's token and returns its session.
type SessionResolver interface {
	CheckCurrentAuthStatus(ctx context.Context, token string) (auth.Session, error)
}

// ProfileLoader resolves a session identity to its profile row.
type ProfileLoader interface {
	FetchCurrentUser(ctx context.Context, authUID string) (user.User, error)
}

// AuthGuard admits authenticated requests and redirects everything else to
// the login page. On success the session is stored in the request context.
func AuthGuard(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFrom(c)
		if token == "" {
			redirect(c, loginPath)
			return
		}

		session, err := sessions.CheckCurrentAuthStatus(c.Request.Context(), token)
		if err != nil {
			redirect(c, loginPath)
			return
		}

		c.Set(CtxSession, session)
		c.Next()
	}
}

// AdminGuard admits admins, sends authenticated non-admins to the
// unauthorized page and everyone else to login. Runs after AuthGuard.
func AdminGuard(profiles ProfileLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := SessionFrom(c)
		if !ok {
			redirect(c, loginPath)
			return
		}

		profile, err := profiles.FetchCurrentUser(c.Request.Context(), session.Identity.UID)
		if err != nil {
			redirect(c, loginPath)
			return
		}
		if !profile.IsAdmin() {
			redirect(c, unauthorizedPath)
			return
		}

		c.Set(CtxUser, profile)
		c.Next()
	}
}

// GuestGuard sends already-authenticated visitors to the dashboard; anyone
// without a live session passes through.
func GuestGuard(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFrom(c)
		if token == "" {
			c.Next()
			return
		}
		if _, err := sessions.CheckCurrentAuthStatus(c.Request.Context(), token); err != nil {
			c.Next()
			return
		}
		redirect(c, dashboardPath)
	}
}

// SessionFrom returns the session AuthGuard stored on the context.
func SessionFrom(c *gin.Context) (auth.Session, bool) {
	v, ok := c.Get(CtxSession)
	if !ok {
		return auth.Session{}, false
	}
	session, ok := v.(auth.Session)
	return session, ok
}

// UserFrom returns the profile AdminGuard stored on the context.
func UserFrom(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return user.User{}, false
	}
	profile, ok := v.(user.User)
	return profile, ok
}

// TokenFrom extracts the bearer token from the Authorization header or the
// session cookie.
func TokenFrom(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie("session"); err == nil {
		return cookie
	}
	return ""
}

func redirect(c *gin.Context, target string) {
	c.Redirect(http.StatusFound, target)
	c.Abort()
}
