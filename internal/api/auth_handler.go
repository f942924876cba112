package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"contenthub-backend/internal/auth"
	"contenthub-backend/internal/shared/middleware"
	"contenthub-backend/internal/shared/response"
)

type AuthHandler struct {
	store *auth.Store
}

func NewAuthHandler(store *auth.Store) *AuthHandler {
	return &AuthHandler{store: store}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.Login)
	rg.POST("/logout", h.Logout)
	rg.GET("/session", h.Session)
	rg.GET("/oauth/:provider", h.OAuthLogin)
	rg.POST("/reset-password", h.ResetPassword)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	session, err := h.store.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Unauthorized(c, auth.FriendlyMessage(err))
		return
	}

	response.Success(c, http.StatusOK, session)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.store.Logout(c.Request.Context()); err != nil {
		response.InternalServerError(c, "Failed to log out")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// Session validates the caller's token and returns the live session. An
// orphaned identity is cleaned up server-side and reported as unauthorized.
func (h *AuthHandler) Session(c *gin.Context) {
	token := middleware.TokenFrom(c)
	if token == "" {
		response.Unauthorized(c, "missing token")
		return
	}

	session, err := h.store.CheckCurrentAuthStatus(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrOrphanedIdentity) {
			response.Unauthorized(c, "account no longer exists")
			return
		}
		response.Unauthorized(c, auth.FriendlyMessage(err))
		return
	}

	response.Success(c, http.StatusOK, session)
}

func (h *AuthHandler) OAuthLogin(c *gin.Context) {
	url, err := h.store.OAuthLogin(c.Request.Context(), c.Param("provider"))
	if err != nil {
		if errors.Is(err, auth.ErrUnknownProvider) {
			response.BadRequest(c, "unknown provider")
			return
		}
		response.InternalServerError(c, "Something went wrong")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"url": url})
}

type resetPasswordRequest struct {
	Email string `json:"email"`
}

func (r resetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.store.ResetPassword(c.Request.Context(), req.Email); err != nil {
		response.InternalServerError(c, "Failed to send password reset email")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sent": true})
}
