package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"contenthub-backend/internal/domains/user"
	"contenthub-backend/internal/shared/middleware"
	"contenthub-backend/internal/shared/response"
)

// UserHandler covers the user collection plus the current-user endpoints.
// Unlike the other collections, create and delete also touch the identity
// backend, so they go through the user store's dedicated flows.
type UserHandler struct {
	users *user.Store
}

func NewUserHandler(users *user.Store) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterRoutes mounts the admin collection routes; write operations get the
// extra middlewares (guards) prepended.
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, write ...gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("", append(append([]gin.HandlerFunc{}, write...), h.Create)...)
	rg.PUT("/:id", append(append([]gin.HandlerFunc{}, write...), h.Update)...)
	rg.DELETE("/:id", append(append([]gin.HandlerFunc{}, write...), h.Delete)...)
}

// RegisterMeRoutes mounts the current-user endpoints, already behind
// AuthGuard.
func (h *UserHandler) RegisterMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.Me)
	rg.PUT("/me", h.UpdateMe)
}

func (h *UserHandler) List(c *gin.Context) {
	items, err := h.users.List(c.Request.Context())
	if err != nil {
		respondUserError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		respondUserError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

func (h *UserHandler) Create(c *gin.Context) {
	var dto user.CreateUserRequest
	blob, err := bindPayload(c, &dto)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.users.AddUser(c.Request.Context(), dto, blob)
	if err != nil {
		respondUserError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var patch user.UpdateProfileRequest
	blob, err := bindPayload(c, &patch)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.users.Update(c.Request.Context(), id, patch, blob)
	if err != nil {
		respondUserError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if _, err := h.users.DeleteUser(c.Request.Context(), id); err != nil {
		respondUserError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *UserHandler) Me(c *gin.Context) {
	session, ok := middleware.SessionFrom(c)
	if !ok {
		response.Unauthorized(c, "missing session")
		return
	}

	profile, err := h.users.FetchCurrentUser(c.Request.Context(), session.Identity.UID)
	if err != nil {
		respondUserError(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	session, ok := middleware.SessionFrom(c)
	if !ok {
		response.Unauthorized(c, "missing session")
		return
	}

	// The profile must be loaded for this session before it can be patched.
	if _, err := h.users.FetchCurrentUser(c.Request.Context(), session.Identity.UID); err != nil {
		respondUserError(c, err)
		return
	}

	var patch user.UpdateProfileRequest
	blob, err := bindPayload(c, &patch)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	profile, err := h.users.UpdateProfile(c.Request.Context(), patch, blob)
	if err != nil {
		respondUserError(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, user.ErrEmailTaken), errors.Is(err, user.ErrUsernameTaken):
		response.Conflict(c, err.Error())
	case errors.Is(err, user.ErrNoProfile):
		response.Unauthorized(c, err.Error())
	default:
		respondStoreError(c, err, "user")
	}
}
