package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"contenthub-backend/internal/infrastructure/storage"
	"contenthub-backend/internal/shared/response"
	"contenthub-backend/internal/store"
)

// EntityHandler is the one HTTP adapter shared by every entity collection.
// Create and Update accept either plain JSON or multipart with a "data" JSON
// part and an optional "image" file part.
type EntityHandler[E store.Record, C any, U any] struct {
	store *store.Store[E, C, U]
	name  string
}

func NewEntityHandler[E store.Record, C any, U any](s *store.Store[E, C, U], name string) *EntityHandler[E, C, U] {
	return &EntityHandler[E, C, U]{store: s, name: name}
}

// RegisterRoutes mounts the CRUD routes on rg; write routes get the extra
// middlewares (guards) prepended.
func (h *EntityHandler[E, C, U]) RegisterRoutes(rg *gin.RouterGroup, write ...gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("", append(append([]gin.HandlerFunc{}, write...), h.Create)...)
	rg.PUT("/:id", append(append([]gin.HandlerFunc{}, write...), h.Update)...)
	rg.DELETE("/:id", append(append([]gin.HandlerFunc{}, write...), h.Delete)...)
}

func (h *EntityHandler[E, C, U]) List(c *gin.Context) {
	items, err := h.store.List(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, h.name)
		return
	}
	response.Success(c, http.StatusOK, items)
}

func (h *EntityHandler[E, C, U]) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, h.name)
		return
	}
	response.Success(c, http.StatusOK, item)
}

func (h *EntityHandler[E, C, U]) Create(c *gin.Context) {
	var dto C
	blob, err := bindPayload(c, &dto)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.store.Create(c.Request.Context(), dto, blob)
	if err != nil {
		respondStoreError(c, err, h.name)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

func (h *EntityHandler[E, C, U]) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var patch U
	blob, err := bindPayload(c, &patch)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.store.Update(c.Request.Context(), id, patch, blob)
	if err != nil {
		respondStoreError(c, err, h.name)
		return
	}
	response.Success(c, http.StatusOK, item)
}

func (h *EntityHandler[E, C, U]) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if _, err := h.store.Remove(c.Request.Context(), id); err != nil {
		respondStoreError(c, err, h.name)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

// bindPayload decodes the request into dto and returns the uploaded image
// blob, if any. Multipart requests carry the DTO in the "data" part.
func bindPayload(c *gin.Context, dto any) (*storage.Blob, error) {
	contentType := c.GetHeader("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		if err := c.ShouldBindJSON(dto); err != nil {
			return nil, errors.New("invalid request body")
		}
		return nil, nil
	}

	data := c.PostForm("data")
	if data != "" {
		if err := json.Unmarshal([]byte(data), dto); err != nil {
			return nil, errors.New("invalid data part")
		}
	}

	file, header, err := c.Request.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.New("invalid image part")
	}
	defer file.Close()

	return blobFromFile(file, header)
}

func blobFromFile(file multipart.File, header *multipart.FileHeader) (*storage.Blob, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.New("failed to read image part")
	}
	return &storage.Blob{
		Name:        header.Filename,
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
	}, nil
}

// respondStoreError maps store errors onto the response envelope.
func respondStoreError(c *gin.Context, err error, name string) {
	var vErr *store.ValidationError
	switch {
	case errors.As(err, &vErr):
		response.BadRequest(c, vErr.Reason)
	case errors.Is(err, store.ErrNotFound):
		response.NotFound(c, name+" not found")
	case errors.Is(err, store.ErrConflict):
		response.Conflict(c, err.Error())
	default:
		response.InternalServerError(c, "Something went wrong")
	}
}
