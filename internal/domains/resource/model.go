package resource

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Media types accepted for a resource.
const (
	MediaTypeImage    = "image"
	MediaTypeVideo    = "video"
	MediaTypeAudio    = "audio"
	MediaTypeDocument = "document"
)

// Resource is a media attachment belonging to an event. The url column is
// the record's media slot, so uploads land directly in it.
type Resource struct {
	ID        int64     `json:"id" db:"id"`
	EventID   int64     `json:"event_id" db:"event_id"`
	MediaType string    `json:"media_type" db:"media_type"`
	Source    *string   `json:"source,omitempty" db:"source"`
	URL       *string   `json:"url,omitempty" db:"url"`
	AuthorID  *int64    `json:"author_id,omitempty" db:"author_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (r Resource) RecordID() int64 { return r.ID }

// RecordSlug is empty; resources are addressed by id only.
func (r Resource) RecordSlug() string { return "" }

func (r Resource) MediaURL() string {
	if r.URL != nil {
		return *r.URL
	}
	return ""
}

// CreateResourceRequest - POST /v1/resources
type CreateResourceRequest struct {
	EventID   int64   `json:"event_id"`
	MediaType string  `json:"media_type"`
	Source    *string `json:"source,omitempty"`
	AuthorID  *int64  `json:"author_id,omitempty"`
}

func (r CreateResourceRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.EventID,
			validation.Required.Error("event_id is required"),
		),
		validation.Field(&r.MediaType,
			validation.Required.Error("media_type is required"),
			validation.In(MediaTypeImage, MediaTypeVideo, MediaTypeAudio, MediaTypeDocument).
				Error("media_type must be one of image, video, audio, document"),
		),
	)
}

// UpdateResourceRequest - PUT /v1/resources/:id
// All fields optional for partial updates.
type UpdateResourceRequest struct {
	EventID   *int64  `json:"event_id,omitempty"`
	MediaType *string `json:"media_type,omitempty"`
	Source    *string `json:"source,omitempty"`
}

func (r UpdateResourceRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.MediaType,
			validation.When(r.MediaType != nil,
				validation.In(MediaTypeImage, MediaTypeVideo, MediaTypeAudio, MediaTypeDocument).
					Error("media_type must be one of image, video, audio, document"),
			),
		),
	)
}
