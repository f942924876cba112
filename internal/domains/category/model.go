package category

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Category is a content grouping addressable by slug.
type Category struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description *string   `json:"description,omitempty" db:"description"`
	ImageURL    *string   `json:"image_url,omitempty" db:"image_url"`
	AuthorID    *int64    `json:"author_id,omitempty" db:"author_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func (c Category) RecordID() int64 { return c.ID }

func (c Category) RecordSlug() string { return c.Slug }

func (c Category) MediaURL() string {
	if c.ImageURL != nil {
		return *c.ImageURL
	}
	return ""
}

// CreateCategoryRequest - POST /v1/categories
type CreateCategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	AuthorID    *int64  `json:"author_id,omitempty"`
}

func (r CreateCategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(2, 255),
		),
		validation.Field(&r.Description,
			validation.Length(0, 2000),
		),
	)
}

// UpdateCategoryRequest - PUT /v1/categories/:id
// All fields optional for partial updates.
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (r UpdateCategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.When(r.Name != nil, validation.Length(2, 255)),
		),
		validation.Field(&r.Description,
			validation.Length(0, 2000),
		),
	)
}

// NewName reports the slug source carried by an update payload.
func (r UpdateCategoryRequest) NewName() (string, bool) {
	if r.Name == nil {
		return "", false
	}
	return *r.Name, true
}
