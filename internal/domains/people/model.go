package people

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Person is a notable figure with a biography and optional portrait.
type Person struct {
	ID          int64      `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Slug        string     `json:"slug" db:"slug"`
	Biography   string     `json:"biography" db:"biography"`
	BirthDate   *time.Time `json:"birth_date,omitempty" db:"birth_date"`
	DeathDate   *time.Time `json:"death_date,omitempty" db:"death_date"`
	Nationality *string    `json:"nationality,omitempty" db:"nationality"`
	Profession  *string    `json:"profession,omitempty" db:"profession"`
	DayMonth    *string    `json:"day_month,omitempty" db:"day_month"`
	AuthorID    *int64     `json:"author_id,omitempty" db:"author_id"`
	ImageURL    *string    `json:"image_url,omitempty" db:"image_url"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

func (p Person) RecordID() int64 { return p.ID }

func (p Person) RecordSlug() string { return p.Slug }

func (p Person) MediaURL() string {
	if p.ImageURL != nil {
		return *p.ImageURL
	}
	return ""
}

// CreatePersonRequest - POST /v1/people
type CreatePersonRequest struct {
	Name        string     `json:"name"`
	Biography   string     `json:"biography"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	DeathDate   *time.Time `json:"death_date,omitempty"`
	Nationality *string    `json:"nationality,omitempty"`
	Profession  *string    `json:"profession,omitempty"`
	AuthorID    *int64     `json:"author_id,omitempty"`
}

func (r CreatePersonRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(2, 255),
		),
		validation.Field(&r.Biography,
			validation.Required.Error("biography is required"),
		),
		validation.Field(&r.DeathDate,
			validation.By(func(interface{}) error {
				if r.BirthDate != nil && r.DeathDate != nil && r.DeathDate.Before(*r.BirthDate) {
					return validation.NewError("validation_death_date", "death_date must not precede birth_date")
				}
				return nil
			}),
		),
	)
}

// UpdatePersonRequest - PUT /v1/people/:id
// All fields optional for partial updates.
type UpdatePersonRequest struct {
	Name        *string    `json:"name,omitempty"`
	Biography   *string    `json:"biography,omitempty"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	DeathDate   *time.Time `json:"death_date,omitempty"`
	Nationality *string    `json:"nationality,omitempty"`
	Profession  *string    `json:"profession,omitempty"`
}

func (r UpdatePersonRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.When(r.Name != nil, validation.Length(2, 255)),
		),
	)
}

// NewName reports the slug source carried by an update payload.
func (r UpdatePersonRequest) NewName() (string, bool) {
	if r.Name == nil {
		return "", false
	}
	return *r.Name, true
}
