package event

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Event is a dated happening, optionally geolocated and linked to categories.
type Event struct {
	ID          int64      `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Slug        string     `json:"slug" db:"slug"`
	Content     string     `json:"content" db:"content"`
	StartDate   time.Time  `json:"start_date" db:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty" db:"end_date"`
	Important   bool       `json:"important" db:"important"`
	Source      *string    `json:"source,omitempty" db:"source"`
	Street      *string    `json:"street,omitempty" db:"street"`
	City        *string    `json:"city,omitempty" db:"city"`
	State       *string    `json:"state,omitempty" db:"state"`
	PostalCode  *string    `json:"postal_code,omitempty" db:"postal_code"`
	Country     *string    `json:"country,omitempty" db:"country"`
	Lat         *float64   `json:"lat,omitempty" db:"lat"`
	Lng         *float64   `json:"lng,omitempty" db:"lng"`
	Address     *string    `json:"address,omitempty" db:"address"`
	DayMonth    string     `json:"day_month" db:"day_month"`
	CategoryIDs []int64    `json:"category_ids" db:"category_ids"`
	AuthorID    *int64     `json:"author_id,omitempty" db:"author_id"`
	ImageURL    *string    `json:"image_url,omitempty" db:"image_url"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

func (e Event) RecordID() int64 { return e.ID }

func (e Event) RecordSlug() string { return e.Slug }

func (e Event) MediaURL() string {
	if e.ImageURL != nil {
		return *e.ImageURL
	}
	return ""
}

// DayMonthOf renders the "DD-MM" key used by anniversary lookups.
func DayMonthOf(t time.Time) string {
	return t.Format("02-01")
}

// CreateEventRequest - POST /v1/events
type CreateEventRequest struct {
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Important   bool       `json:"important"`
	Source      *string    `json:"source,omitempty"`
	Street      *string    `json:"street,omitempty"`
	City        *string    `json:"city,omitempty"`
	State       *string    `json:"state,omitempty"`
	PostalCode  *string    `json:"postal_code,omitempty"`
	Country     *string    `json:"country,omitempty"`
	Lat         *float64   `json:"lat,omitempty"`
	Lng         *float64   `json:"lng,omitempty"`
	Address     *string    `json:"address,omitempty"`
	CategoryIDs []int64    `json:"category_ids,omitempty"`
	AuthorID    *int64     `json:"author_id,omitempty"`
}

func (r CreateEventRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(2, 255),
		),
		validation.Field(&r.Content,
			validation.Required.Error("content is required"),
		),
		validation.Field(&r.StartDate,
			validation.Required.Error("start_date is required"),
		),
		validation.Field(&r.EndDate,
			validation.By(func(interface{}) error {
				if r.EndDate != nil && r.EndDate.Before(r.StartDate) {
					return validation.NewError("validation_end_date", "end_date must not precede start_date")
				}
				return nil
			}),
		),
		validation.Field(&r.Lat, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&r.Lng, validation.Min(-180.0), validation.Max(180.0)),
	)
}

// UpdateEventRequest - PUT /v1/events/:id
// All fields optional for partial updates.
type UpdateEventRequest struct {
	Title       *string    `json:"title,omitempty"`
	Content     *string    `json:"content,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Important   *bool      `json:"important,omitempty"`
	Source      *string    `json:"source,omitempty"`
	Street      *string    `json:"street,omitempty"`
	City        *string    `json:"city,omitempty"`
	State       *string    `json:"state,omitempty"`
	PostalCode  *string    `json:"postal_code,omitempty"`
	Country     *string    `json:"country,omitempty"`
	Lat         *float64   `json:"lat,omitempty"`
	Lng         *float64   `json:"lng,omitempty"`
	Address     *string    `json:"address,omitempty"`
	CategoryIDs *[]int64   `json:"category_ids,omitempty"`
}

func (r UpdateEventRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.When(r.Title != nil, validation.Length(2, 255)),
		),
		validation.Field(&r.Lat, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&r.Lng, validation.Min(-180.0), validation.Max(180.0)),
	)
}

// NewName reports the slug source carried by an update payload.
func (r UpdateEventRequest) NewName() (string, bool) {
	if r.Title == nil {
		return "", false
	}
	return *r.Title, true
}
