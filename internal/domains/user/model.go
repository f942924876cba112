package user

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	RoleUser  = "user"
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

// User is a profile row. It references an identity in the auth backend by
// AuthUID; the identity and the profile have separate lifecycles and the
// reconciliation job cleans up identities whose profile is gone.
type User struct {
	ID                int64     `json:"id" db:"id"`
	AuthUID           string    `json:"auth_uid" db:"auth_uid"`
	Email             string    `json:"email" db:"email"`
	Username          string    `json:"username" db:"username"`
	Fullname          string    `json:"fullname" db:"fullname"`
	Role              string    `json:"role" db:"role"`
	ProfilePictureURL *string   `json:"profile_picture_url,omitempty" db:"profile_picture_url"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

func (u User) RecordID() int64 { return u.ID }

// RecordSlug is empty; users are addressed by id and auth_uid.
func (u User) RecordSlug() string { return "" }

func (u User) MediaURL() string {
	if u.ProfilePictureURL != nil {
		return *u.ProfilePictureURL
	}
	return ""
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// CreateUserRequest - POST /v1/users (admin only)
type CreateUserRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
	Password string `json:"password"`
	Role     string `json:"role"`

	// AuthUID is assigned by the store after the identity is registered;
	// it is never accepted from the request body.
	AuthUID string `json:"-"`
}

func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("email is invalid"),
		),
		validation.Field(&r.Username,
			validation.Required.Error("username is required"),
			validation.Length(3, 30),
			is.Alphanumeric.Error("username must be alphanumeric"),
		),
		validation.Field(&r.Fullname,
			validation.Required.Error("fullname is required"),
			validation.Length(2, 255),
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 72),
		),
		validation.Field(&r.Role,
			validation.Required.Error("role is required"),
			validation.In(RoleUser, RoleStaff, RoleAdmin).
				Error("role must be one of user, staff, admin"),
		),
	)
}

// UpdateProfileRequest - PUT /v1/users/:id and PUT /v1/users/me
// All fields optional for partial updates. Email, role and auth_uid are
// immutable through this path.
type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty"`
	Fullname *string `json:"fullname,omitempty"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username,
			validation.When(r.Username != nil,
				validation.Length(3, 30),
				is.Alphanumeric.Error("username must be alphanumeric"),
			),
		),
		validation.Field(&r.Fullname,
			validation.When(r.Fullname != nil, validation.Length(2, 255)),
		),
	)
}
