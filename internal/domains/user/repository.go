package user

import (
	"context"

	"contenthub-backend/internal/store"
)

// Repository extends the generic table boundary with the lookups the user
// store and the auth flow need.
type Repository interface {
	store.Repository[User, CreateUserRequest, UpdateProfileRequest]

	// SelectByAuthUID returns the profile owned by an identity, or
	// store.ErrNotFound.
	SelectByAuthUID(ctx context.Context, authUID string) (User, error)

	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByAuthUID(ctx context.Context, authUID string) (bool, error)
}
