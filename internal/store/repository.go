package store

import "context"

// Record is one row of a remote collection mirrored by a Store.
type Record interface {
	// RecordID is the backend-assigned identifier, immutable once set.
	RecordID() int64
	// RecordSlug returns the record's slug, or "" for entity types without one.
	RecordSlug() string
	// MediaURL returns the URL of the record's blob slot, or "" when empty.
	MediaURL() string
}

// Repository is the remote table boundary of one entity type.
// E is the row type, C the create payload, U the partial update payload.
type Repository[E Record, C any, U any] interface {
	// SelectAll returns every row ordered by creation time descending.
	SelectAll(ctx context.Context) ([]E, error)

	// SelectByID returns exactly one row or ErrNotFound.
	SelectByID(ctx context.Context, id int64) (E, error)

	// Insert stores the create payload merged with the computed slug and
	// media URL (either may be empty) and returns the stored row.
	Insert(ctx context.Context, dto C, slug, mediaURL string) (E, error)

	// Update applies the non-nil fields of patch to row id. A non-empty slug
	// or mediaURL replaces the stored value; empty strings leave it as is.
	// Returns the updated row or ErrNotFound.
	Update(ctx context.Context, id int64, patch U, slug, mediaURL string) (E, error)

	// Delete removes row id. Returns ErrNotFound when nothing was deleted.
	Delete(ctx context.Context, id int64) error
}
