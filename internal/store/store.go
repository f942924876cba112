package store

import (
	"context"
	"errors"
	"strings"
	"sync"

	"contenthub-backend/internal/infrastructure/storage"
	"contenthub-backend/internal/shared/utils"
	"contenthub-backend/pkg/logger"
)

// Validator is implemented by create/update payloads that can check
// themselves before any remote call.
type Validator interface {
	Validate() error
}

// BlobPurger hands a blob key to background cleanup when an inline
// best-effort delete fails.
type BlobPurger interface {
	EnqueuePurge(ctx context.Context, bucket, key string) error
}

// Op identifies the kind of collection change delivered to listeners.
type Op string

const (
	OpLoaded  Op = "loaded"
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpRemoved Op = "removed"
)

// Change is delivered to subscribed listeners after the cache mutates.
// Item is nil for OpLoaded (the whole collection was replaced).
type Change[E Record] struct {
	Op   Op
	Item *E
}

type Listener[E Record] func(Change[E])

// Status is the UI-facing side channel of a store. Error and Success are
// user-facing strings, not part of the entity data.
type Status struct {
	Loading bool
	Error   string
	Success string
}

// Config parameterizes a Store for one entity type.
type Config[E Record, C any, U any] struct {
	Singular string // e.g. "category"
	Plural   string // e.g. "categories"

	Repo    Repository[E, C, U]
	Images  *storage.ImageTransfer // nil when the entity has no media slot
	Cleanup BlobPurger             // optional

	// CreateName extracts the slug source from a create payload.
	// nil when the entity type has no slug.
	CreateName func(C) string
	// PatchName reports the new slug source carried by an update payload.
	PatchName func(U) (string, bool)
}

// Store mirrors one remote collection in memory and orchestrates CRUD,
// media transfer and slug derivation against it.
//
// The mirrored collection is a cache, never authoritative: it is replaced by
// List, upserted by Get and reconciled after every successful write.
// Operations on one store are deliberately not serialized against each
// other; the mutex only makes individual cache/status mutations safe, so two
// racing updates resolve to whichever remote response lands last.
type Store[E Record, C any, U any] struct {
	cfg Config[E, C, U]

	mu      sync.Mutex
	items   []E
	status  Status
	subs    map[int]Listener[E]
	nextSub int
}

func New[E Record, C any, U any](cfg Config[E, C, U]) *Store[E, C, U] {
	return &Store[E, C, U]{
		cfg:  cfg,
		subs: make(map[int]Listener[E]),
	}
}

// Items returns a snapshot copy of the cached collection.
func (s *Store[E, C, U]) Items() []E {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]E, len(s.items))
	copy(out, s.items)
	return out
}

// ByID looks a record up in the cache only; it never hits the backend.
func (s *Store[E, C, U]) ByID(id int64) (E, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.RecordID() == id {
			return item, true
		}
	}
	var zero E
	return zero, false
}

// Status returns a snapshot of the loading/error/success flags.
func (s *Store[E, C, U]) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// ResetStatus clears the error and success strings.
func (s *Store[E, C, U]) ResetStatus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Error = ""
	s.status.Success = ""
}

// Subscribe registers a listener for collection changes and returns its
// cancel function. Listeners run synchronously after the mutation, outside
// the store lock.
func (s *Store[E, C, U]) Subscribe(l Listener[E]) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// List fetches all rows and replaces the cache. On failure the cache is left
// unchanged.
func (s *Store[E, C, U]) List(ctx context.Context) ([]E, error) {
	s.Begin()
	defer s.Finish()

	rows, err := s.cfg.Repo.SelectAll(ctx)
	if err != nil {
		s.Fail("Failed to fetch " + s.cfg.Plural)
		return nil, &RemoteError{Op: "select", Entity: s.cfg.Plural, Err: err}
	}

	s.mu.Lock()
	s.items = rows
	s.mu.Unlock()
	s.notify(Change[E]{Op: OpLoaded})

	return s.Items(), nil
}

// Get fetches one row and upserts it into the cache.
func (s *Store[E, C, U]) Get(ctx context.Context, id int64) (E, error) {
	var zero E
	s.Begin()
	defer s.Finish()

	row, err := s.cfg.Repo.SelectByID(ctx, id)
	if err != nil {
		s.Fail("Failed to fetch " + s.cfg.Singular)
		if errors.Is(err, ErrNotFound) {
			return zero, err
		}
		return zero, &RemoteError{Op: "select", Entity: s.cfg.Singular, Err: err}
	}

	s.upsert(row)
	s.notify(Change[E]{Op: OpUpdated, Item: &row})
	return row, nil
}

// Create uploads the media blob (if any), derives a unique slug, inserts the
// row and appends it to the cache. If the insert fails after a successful
// upload, the uploaded blob is deleted again so it cannot orphan.
func (s *Store[E, C, U]) Create(ctx context.Context, dto C, media *storage.Blob) (E, error) {
	var zero E
	if err := validate(dto); err != nil {
		s.Fail(err.Error())
		return zero, err
	}

	s.Begin()
	defer s.Finish()

	mediaURL := ""
	if media != nil && s.cfg.Images != nil {
		url, err := s.cfg.Images.Upload(ctx, *media, "")
		if err != nil {
			s.Fail("Failed to upload image")
			return zero, err
		}
		mediaURL = url
	}

	slug := ""
	if s.cfg.CreateName != nil {
		slug = utils.GenerateUniqueSlug(s.cfg.CreateName(dto), s.Items())
	}

	row, err := s.cfg.Repo.Insert(ctx, dto, slug, mediaURL)
	if err != nil {
		if mediaURL != "" {
			s.discardBlob(ctx, mediaURL)
		}
		s.Fail(failureMessage(err, "Failed to add "+s.cfg.Singular))
		return zero, wrapRemote("insert", s.cfg.Singular, err)
	}

	s.mu.Lock()
	s.items = append(s.items, row)
	s.mu.Unlock()
	s.notify(Change[E]{Op: OpCreated, Item: &row})
	s.Succeed(capitalize(s.cfg.Singular) + " Added")

	return row, nil
}

// Update applies a partial patch. A new media blob replaces the previous
// one: the old blob is deleted first, then the new one uploaded. The deleted
// old blob is not restored if the subsequent row update fails; that
// asymmetry is inherited behavior, kept deliberately.
func (s *Store[E, C, U]) Update(ctx context.Context, id int64, patch U, media *storage.Blob) (E, error) {
	var zero E
	if err := validate(patch); err != nil {
		s.Fail(err.Error())
		return zero, err
	}

	s.Begin()
	defer s.Finish()

	existing, cached := s.ByID(id)

	mediaURL := ""
	if media != nil && s.cfg.Images != nil {
		if cached && existing.MediaURL() != "" {
			if _, err := s.cfg.Images.Remove(ctx, existing.MediaURL()); err != nil {
				logger.Error("failed to delete previous image", err)
				s.purgeLater(ctx, existing.MediaURL())
			}
		}
		url, err := s.cfg.Images.Upload(ctx, *media, "")
		if err != nil {
			s.Fail("Failed to upload image")
			return zero, err
		}
		mediaURL = url
	}

	slug := ""
	if s.cfg.PatchName != nil {
		if name, ok := s.cfg.PatchName(patch); ok {
			slug = utils.GenerateUniqueSlug(name, s.others(id))
		}
	}

	row, err := s.cfg.Repo.Update(ctx, id, patch, slug, mediaURL)
	if err != nil {
		s.Fail(failureMessage(err, "Failed to update "+s.cfg.Singular))
		if errors.Is(err, ErrNotFound) {
			return zero, err
		}
		return zero, wrapRemote("update", s.cfg.Singular, err)
	}

	s.upsert(row)
	s.notify(Change[E]{Op: OpUpdated, Item: &row})
	s.Succeed(capitalize(s.cfg.Singular) + " Updated")

	return row, nil
}

// Remove deletes the remote row first; only then is the associated blob
// deleted, best-effort, and the record dropped from the cache. A failed blob
// delete never reverts the row deletion.
func (s *Store[E, C, U]) Remove(ctx context.Context, id int64) (bool, error) {
	s.Begin()
	defer s.Finish()

	existing, cached := s.ByID(id)

	if err := s.cfg.Repo.Delete(ctx, id); err != nil {
		s.Fail(failureMessage(err, "Failed to delete "+s.cfg.Singular))
		if errors.Is(err, ErrNotFound) {
			return false, err
		}
		return false, wrapRemote("delete", s.cfg.Singular, err)
	}

	if cached && existing.MediaURL() != "" && s.cfg.Images != nil {
		if _, err := s.cfg.Images.Remove(ctx, existing.MediaURL()); err != nil {
			logger.Error("failed to delete image for removed "+s.cfg.Singular, err)
			s.purgeLater(ctx, existing.MediaURL())
		}
	}

	s.mu.Lock()
	kept := s.items[:0]
	for _, item := range s.items {
		if item.RecordID() != id {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.mu.Unlock()

	if cached {
		s.notify(Change[E]{Op: OpRemoved, Item: &existing})
	} else {
		s.notify(Change[E]{Op: OpRemoved})
	}
	return true, nil
}

// discardBlob compensates a failed insert by deleting the blob uploaded just
// before it. Best-effort: on failure the key goes to background cleanup.
func (s *Store[E, C, U]) discardBlob(ctx context.Context, mediaURL string) {
	if s.cfg.Images == nil {
		return
	}
	if _, err := s.cfg.Images.Remove(ctx, mediaURL); err != nil {
		logger.Error("failed to discard uploaded image after insert failure", err)
		s.purgeLater(ctx, mediaURL)
	}
}

func (s *Store[E, C, U]) purgeLater(ctx context.Context, mediaURL string) {
	if s.cfg.Cleanup == nil || s.cfg.Images == nil {
		return
	}
	key := storage.KeyFromURL(mediaURL)
	if err := s.cfg.Cleanup.EnqueuePurge(ctx, s.cfg.Images.Bucket(), key); err != nil {
		logger.Error("failed to enqueue blob purge", err)
	}
}

func (s *Store[E, C, U]) upsert(row E) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.items {
		if item.RecordID() == row.RecordID() {
			s.items[i] = row
			return
		}
	}
	s.items = append(s.items, row)
}

// others returns the cached records except id, for slug uniqueness checks.
func (s *Store[E, C, U]) others(id int64) []E {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]E, 0, len(s.items))
	for _, item := range s.items {
		if item.RecordID() != id {
			out = append(out, item)
		}
	}
	return out
}

// Begin raises the loading flag and clears the previous error. Exported, with
// Finish, Fail and Succeed, so stores that compose Store with extra flows can
// report through the same status channel.
func (s *Store[E, C, U]) Begin() {
	s.mu.Lock()
	s.status.Loading = true
	s.status.Error = ""
	s.mu.Unlock()
}

func (s *Store[E, C, U]) Finish() {
	s.mu.Lock()
	s.status.Loading = false
	s.mu.Unlock()
}

func (s *Store[E, C, U]) Fail(msg string) {
	s.mu.Lock()
	s.status.Error = msg
	s.mu.Unlock()
}

func (s *Store[E, C, U]) Succeed(msg string) {
	s.mu.Lock()
	s.status.Success = msg
	s.mu.Unlock()
}

func (s *Store[E, C, U]) notify(change Change[E]) {
	s.mu.Lock()
	listeners := make([]Listener[E], 0, len(s.subs))
	for _, l := range s.subs {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(change)
	}
}

func validate(payload any) error {
	if v, ok := payload.(Validator); ok {
		if err := v.Validate(); err != nil {
			return &ValidationError{Reason: err.Error()}
		}
	}
	return nil
}

// failureMessage keeps user-meaningful errors (validation, conflicts,
// missing rows) verbatim and replaces everything else with a generic string.
func failureMessage(err error, fallback string) string {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Reason
	}
	if errors.Is(err, ErrConflict) || errors.Is(err, ErrNotFound) {
		return err.Error()
	}
	return fallback
}

func wrapRemote(op, entity string, err error) error {
	var vErr *ValidationError
	if errors.As(err, &vErr) || errors.Is(err, ErrConflict) || errors.Is(err, ErrNotFound) {
		return err
	}
	return &RemoteError{Op: op, Entity: entity, Err: err}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
