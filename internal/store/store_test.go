package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contenthub-backend/internal/infrastructure/storage"
)

type thing struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image"`
}

func (t thing) RecordID() int64    { return t.ID }
func (t thing) RecordSlug() string { return t.Slug }
func (t thing) MediaURL() string   { return t.Image }

type createThing struct {
	Name string
}

func (c createThing) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type patchThing struct {
	Name *string
}

type fakeRepo struct {
	rows      []thing
	nextID    int64
	selectErr error
	insertErr error
	updateErr error
	deleteErr error

	insertedSlug string
	updatedSlug  string
	updatedMedia string
}

func (r *fakeRepo) SelectAll(context.Context) ([]thing, error) {
	if r.selectErr != nil {
		return nil, r.selectErr
	}
	out := make([]thing, len(r.rows))
	copy(out, r.rows)
	return out, nil
}

func (r *fakeRepo) SelectByID(_ context.Context, id int64) (thing, error) {
	for _, row := range r.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return thing{}, ErrNotFound
}

func (r *fakeRepo) Insert(_ context.Context, dto createThing, slug, mediaURL string) (thing, error) {
	if r.insertErr != nil {
		return thing{}, r.insertErr
	}
	r.insertedSlug = slug
	r.nextID++
	row := thing{ID: r.nextID, Name: dto.Name, Slug: slug, Image: mediaURL}
	r.rows = append(r.rows, row)
	return row, nil
}

func (r *fakeRepo) Update(_ context.Context, id int64, patch patchThing, slug, mediaURL string) (thing, error) {
	if r.updateErr != nil {
		return thing{}, r.updateErr
	}
	r.updatedSlug = slug
	r.updatedMedia = mediaURL
	for i, row := range r.rows {
		if row.ID == id {
			if patch.Name != nil {
				row.Name = *patch.Name
			}
			if slug != "" {
				row.Slug = slug
			}
			if mediaURL != "" {
				row.Image = mediaURL
			}
			r.rows[i] = row
			return row, nil
		}
	}
	return thing{}, ErrNotFound
}

func (r *fakeRepo) Delete(_ context.Context, id int64) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	for i, row := range r.rows {
		if row.ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

type fakeObjectStore struct {
	uploads   []string
	removes   []string
	uploadErr error
	removeErr error
}

func (f *fakeObjectStore) Upload(_ context.Context, bucket, key string, _ []byte, _ string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads = append(f.uploads, key)
	return f.PublicURL(bucket, key), nil
}

func (f *fakeObjectStore) Remove(_ context.Context, _, key string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removes = append(f.removes, key)
	return nil
}

func (f *fakeObjectStore) PublicURL(bucket, key string) string {
	return "http://blobs/" + bucket + "/" + key
}

type fakePurger struct {
	purged []string
}

func (f *fakePurger) EnqueuePurge(_ context.Context, _, key string) error {
	f.purged = append(f.purged, key)
	return nil
}

func newTestStore(repo *fakeRepo, blobs *fakeObjectStore, purger BlobPurger) *Store[thing, createThing, patchThing] {
	cfg := Config[thing, createThing, patchThing]{
		Singular:   "thing",
		Plural:     "things",
		Repo:       repo,
		Cleanup:    purger,
		CreateName: func(dto createThing) string { return dto.Name },
		PatchName: func(patch patchThing) (string, bool) {
			if patch.Name == nil {
				return "", false
			}
			return *patch.Name, true
		},
	}
	if blobs != nil {
		cfg.Images = storage.NewImageTransfer(blobs, "things", nil)
	}
	return New(cfg)
}

func TestListReplacesCache(t *testing.T) {
	repo := &fakeRepo{rows: []thing{{ID: 1, Name: "One", Slug: "one"}}}
	s := newTestStore(repo, nil, nil)

	items, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)

	repo.rows = []thing{{ID: 2, Name: "Two", Slug: "two"}}
	items, err = s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].ID)
}

func TestListFailureLeavesCacheAndRecordsError(t *testing.T) {
	repo := &fakeRepo{rows: []thing{{ID: 1, Name: "One", Slug: "one"}}}
	s := newTestStore(repo, nil, nil)

	_, err := s.List(context.Background())
	require.NoError(t, err)

	repo.selectErr = errors.New("connection reset")
	_, err = s.List(context.Background())
	require.Error(t, err)

	var remoteErr *RemoteError
	assert.ErrorAs(t, err, &remoteErr)
	assert.Len(t, s.Items(), 1, "failed refresh must not clear the cache")
	assert.Equal(t, "Failed to fetch things", s.Status().Error)
	assert.False(t, s.Status().Loading, "loading must be cleared by the finalizer")
}

func TestGetUpsertsIntoCache(t *testing.T) {
	repo := &fakeRepo{rows: []thing{{ID: 1, Name: "One", Slug: "one"}}}
	s := newTestStore(repo, nil, nil)

	got, err := s.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "One", got.Name)
	assert.Len(t, s.Items(), 1)

	// Second fetch of the same row must not duplicate it.
	_, err = s.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, s.Items(), 1)
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(&fakeRepo{}, nil, nil)

	_, err := s.Get(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Failed to fetch thing", s.Status().Error)
}

func TestCreateAppendsAndReportsSuccess(t *testing.T) {
	repo := &fakeRepo{}
	s := newTestStore(repo, nil, nil)

	created, err := s.Create(context.Background(), createThing{Name: "My Thing"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "my-thing", created.Slug)
	assert.Len(t, s.Items(), 1)
	assert.Equal(t, "Thing Added", s.Status().Success)
}

func TestCreateDerivesUniqueSlugAgainstCache(t *testing.T) {
	repo := &fakeRepo{rows: []thing{{ID: 1, Name: "Test", Slug: "test"}}, nextID: 1}
	s := newTestStore(repo, nil, nil)
	_, err := s.List(context.Background())
	require.NoError(t, err)

	created, err := s.Create(context.Background(), createThing{Name: "Test"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "test-1", created.Slug)
}

func TestCreateValidationShortCircuits(t *testing.T) {
	repo := &fakeRepo{}
	s := newTestStore(repo, nil, nil)

	_, err := s.Create(context.Background(), createThing{}, nil)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "name is required", s.Status().Error)
	assert.Empty(t, repo.rows, "invalid payload must never reach the repository")
}

func TestCreateInsertFailureDiscardsUploadedBlob(t *testing.T) {
	repo := &fakeRepo{insertErr: errors.New("insert exploded")}
	blobs := &fakeObjectStore{}
	s := newTestStore(repo, blobs, nil)

	media := &storage.Blob{Name: "pic.jpg", Data: []byte("jpegdata"), ContentType: "image/jpeg"}
	_, err := s.Create(context.Background(), createThing{Name: "Doomed"}, media)
	require.Error(t, err)

	require.Len(t, blobs.uploads, 1)
	require.Len(t, blobs.removes, 1, "the uploaded blob must be deleted again")
	assert.Equal(t, blobs.uploads[0], blobs.removes[0])
	assert.Empty(t, s.Items())
}

func TestCreateDiscardFailureGoesToBackgroundCleanup(t *testing.T) {
	repo := &fakeRepo{insertErr: errors.New("insert exploded")}
	blobs := &fakeObjectStore{removeErr: errors.New("storage down")}
	purger := &fakePurger{}
	s := newTestStore(repo, blobs, purger)

	media := &storage.Blob{Name: "pic.jpg", Data: []byte("jpegdata"), ContentType: "image/jpeg"}
	_, err := s.Create(context.Background(), createThing{Name: "Doomed"}, media)
	require.Error(t, err)

	require.Len(t, purger.purged, 1)
	assert.Equal(t, blobs.uploads[0], purger.purged[0])
}

func TestUpdateRecomputesSlugOnRename(t *testing.T) {
	repo := &fakeRepo{rows: []thing{
		{ID: 1, Name: "Old", Slug: "old"},
		{ID: 2, Name: "Taken", Slug: "taken"},
	}, nextID: 2}
	s := newTestStore(repo, nil, nil)
	_, err := s.List(context.Background())
	require.NoError(t, err)

	name := "Taken"
	updated, err := s.Update(context.Background(), 1, patchThing{Name: &name}, nil)
	require.NoError(t, err)
	assert.Equal(t, "taken-1", updated.Slug, "slug must be unique among siblings")
	assert.Equal(t, "Thing Updated", s.Status().Success)
}

func TestUpdateWithoutRenameKeepsSlug(t *testing.T) {
	repo := &fakeRepo{rows: []thing{{ID: 1, Name: "Old", Slug: "old"}}, nextID: 1}
	s := newTestStore(repo, nil, nil)
	_, err := s.List(context.Background())
	require.NoError(t, err)

	updated, err := s.Update(context.Background(), 1, patchThing{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "", repo.updatedSlug, "no rename, no slug sent")
	assert.Equal(t, "old", updated.Slug)
}

func TestUpdateReplacesBlobOldDeletedFirst(t *testing.T) {
	blobs := &fakeObjectStore{}
	repo := &fakeRepo{rows: []thing{
		{ID: 1, Name: "Pic", Slug: "pic", Image: "http://blobs/things/old-key.jpg"},
	}, nextID: 1}
	s := newTestStore(repo, blobs, nil)
	_, err := s.List(context.Background())
	require.NoError(t, err)

	media := &storage.Blob{Name: "new.jpg", Data: []byte("jpegdata"), ContentType: "image/jpeg"}
	updated, err := s.Update(context.Background(), 1, patchThing{}, media)
	require.NoError(t, err)

	require.Len(t, blobs.removes, 1)
	assert.Equal(t, "old-key.jpg", blobs.removes[0])
	require.Len(t, blobs.uploads, 1)
	assert.Contains(t, updated.Image, blobs.uploads[0])
}

func TestUpdateRowFailureDoesNotRestoreOldBlob(t *testing.T) {
	// The old blob is deleted before the row update; a failed update leaves
	// the record without its image. Inherited behavior, kept deliberately.
	blobs := &fakeObjectStore{}
	repo := &fakeRepo{rows: []thing{
		{ID: 1, Name: "Pic", Slug: "pic", Image: "http://blobs/things/old-key.jpg"},
	}, nextID: 1}
	s := newTestStore(repo, blobs, nil)
	_, err := s.List(context.Background())
	require.NoError(t, err)

	repo.updateErr = errors.New("update exploded")
	media := &storage.Blob{Name: "new.jpg", Data: []byte("jpegdata"), ContentType: "image/jpeg"}
	_, err = s.Update(context.Background(), 1, patchThing{}, media)
	require.Error(t, err)

	assert.Equal(t, []string{"old-key.jpg"}, blobs.removes)
	assert.Empty(t, blobs.uploads[1:], "no second upload, no restore")
}

func TestRacingUpdatesLastResponseWins(t *testing.T) {
	// Updates on one store are not serialized against each other; the cache
	// holds whichever response lands last, and never grows a duplicate row.
	repo := &fakeRepo{rows: []thing{{ID: 1, Name: "Orig", Slug: "orig"}}, nextID: 1}
	s := newTestStore(repo, nil, nil)
	_, err := s.List(context.Background())
	require.NoError(t, err)

	a, b := "Alpha", "Beta"
	_, err = s.Update(context.Background(), 1, patchThing{Name: &a}, nil)
	require.NoError(t, err)
	_, err = s.Update(context.Background(), 1, patchThing{Name: &b}, nil)
	require.NoError(t, err)

	got, found := s.ByID(1)
	require.True(t, found)
	assert.Equal(t, "Beta", got.Name)
	assert.Len(t, s.Items(), 1)
}

func TestRemoveDeletesRowThenBlobBestEffort(t *testing.T) {
	blobs := &fakeObjectStore{removeErr: errors.New("storage down")}
	purger := &fakePurger{}
	repo := &fakeRepo{rows: []thing{
		{ID: 1, Name: "Pic", Slug: "pic", Image: "http://blobs/things/key.jpg"},
	}, nextID: 1}
	s := newTestStore(repo, blobs, purger)
	_, err := s.List(context.Background())
	require.NoError(t, err)

	ok, err := s.Remove(context.Background(), 1)
	require.NoError(t, err, "a failed blob delete must not fail the removal")
	assert.True(t, ok)
	assert.Empty(t, s.Items())
	assert.Equal(t, []string{"key.jpg"}, purger.purged)
}

func TestRemoveNotFound(t *testing.T) {
	s := newTestStore(&fakeRepo{}, nil, nil)

	ok, err := s.Remove(context.Background(), 42)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubscribeDeliversChangesUntilCancel(t *testing.T) {
	repo := &fakeRepo{}
	s := newTestStore(repo, nil, nil)

	var got []Op
	cancel := s.Subscribe(func(ch Change[thing]) {
		got = append(got, ch.Op)
	})

	_, err := s.Create(context.Background(), createThing{Name: "A"}, nil)
	require.NoError(t, err)
	require.Equal(t, []Op{OpCreated}, got)

	cancel()
	_, err = s.Create(context.Background(), createThing{Name: "B"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []Op{OpCreated}, got, "cancelled listener must not fire")
}

func TestResetStatusClearsMessages(t *testing.T) {
	repo := &fakeRepo{}
	s := newTestStore(repo, nil, nil)

	_, err := s.Create(context.Background(), createThing{Name: "A"}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, s.Status().Success)

	s.ResetStatus()
	assert.Empty(t, s.Status().Success)
	assert.Empty(t, s.Status().Error)
}

func TestByIDHitsCacheOnly(t *testing.T) {
	repo := &fakeRepo{rows: []thing{{ID: 1, Name: "One", Slug: "one"}}}
	s := newTestStore(repo, nil, nil)

	_, found := s.ByID(1)
	assert.False(t, found, "nothing cached before List")

	_, err := s.List(context.Background())
	require.NoError(t, err)
	got, found := s.ByID(1)
	assert.True(t, found)
	assert.Equal(t, "One", got.Name)
}
