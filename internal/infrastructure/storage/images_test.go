package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	objects   map[string][]byte
	removeErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}}
}

func (m *memoryStore) Upload(_ context.Context, bucket, key string, data []byte, _ string) (string, error) {
	m.objects[key] = data
	return m.PublicURL(bucket, key), nil
}

func (m *memoryStore) Remove(_ context.Context, _, key string) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.objects, key)
	return nil
}

func (m *memoryStore) PublicURL(bucket, key string) string {
	return "http://blobs/" + bucket + "/" + key
}

func TestUploadGeneratesKeyWithExtension(t *testing.T) {
	store := newMemoryStore()
	transfer := NewImageTransfer(store, "media", nil)

	url, err := transfer.Upload(context.Background(), Blob{
		Name:        "portrait.png",
		Data:        []byte("pngdata"),
		ContentType: "image/png",
	}, "")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(url, ".png"), "generated key keeps the original extension: %s", url)
	assert.Len(t, store.objects, 1)
}

func TestUploadHonorsExplicitPath(t *testing.T) {
	store := newMemoryStore()
	transfer := NewImageTransfer(store, "media", nil)

	url, err := transfer.Upload(context.Background(), Blob{
		Name: "whatever.jpg",
		Data: []byte("jpegdata"),
	}, "avatars/u1.jpg")
	require.NoError(t, err)

	assert.Equal(t, "http://blobs/media/avatars/u1.jpg", url)
}

func TestUploadRejectsEmptyBlob(t *testing.T) {
	transfer := NewImageTransfer(newMemoryStore(), "media", nil)

	_, err := transfer.Upload(context.Background(), Blob{Name: "x.jpg"}, "")
	var upErr *UploadError
	require.ErrorAs(t, err, &upErr)
	assert.Contains(t, upErr.Error(), "no file provided")
}

func TestRemoveEmptyURLIsNoop(t *testing.T) {
	transfer := NewImageTransfer(newMemoryStore(), "media", nil)

	deleted, err := transfer.Remove(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRemoveDerivesKeyFromURL(t *testing.T) {
	store := newMemoryStore()
	transfer := NewImageTransfer(store, "media", nil)

	url, err := transfer.Upload(context.Background(), Blob{Name: "a.jpg", Data: []byte("d")}, "a.jpg")
	require.NoError(t, err)

	deleted, err := transfer.Remove(context.Background(), url)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, store.objects)
}

func TestRemoveSurfacesDeleteError(t *testing.T) {
	store := newMemoryStore()
	store.removeErr = errors.New("storage down")
	transfer := NewImageTransfer(store, "media", nil)

	_, err := transfer.Remove(context.Background(), "http://blobs/media/a.jpg")
	var delErr *DeleteError
	require.ErrorAs(t, err, &delErr)
}

func TestKeyFromURL(t *testing.T) {
	cases := map[string]string{
		"http://blobs/media/abc.jpg":               "abc.jpg",
		"https://cdn.example.com/media/x/deep.png": "deep.png",
		"abc.jpg": "abc.jpg",
		"":        "",
	}
	for input, want := range cases {
		assert.Equal(t, want, KeyFromURL(input), "input %q", input)
	}
}
