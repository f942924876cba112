package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Blob is an in-memory file handed to the image transfer helper.
type Blob struct {
	Name        string
	Data        []byte
	ContentType string
}

// UploadError reports a failed storage upload.
type UploadError struct {
	Reason string
	Err    error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upload failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("upload failed: %s", e.Reason)
}

func (e *UploadError) Unwrap() error { return e.Err }

// DeleteError reports a failed storage delete.
type DeleteError struct {
	Reason string
	Err    error
}

func (e *DeleteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("delete failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("delete failed: %s", e.Reason)
}

func (e *DeleteError) Unwrap() error { return e.Err }

// ImageTransfer uploads and removes image blobs in one bucket. Uploads get a
// collision-resistant generated key unless a path is supplied; removes derive
// the key back from the public URL.
type ImageTransfer struct {
	store     ObjectStorage
	bucket    string
	processor *ImageProcessor
}

func NewImageTransfer(store ObjectStorage, bucket string, processor *ImageProcessor) *ImageTransfer {
	return &ImageTransfer{store: store, bucket: bucket, processor: processor}
}

func (t *ImageTransfer) Bucket() string { return t.bucket }

// Upload validates, normalizes and stores the blob, returning its public URL.
// An empty objectPath generates "<uuid>.<original extension>".
func (t *ImageTransfer) Upload(ctx context.Context, blob Blob, objectPath string) (string, error) {
	if len(blob.Data) == 0 {
		return "", &UploadError{Reason: "no file provided"}
	}

	data := blob.Data
	contentType := blob.ContentType
	ext := strings.ToLower(path.Ext(blob.Name))

	if t.processor != nil {
		if err := t.processor.Validate(data); err != nil {
			return "", &UploadError{Reason: "invalid image", Err: err}
		}
		normalized, format, err := t.processor.Normalize(data)
		if err != nil {
			return "", &UploadError{Reason: "cannot process image", Err: err}
		}
		data = normalized
		if format == "jpeg" && ext != ".jpg" && ext != ".jpeg" {
			ext = ".jpg"
		}
		if contentType == "" {
			contentType = "image/" + format
		}
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := objectPath
	if key == "" {
		key = uuid.NewString() + ext
	}

	publicURL, err := t.store.Upload(ctx, t.bucket, key, data, contentType)
	if err != nil {
		return "", &UploadError{Reason: "storage rejected upload", Err: err}
	}
	return publicURL, nil
}

// Remove deletes the object a public URL points at. An empty URL is a no-op
// reported as false; any storage failure surfaces as a DeleteError.
func (t *ImageTransfer) Remove(ctx context.Context, imageURL string) (bool, error) {
	if imageURL == "" {
		return false, nil
	}
	key := KeyFromURL(imageURL)
	if key == "" {
		return false, nil
	}
	if err := t.store.Remove(ctx, t.bucket, key); err != nil {
		return false, &DeleteError{Reason: "storage rejected delete", Err: err}
	}
	return true, nil
}

// KeyFromURL derives the storage object key from the trailing path segment
// of a public URL.
func KeyFromURL(imageURL string) string {
	if imageURL == "" {
		return ""
	}
	if parsed, err := url.Parse(imageURL); err == nil && parsed.Path != "" {
		return path.Base(parsed.Path)
	}
	parts := strings.Split(imageURL, "/")
	return parts[len(parts)-1]
}
