package handlers

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"contenthub-backend/internal/infrastructure/storage"
	"contenthub-backend/internal/shared"
	"contenthub-backend/pkg/logger"
)

// PurgeBlobHandler retries object deletes that failed inline.
type PurgeBlobHandler struct {
	store storage.ObjectStorage
}

func NewPurgeBlobHandler(store storage.ObjectStorage) *PurgeBlobHandler {
	return &PurgeBlobHandler{store: store}
}

func (h *PurgeBlobHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p shared.PurgeBlobPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return asynq.SkipRetry
	}
	if p.Bucket == "" || p.Key == "" {
		return asynq.SkipRetry
	}

	if err := h.store.Remove(ctx, p.Bucket, p.Key); err != nil {
		return err // transient storage failure, retry
	}

	logger.Debug("purged blob " + p.Bucket + "/" + p.Key)
	return nil
}
