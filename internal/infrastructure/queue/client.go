package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"contenthub-backend/internal/shared"
)

// Client enqueues background tasks. It satisfies store.BlobPurger so entity
// stores can hand failed blob deletes to the worker.
type Client struct {
	client *asynq.Client
}

func NewClient(redisAddr string) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr}),
	}
}

// EnqueuePurge schedules a retried delete for an object left behind by a
// failed inline cleanup.
func (c *Client) EnqueuePurge(ctx context.Context, bucket, key string) error {
	payload, err := json.Marshal(shared.PurgeBlobPayload{Bucket: bucket, Key: key})
	if err != nil {
		return fmt.Errorf("marshal purge payload: %w", err)
	}

	task := asynq.NewTask(shared.TypePurgeBlob, payload)
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueueCleanup),
		asynq.MaxRetry(5),
		asynq.Timeout(time.Minute),
	)
	if err != nil {
		return fmt.Errorf("enqueue purge: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
