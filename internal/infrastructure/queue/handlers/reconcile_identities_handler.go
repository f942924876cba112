package handlers

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"contenthub-backend/pkg/logger"
)

// ReconcileIdentitiesHandler deletes identities whose profile row is gone.
// This is the scheduled counterpart of the reactive orphan check the auth
// store performs on session validation.
type ReconcileIdentitiesHandler struct {
	pool *pgxpool.Pool
}

func NewReconcileIdentitiesHandler(pool *pgxpool.Pool) *ReconcileIdentitiesHandler {
	return &ReconcileIdentitiesHandler{pool: pool}
}

func (h *ReconcileIdentitiesHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	tag, err := h.pool.Exec(ctx, `
		DELETE FROM auth_identities
		WHERE NOT EXISTS (SELECT 1 FROM users WHERE users.auth_uid = auth_identities.uid)`)
	if err != nil {
		return fmt.Errorf("reconcile identities: %w", err)
	}

	if n := tag.RowsAffected(); n > 0 {
		logger.Info("reconciled orphaned identities", map[string]interface{}{"count": n})
	}
	return nil
}
