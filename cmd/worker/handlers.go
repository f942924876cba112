package main

import (
	"github.com/hibiken/asynq"

	"contenthub-backend/internal/infrastructure/queue/handlers"
	"contenthub-backend/internal/shared"
	"contenthub-backend/pkg/container"
)

// HandlerRegistry holds all task handlers.
type HandlerRegistry struct {
	purgeBlob           *handlers.PurgeBlobHandler
	reconcileIdentities *handlers.ReconcileIdentitiesHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		purgeBlob:           handlers.NewPurgeBlobHandler(c.Storage),
		reconcileIdentities: handlers.NewReconcileIdentitiesHandler(c.DB.Pool),
	}
}

func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypePurgeBlob, h.purgeBlob.ProcessTask)
	mux.HandleFunc(shared.TypeReconcileIdentities, h.reconcileIdentities.ProcessTask)
}
