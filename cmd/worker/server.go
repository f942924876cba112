package main

import (
	"context"
	"log"

	"github.com/hibiken/asynq"

	"contenthub-backend/internal/shared"
)

type asynqServer struct {
	*asynq.Server
}

func setupAsynqServer(redisAddr string, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			Queues: map[string]int{
				shared.QueueDefault: 10,
				shared.QueueCleanup: 5,
			},
			Concurrency: 10,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("task failed - type: %s, error: %v", task.Type(), err)
			}),
		},
	)

	go func() {
		log.Println("worker starting...")
		if err := srv.Run(mux); err != nil {
			log.Fatalf("worker failed: %v", err)
		}
	}()

	return &asynqServer{Server: srv}
}

func (s *asynqServer) Shutdown() {
	log.Println("worker shutting down...")
	s.Server.Shutdown()
}
