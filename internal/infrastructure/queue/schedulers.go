package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"contenthub-backend/internal/shared"
	"contenthub-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddr string) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddr},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)
	return &Scheduler{scheduler: scheduler}
}

// RegisterMaintenanceJobs registers the recurring cleanup work.
func (s *Scheduler) RegisterMaintenanceJobs() error {
	return s.registerReconcileIdentitiesJob()
}

// Daily at 3 AM: identities without a profile row get deleted, same policy
// the auth store applies reactively on session checks.
func (s *Scheduler) registerReconcileIdentitiesJob() error {
	payload, err := json.Marshal(shared.ReconcileIdentitiesPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeReconcileIdentities, payload)

	_, err = s.scheduler.Register(
		"0 3 * * *",
		task,
		asynq.Queue(shared.QueueCleanup),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("failed to register ReconcileIdentities job", err)
		return err
	}

	logger.Info("registered ReconcileIdentities: daily at 3 AM", nil)
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
