package queue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// NewServer creates the asynq worker server. A task that exhausts its retries
// is logged as a compensation warning for manual follow-up.
func NewServer(redis asynq.RedisConnOpt, concurrency int, log zerolog.Logger) *asynq.Server {
	return asynq.NewServer(redis, asynq.Config{
		Concurrency:  concurrency,
		Queues:       Queues,
		ErrorHandler: errorHandler(log),
		Logger:       &asynqLogger{log: log.With().Str("component", "asynq").Logger()},
	})
}

func errorHandler(log zerolog.Logger) asynq.ErrorHandlerFunc {
	return func(ctx context.Context, task *asynq.Task, err error) {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)
		taskID, _ := asynq.GetTaskID(ctx)

		if retried >= maxRetry {
			log.Error().Err(err).
				Bool("compensation_warning", true).
				Str("type", task.Type()).
				Str("task_id", taskID).
				Int("retried", retried).
				Msg("task exhausted retries; manual reconciliation required")
			return
		}
		log.Warn().Err(err).
			Str("type", task.Type()).
			Str("task_id", taskID).
			Int("retried", retried).
			Int("max_retry", maxRetry).
			Msg("task failed, will retry")
	}
}

// asynqLogger adapts zerolog to asynq.Logger.
type asynqLogger struct {
	log zerolog.Logger
}

func (l *asynqLogger) Debug(args ...interface{}) { l.log.Debug().Msg(sprint(args)) }
func (l *asynqLogger) Info(args ...interface{})  { l.log.Info().Msg(sprint(args)) }
func (l *asynqLogger) Warn(args ...interface{})  { l.log.Warn().Msg(sprint(args)) }
func (l *asynqLogger) Error(args ...interface{}) { l.log.Error().Msg(sprint(args)) }
func (l *asynqLogger) Fatal(args ...interface{}) { l.log.Fatal().Msg(sprint(args)) }

func sprint(args []interface{}) string {
	return fmt.Sprint(args...)
}
