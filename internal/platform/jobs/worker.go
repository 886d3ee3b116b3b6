package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// Worker wraps the asynq server and the cron scheduler that feeds it.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	logger    *slog.Logger
}

type WorkerConfig struct {
	RedisAddr   string
	AccrualCron string
	YearEndCron string
	Handlers    *LeaveHandlers
	Logger      *slog.Logger
}

func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Handlers == nil {
		return nil, errors.New("jobs: leave handlers are required")
	}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}

	server := asynq.NewServer(redisOpts, asynq.Config{
		Concurrency: 2,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskLeaveAccrual, cfg.Handlers.HandleAccrual)
	mux.HandleFunc(TaskLeaveYearEnd, cfg.Handlers.HandleYearEnd)

	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{Location: time.UTC})
	if cfg.AccrualCron != "" {
		task, err := NewLeaveAccrualTask(AccrualPayload{})
		if err != nil {
			return nil, err
		}
		if _, err := scheduler.Register(cfg.AccrualCron, task, asynq.Queue(QueueDefault)); err != nil {
			return nil, err
		}
	}
	if cfg.YearEndCron != "" {
		task, err := NewLeaveYearEndTask(YearEndPayload{})
		if err != nil {
			return nil, err
		}
		if _, err := scheduler.Register(cfg.YearEndCron, task, asynq.Queue(QueueDefault)); err != nil {
			return nil, err
		}
	}

	return &Worker{server: server, mux: mux, scheduler: scheduler, logger: cfg.Logger}, nil
}

// Run processes jobs until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.scheduler.Start(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()

	select {
	case <-ctx.Done():
		w.scheduler.Shutdown()
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		w.scheduler.Shutdown()
		return err
	}
}

// Client submits leave tasks outside the schedule, backing the admin trigger
// endpoints.
type Client struct {
	client *asynq.Client
}

func NewClient(redisAddr string) *Client {
	return &Client{client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})}
}

func (c *Client) EnqueueAccrual(ctx context.Context, payload AccrualPayload) error {
	task, err := NewLeaveAccrualTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	return err
}

func (c *Client) EnqueueYearEnd(ctx context.Context, payload YearEndPayload) error {
	task, err := NewLeaveYearEndTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	return err
}

func (c *Client) Close() error {
	return c.client.Close()
}
