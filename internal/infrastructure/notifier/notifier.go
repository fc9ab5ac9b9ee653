package notifier

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/iho/smartlink/internal/domain"
)

// Enqueuer is the part of *asynq.Client the notifier needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueNotifier implements usecase.Notifier by enqueueing a task per notification.
// Delivery happens in the worker process.
type QueueNotifier struct {
	client         Enqueuer
	maxRetry       int
	timeout        time.Duration
	enqueueTimeout time.Duration
	logger         zerolog.Logger
}

// NewQueueNotifier creates a new QueueNotifier.
func NewQueueNotifier(client Enqueuer, logger zerolog.Logger) *QueueNotifier {
	return &QueueNotifier{
		client:         client,
		maxRetry:       5,
		timeout:        30 * time.Second,
		enqueueTimeout: 2 * time.Second,
		logger:         logger.With().Str("component", "notifier").Logger(),
	}
}

// WithEnqueueTimeout bounds how long Notify waits on the queue.
func (q *QueueNotifier) WithEnqueueTimeout(d time.Duration) *QueueNotifier {
	q.enqueueTimeout = d
	return q
}

// Notify enqueues n. It runs after the caller's transaction committed, so it ignores the
// caller's cancellation and gives up after the enqueue timeout instead.
func (q *QueueNotifier) Notify(ctx context.Context, n *domain.Notification) error {
	task, err := NewNotificationTask(n)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), q.enqueueTimeout)
	defer cancel()

	info, err := q.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueNotifications),
		asynq.MaxRetry(q.maxRetry),
		asynq.Timeout(q.timeout),
	)
	if err != nil {
		return err
	}

	q.logger.Debug().
		Str("task_id", info.ID).
		Str("kind", n.Kind).
		Int64("user_id", n.UserID).
		Msg("notification enqueued")
	return nil
}
