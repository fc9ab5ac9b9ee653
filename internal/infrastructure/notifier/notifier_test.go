package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/smartlink/internal/domain"
)

type recordingEnqueuer struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (r *recordingEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.err != nil {
		return nil, r.err
	}
	r.tasks = append(r.tasks, task)
	r.opts = append(r.opts, opts)
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueNotifications}, nil
}

// stalledEnqueuer blocks until its context ends, like a Redis that stopped answering.
type stalledEnqueuer struct {
	deadline time.Time
}

func (s *stalledEnqueuer) EnqueueContext(ctx context.Context, _ *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	s.deadline, _ = ctx.Deadline()
	<-ctx.Done()
	return nil, ctx.Err()
}

type recordingDeliverer struct {
	delivered []*domain.Notification
	err       error
}

func (r *recordingDeliverer) Deliver(_ context.Context, n *domain.Notification) error {
	if r.err != nil {
		return r.err
	}
	r.delivered = append(r.delivered, n)
	return nil
}

func sampleNotification() *domain.Notification {
	return &domain.Notification{
		Kind:      domain.NotificationBalanceTopUp,
		UserID:    7,
		Payload:   domain.BalanceTopUpPayload("10.00", "DEP_7_X", "25.00"),
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestQueueNotifierEnqueuesOnNotificationQueue(t *testing.T) {
	enq := &recordingEnqueuer{}
	n := NewQueueNotifier(enq, zerolog.Nop())

	require.NoError(t, n.Notify(context.Background(), sampleNotification()))
	require.Len(t, enq.tasks, 1)

	task := enq.tasks[0]
	assert.Equal(t, TypeNotification, task.Type())

	var decoded domain.Notification
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, int64(7), decoded.UserID)
	assert.Equal(t, "DEP_7_X", decoded.Payload["reference"])

	var queue string
	for _, opt := range enq.opts[0] {
		if opt.Type() == asynq.QueueOpt {
			queue = opt.Value().(string)
		}
	}
	assert.Equal(t, QueueNotifications, queue)
}

func TestQueueNotifierPropagatesEnqueueError(t *testing.T) {
	enq := &recordingEnqueuer{err: errors.New("redis down")}
	n := NewQueueNotifier(enq, zerolog.Nop())

	assert.Error(t, n.Notify(context.Background(), sampleNotification()))
}

func TestQueueNotifierBoundsEnqueueTime(t *testing.T) {
	enq := &stalledEnqueuer{}
	n := NewQueueNotifier(enq, zerolog.Nop()).WithEnqueueTimeout(50 * time.Millisecond)

	start := time.Now()
	err := n.Notify(context.Background(), sampleNotification())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
	assert.False(t, enq.deadline.IsZero())
}

func TestQueueNotifierIgnoresCallerCancellation(t *testing.T) {
	enq := &recordingEnqueuer{}
	n := NewQueueNotifier(enq, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, n.Notify(ctx, sampleNotification()))
	assert.Len(t, enq.tasks, 1)
}

func TestHandlerDeliversDecodedNotification(t *testing.T) {
	d := &recordingDeliverer{}
	h := NewHandler(d, nil, zerolog.Nop())

	task, err := NewNotificationTask(sampleNotification())
	require.NoError(t, err)

	require.NoError(t, h.HandleNotification(context.Background(), task))
	require.Len(t, d.delivered, 1)
	assert.Equal(t, domain.NotificationBalanceTopUp, d.delivered[0].Kind)
}

func TestHandlerSkipsRetryOnMalformedPayload(t *testing.T) {
	h := NewHandler(&recordingDeliverer{}, nil, zerolog.Nop())

	err := h.HandleNotification(context.Background(), asynq.NewTask(TypeNotification, []byte("{not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandlerReturnsDeliveryErrorForRetry(t *testing.T) {
	h := NewHandler(&recordingDeliverer{err: errors.New("smtp timeout")}, nil, zerolog.Nop())

	task, err := NewNotificationTask(sampleNotification())
	require.NoError(t, err)

	err = h.HandleNotification(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestLogDelivererWritesKindAndUser(t *testing.T) {
	var buf bytes.Buffer
	d := NewLogDeliverer(zerolog.New(&buf))

	require.NoError(t, d.Deliver(context.Background(), sampleNotification()))
	assert.Contains(t, buf.String(), `"kind":"balance_top_up"`)
	assert.Contains(t, buf.String(), `"user_id":7`)
}
