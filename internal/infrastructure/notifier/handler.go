package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/infrastructure/metrics"
)

// Deliverer hands a notification to its final channel.
type Deliverer interface {
	Deliver(ctx context.Context, n *domain.Notification) error
}

// Handler consumes notification tasks in the worker.
type Handler struct {
	deliverer Deliverer
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(deliverer Deliverer, m *metrics.Metrics, logger zerolog.Logger) *Handler {
	return &Handler{
		deliverer: deliverer,
		metrics:   m,
		logger:    logger.With().Str("component", "notification_handler").Logger(),
	}
}

// Register binds the handler to mux.
func (h *Handler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeNotification, h.HandleNotification)
}

// HandleNotification decodes and delivers one notification. Malformed payloads are
// not retried.
func (h *Handler) HandleNotification(ctx context.Context, t *asynq.Task) error {
	var n domain.Notification
	if err := json.Unmarshal(t.Payload(), &n); err != nil {
		h.count("unknown", "malformed")
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	if err := h.deliverer.Deliver(ctx, &n); err != nil {
		h.count(n.Kind, "failed")
		h.logger.Warn().Err(err).Str("kind", n.Kind).Int64("user_id", n.UserID).Msg("notification delivery failed")
		return err
	}

	h.count(n.Kind, "delivered")
	return nil
}

func (h *Handler) count(kind, status string) {
	if h.metrics != nil {
		h.metrics.Notifications.WithLabelValues(kind, status).Inc()
	}
}

// LogDeliverer writes notifications to the log. It is the delivery channel until a
// user-facing one (mail, push) is configured.
type LogDeliverer struct {
	logger zerolog.Logger
}

// NewLogDeliverer creates a new LogDeliverer.
func NewLogDeliverer(logger zerolog.Logger) *LogDeliverer {
	return &LogDeliverer{logger: logger}
}

// Deliver logs n.
func (d *LogDeliverer) Deliver(_ context.Context, n *domain.Notification) error {
	d.logger.Info().
		Str("kind", n.Kind).
		Int64("user_id", n.UserID).
		Interface("payload", n.Payload).
		Time("created_at", n.CreatedAt).
		Msg("notification delivered")
	return nil
}
