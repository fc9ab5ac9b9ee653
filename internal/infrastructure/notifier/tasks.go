package notifier

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/iho/smartlink/internal/domain"
)

// Task types and queues.
const (
	TypeNotification = "notification:deliver"

	QueueNotifications = "notifications"
	QueueDefault       = "default"
)

// NewNotificationTask wraps n into an asynq task.
func NewNotificationTask(n *domain.Notification) (*asynq.Task, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("marshal notification: %w", err)
	}
	return asynq.NewTask(TypeNotification, payload), nil
}

// Queues returns the queue priorities the worker consumes.
func Queues() map[string]int {
	return map[string]int{
		QueueNotifications: 6,
		QueueDefault:       3,
	}
}
