package notification

import "errors"

// Notification domain errors
var (
	ErrNotificationNotFound  = errors.New("notification not found")
	ErrInvalidNotificationID = errors.New("invalid notification id")
	ErrQueueClosed           = errors.New("notification queue is closed")
)
