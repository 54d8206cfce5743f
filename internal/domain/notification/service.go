package notification

import (
	"context"
	"time"
)

// Service defines the notification service interface
type Service interface {
	// Queue notification (async processing via background workers)
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error

	// Rendered reads
	GetNotifications(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (*RenderedListResponse, error)
	GetNotification(ctx context.Context, userID string, notificationID string) (*RenderedNotificationResponse, error)
	Render(ctx context.Context, req RenderRequest) (*RenderResponse, error)

	GetUnreadCount(ctx context.Context, userID string) (int, error)
	MarkAsRead(ctx context.Context, userID string, req MarkAsReadRequest) error
	MarkAllAsRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string, notificationID string) error
	PurgeDeleted(ctx context.Context, retention time.Duration) (int64, error)

	// SSE subscription
	Subscribe(ctx context.Context, userID string) (<-chan SSEEvent, func())

	// Lifecycle
	Stop()
}
