package notification

import (
	"time"

	"github.com/cmlabs-hris/hris-notification-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-notification-go/internal/pkg/render"
	"github.com/cmlabs-hris/hris-notification-go/internal/pkg/validator"
)

// ============= Request DTOs =============

// CreateNotificationRequest represents a request to create a notification
type CreateNotificationRequest struct {
	RecipientID    string  `json:"recipient_id"`
	Subject        *string `json:"subject"`
	Message        *string `json:"message"`
	AppData        *string `json:"app_data"`
	CreateDateTime *string `json:"create_date_time"`
}

func (r *CreateNotificationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RecipientID) {
		errs = append(errs, validator.ValidationError{
			Field:   "recipient_id",
			Message: "recipient_id is required",
		})
	}
	if (r.Message == nil || validator.IsEmpty(*r.Message)) && (r.AppData == nil || validator.IsEmpty(*r.AppData)) {
		errs = append(errs, validator.ValidationError{
			Field:   "message",
			Message: "message or app_data is required",
		})
	}
	if r.CreateDateTime != nil {
		if _, ok := validator.IsValidDateTime(*r.CreateDateTime); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "create_date_time",
				Message: "create_date_time must be an ISO8601 timestamp",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// RecordRequest is a raw notification record as delivered to clients
type RecordRequest struct {
	ID             string  `json:"id"`
	Subject        *string `json:"subject"`
	Message        *string `json:"message"`
	AppData        *string `json:"app_data"`
	CreateDateTime *string `json:"create_date_time"`
	Read           bool    `json:"read"`
	Deleted        bool    `json:"deleted"`
}

// RenderRequest asks for a record to be rendered against an optional snapshot
type RenderRequest struct {
	Notification RecordRequest             `json:"notification"`
	Snapshot     *schedule.SnapshotRequest `json:"snapshot,omitempty"`
}

func (r *RenderRequest) Validate() error {
	if r.Snapshot == nil {
		return nil
	}
	return r.Snapshot.Validate()
}

// MarkAsReadRequest represents a request to mark notifications as read
type MarkAsReadRequest struct {
	NotificationIDs []string `json:"notification_ids" validate:"required,min=1"`
}

func (r *MarkAsReadRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.NotificationIDs) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "notification_ids",
			Message: "notification_ids is required",
		})
	}
	for _, id := range r.NotificationIDs {
		if !validator.IsValidUUID(id) {
			errs = append(errs, validator.ValidationError{
				Field:   "notification_ids",
				Message: "notification_ids must contain valid ids",
			})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ============= Response DTOs =============

// RenderResponse is the output of the rendering pipeline for one record
type RenderResponse struct {
	Blocks         []render.Block `json:"blocks"`
	Preview        string         `json:"preview"`
	CreatedDisplay string         `json:"created_display"`
}

// RenderedNotificationResponse represents a rendered notification in API responses
type RenderedNotificationResponse struct {
	ID             string         `json:"id"`
	Subject        *string        `json:"subject,omitempty"`
	Blocks         []render.Block `json:"blocks"`
	Preview        string         `json:"preview"`
	CreatedDisplay string         `json:"created_display"`
	IsRead         bool           `json:"is_read"`
	ReadAt         *time.Time     `json:"read_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// RenderedListResponse represents a paginated list of rendered notifications
type RenderedListResponse struct {
	Notifications []RenderedNotificationResponse `json:"notifications"`
	Total         int                            `json:"total"`
	UnreadCount   int                            `json:"unread_count"`
	Page          int                            `json:"page"`
	PageSize      int                            `json:"page_size"`
}

// UnreadCountResponse represents unread count response
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

// SSETokenResponse represents the SSE token response
type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// ============= SSE Event =============

// SSEEvent represents a Server-Sent Event
type SSEEvent struct {
	Event string                       `json:"event"`
	Data  RenderedNotificationResponse `json:"data"`
}
