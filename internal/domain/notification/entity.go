package notification

import (
	"time"
)

// Notification is a stored notification record. Message is HTML-flavored and
// AppData may carry a raw or string-wrapped JSON event payload.
type Notification struct {
	ID             string
	RecipientID    string
	Subject        *string
	Message        *string
	AppData        *string
	CreateDateTime *string
	IsRead         bool
	IsDeleted      bool
	ReadAt         *time.Time
	CreatedAt      time.Time
}
