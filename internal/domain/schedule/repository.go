package schedule

import (
	"context"
	"time"
)

type SnapshotRepository interface {
	// GetSnapshot returns the user's track entries with dates in [from, to]
	GetSnapshot(ctx context.Context, userID string, from, to time.Time) (*Snapshot, error)
}
