package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-notification-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-notification-go/internal/pkg/database"
)

type scheduleSnapshotRepository struct {
	db *database.DB
}

// NewScheduleSnapshotRepository creates a repository reading schedule track entries
func NewScheduleSnapshotRepository(db *database.DB) schedule.SnapshotRepository {
	return &scheduleSnapshotRepository{db: db}
}

// GetSnapshot implements schedule.SnapshotRepository.
func (r *scheduleSnapshotRepository) GetSnapshot(ctx context.Context, userID string, from, to time.Time) (*schedule.Snapshot, error) {
	if to.Before(from) {
		return nil, schedule.ErrInvalidWindow
	}

	q := GetQuerier(ctx, r.db)

	// Entries without a shift still occupy a day on the track
	query := `
		SELECT
			te.id,
			te.track_date,
			te.shift_id,
			te.workstation_id,
			te.workstation_code,
			te.workstation_name,
			te.shift_start,
			te.shift_end
		FROM schedule_track_entries te
		WHERE te.user_id = $1
		  AND te.track_date BETWEEN $2::date AND $3::date
		ORDER BY te.track_date, te.shift_start NULLS LAST
	`

	rows, err := q.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule track entries: %w", err)
	}
	defer rows.Close()

	snap := &schedule.Snapshot{UserID: userID, From: from, To: to}
	for rows.Next() {
		var (
			entry   schedule.TrackEntry
			shiftID *string
			shift   schedule.Shift
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.Date,
			&shiftID,
			&shift.WorkstationID,
			&shift.WorkstationCode,
			&shift.WorkstationName,
			&shift.Start,
			&shift.End,
		); err != nil {
			return nil, fmt.Errorf("failed to scan schedule track entry: %w", err)
		}
		if shiftID != nil {
			shift.ShiftID = *shiftID
			entry.Shift = &shift
		}
		snap.Entries = append(snap.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedule track entries: %w", err)
	}

	return snap, nil
}
