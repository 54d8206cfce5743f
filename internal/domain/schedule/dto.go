package schedule

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-notification-go/internal/pkg/validator"
)

// SnapshotRequest is a client-supplied schedule snapshot
type SnapshotRequest struct {
	Entries []TrackEntryRequest `json:"entries"`
}

type TrackEntryRequest struct {
	ID    string        `json:"id"`
	Date  string        `json:"date"`
	Shift *ShiftRequest `json:"shift,omitempty"`
}

type ShiftRequest struct {
	ShiftID         string  `json:"shift_id"`
	WorkstationID   *string `json:"workstation_id"`
	WorkstationCode *string `json:"workstation_code"`
	WorkstationName *string `json:"workstation_name"`
	Start           *string `json:"start"`
	End             *string `json:"end"`
}

func (r *SnapshotRequest) Validate() error {
	var errs validator.ValidationErrors

	for i, e := range r.Entries {
		if e.Date != "" {
			if _, ok := validator.IsValidDate(e.Date); !ok {
				errs = append(errs, validator.ValidationError{
					Field:   fmt.Sprintf("snapshot.entries[%d].date", i),
					Message: "date must be in YYYY-MM-DD format",
				})
			}
		}
		if e.Shift == nil {
			continue
		}
		if validator.IsEmpty(e.Shift.ShiftID) {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("snapshot.entries[%d].shift.shift_id", i),
				Message: "shift_id is required",
			})
		}
		times := []struct {
			field string
			value *string
		}{{"start", e.Shift.Start}, {"end", e.Shift.End}}
		for _, ts := range times {
			if ts.value == nil {
				continue
			}
			if _, ok := validator.IsValidDateTime(*ts.value); !ok {
				errs = append(errs, validator.ValidationError{
					Field:   fmt.Sprintf("snapshot.entries[%d].shift.%s", i, ts.field),
					Message: ts.field + " must be an ISO8601 timestamp",
				})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ToSnapshot converts a validated request into a Snapshot
func (r *SnapshotRequest) ToSnapshot() *Snapshot {
	snap := &Snapshot{Entries: make([]TrackEntry, 0, len(r.Entries))}
	for _, e := range r.Entries {
		entry := TrackEntry{ID: e.ID}
		if d, ok := validator.IsValidDate(e.Date); ok {
			entry.Date = d
		}
		if e.Shift != nil {
			entry.Shift = &Shift{
				ShiftID:         e.Shift.ShiftID,
				WorkstationID:   e.Shift.WorkstationID,
				WorkstationCode: e.Shift.WorkstationCode,
				WorkstationName: e.Shift.WorkstationName,
				Start:           parseOptionalTime(e.Shift.Start),
				End:             parseOptionalTime(e.Shift.End),
			}
		}
		snap.Entries = append(snap.Entries, entry)
	}
	return snap
}

func parseOptionalTime(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, ok := validator.IsValidDateTime(*s)
	if !ok {
		return nil
	}
	return &t
}
