package schedule

import "time"

// Snapshot is a read-only view of a user's schedule used to resolve shift ids
type Snapshot struct {
	UserID string
	From   time.Time
	To     time.Time

	Entries []TrackEntry
}

// TrackEntry is one day on a schedule track, optionally holding a shift
type TrackEntry struct {
	ID    string
	Date  time.Time
	Shift *Shift
}

// Shift is a scheduled block of work at a workstation
type Shift struct {
	ShiftID         string
	WorkstationID   *string
	WorkstationCode *string
	WorkstationName *string
	Start           *time.Time
	End             *time.Time
}

// FindShift returns the shift with the given id, or nil. Safe on a nil snapshot.
func (s *Snapshot) FindShift(shiftID string) *Shift {
	if s == nil || shiftID == "" {
		return nil
	}
	for i := range s.Entries {
		if sh := s.Entries[i].Shift; sh != nil && sh.ShiftID == shiftID {
			return sh
		}
	}
	return nil
}
