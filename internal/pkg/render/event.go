package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-notification-go/internal/domain/schedule"
)

// EventType discriminates the structured payloads carried in appData
type EventType string

const (
	EventHelpCall          EventType = "HELP_CALL"
	EventShiftPost         EventType = "SHIFT_POST"
	EventShiftPostApproval EventType = "SHIFT_POST_APPROVAL"
)

// maxUnwrapDepth bounds how many layers of string-encoded JSON are peeled
const maxUnwrapDepth = 2

const (
	timeLayout = "3:04pm"
	dayLayout  = "1/2"

	defaultInitiator = "Someone"
)

// ShiftRef is the shift reference embedded in an event payload
type ShiftRef struct {
	ShiftID         string `json:"shiftId"`
	StartDateTime   string `json:"startDateTime"`
	EndDateTime     string `json:"endDateTime"`
	WorkstationID   string `json:"workstationId"`
	WorkstationCode string `json:"workstationCode"`
	WorkstationName string `json:"workstationName"`
}

// EventPayload is the decoded appData side-channel of a notification
type EventPayload struct {
	EventType                    EventType `json:"eventType"`
	InitiatorShift               *ShiftRef `json:"initiatorShift"`
	InitiatingAssociateFirstName string    `json:"initiatingAssociateFirstName"`
	InitiatingAssociateLastName  string    `json:"initiatingAssociateLastName"`
}

// Known reports whether the payload carries one of the templated event types
func (p *EventPayload) Known() bool {
	switch p.EventType {
	case EventHelpCall, EventShiftPost, EventShiftPostApproval:
		return true
	}
	return false
}

// InitiatorName joins the initiating associate's names, or "Someone"
func (p *EventPayload) InitiatorName() string {
	name := strings.TrimSpace(strings.TrimSpace(p.InitiatingAssociateFirstName) + " " + strings.TrimSpace(p.InitiatingAssociateLastName))
	if name == "" {
		return defaultInitiator
	}
	return name
}

// DecodePayload parses appData, peeling up to two layers of string-wrapped
// JSON. It reports false when appData holds no JSON object.
func DecodePayload(appData string) (*EventPayload, bool) {
	data := bytes.TrimSpace([]byte(appData))
	for depth := 0; ; depth++ {
		if len(data) == 0 {
			return nil, false
		}
		if data[0] != '"' {
			break
		}
		if depth == maxUnwrapDepth {
			return nil, false
		}
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, false
		}
		data = bytes.TrimSpace([]byte(inner))
	}

	if data[0] != '{' {
		return nil, false
	}
	var payload EventPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, false
	}
	return &payload, true
}

// ApplyEventTemplate replaces message with a synthesized sentence when appData
// carries a known event with complete shift times. In every other case the
// message is returned unchanged.
func ApplyEventTemplate(message, appData string, snap *schedule.Snapshot, opts Options) string {
	payload, ok := DecodePayload(appData)
	if !ok || !payload.Known() || payload.InitiatorShift == nil {
		return message
	}

	loc := opts.location()
	ref := payload.InitiatorShift
	resolved := snap.FindShift(ref.ShiftID)

	start, ok := shiftTime(ref.StartDateTime, resolved, true, loc)
	if !ok {
		return message
	}
	end, ok := shiftTime(ref.EndDateTime, resolved, false, loc)
	if !ok {
		return message
	}

	station := workstationName(ref, resolved, opts.aliases())
	window := start.Format(timeLayout) + "-" + end.Format(timeLayout)
	day := start.Format(dayLayout)

	switch payload.EventType {
	case EventHelpCall:
		return fmt.Sprintf("%s needs help covering %s %s on %s.", payload.InitiatorName(), station, window, day)
	case EventShiftPost:
		return fmt.Sprintf("%s posted a %s shift %s on %s.", payload.InitiatorName(), station, window, day)
	case EventShiftPostApproval:
		return fmt.Sprintf("Your %s shift post %s on %s was approved.", station, window, day)
	}
	return message
}

// shiftTime prefers the payload timestamp and falls back to the snapshot shift
func shiftTime(raw string, resolved *schedule.Shift, start bool, loc *time.Location) (time.Time, bool) {
	if t, ok := parseTimestamp(raw, loc); ok {
		return t.In(loc), true
	}
	if resolved == nil {
		return time.Time{}, false
	}
	ts := resolved.End
	if start {
		ts = resolved.Start
	}
	if ts == nil {
		return time.Time{}, false
	}
	return ts.In(loc), true
}

func workstationName(ref *ShiftRef, resolved *schedule.Shift, aliases Aliases) string {
	id, code, name := ref.WorkstationID, ref.WorkstationCode, ref.WorkstationName
	if resolved != nil {
		id = firstNonEmpty(deref(resolved.WorkstationID), id)
		code = firstNonEmpty(deref(resolved.WorkstationCode), code)
		name = firstNonEmpty(deref(resolved.WorkstationName), name)
	}
	return aliases.Lookup(id, code, name)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
