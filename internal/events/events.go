package events

import (
	"encoding/json"
	"time"
)

const (
	TypeSyncStarted        = "sync_started"
	TypeJobsSynced         = "jobs_synced"
	TypeSyncFailed         = "sync_failed"
	TypeSignedIn           = "auth_signed_in"
	TypeSignedOut          = "auth_signed_out"
	TypeAppliedChanged     = "applied_changed"
	TypeNotSuitableChanged = "not_suitable_changed"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`

	// UserID scopes the event to one signed-in user. Empty means broadcast.
	UserID string `json:"-"`
}

func MakeEvent(reqID, typ string, v int, data any) Event {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	return Event{
		Type:      typ,
		Version:   v,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	}
}

// ForUser returns a copy of e scoped to userID.
func (e Event) ForUser(userID string) Event {
	e.UserID = userID
	return e
}

// Encode renders the event as a single-line JSON SSE payload.
func (e Event) Encode() string {
	b, _ := json.Marshal(e)
	return string(b)
}
