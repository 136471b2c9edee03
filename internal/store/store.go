package store

import (
	"context"
	"time"
)

// EventKind classifies a lifecycle event in the audit trail.
type EventKind string

const (
	EventUserRegistered   EventKind = "user_registered"
	EventUserUnregistered EventKind = "user_unregistered"
	EventRoomCreated      EventKind = "room_created"
	EventMemberJoined     EventKind = "member_joined"
	EventMemberLeft       EventKind = "member_left"
	EventInviteSent       EventKind = "invite_sent"
	EventInviteAccepted   EventKind = "invite_accepted"
	EventInviteDeclined   EventKind = "invite_declined"
)

// Event is one audit record. The server records room and user lifecycle
// transitions here for operator inspection; chat message bodies are never
// persisted.
type Event struct {
	ID        int64
	Kind      EventKind
	Actor     string
	RoomID    string
	Detail    string
	CreatedAt time.Time
}

// EventStore records and lists lifecycle events.
type EventStore interface {
	// RecordEvent appends one event to the audit trail.
	RecordEvent(ctx context.Context, ev Event) error

	// RecentEvents returns up to limit events, newest first.
	RecentEvents(ctx context.Context, limit int) ([]Event, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	EventStore

	// Close closes the underlying database connection.
	Close() error
}
