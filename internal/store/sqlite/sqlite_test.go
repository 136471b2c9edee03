package sqlite

import (
	"context"
	"testing"

	"github.com/pkarpov/linechat/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	st, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestRecordAndListEvents(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	events := []store.Event{
		{Kind: store.EventUserRegistered, Actor: "alice"},
		{Kind: store.EventRoomCreated, Actor: "alice", RoomID: "000042", Detail: "lounge"},
		{Kind: store.EventMemberJoined, Actor: "bob", RoomID: "000042"},
	}
	for _, ev := range events {
		if err := st.RecordEvent(ctx, ev); err != nil {
			t.Fatalf("record event: %v", err)
		}
	}

	got, err := st.RecentEvents(ctx, 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}

	// Newest first.
	if got[0].Kind != store.EventMemberJoined || got[0].Actor != "bob" {
		t.Fatalf("unexpected first event: %+v", got[0])
	}
	if got[2].Kind != store.EventUserRegistered {
		t.Fatalf("unexpected last event: %+v", got[2])
	}
	if got[1].RoomID != "000042" || got[1].Detail != "lounge" {
		t.Fatalf("room fields not persisted: %+v", got[1])
	}
}

func TestRecentEventsHonorsLimit(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := st.RecordEvent(ctx, store.Event{Kind: store.EventMemberJoined, Actor: "alice", RoomID: "000001"}); err != nil {
			t.Fatalf("record event: %v", err)
		}
	}

	got, err := st.RecentEvents(ctx, 2)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
}

func TestRecentEventsOnEmptyStore(t *testing.T) {
	st := newTestStore(t)

	got, err := st.RecentEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no events, got %d", len(got))
	}
}
