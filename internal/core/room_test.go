package core

import (
	"errors"
	"fmt"
	"testing"
)

func newPublicRoom(t *testing.T, reg *RoomRegistry, name, password string) *Room {
	t.Helper()
	room, err := reg.Create(name, password, false, nil)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	return room
}

func TestRoomBroadcastSkipsSender(t *testing.T) {
	room := newPublicRoom(t, newTestRegistry(t), "general", "pw")
	alice := newFakeSession("alice")
	bob := newFakeSession("bob")
	carol := newFakeSession("carol")
	room.AddMember(alice)
	room.AddMember(bob)
	room.AddMember(carol)

	if err := room.Broadcast(NewMessage("general", "alice", "hi"), alice); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}

	if contains(alice.Lines(), "alice: hi") {
		t.Fatal("sender must not receive its own message")
	}
	for _, s := range []*fakeSession{bob, carol} {
		if !contains(s.Lines(), "alice: hi") {
			t.Fatalf("%s did not receive the message: %v", s.Username(), s.Lines())
		}
	}
}

func TestRoomBroadcastNilSenderReachesEveryone(t *testing.T) {
	room := newPublicRoom(t, newTestRegistry(t), "general", "pw")
	alice := newFakeSession("alice")
	bob := newFakeSession("bob")
	room.AddMember(alice)
	room.AddMember(bob)

	msg := NewMessage("general", "", "server going down")
	if err := room.Broadcast(msg, nil); err != nil {
		t.Fatalf("broadcast failed: %v", err)
	}

	for _, s := range []*fakeSession{alice, bob} {
		if !contains(s.Lines(), "server going down") {
			t.Fatalf("%s missed the system message: %v", s.Username(), s.Lines())
		}
	}
}

func TestRoomBroadcastNilMessageIsHardFailure(t *testing.T) {
	room := newPublicRoom(t, newTestRegistry(t), "general", "pw")
	room.AddMember(newFakeSession("alice"))

	if err := room.Broadcast(nil, nil); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
}

func TestRoomBroadcastIsolatesDeadMembers(t *testing.T) {
	room := newPublicRoom(t, newTestRegistry(t), "general", "pw")
	alice := newFakeSession("alice")
	dead := newFakeSession("dead")
	dead.fail = true
	bob := newFakeSession("bob")
	room.AddMember(alice)
	room.AddMember(dead)
	room.AddMember(bob)

	if err := room.Broadcast(NewMessage("general", "alice", "hi"), alice); err != nil {
		t.Fatalf("broadcast must not propagate member failures: %v", err)
	}
	if !contains(bob.Lines(), "alice: hi") {
		t.Fatal("delivery must continue past a failing member")
	}
}

func TestPrivateRoomRejectsUnauthorized(t *testing.T) {
	reg := newTestRegistry(t)
	room, err := reg.Create("secret", "", true, []string{"alice"})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	alice := newFakeSession("alice")
	bob := newFakeSession("bob")

	if !room.AddMember(alice) {
		t.Fatal("alice is on the allow-list and must join")
	}
	if room.AddMember(bob) {
		t.Fatal("bob is not allowed in")
	}

	if want := "You are not allowed to join this private chatroom."; bob.LastLine() != want {
		t.Fatalf("denial notice mismatch: %q", bob.LastLine())
	}

	members := room.ListMembers()
	if len(members) != 1 || members[0] != "alice" {
		t.Fatalf("unexpected members: %v", members)
	}
}

func TestRoomJoinAndLeaveAnnouncements(t *testing.T) {
	room := newPublicRoom(t, newTestRegistry(t), "general", "pw")
	alice := newFakeSession("alice")
	bob := newFakeSession("bob")
	room.AddMember(alice)
	room.AddMember(bob)

	if !contains(alice.Lines(), "bob has joined the chatroom general") {
		t.Fatalf("alice missed join announcement: %v", alice.Lines())
	}
	if contains(bob.Lines(), "bob has joined the chatroom general") {
		t.Fatal("joiner must not see its own announcement")
	}

	room.RemoveMember(bob)
	if !contains(alice.Lines(), "bob has left the chatroom general") {
		t.Fatalf("alice missed leave announcement: %v", alice.Lines())
	}
}

func TestRoomMembershipIsAMultiset(t *testing.T) {
	room := newPublicRoom(t, newTestRegistry(t), "general", "pw")
	alice := newFakeSession("alice")

	room.AddMember(alice)
	room.AddMember(alice)
	if got := room.MemberCount(); got != 2 {
		t.Fatalf("re-adding must duplicate the entry, count = %d", got)
	}

	room.RemoveMember(alice)
	if got := room.MemberCount(); got != 1 {
		t.Fatalf("removal deletes a single entry, count = %d", got)
	}

	room.RemoveMember(alice)
	room.RemoveMember(alice) // no-op on a non-member
	if got := room.MemberCount(); got != 0 {
		t.Fatalf("expected empty room, count = %d", got)
	}
	if !room.Empty() {
		t.Fatal("room should report empty")
	}
}

func TestRoomPasswordCheck(t *testing.T) {
	room := newPublicRoom(t, newTestRegistry(t), "general", "hunter2")

	if err := room.CheckPassword("hunter2"); err != nil {
		t.Fatalf("correct password rejected: %v", err)
	}
	if err := room.CheckPassword("wrong"); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestRoomConcurrentJoinAndBroadcast(t *testing.T) {
	room := newPublicRoom(t, newTestRegistry(t), "general", "pw")
	alice := newFakeSession("alice")
	room.AddMember(alice)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			s := newFakeSession(fmt.Sprintf("user%d", i))
			room.AddMember(s)
			room.RemoveMember(s)
		}
	}()

	for i := 0; i < 50; i++ {
		if err := room.Broadcast(NewMessage("general", "alice", "tick"), alice); err != nil {
			t.Fatalf("broadcast failed: %v", err)
		}
	}
	<-done

	if got := room.MemberCount(); got != 1 {
		t.Fatalf("expected only alice left, count = %d", got)
	}
}
