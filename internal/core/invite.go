package core

import "sync"

// InvitationTracker holds the pending private-chat invitations of one
// recipient session. At most one invitation per inviter is outstanding; a
// second invite from the same user overwrites the first. Invitations never
// expire on their own, they live until accepted or declined.
type InvitationTracker struct {
	mu      sync.Mutex
	session Session
	pending map[string]string // inviter username -> room display name
}

// NewInvitationTracker constructs a tracker for the given recipient.
func NewInvitationTracker(s Session) *InvitationTracker {
	return &InvitationTracker{
		session: s,
		pending: make(map[string]string),
	}
}

// Receive records (or overwrites) the pending invitation from fromUser and
// notifies the recipient with the accept/decline command hints.
func (t *InvitationTracker) Receive(fromUser, roomName string) {
	t.mu.Lock()
	t.pending[fromUser] = roomName
	t.mu.Unlock()

	_ = t.session.Deliver("User '" + fromUser + "' invites you to a private chat.")
	_ = t.session.Deliver("Type '/accept " + fromUser + "' to join or '/decline " + fromUser + "' to decline.")
}

// Accept consumes the pending invitation from fromUser, joins the recipient
// into the invited room and notifies the inviter. The recipient is added to
// the room's allow-list first, so both parties end up mutually authorized.
//
// Fails with ErrNoSuchInvitation if no invitation from fromUser is pending,
// or ErrRoomNotFound if the room no longer exists.
func (t *InvitationTracker) Accept(fromUser string, reg *RoomRegistry, dir *UserDirectory) (*Room, error) {
	t.mu.Lock()
	roomName, ok := t.pending[fromUser]
	if ok {
		delete(t.pending, fromUser)
	}
	t.mu.Unlock()

	if !ok {
		return nil, ErrNoSuchInvitation
	}

	room, found := reg.ByName(roomName)
	if !found {
		return nil, ErrRoomNotFound
	}

	room.Authorize(t.session.Username())
	room.AddMember(t.session)

	if inviter, online := dir.Lookup(fromUser); online {
		_ = inviter.Deliver("User '" + t.session.Username() + "' has accepted your invitation.")
	}
	return room, nil
}

// Decline removes the pending invitation from fromUser, if any, and
// notifies the inviter. With no matching invitation only the decliner is
// told; no shared state changes.
func (t *InvitationTracker) Decline(fromUser string, dir *UserDirectory) {
	t.mu.Lock()
	_, ok := t.pending[fromUser]
	if ok {
		delete(t.pending, fromUser)
	}
	t.mu.Unlock()

	if !ok {
		_ = t.session.Deliver("No invitation found from '" + fromUser + "'.")
		return
	}

	_ = t.session.Deliver("You have declined the invitation from '" + fromUser + "'.")
	if inviter, online := dir.Lookup(fromUser); online {
		_ = inviter.Deliver("User '" + t.session.Username() + "' has declined your invitation.")
	}
}

// Pending reports whether an invitation from fromUser is outstanding.
func (t *InvitationTracker) Pending(fromUser string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.pending[fromUser]
	return ok
}
