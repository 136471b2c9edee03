package core

import (
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Room groups sessions that exchange broadcast messages. Access is gated
// either by password (public rooms) or by an allow-list (private rooms).
//
// The member set deliberately permits the same session to appear more than
// once; removal deletes a single matching entry. Callers that want
// single-membership guard against re-adding themselves.
type Room struct {
	id      string
	name    string
	port    int
	private bool

	// bcrypt hash of the join password, empty for private rooms.
	passwordHash string

	mu      sync.Mutex
	allowed map[string]struct{}
	members []Session

	log zerolog.Logger
}

func newRoom(id, name string, port int, private bool, passwordHash string, logger zerolog.Logger) *Room {
	return &Room{
		id:           id,
		name:         name,
		port:         port,
		private:      private,
		passwordHash: passwordHash,
		allowed:      make(map[string]struct{}),
		log:          logger,
	}
}

// ID returns the server-generated 6-digit room identifier.
func (r *Room) ID() string { return r.id }

// Name returns the display name. Display names are not unique.
func (r *Room) Name() string { return r.name }

// Port returns the opaque port slot assigned by the registry.
func (r *Room) Port() int { return r.port }

// Private reports whether the room is invite-gated.
func (r *Room) Private() bool { return r.private }

// Authorize adds user to the allow-list of a private room.
func (r *Room) Authorize(user string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allowed[user] = struct{}{}
}

// Allowed reports whether user may enter the room. Public rooms admit
// anyone who knows the password, so every user is allowed.
func (r *Room) Allowed(user string) bool {
	if !r.private {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.allowed[user]
	return ok
}

// CheckPassword compares the supplied password against the room's hash.
// Returns ErrAccessDenied on mismatch.
func (r *Room) CheckPassword(password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(r.passwordHash), []byte(password)); err != nil {
		return ErrAccessDenied
	}
	return nil
}

// AddMember inserts s into the member set and announces the join to the
// other members. For private rooms an unauthorized session gets a single
// denial notice and no membership change; the rejection is not an error to
// the caller. Returns true if the session joined.
func (r *Room) AddMember(s Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.private {
		if _, ok := r.allowed[s.Username()]; !ok {
			if err := s.Deliver("You are not allowed to join this private chatroom."); err != nil {
				r.log.Warn().Err(err).Str("user", s.Username()).Msg("deliver denial notice")
			}
			return false
		}
	}

	r.members = append(r.members, s)
	r.broadcastLocked(s.Username()+" has joined the chatroom "+r.name, s)
	return true
}

// RemoveMember deletes one matching entry from the member set and announces
// the leave to the remaining members. No-op if s was never a member.
func (r *Room) RemoveMember(s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, m := range r.members {
		if m == s {
			r.members = append(r.members[:i], r.members[i+1:]...)
			r.broadcastLocked(s.Username()+" has left the chatroom "+r.name, s)
			return
		}
	}
}

// Broadcast delivers msg to every current member except sender. A nil
// sender addresses all members, used for system announcements. A nil msg is
// a protocol error and fails with ErrInvalidMessage.
//
// The call returns after every member's send has been attempted; individual
// delivery failures are logged and never abort the fan-out.
func (r *Room) Broadcast(msg *Message, sender Session) error {
	if msg == nil {
		return ErrInvalidMessage
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcastLocked(msg.Line(), sender)
	return nil
}

// broadcastLocked fans line out to members. Callers hold r.mu; Session.Deliver
// is non-blocking by contract, so the lock hold time stays bounded.
func (r *Room) broadcastLocked(line string, sender Session) {
	for _, m := range r.members {
		if sender != nil && m == sender {
			continue
		}
		if err := m.Deliver(line); err != nil {
			r.log.Warn().
				Err(err).
				Str("user", m.Username()).
				Msg("deliver to room member failed")
		}
	}
}

// ListMembers returns an independent snapshot of member usernames.
func (r *Room) ListMembers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.members))
	for _, m := range r.members {
		names = append(names, m.Username())
	}
	return names
}

// MemberCount returns the current number of member entries.
func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Empty returns true if no sessions are in the room.
func (r *Room) Empty() bool {
	return r.MemberCount() == 0
}
