package core

// Session is a connected user as seen by the core layer. The transport owns
// the connection; the core only indexes sessions and pushes lines at them.
//
// Deliver must never block: transports back it with a buffered channel and
// drop (returning an error) when the peer cannot keep up. Room broadcast
// relies on this to bound lock hold time.
type Session interface {
	// ID identifies the connection, not the user.
	ID() string
	// Username is the registered display name, empty before registration.
	Username() string
	// Deliver queues one line of text for the remote peer. Lines arrive in
	// the order Deliver is called for a given session.
	Deliver(line string) error
}
