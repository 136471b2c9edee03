package core

import "sync"

// UserDirectory maps display names to live sessions. It enforces one active
// session per name; a name frees up the moment its session unregisters.
// The directory only indexes sessions, it never closes them.
type UserDirectory struct {
	mu    sync.Mutex
	users map[string]Session
}

// NewUserDirectory constructs an empty directory.
func NewUserDirectory() *UserDirectory {
	return &UserDirectory{users: make(map[string]Session)}
}

// Register claims name for s. Returns ErrNameTaken if another live session
// already holds the name.
func (d *UserDirectory) Register(name string, s Session) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, taken := d.users[name]; taken {
		return ErrNameTaken
	}
	d.users[name] = s
	return nil
}

// Unregister releases name. No-op if the name is not registered.
func (d *UserDirectory) Unregister(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.users, name)
}

// IsOnline reports whether name has a live session.
func (d *UserDirectory) IsOnline(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, online := d.users[name]
	return online
}

// Lookup returns the session registered under name.
func (d *UserDirectory) Lookup(name string) (Session, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.users[name]
	return s, ok
}

// Snapshot returns an independent copy of the name to session mapping, safe
// to iterate without holding the directory lock.
func (d *UserDirectory) Snapshot() map[string]Session {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[string]Session, len(d.users))
	for name, s := range d.users {
		out[name] = s
	}
	return out
}
