package core

import (
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// fakeSession records delivered lines for assertions.
type fakeSession struct {
	id   string
	name string

	mu    sync.Mutex
	lines []string
	fail  bool
}

func newFakeSession(name string) *fakeSession {
	return &fakeSession{id: "conn-" + name, name: name}
}

func (f *fakeSession) ID() string       { return f.id }
func (f *fakeSession) Username() string { return f.name }

func (f *fakeSession) Deliver(line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("connection gone")
	}
	f.lines = append(f.lines, line)
	return nil
}

func (f *fakeSession) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.lines))
	copy(out, f.lines)
	return out
}

func (f *fakeSession) LastLine() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.lines) == 0 {
		return ""
	}
	return f.lines[len(f.lines)-1]
}

func newTestRegistry(t *testing.T) *RoomRegistry {
	t.Helper()
	logger := zerolog.Nop()
	return NewRoomRegistry(20000, &logger)
}

func contains(lines []string, want string) bool {
	for _, l := range lines {
		if l == want {
			return true
		}
	}
	return false
}
