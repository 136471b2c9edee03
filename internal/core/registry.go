package core

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// roomIDSpace is the size of the 6-digit decimal room ID space.
const roomIDSpace = 1_000_000

// RoomRegistry is the process-wide index of live rooms. It generates unique
// 6-digit room IDs and hands each room a monotonically increasing port
// slot the transport may use to open a dedicated listener; the registry
// itself only guarantees uniqueness and monotonicity of the slots.
type RoomRegistry struct {
	mu       sync.Mutex
	rooms    map[string]*Room
	basePort int
	nextPort int

	log *zerolog.Logger
}

// NewRoomRegistry constructs an empty registry. Port slots start at basePort.
func NewRoomRegistry(basePort int, logger *zerolog.Logger) *RoomRegistry {
	return &RoomRegistry{
		rooms:    make(map[string]*Room),
		basePort: basePort,
		nextPort: basePort,
		log:      logger,
	}
}

// Create allocates a fresh room. Public rooms store password as a bcrypt
// hash; private rooms ignore the password and seed the allow-list with
// allowed (which must include the creator).
func (r *RoomRegistry) Create(name, password string, private bool, allowed []string) (*Room, error) {
	var passwordHash string
	if !private {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash room password: %w", err)
		}
		passwordHash = string(hash)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.generateIDLocked()
	port := r.nextPort
	r.nextPort++

	roomLog := r.log.With().Str("room_id", id).Str("room_name", name).Logger()
	room := newRoom(id, name, port, private, passwordHash, roomLog)
	for _, user := range allowed {
		room.allowed[user] = struct{}{}
	}
	r.rooms[id] = room

	r.log.Info().
		Str("room_id", id).
		Str("room_name", name).
		Int("port", port).
		Bool("private", private).
		Msg("room created")
	return room, nil
}

// generateIDLocked rejection-samples the 6-digit space until the ID does
// not collide with a live room. Callers hold r.mu.
func (r *RoomRegistry) generateIDLocked() string {
	for {
		id := fmt.Sprintf("%06d", rand.Intn(roomIDSpace))
		if _, exists := r.rooms[id]; !exists {
			return id
		}
	}
}

// ByID looks up a room by its 6-digit identifier.
func (r *RoomRegistry) ByID(id string) (*Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	return room, ok
}

// ByName returns a room whose display name equals name. Display names are
// not unique; with duplicates this returns an arbitrary match. Known
// limitation, kept deliberately.
func (r *RoomRegistry) ByName(name string) (*Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, room := range r.rooms {
		if room.Name() == name {
			return room, true
		}
	}
	return nil, false
}

// List returns an independent copy of the id to room mapping.
func (r *RoomRegistry) List() map[string]*Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]*Room, len(r.rooms))
	for id, room := range r.rooms {
		out[id] = room
	}
	return out
}

// Len returns the number of live rooms.
func (r *RoomRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// Reset clears all rooms and rewinds the port counter. Administrative and
// test-only operation.
func (r *RoomRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms = make(map[string]*Room)
	r.nextPort = r.basePort
}
