package chat

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/pkarpov/linechat/internal/core"
	"github.com/pkarpov/linechat/internal/store"
)

// InviteReceiver is implemented by sessions that can take private-chat
// invitations. The transport-owned client satisfies it; sessions that do
// not (e.g. test doubles) simply cannot be invited.
type InviteReceiver interface {
	Invitations() *core.InvitationTracker
}

// RoomInfo is the listing view of a room.
type RoomInfo struct {
	ID      string
	Name    string
	Private bool
	Members int
}

// Service implements the session-facing chat operations on top of the
// directory and room registry. It is the only writer of the audit trail;
// audit failures are logged and never surfaced to users.
type Service struct {
	directory *core.UserDirectory
	registry  *core.RoomRegistry
	store     store.Store
	log       *zerolog.Logger
}

// NewService wires the chat service. st may be nil to disable auditing.
func NewService(dir *core.UserDirectory, reg *core.RoomRegistry, st store.Store, logger *zerolog.Logger) *Service {
	return &Service{
		directory: dir,
		registry:  reg,
		store:     st,
		log:       logger,
	}
}

// Directory exposes the user directory to transports.
func (s *Service) Directory() *core.UserDirectory { return s.directory }

// Registry exposes the room registry to transports.
func (s *Service) Registry() *core.RoomRegistry { return s.registry }

// Register claims a display name for the session.
func (s *Service) Register(ctx context.Context, name string, sess core.Session) error {
	if err := s.directory.Register(name, sess); err != nil {
		return err
	}
	s.log.Info().Str("user", name).Str("conn_id", sess.ID()).Msg("user registered")
	s.audit(ctx, store.EventUserRegistered, name, "", "")
	return nil
}

// Unregister releases the session's display name. Idempotent.
func (s *Service) Unregister(ctx context.Context, sess core.Session) {
	name := sess.Username()
	if name == "" {
		return
	}
	s.directory.Unregister(name)
	s.log.Info().Str("user", name).Msg("user unregistered")
	s.audit(ctx, store.EventUserUnregistered, name, "", "")
}

// CreateRoom creates a public password-gated room.
func (s *Service) CreateRoom(ctx context.Context, name, password string, creator core.Session) (*core.Room, error) {
	room, err := s.registry.Create(name, password, false, nil)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, store.EventRoomCreated, creator.Username(), room.ID(), room.Name())
	return room, nil
}

// FindRoom resolves a room by ID first, then by display name.
func (s *Service) FindRoom(identifier string) (*core.Room, error) {
	if room, ok := s.registry.ByID(identifier); ok {
		return room, nil
	}
	if room, ok := s.registry.ByName(identifier); ok {
		return room, nil
	}
	return nil, core.ErrRoomNotFound
}

// JoinRoom resolves identifier and joins the session, enforcing the room's
// access policy. On rejection no shared state changes.
func (s *Service) JoinRoom(ctx context.Context, identifier, password string, sess core.Session) (*core.Room, error) {
	room, err := s.FindRoom(identifier)
	if err != nil {
		return nil, err
	}

	if room.Private() {
		if !room.Allowed(sess.Username()) {
			return nil, core.ErrAccessDenied
		}
	} else if err := room.CheckPassword(password); err != nil {
		return nil, err
	}

	room.AddMember(sess)
	s.audit(ctx, store.EventMemberJoined, sess.Username(), room.ID(), "")
	return room, nil
}

// LeaveRoom removes the session from the room. No-op if not a member.
func (s *Service) LeaveRoom(ctx context.Context, room *core.Room, sess core.Session) {
	room.RemoveMember(sess)
	s.audit(ctx, store.EventMemberLeft, sess.Username(), room.ID(), "")
}

// SendMessage broadcasts one chat line to the room on behalf of sess.
func (s *Service) SendMessage(room *core.Room, text string, sess core.Session) error {
	return room.Broadcast(core.NewMessage(room.Name(), sess.Username(), text), sess)
}

// ListRooms returns the rooms visible to forUser: every public room plus
// the private rooms forUser is allowed into. Sorted by ID.
func (s *Service) ListRooms(forUser string) []RoomInfo {
	rooms := s.registry.List()

	out := make([]RoomInfo, 0, len(rooms))
	for id, room := range rooms {
		if room.Private() && !room.Allowed(forUser) {
			continue
		}
		out = append(out, RoomInfo{
			ID:      id,
			Name:    room.Name(),
			Private: room.Private(),
			Members: room.MemberCount(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListOnlineUsers returns the registered display names, sorted.
func (s *Service) ListOnlineUsers() []string {
	snap := s.directory.Snapshot()
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StartPrivateChat creates the implicit private room backing a one-on-one
// chat, joins the inviter and sends the invitation to target. Fails with
// ErrUserOffline if target has no live session.
func (s *Service) StartPrivateChat(ctx context.Context, target string, sess core.Session) (*core.Room, error) {
	targetSess, online := s.directory.Lookup(target)
	if !online {
		return nil, core.ErrUserOffline
	}

	inviter := sess.Username()
	roomName := inviter + " & " + target + "'s Private Chat"
	room, err := s.registry.Create(roomName, "", true, []string{inviter, target})
	if err != nil {
		return nil, err
	}
	room.AddMember(sess)

	if receiver, ok := targetSess.(InviteReceiver); ok {
		receiver.Invitations().Receive(inviter, roomName)
	} else {
		s.log.Warn().Str("user", target).Msg("target session cannot receive invitations")
	}

	s.audit(ctx, store.EventRoomCreated, inviter, room.ID(), roomName)
	s.audit(ctx, store.EventMemberJoined, inviter, room.ID(), "")
	s.audit(ctx, store.EventInviteSent, inviter, room.ID(), target)
	return room, nil
}

// AcceptInvitation consumes the invitation from fromUser and joins sess
// into the invited room.
func (s *Service) AcceptInvitation(ctx context.Context, fromUser string, tracker *core.InvitationTracker, sess core.Session) (*core.Room, error) {
	room, err := tracker.Accept(fromUser, s.registry, s.directory)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, store.EventInviteAccepted, sess.Username(), room.ID(), fromUser)
	s.audit(ctx, store.EventMemberJoined, sess.Username(), room.ID(), "")
	return room, nil
}

// DeclineInvitation drops the invitation from fromUser and notifies both
// sides through the tracker.
func (s *Service) DeclineInvitation(ctx context.Context, fromUser string, tracker *core.InvitationTracker, sess core.Session) {
	tracker.Decline(fromUser, s.directory)
	s.audit(ctx, store.EventInviteDeclined, sess.Username(), "", fromUser)
}

func (s *Service) audit(ctx context.Context, kind store.EventKind, actor, roomID, detail string) {
	if s.store == nil {
		return
	}
	ev := store.Event{Kind: kind, Actor: actor, RoomID: roomID, Detail: detail}
	if err := s.store.RecordEvent(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("kind", string(kind)).Msg("failed to record audit event")
	}
}
