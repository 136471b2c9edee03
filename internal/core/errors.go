package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeNameTaken        = "name_taken"
	ErrCodeInvalidMessage   = "invalid_message"
	ErrCodeAccessDenied     = "access_denied"
	ErrCodeRoomNotFound     = "room_not_found"
	ErrCodeNoSuchInvitation = "no_such_invitation"
	ErrCodeUserOffline      = "user_offline"
)

var (
	ErrNameTaken        = errors.New("username already taken")
	ErrInvalidMessage   = errors.New("invalid message")
	ErrAccessDenied     = errors.New("access denied")
	ErrRoomNotFound     = errors.New("room not found")
	ErrNoSuchInvitation = errors.New("no such invitation")
	ErrUserOffline      = errors.New("user is not online")
)

// ChatError wraps a code and human-readable message.
type ChatError struct {
	Code    string
	Message string
}

func (e *ChatError) Error() string {
	return e.Message
}

// CodeOf maps a domain error to its wire-level code, or "internal_error"
// for anything outside the taxonomy.
func CodeOf(err error) string {
	switch {
	case errors.Is(err, ErrNameTaken):
		return ErrCodeNameTaken
	case errors.Is(err, ErrInvalidMessage):
		return ErrCodeInvalidMessage
	case errors.Is(err, ErrAccessDenied):
		return ErrCodeAccessDenied
	case errors.Is(err, ErrRoomNotFound):
		return ErrCodeRoomNotFound
	case errors.Is(err, ErrNoSuchInvitation):
		return ErrCodeNoSuchInvitation
	case errors.Is(err, ErrUserOffline):
		return ErrCodeUserOffline
	default:
		return "internal_error"
	}
}
