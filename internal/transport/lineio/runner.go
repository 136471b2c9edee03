package lineio

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pkarpov/linechat/internal/chat"
	"github.com/pkarpov/linechat/internal/core"
)

// Runner drives the text menu protocol over one line-oriented connection.
// Both the TCP listener and the WebSocket bridge hand connections to it.
type Runner struct {
	svc *chat.Service
	log *zerolog.Logger
}

// NewRunner builds a runner on top of the chat service.
func NewRunner(svc *chat.Service, logger *zerolog.Logger) *Runner {
	return &Runner{svc: svc, log: logger}
}

// Handle runs the whole session for conn: registration, main menu, chat
// loops. It returns when the peer disconnects, types /exit, or ctx is
// cancelled. The connection is closed on return.
func (r *Runner) Handle(ctx context.Context, conn LineConn) {
	connID := uuid.NewString()
	logger := r.log.With().Str("conn_id", connID).Logger()

	c := NewClient(connID, conn, logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Unblock a pending ReadLine on shutdown.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	go c.writeLoop(ctx)

	logger.Info().Msg("connection opened")
	r.session(ctx, c)
	logger.Info().Str("user", c.Username()).Msg("connection closed")
}

func (r *Runner) session(ctx context.Context, c *Client) {
	c.send(ctx, "=== Welcome to the Main Menu ===")

	if !r.register(ctx, c) {
		return
	}
	defer r.svc.Unregister(ctx, c)

	r.menuLoop(ctx, c)
}

// register claims a display name, re-prompting while the name is taken.
// Returns false if the peer disconnected or sent an unusable name.
func (r *Runner) register(ctx context.Context, c *Client) bool {
	for {
		c.send(ctx, "Please enter your username:")
		line, err := c.conn.ReadLine()
		if err != nil {
			return false
		}

		name := strings.TrimSpace(line)
		if name == "" {
			c.send(ctx, "Invalid username. Connection closing.")
			return false
		}

		// The name must be visible to room allow-list checks before the
		// directory publishes the session.
		c.setUsername(name)
		if err := r.svc.Register(ctx, name, c); err != nil {
			c.setUsername("")
			if errors.Is(err, core.ErrNameTaken) {
				c.send(ctx, "Username '"+name+"' is already taken. Please choose another.")
				continue
			}
			return false
		}
		return true
	}
}

func (r *Runner) menuLoop(ctx context.Context, c *Client) {
	for {
		r.showMenu(ctx, c)
		line, err := c.conn.ReadLine()
		if err != nil {
			return
		}
		choice := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(choice, "/accept "):
			r.acceptInvitation(ctx, c, strings.TrimSpace(strings.TrimPrefix(choice, "/accept ")))
		case strings.HasPrefix(choice, "/decline "):
			r.svc.DeclineInvitation(ctx, strings.TrimSpace(strings.TrimPrefix(choice, "/decline ")), c.invites, c)
		case choice == "1":
			if !r.createRoom(ctx, c) {
				return
			}
		case choice == "2":
			if !r.joinRoom(ctx, c) {
				return
			}
		case choice == "3":
			r.listOnlineUsers(ctx, c)
		case choice == "4":
			if !r.startPrivateChat(ctx, c) {
				return
			}
		case choice == "/exit":
			c.send(ctx, "Goodbye!")
			return
		default:
			c.send(ctx, "Invalid choice. Please try again.")
		}
	}
}

func (r *Runner) showMenu(ctx context.Context, c *Client) {
	for _, line := range []string{
		"----------------------------",
		"          Main Menu          ",
		"----------------------------",
		" 1. Create a new chatroom",
		" 2. Join an existing chatroom",
		" 3. List online users",
		" 4. Start a private chat with a user",
		"/exit - Exit the application",
		"----------------------------",
		"Enter your choice:",
	} {
		c.send(ctx, line)
	}
}

// createRoom prompts for a name and password and creates a public room.
// Returns false only on disconnect.
func (r *Runner) createRoom(ctx context.Context, c *Client) bool {
	c.send(ctx, "--- Create a New Chatroom ---")
	c.send(ctx, "Enter a name for your chatroom:")
	name, err := c.conn.ReadLine()
	if err != nil {
		return false
	}

	c.send(ctx, "Set a password for your chatroom:")
	password, err := c.conn.ReadLine()
	if err != nil {
		return false
	}

	room, createErr := r.svc.CreateRoom(ctx, name, password, c)
	if createErr != nil {
		c.log.Error().Err(createErr).Msg("create room")
		c.send(ctx, "Could not create the chatroom. Please try again.")
		return true
	}

	c.send(ctx, "Chatroom created!")
	c.send(ctx, "Chatroom ID: "+room.ID())
	return true
}

func (r *Runner) joinRoom(ctx context.Context, c *Client) bool {
	c.send(ctx, "--- Join an Existing Chatroom ---")
	r.listAvailableRooms(ctx, c)

	c.send(ctx, "Enter the chatroom ID or name:")
	line, err := c.conn.ReadLine()
	if err != nil {
		return false
	}
	identifier := strings.TrimSpace(line)
	if identifier == "" {
		c.send(ctx, "Invalid input. Please try again.")
		return true
	}

	room, findErr := r.svc.FindRoom(identifier)
	if findErr != nil {
		c.send(ctx, "Chatroom not found. Please try again.")
		return true
	}

	password := ""
	if room.Private() {
		if !room.Allowed(c.Username()) {
			c.send(ctx, "You are not allowed to join this private chatroom.")
			return true
		}
	} else {
		c.send(ctx, "Enter the chatroom password:")
		password, err = c.conn.ReadLine()
		if err != nil {
			return false
		}
	}

	joined, joinErr := r.svc.JoinRoom(ctx, room.ID(), password, c)
	if joinErr != nil {
		if errors.Is(joinErr, core.ErrAccessDenied) {
			c.send(ctx, "Incorrect password. Please try again.")
		} else {
			c.send(ctx, "Chatroom not found. Please try again.")
		}
		return true
	}

	c.send(ctx, "Successfully joined the chatroom: "+joined.Name()+" (ID: "+joined.ID()+")")
	return r.chatLoop(ctx, c, joined)
}

func (r *Runner) listAvailableRooms(ctx context.Context, c *Client) {
	c.send(ctx, "--- Available Chatrooms ---")
	rooms := r.svc.ListRooms(c.Username())
	if len(rooms) == 0 {
		c.send(ctx, "No available chatrooms at the moment.")
		return
	}
	for _, info := range rooms {
		c.send(ctx, "ID: "+info.ID+" | Name: "+info.Name)
	}
}

func (r *Runner) listOnlineUsers(ctx context.Context, c *Client) {
	c.send(ctx, "--- Online Users ---")
	for _, name := range r.svc.ListOnlineUsers() {
		c.send(ctx, name)
	}
}

func (r *Runner) startPrivateChat(ctx context.Context, c *Client) bool {
	c.send(ctx, "--- Start a Private Chat ---")
	c.send(ctx, "Enter the username of the user you want to chat with:")
	line, err := c.conn.ReadLine()
	if err != nil {
		return false
	}
	target := strings.TrimSpace(line)
	if target == "" {
		c.send(ctx, "Invalid username. Please try again.")
		return true
	}

	room, chatErr := r.svc.StartPrivateChat(ctx, target, c)
	if chatErr != nil {
		if errors.Is(chatErr, core.ErrUserOffline) {
			c.send(ctx, "User '"+target+"' is not online.")
		} else {
			c.log.Error().Err(chatErr).Msg("start private chat")
			c.send(ctx, "Could not start the private chat. Please try again.")
		}
		return true
	}

	c.send(ctx, "Invitation sent to '"+target+"'. Waiting for their response...")
	return r.chatLoop(ctx, c, room)
}

// acceptInvitation is the menu-level accept: on success the user lands in
// the chat loop of the invited room.
func (r *Runner) acceptInvitation(ctx context.Context, c *Client, fromUser string) bool {
	room, err := r.svc.AcceptInvitation(ctx, fromUser, c.invites, c)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNoSuchInvitation):
			c.send(ctx, "No invitation found from '"+fromUser+"'.")
		case errors.Is(err, core.ErrRoomNotFound):
			c.send(ctx, "Chatroom not found.")
		default:
			c.log.Error().Err(err).Msg("accept invitation")
			c.send(ctx, "Could not accept the invitation.")
		}
		return true
	}

	c.send(ctx, "You have accepted the invitation and joined the chatroom: "+room.Name())
	return r.chatLoop(ctx, c, room)
}

// chatLoop relays lines into room until /exit or disconnect. /join and
// /accept switch rooms in place; /decline is honored mid-chat too.
// Returns false only on disconnect.
func (r *Runner) chatLoop(ctx context.Context, c *Client, room *core.Room) bool {
	c.send(ctx, "--- Chatroom ---")
	defer func() {
		r.svc.LeaveRoom(ctx, room, c)
		c.send(ctx, "You have returned to the main menu.")
	}()

	for {
		line, err := c.conn.ReadLine()
		if err != nil {
			return false
		}
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.EqualFold(trimmed, "/exit"):
			c.send(ctx, "Exiting the chatroom...")
			return true

		case strings.HasPrefix(trimmed, "/join "):
			name := strings.TrimSpace(strings.TrimPrefix(trimmed, "/join "))
			next, joinErr := r.switchToPrivateRoom(ctx, c, name)
			if joinErr != nil {
				c.send(ctx, "Chatroom not found or you are not allowed to join.")
				continue
			}
			r.svc.LeaveRoom(ctx, room, c)
			room = next
			c.send(ctx, "Successfully joined the chatroom: "+room.Name())

		case strings.HasPrefix(trimmed, "/accept "):
			fromUser := strings.TrimSpace(strings.TrimPrefix(trimmed, "/accept "))
			next, acceptErr := r.svc.AcceptInvitation(ctx, fromUser, c.invites, c)
			if acceptErr != nil {
				if errors.Is(acceptErr, core.ErrNoSuchInvitation) {
					c.send(ctx, "No invitation found from '"+fromUser+"'.")
				} else {
					c.send(ctx, "Chatroom not found.")
				}
				continue
			}
			r.svc.LeaveRoom(ctx, room, c)
			room = next
			c.send(ctx, "You have accepted the invitation and joined the chatroom: "+room.Name())

		case strings.HasPrefix(trimmed, "/decline "):
			r.svc.DeclineInvitation(ctx, strings.TrimSpace(strings.TrimPrefix(trimmed, "/decline ")), c.invites, c)

		case trimmed == "":
			// Ignore blank lines.

		default:
			if sendErr := r.svc.SendMessage(room, line, c); sendErr != nil {
				c.log.Warn().Err(sendErr).Str("room_id", room.ID()).Msg("send room message")
			}
		}
	}
}

// switchToPrivateRoom resolves a /join target: only private rooms the user
// is authorized for can be entered by name from inside a chat.
func (r *Runner) switchToPrivateRoom(ctx context.Context, c *Client, name string) (*core.Room, error) {
	room, err := r.svc.FindRoom(name)
	if err != nil {
		return nil, err
	}
	if !room.Private() || !room.Allowed(c.Username()) {
		return nil, core.ErrAccessDenied
	}
	return r.svc.JoinRoom(ctx, room.ID(), "", c)
}
