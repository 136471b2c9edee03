package lineio

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pkarpov/linechat/internal/core"
)

// outboundBuffer bounds how many undelivered lines a session may queue
// before broadcasts start dropping for it.
const outboundBuffer = 64

var errSlowConsumer = errors.New("slow consumer, line dropped")

// Client is the per-connection session actor. It implements core.Session:
// the core pushes lines at it via Deliver, a writer goroutine drains them
// to the connection in order.
type Client struct {
	id   string
	conn LineConn

	mu       sync.Mutex
	username string

	outbound chan string
	invites  *core.InvitationTracker

	log zerolog.Logger
}

// NewClient builds a session around conn. The invitation tracker is bound
// to the client for its whole lifetime.
func NewClient(id string, conn LineConn, logger zerolog.Logger) *Client {
	c := &Client{
		id:       id,
		conn:     conn,
		outbound: make(chan string, outboundBuffer),
		log:      logger,
	}
	c.invites = core.NewInvitationTracker(c)
	return c
}

// ID identifies the connection.
func (c *Client) ID() string { return c.id }

// Username returns the registered display name, empty before registration.
func (c *Client) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

func (c *Client) setUsername(name string) {
	c.mu.Lock()
	c.username = name
	c.mu.Unlock()
}

// Invitations returns the pending-invitation state of this session.
func (c *Client) Invitations() *core.InvitationTracker { return c.invites }

// Deliver queues one line for the remote peer. Never blocks: when the
// buffer is full the line is dropped and an error returned, so a dead peer
// cannot stall a room broadcast.
func (c *Client) Deliver(line string) error {
	select {
	case c.outbound <- line:
		return nil
	default:
		return errSlowConsumer
	}
}

// writeLoop drains outbound lines to the connection until ctx is done or
// the connection dies.
func (c *Client) writeLoop(ctx context.Context) {
	for {
		select {
		case line := <-c.outbound:
			if err := c.conn.WriteLine(line); err != nil {
				c.log.Debug().Err(err).Msg("write line")
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// send queues a protocol line (prompt, notice) for the peer. Unlike
// Deliver it waits for buffer space, since prompts must not be dropped.
func (c *Client) send(ctx context.Context, line string) {
	select {
	case c.outbound <- line:
	case <-ctx.Done():
	}
}
