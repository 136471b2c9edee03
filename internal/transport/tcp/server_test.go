package tcp

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pkarpov/linechat/internal/chat"
	"github.com/pkarpov/linechat/internal/core"
	"github.com/pkarpov/linechat/internal/transport/lineio"
)

type testPeer struct {
	conn  net.Conn
	lines chan string
}

func dialPeer(t *testing.T, addr string) *testPeer {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	p := &testPeer{conn: conn, lines: make(chan string, 256)}
	go func() {
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			p.lines <- scanner.Text()
		}
		close(p.lines)
	}()
	return p
}

func (p *testPeer) typeLine(t *testing.T, line string) {
	t.Helper()
	if _, err := p.conn.Write([]byte(line + "\n")); err != nil {
		t.Fatalf("write %q: %v", line, err)
	}
}

func (p *testPeer) expect(t *testing.T, want string) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case line, ok := <-p.lines:
			if !ok {
				t.Fatalf("connection closed while waiting for %q", want)
			}
			if line == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func (p *testPeer) expectPrefix(t *testing.T, prefix string) string {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case line, ok := <-p.lines:
			if !ok {
				t.Fatalf("connection closed while waiting for prefix %q", prefix)
			}
			if strings.HasPrefix(line, prefix) {
				return line
			}
		case <-deadline:
			t.Fatalf("timed out waiting for prefix %q", prefix)
		}
	}
}

func startTestServer(t *testing.T) string {
	t.Helper()

	logger := zerolog.Nop()
	svc := chat.NewService(core.NewUserDirectory(), core.NewRoomRegistry(20000, &logger), nil, &logger)
	srv := NewServer("127.0.0.1:0", lineio.NewRunner(svc, &logger), &logger)
	if err := srv.Listen(); err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = srv.Serve(ctx) }()

	return srv.Addr().String()
}

func TestTCPServerEndToEnd(t *testing.T) {
	addr := startTestServer(t)

	alice := dialPeer(t, addr)
	alice.expect(t, "Please enter your username:")
	alice.typeLine(t, "alice")
	alice.expect(t, "Enter your choice:")

	alice.typeLine(t, "1")
	alice.expect(t, "Enter a name for your chatroom:")
	alice.typeLine(t, "lounge")
	alice.expect(t, "Set a password for your chatroom:")
	alice.typeLine(t, "pw")
	idLine := alice.expectPrefix(t, "Chatroom ID: ")
	roomID := strings.TrimPrefix(idLine, "Chatroom ID: ")

	bob := dialPeer(t, addr)
	bob.expect(t, "Please enter your username:")
	bob.typeLine(t, "bob")
	bob.expect(t, "Enter your choice:")

	for _, p := range []*testPeer{alice, bob} {
		p.typeLine(t, "2")
		p.expect(t, "Enter the chatroom ID or name:")
		p.typeLine(t, roomID)
		p.expect(t, "Enter the chatroom password:")
		p.typeLine(t, "pw")
		p.expect(t, "--- Chatroom ---")
	}

	alice.expect(t, "bob has joined the chatroom lounge")
	alice.typeLine(t, "hello over tcp")
	bob.expect(t, "alice: hello over tcp")
}

func TestTCPServerDisconnectReleasesName(t *testing.T) {
	addr := startTestServer(t)

	first := dialPeer(t, addr)
	first.expect(t, "Please enter your username:")
	first.typeLine(t, "alice")
	first.expect(t, "Enter your choice:")

	first.typeLine(t, "/exit")
	first.expect(t, "Goodbye!")

	// The name frees up once the first session is gone.
	deadline := time.Now().Add(3 * time.Second)
	for {
		second := dialPeer(t, addr)
		second.expect(t, "Please enter your username:")
		second.typeLine(t, "alice")

		line := second.expectPrefix(t, "")
		if !strings.HasPrefix(line, "Username ") {
			// Menu output: the registration went through.
			return
		}
		_ = second.conn.Close()
		if time.Now().After(deadline) {
			t.Fatal("username was never released after disconnect")
		}
		time.Sleep(50 * time.Millisecond)
	}
}
