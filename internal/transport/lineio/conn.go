package lineio

import (
	"bufio"
	"io"
	"strings"
)

// LineConn is a line-oriented duplex connection. The menu protocol and the
// chat loops speak only in lines; TCP and WebSocket transports provide
// implementations.
type LineConn interface {
	// ReadLine blocks until one line of input arrives or the connection
	// closes. The returned line carries no trailing newline.
	ReadLine() (string, error)
	// WriteLine sends one line to the remote peer.
	WriteLine(line string) error
	// Close tears the connection down; a blocked ReadLine returns an error.
	Close() error
}

// Conn adapts any stream (e.g. net.Conn) to LineConn with buffered reads.
type Conn struct {
	rwc    io.ReadWriteCloser
	reader *bufio.Reader
}

// NewConn wraps rwc in a line-oriented connection.
func NewConn(rwc io.ReadWriteCloser) *Conn {
	return &Conn{
		rwc:    rwc,
		reader: bufio.NewReader(rwc),
	}
}

func (c *Conn) ReadLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Conn) WriteLine(line string) error {
	_, err := io.WriteString(c.rwc, line+"\n")
	return err
}

func (c *Conn) Close() error {
	return c.rwc.Close()
}
