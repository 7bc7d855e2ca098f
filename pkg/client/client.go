// Package client connects to slate daemon sockets and decodes their
// newline-delimited JSON snapshot streams.
package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/slatebar/slate/pkg/paths"
)

const dialTimeout = 2 * time.Second

// Conn is one live connection to a daemon socket. The first Next call
// returns the snapshot the daemon sends on connect; later calls block for
// changes.
type Conn struct {
	conn   net.Conn
	reader *bufio.Reader
}

// Dial connects to the named daemon's socket.
func Dial(daemon string) (*Conn, error) {
	return DialPath(paths.SocketPath(daemon))
}

// DialPath connects to an explicit socket path.
func DialPath(socketPath string) (*Conn, error) {
	conn, err := net.DialTimeout("unix", socketPath, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", socketPath, err)
	}
	return &Conn{conn: conn, reader: bufio.NewReader(conn)}, nil
}

// Next blocks until the daemon pushes a line and returns the raw JSON
// document, without the trailing newline.
func (c *Conn) Next() ([]byte, error) {
	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		return nil, err
	}
	return line[:len(line)-1], nil
}

// NextInto decodes the next snapshot into out.
func (c *Conn) NextInto(out interface{}) error {
	line, err := c.Next()
	if err != nil {
		return err
	}
	return json.Unmarshal(line, out)
}

func (c *Conn) Close() error {
	return c.conn.Close()
}
