// Package server provides the unix-socket broadcast server for slate
// daemons. It pushes newline-delimited JSON snapshots to every connected
// client and never reads application data back.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const writeTimeout = 5 * time.Second

// SnapshotFunc returns the daemon's current full snapshot for the
// first message sent to a newly connected client.
type SnapshotFunc func() interface{}

// Server owns the listening socket and the client registry. A single
// broadcaster goroutine performs all registry mutation and all client
// writes, which gives every client the same change ordering without a
// registry lock held across socket I/O.
type Server struct {
	name     string
	snapshot SnapshotFunc
	logger   *logrus.Entry

	listener   net.Listener
	socketPath string

	register   chan *client
	unregister chan *client
	updates    chan []byte
	done       chan struct{}
	closeOnce  sync.Once
}

type client struct {
	id   string
	conn net.Conn
}

// New creates a Server for the named daemon. snapshot supplies the current
// state for snapshot-on-connect.
func New(name string, snapshot SnapshotFunc, logger *logrus.Entry) *Server {
	return &Server{
		name:       name,
		snapshot:   snapshot,
		logger:     logger,
		register:   make(chan *client),
		unregister: make(chan *client, 16),
		updates:    make(chan []byte, 64),
		done:       make(chan struct{}),
	}
}

// Listen binds the unix socket. A pre-existing socket file is treated as
// stale and removed; the supervisor has already probed for a live daemon
// before calling this.
func (s *Server) Listen(socketPath string) error {
	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			return fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(socketPath), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}

	if err := os.Chmod(socketPath, 0600); err != nil {
		_ = listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.listener = listener
	s.socketPath = socketPath
	s.logger.WithField("socket", socketPath).Info("Daemon listening")
	return nil
}

// Serve runs the accept loop until the context is canceled or the listener
// is closed. Listen must have been called first.
func (s *Server) Serve(ctx context.Context) error {
	go s.broadcastLoop(ctx)
	go func() {
		<-ctx.Done()
		s.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			s.logger.WithError(err).Error("Accept failed")
			continue
		}

		c := &client{id: uuid.NewString(), conn: conn}
		select {
		case s.register <- c:
		case <-s.done:
			_ = conn.Close()
			return nil
		}
	}
}

// Broadcast serializes the snapshot once and queues it for delivery to
// every registered client. Safe to call from any goroutine; a no-op after
// shutdown.
func (s *Server) Broadcast(v interface{}) {
	payload, err := marshalLine(v)
	if err != nil {
		s.logger.WithError(err).Error("Failed to marshal snapshot")
		return
	}
	select {
	case s.updates <- payload:
	case <-s.done:
	}
}

// Close stops accepting, disconnects every client and unlinks the socket.
// Idempotent.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			_ = s.listener.Close()
		}
		if s.socketPath != "" {
			_ = os.Remove(s.socketPath)
		}
	})
}

// broadcastLoop is the sole owner of the client registry.
func (s *Server) broadcastLoop(ctx context.Context) {
	conns := make(map[*client]struct{})
	defer func() {
		for c := range conns {
			_ = c.conn.Close()
		}
	}()

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return

		case c := <-s.register:
			payload, err := marshalLine(s.snapshot())
			if err != nil {
				s.logger.WithError(err).Error("Failed to marshal initial snapshot")
				_ = c.conn.Close()
				continue
			}
			if err := writeLine(c, payload); err != nil {
				s.logger.WithField("client", c.id).WithError(err).Debug("Client rejected initial snapshot")
				_ = c.conn.Close()
				continue
			}
			conns[c] = struct{}{}
			go s.watchDisconnect(c)
			s.logger.WithFields(logrus.Fields{"client": c.id, "clients": len(conns)}).Debug("Client connected")

		case c := <-s.unregister:
			if _, ok := conns[c]; ok {
				delete(conns, c)
				_ = c.conn.Close()
				s.logger.WithFields(logrus.Fields{"client": c.id, "clients": len(conns)}).Debug("Client disconnected")
			}

		case payload := <-s.updates:
			for c := range conns {
				if err := writeLine(c, payload); err != nil {
					// One bad client never affects the others.
					delete(conns, c)
					_ = c.conn.Close()
					s.logger.WithField("client", c.id).WithError(err).Debug("Dropping client after write failure")
				}
			}
		}
	}
}

// watchDisconnect blocks on the connection to detect teardown. The daemons
// are push-only: inbound bytes are read and discarded.
func (s *Server) watchDisconnect(c *client) {
	_, _ = io.Copy(io.Discard, c.conn)
	select {
	case s.unregister <- c:
	case <-s.done:
	}
}

func marshalLine(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func writeLine(c *client, payload []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_, err := c.conn.Write(payload)
	return err
}
