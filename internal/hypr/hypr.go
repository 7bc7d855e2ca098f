// Package hypr is a minimal Hyprland IPC client. It speaks the
// compositor's request socket: a short textual command is written, a JSON
// document comes back.
package hypr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	slateerrors "github.com/slatebar/slate/errors"
	"github.com/slatebar/slate/pkg/models"
)

const maxResponseSize = 128 * 1024

// Client queries a running Hyprland instance. The instance signature and
// runtime dir are captured once at construction; Available reports whether
// a compositor can be reached at all.
type Client struct {
	signature  string
	runtimeDir string
	timeout    time.Duration
	logger     *logrus.Entry
}

// NewClient builds a client from the process environment. timeout bounds a
// single IPC round-trip.
func NewClient(timeout time.Duration, logger *logrus.Entry) *Client {
	return &Client{
		signature:  os.Getenv("HYPRLAND_INSTANCE_SIGNATURE"),
		runtimeDir: os.Getenv("XDG_RUNTIME_DIR"),
		timeout:    timeout,
		logger:     logger,
	}
}

// NewClientAt builds a client against explicit socket locations, for tests.
func NewClientAt(signature, runtimeDir string, timeout time.Duration, logger *logrus.Entry) *Client {
	return &Client{signature: signature, runtimeDir: runtimeDir, timeout: timeout, logger: logger}
}

// Available reports whether a Hyprland instance signature is present.
func (c *Client) Available() bool {
	return c.signature != ""
}

// socketCandidates returns the well-known request socket locations, most
// specific first.
func (c *Client) socketCandidates() []string {
	var candidates []string
	if c.runtimeDir != "" {
		candidates = append(candidates, filepath.Join(c.runtimeDir, "hypr", c.signature, ".socket.sock"))
	}
	candidates = append(candidates, filepath.Join(os.TempDir(), "hypr", c.signature, ".socket.sock"))
	return candidates
}

// query sends an IPC command and decodes the JSON response into out. Every
// candidate socket location is tried before giving up.
func (c *Client) query(command string, out interface{}) error {
	if !c.Available() {
		return slateerrors.IPCUnavailable(command, errors.New("no instance signature"))
	}

	var lastErr error
	for _, socketPath := range c.socketCandidates() {
		info, err := os.Stat(socketPath)
		if err != nil || info.Mode()&os.ModeSocket == 0 {
			continue
		}

		data, err := c.roundTrip(socketPath, command)
		if err != nil {
			lastErr = err
			c.logger.WithField("socket", socketPath).WithError(err).Debug("IPC query failed, trying next path")
			continue
		}
		if len(data) == 0 {
			lastErr = fmt.Errorf("empty response from %s", socketPath)
			continue
		}
		if err := json.Unmarshal(data, out); err != nil {
			return slateerrors.IPCUnavailable(command, fmt.Errorf("malformed response: %w", err))
		}
		return nil
	}

	if lastErr == nil {
		lastErr = errors.New("no IPC socket found")
	}
	return slateerrors.IPCUnavailable(command, lastErr)
}

// roundTrip performs one request on one socket. The read deadline bounds
// the whole receive; a timeout with buffered data is treated as a complete
// response, since Hyprland closes slowly on some queries.
func (c *Client) roundTrip(socketPath, command string) ([]byte, error) {
	conn, err := net.DialTimeout("unix", socketPath, c.timeout)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(command)); err != nil {
		return nil, err
	}

	_ = conn.SetReadDeadline(time.Now().Add(c.timeout))
	var response []byte
	buf := make([]byte, 8192)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			response = append(response, buf[:n]...)
			if len(response) > maxResponseSize {
				return nil, fmt.Errorf("response exceeds %d bytes", maxResponseSize)
			}
		}
		if err != nil {
			if len(response) > 0 {
				return response, nil
			}
			return nil, err
		}
	}
}

// ActiveWindow returns the focused window's properties.
func (c *Client) ActiveWindow() (models.ActiveWindow, error) {
	var raw struct {
		Title string `json:"title"`
		Class string `json:"class"`
		PID   int    `json:"pid"`
	}
	if err := c.query("j/activewindow", &raw); err != nil {
		return models.ActiveWindow{}, err
	}
	return models.ActiveWindow{Title: raw.Title, Class: raw.Class, PID: raw.PID}, nil
}

// Workspaces returns all non-special workspaces sorted ascending by id.
// Negative ("special") ids are filtered out before exposure.
func (c *Client) Workspaces() ([]models.Workspace, error) {
	var raw []struct {
		ID      int    `json:"id"`
		Name    string `json:"name"`
		Windows int    `json:"windows"`
	}
	if err := c.query("j/workspaces", &raw); err != nil {
		return nil, err
	}

	workspaces := make([]models.Workspace, 0, len(raw))
	for _, ws := range raw {
		if ws.ID < 0 {
			continue
		}
		workspaces = append(workspaces, models.Workspace{ID: ws.ID, Name: ws.Name, Windows: ws.Windows})
	}
	sort.Slice(workspaces, func(i, j int) bool { return workspaces[i].ID < workspaces[j].ID })
	return workspaces, nil
}

// ActiveWorkspaceID returns the focused workspace id.
func (c *Client) ActiveWorkspaceID() (*int, error) {
	var raw struct {
		ID int `json:"id"`
	}
	if err := c.query("j/activeworkspace", &raw); err != nil {
		return nil, err
	}
	id := raw.ID
	return &id, nil
}
