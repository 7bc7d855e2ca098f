package hypr

import (
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slatebar/slate/errors"
	"github.com/slatebar/slate/logging"
)

const testSignature = "test-instance"

// startFakeCompositor serves canned JSON per command at the path layout
// the client probes.
func startFakeCompositor(t *testing.T, responses map[string]string) (runtimeDir string) {
	t.Helper()
	runtimeDir = t.TempDir()
	socketDir := filepath.Join(runtimeDir, "hypr", testSignature)
	require.NoError(t, os.MkdirAll(socketDir, 0755))

	listener, err := net.Listen("unix", filepath.Join(socketDir, ".socket.sock"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				buf := make([]byte, 1024)
				n, err := conn.Read(buf)
				if err != nil {
					return
				}
				if resp, ok := responses[string(buf[:n])]; ok {
					_, _ = io.WriteString(conn, resp)
				}
			}(conn)
		}
	}()

	return runtimeDir
}

func newTestClient(t *testing.T, runtimeDir string) *Client {
	t.Helper()
	return NewClientAt(testSignature, runtimeDir, 500*time.Millisecond, logging.NewLogger("test"))
}

func TestClientAvailable(t *testing.T) {
	c := NewClientAt("", "", time.Second, logging.NewLogger("test"))
	assert.False(t, c.Available())

	c = NewClientAt("sig", "", time.Second, logging.NewLogger("test"))
	assert.True(t, c.Available())
}

func TestActiveWindow(t *testing.T) {
	runtimeDir := startFakeCompositor(t, map[string]string{
		"j/activewindow": `{"title":"editor — main.go","class":"foot","pid":4242}`,
	})
	c := newTestClient(t, runtimeDir)

	window, err := c.ActiveWindow()
	require.NoError(t, err)
	assert.Equal(t, "editor — main.go", window.Title)
	assert.Equal(t, "foot", window.Class)
	assert.Equal(t, 4242, window.PID)
}

func TestWorkspaces(t *testing.T) {
	t.Run("filters special and sorts ascending", func(t *testing.T) {
		runtimeDir := startFakeCompositor(t, map[string]string{
			"j/workspaces": `[
				{"id":3,"name":"3","windows":1},
				{"id":-98,"name":"special:scratch","windows":1},
				{"id":1,"name":"1","windows":2}
			]`,
		})
		c := newTestClient(t, runtimeDir)

		workspaces, err := c.Workspaces()
		require.NoError(t, err)
		require.Len(t, workspaces, 2)
		assert.Equal(t, 1, workspaces[0].ID)
		assert.Equal(t, 3, workspaces[1].ID)
	})

	t.Run("empty list", func(t *testing.T) {
		runtimeDir := startFakeCompositor(t, map[string]string{
			"j/workspaces": `[]`,
		})
		c := newTestClient(t, runtimeDir)

		workspaces, err := c.Workspaces()
		require.NoError(t, err)
		assert.Empty(t, workspaces)
	})
}

func TestActiveWorkspaceID(t *testing.T) {
	runtimeDir := startFakeCompositor(t, map[string]string{
		"j/activeworkspace": `{"id":2,"name":"2"}`,
	})
	c := newTestClient(t, runtimeDir)

	id, err := c.ActiveWorkspaceID()
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, 2, *id)
}

func TestQueryErrors(t *testing.T) {
	t.Run("no signature", func(t *testing.T) {
		c := NewClientAt("", t.TempDir(), time.Second, logging.NewLogger("test"))
		_, err := c.ActiveWindow()
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeIPCUnavailable))
	})

	t.Run("no socket", func(t *testing.T) {
		c := newTestClient(t, t.TempDir())
		_, err := c.ActiveWindow()
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeIPCUnavailable))
	})

	t.Run("malformed response", func(t *testing.T) {
		runtimeDir := startFakeCompositor(t, map[string]string{
			"j/activewindow": `not json`,
		})
		c := newTestClient(t, runtimeDir)
		_, err := c.ActiveWindow()
		assert.Error(t, err)
	})
}
